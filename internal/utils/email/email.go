package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/finwise/finance-service/internal/config"
	"github.com/finwise/finance-service/internal/money"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports whether SMTP is configured.
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != ""
}

// SendPaymentReminder sends an upcoming or overdue installment reminder
func (s *Sender) SendPaymentReminder(to, name, liabilityType string, dueDate time.Time, amount money.Money, isOverdue bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if isOverdue {
		e.Subject = "Overdue Payment Notification"
	} else {
		e.Subject = "Upcoming Payment Reminder"
	}

	body := fmt.Sprintf("Dear %s,\n\n", name)
	if isOverdue {
		body += fmt.Sprintf(
			"Your %s payment of %s was due on %s and is now overdue.\n"+
				"Please make the payment as soon as possible.\n",
			liabilityType, amount.Format(), dueDate.Format("2006-01-02"),
		)
	} else {
		body += fmt.Sprintf(
			"This is a reminder that your %s payment of %s is due on %s.\n"+
				"Please ensure sufficient funds are available in a liquid asset.\n",
			liabilityType, amount.Format(), dueDate.Format("2006-01-02"),
		)
	}
	body += "\nBest regards,\nFinwise"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// SendCompletionNotification congratulates the user on settling a liability
func (s *Sender) SendCompletionNotification(to, name, liabilityType string, total money.Money) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Liability Fully Paid"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Congratulations! Your %s of %s is now fully paid off.\n"+
			"\nBest regards,\nFinwise",
		name, liabilityType, total.Format(),
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send completion notification to %s: %v", to, err)
		return fmt.Errorf("failed to send completion notification: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
