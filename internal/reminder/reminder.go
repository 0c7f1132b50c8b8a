// Package reminder runs the scheduled due-date reminder job.
package reminder

import (
	"context"

	"github.com/finwise/finance-service/internal/config"
	"github.com/finwise/finance-service/internal/repository"
	"github.com/finwise/finance-service/internal/utils/email"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DueLister is the repository surface the job needs.
type DueLister interface {
	ListDueWithin(ctx context.Context, days int) ([]repository.ReminderItem, error)
}

// Scheduler periodically scans for upcoming and overdue installments and
// emails their owners.
type Scheduler struct {
	cfg    *config.Config
	repo   DueLister
	sender *email.Sender
	log    *logrus.Logger
	cron   *cron.Cron
}

// NewScheduler initializes the reminder scheduler
func NewScheduler(cfg *config.Config, repo DueLister, sender *email.Sender, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		repo:   repo,
		sender: sender,
		log:    log,
		cron:   cron.New(),
	}
}

// Start registers the cron entry and begins scheduling. No-op when SMTP is
// not configured.
func (s *Scheduler) Start() error {
	if !s.sender.Enabled() {
		s.log.Info("SMTP not configured, payment reminders disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.ReminderSchedule, s.Run); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Infof("Payment reminder job scheduled: %q", s.cfg.ReminderSchedule)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Run executes one reminder sweep. Emails go out concurrently, a few at a
// time; one failed send does not stop the rest.
func (s *Scheduler) Run() {
	ctx := context.Background()
	items, err := s.repo.ListDueWithin(ctx, s.cfg.ReminderDays)
	if err != nil {
		s.log.Errorf("Reminder sweep failed: %v", err)
		return
	}
	if len(items) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(4)
	for _, it := range items {
		it := it
		g.Go(func() error {
			if err := s.sender.SendPaymentReminder(it.Email, it.Name, it.LiabilityType, it.NextDueDate, it.Amount, it.Overdue); err != nil {
				s.log.Errorf("Reminder to %s failed: %v", it.Email, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Infof("Reminder sweep done: %d liabilities due within %d days", len(items), s.cfg.ReminderDays)
}
