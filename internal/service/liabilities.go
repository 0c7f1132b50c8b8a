package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finwise/finance-service/internal/events"
	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/money"
)

var defaultLiabilityTypes = []string{
	"Credit Card",
	"Student Loan",
	"Car Payment",
	"Mortgage",
	"Personal Loan",
	"Education",
	"Rent",
	"Other",
}

// LiabilityParams carries the fields of a create request. TotalAmount is a
// decimal string; an empty currency falls back to the user's preference.
type LiabilityParams struct {
	Type              string
	Description       string
	TotalAmount       string
	Currency          string
	InstallmentsTotal int
	Frequency         string
	DueDate           time.Time
	PriorityScore     int
	InterestRate      float64
}

// CreateLiability records a new liability with a fresh installment schedule
func (s *Service) CreateLiability(ctx context.Context, p LiabilityParams) (*ledger.Liability, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if p.Type == "" {
		return nil, fmt.Errorf("liability_type is required")
	}

	currency, err := s.resolveCurrency(ctx, userID, p.Currency)
	if err != nil {
		return nil, err
	}
	total, err := money.Parse(p.TotalAmount, currency)
	if err != nil {
		return nil, err
	}

	liability, err := ledger.NewLiability(userID, p.Type, p.Description, total,
		p.InstallmentsTotal, ledger.Frequency(p.Frequency), p.DueDate, p.PriorityScore, p.InterestRate)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateLiability(ctx, liability); err != nil {
		return nil, err
	}

	s.invalidateInsights(ctx, userID)
	s.log.Infof("Liability created for user %d: %s %s over %d installments",
		userID, liability.Type, liability.TotalAmount.Format(), liability.InstallmentsTotal)
	return liability, nil
}

// LiabilityEditParams carries the editable liability fields as they arrive
// from the API. Nil fields keep the current value.
type LiabilityEditParams struct {
	Type              *string
	Description       *string
	TotalAmount       *string
	InstallmentsTotal *int
	Frequency         *string
	NextDueDate       *time.Time
	PriorityScore     *int
	InterestRate      *float64
}

// UpdateLiability re-baselines an existing liability against what has been
// paid already
func (s *Service) UpdateLiability(ctx context.Context, id int64, p LiabilityEditParams) (*ledger.Liability, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	liability, err := s.repo.LiabilityByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	edit := ledger.EditParams{
		Type:              p.Type,
		Description:       p.Description,
		InstallmentsTotal: p.InstallmentsTotal,
		NextDueDate:       p.NextDueDate,
		PriorityScore:     p.PriorityScore,
		InterestRate:      p.InterestRate,
	}
	if p.TotalAmount != nil {
		total, err := money.Parse(*p.TotalAmount, liability.TotalAmount.Currency)
		if err != nil {
			return nil, err
		}
		edit.TotalAmount = &total
	}
	if p.Frequency != nil {
		f := ledger.Frequency(*p.Frequency)
		edit.Frequency = &f
	}

	if err := liability.Edit(edit); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLiability(ctx, liability); err != nil {
		return nil, err
	}

	s.invalidateInsights(ctx, userID)
	s.log.Infof("Liability %d updated for user %d", id, userID)
	return liability, nil
}

// LiabilityByID returns one liability owned by the authenticated user
func (s *Service) LiabilityByID(ctx context.Context, id int64) (*ledger.Liability, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.LiabilityByID(ctx, userID, id)
}

// ListLiabilities returns the authenticated user's liabilities
func (s *Service) ListLiabilities(ctx context.Context) ([]ledger.Liability, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLiabilities(ctx, userID)
}

// LiabilityTypes returns the default type labels merged with the labels the
// user has already recorded.
func (s *Service) LiabilityTypes(ctx context.Context) ([]string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	used, err := s.repo.LiabilityTypes(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mergeTypes(defaultLiabilityTypes, used), nil
}

// PaymentParams carries one payment request. Account selects the funding
// asset by its type label. Amount is required for partial payments only.
type PaymentParams struct {
	Account string
	Type    string
	Amount  string
}

// Pay applies one payment to a liability from the selected asset. On commit
// the payment event is published and cached insights are invalidated.
func (s *Service) Pay(ctx context.Context, liabilityID int64, p PaymentParams) (*ledger.PaymentResult, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if p.Account == "" {
		return nil, fmt.Errorf("payment_account is required")
	}

	req := ledger.PaymentRequest{Type: ledger.PaymentType(p.Type)}
	if p.Amount != "" {
		// Amounts share the liability's currency.
		liability, err := s.repo.LiabilityByID(ctx, userID, liabilityID)
		if err != nil {
			return nil, err
		}
		amount, err := money.Parse(p.Amount, liability.TotalAmount.Currency)
		if err != nil {
			return nil, err
		}
		req.Amount = amount
	}

	result, err := s.engine.Pay(ctx, userID, liabilityID, p.Account, req)
	if err != nil {
		return nil, err
	}

	ev := events.PaymentEvent{
		UserID:        userID,
		LiabilityID:   result.Liability.ID,
		LiabilityType: result.Liability.Type,
		AmountCents:   result.Paid.Cents,
		Currency:      result.Paid.Currency,
		Completed:     result.Liability.IsCompleted,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.events.PublishPayment(ctx, ev); err != nil {
		// The payment is committed; a lost event must not fail the request.
		s.log.Errorf("Failed to publish payment event for liability %d: %v", liabilityID, err)
	}

	s.invalidateInsights(ctx, userID)

	if result.Liability.IsCompleted && s.email != nil && s.email.Enabled() {
		go s.sendCompletionEmail(userID, result.Liability)
	}

	return result, nil
}

func (s *Service) sendCompletionEmail(userID int64, l *ledger.Liability) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		s.log.Errorf("Completion email lookup failed for user %d: %v", userID, err)
		return
	}
	if err := s.email.SendCompletionNotification(user.Email, user.Name, l.Type, l.TotalAmount); err != nil {
		s.log.Errorf("Completion email to %s failed: %v", user.Email, err)
	}
}
