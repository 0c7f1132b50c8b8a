// Package ledger implements the liability payment and balance-consistency
// model: installment schedules, asset balances, payment application and the
// payment-priority recommendation.
package ledger

import (
	"fmt"
	"time"

	"github.com/finwise/finance-service/internal/money"
)

// Frequency is the installment cadence of a liability.
type Frequency string

const (
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// Valid reports whether f is a known cadence.
func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// Liability is a debt obligation tracked with an installment schedule.
//
// Invariants maintained by this package:
//   - RemainingAmount is never negative.
//   - IsCompleted holds exactly when RemainingAmount is zero.
//   - 0 <= InstallmentsPaid <= InstallmentsTotal.
type Liability struct {
	ID                int64       `json:"id"`
	UserID            int64       `json:"user_id"`
	Type              string      `json:"liability_type"`
	Description       string      `json:"description"`
	TotalAmount       money.Money `json:"total_amount"`
	InstallmentAmount money.Money `json:"installment_amount"`
	InstallmentsTotal int         `json:"installments_total"`
	InstallmentsPaid  int         `json:"installments_paid"`
	Frequency         Frequency   `json:"frequency"`
	DueDate           time.Time   `json:"due_date"`
	NextDueDate       time.Time   `json:"next_due_date"`
	PriorityScore     int         `json:"priority_score"`
	InterestRate      float64     `json:"interest_rate"`
	RemainingAmount   money.Money `json:"remaining_amount"`
	IsCompleted       bool        `json:"is_completed"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// NewLiability validates the schedule parameters and returns a fresh
// liability with nothing paid. The per-installment amount is the floor of
// total/count; the final installment absorbs the remainder, so the schedule
// always sums to the total exactly.
func NewLiability(userID int64, typ, description string, total money.Money, installmentsTotal int, frequency Frequency, firstDue time.Time, priorityScore int, interestRate float64) (*Liability, error) {
	if installmentsTotal < 1 {
		return nil, fmt.Errorf("%w: installments_total must be at least 1, got %d", ErrInvalidSchedule, installmentsTotal)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total amount must be positive, got %s", ErrInvalidSchedule, total.Format())
	}
	if priorityScore < 1 || priorityScore > 100 {
		return nil, fmt.Errorf("%w: priority score must be in [1,100], got %d", ErrInvalidSchedule, priorityScore)
	}
	if !frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrInvalidSchedule, frequency)
	}
	if interestRate < 0 {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", ErrInvalidSchedule)
	}
	if firstDue.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", ErrInvalidSchedule)
	}

	installment, err := total.ScaleFraction(1, int64(installmentsTotal))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Liability{
		UserID:            userID,
		Type:              typ,
		Description:       description,
		TotalAmount:       total,
		InstallmentAmount: installment,
		InstallmentsTotal: installmentsTotal,
		InstallmentsPaid:  0,
		Frequency:         frequency,
		DueDate:           firstDue,
		NextDueDate:       firstDue,
		PriorityScore:     priorityScore,
		InterestRate:      interestRate,
		RemainingAmount:   total,
		IsCompleted:       false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Schedule returns every installment amount under the rounding policy.
// The slice sums to TotalAmount exactly.
func (l *Liability) Schedule() []money.Money {
	parts, err := l.TotalAmount.Split(l.InstallmentsTotal)
	if err != nil {
		// InstallmentsTotal >= 1 is guaranteed by construction.
		return []money.Money{l.TotalAmount}
	}
	return parts
}

// AmountPaid is how much of the total has been settled so far.
func (l *Liability) AmountPaid() money.Money {
	paid, _ := l.TotalAmount.Sub(l.RemainingAmount)
	return paid
}

// EditParams carries the re-baseline fields for Edit. Nil fields keep the
// current value.
type EditParams struct {
	Type              *string
	Description       *string
	TotalAmount       *money.Money
	InstallmentsTotal *int
	Frequency         *Frequency
	NextDueDate       *time.Time
	PriorityScore     *int
	InterestRate      *float64
}

// Edit re-baselines the schedule against the amount already paid. The new
// total may not drop below what has been paid; the remaining balance and
// per-installment amount are recomputed under the same rounding policy.
// Payment history (installments paid, amount settled) is preserved.
func (l *Liability) Edit(p EditParams) error {
	newTotal := l.TotalAmount
	if p.TotalAmount != nil {
		newTotal = *p.TotalAmount
	}
	newCount := l.InstallmentsTotal
	if p.InstallmentsTotal != nil {
		newCount = *p.InstallmentsTotal
	}

	if newCount < 1 {
		return fmt.Errorf("%w: installments_total must be at least 1, got %d", ErrInvalidSchedule, newCount)
	}
	if !newTotal.IsPositive() {
		return fmt.Errorf("%w: total amount must be positive, got %s", ErrInvalidSchedule, newTotal.Format())
	}
	if newCount < l.InstallmentsPaid {
		return fmt.Errorf("%w: %d installments already paid", ErrScheduleShrinkBelowPaid, l.InstallmentsPaid)
	}
	if p.PriorityScore != nil && (*p.PriorityScore < 1 || *p.PriorityScore > 100) {
		return fmt.Errorf("%w: priority score must be in [1,100], got %d", ErrInvalidSchedule, *p.PriorityScore)
	}
	if p.Frequency != nil && !p.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidSchedule, *p.Frequency)
	}
	if p.InterestRate != nil && *p.InterestRate < 0 {
		return fmt.Errorf("%w: interest rate cannot be negative", ErrInvalidSchedule)
	}

	paid := l.AmountPaid()
	cmp, err := newTotal.Cmp(paid)
	if err != nil {
		return err
	}
	if cmp < 0 {
		return fmt.Errorf("%w: already paid %s, new total %s", ErrScheduleShrinkBelowPaid, paid.Format(), newTotal.Format())
	}

	remaining, err := newTotal.Sub(paid)
	if err != nil {
		return err
	}
	installment, err := newTotal.ScaleFraction(1, int64(newCount))
	if err != nil {
		return err
	}

	if p.Type != nil {
		l.Type = *p.Type
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Frequency != nil {
		l.Frequency = *p.Frequency
	}
	if p.NextDueDate != nil {
		l.NextDueDate = *p.NextDueDate
	}
	if p.PriorityScore != nil {
		l.PriorityScore = *p.PriorityScore
	}
	if p.InterestRate != nil {
		l.InterestRate = *p.InterestRate
	}
	l.TotalAmount = newTotal
	l.InstallmentsTotal = newCount
	l.InstallmentAmount = installment
	l.RemainingAmount = remaining
	l.IsCompleted = remaining.IsZero()
	l.UpdatedAt = time.Now().UTC()
	return nil
}

// advanceDueDate moves the next due date forward by one frequency unit.
// Calendar-aware: a month is a calendar month, not 30 days.
func (l *Liability) advanceDueDate() {
	switch l.Frequency {
	case Weekly:
		l.NextDueDate = l.NextDueDate.AddDate(0, 0, 7)
	case Monthly:
		l.NextDueDate = l.NextDueDate.AddDate(0, 1, 0)
	case Quarterly:
		l.NextDueDate = l.NextDueDate.AddDate(0, 3, 0)
	case Yearly:
		l.NextDueDate = l.NextDueDate.AddDate(1, 0, 0)
	}
}
