package ledger

import (
	"fmt"

	"github.com/finwise/finance-service/internal/money"
)

// PaymentType selects how the payment amount is computed.
type PaymentType string

const (
	// PaymentInstallment pays one installment, capped at the remaining balance.
	PaymentInstallment PaymentType = "installment"
	// PaymentFull settles the whole remaining balance.
	PaymentFull PaymentType = "full"
	// PaymentPartial pays an explicit caller-supplied amount.
	PaymentPartial PaymentType = "partial"
)

// PaymentRequest describes a payment against a liability funded by an asset.
// Amount is required for partial payments and must be absent otherwise.
type PaymentRequest struct {
	Type   PaymentType
	Amount money.Money
}

// ApplyPayment atomically applies a payment: it debits the asset, reduces
// the liability balance, advances the installment counter when the amount is
// an exact whole-installment multiple, and completes the liability when the
// balance reaches zero.
//
// All validation happens before the first mutation, so on error both
// entities are left untouched. Returns the amount that was paid.
func ApplyPayment(l *Liability, a *Asset, req PaymentRequest) (money.Money, error) {
	if l.IsCompleted {
		return money.Money{}, fmt.Errorf("%w: %s", ErrLiabilityCompleted, l.Type)
	}
	if !a.IsLiquid {
		return money.Money{}, fmt.Errorf("%w: %s", ErrAssetNotLiquid, a.Type)
	}

	var amount money.Money
	switch req.Type {
	case PaymentInstallment:
		if !req.Amount.IsZero() {
			return money.Money{}, fmt.Errorf("%w: explicit amount is only valid for partial payments", ErrInvalidPaymentAmount)
		}
		cmp, err := l.InstallmentAmount.Cmp(l.RemainingAmount)
		if err != nil {
			return money.Money{}, err
		}
		if cmp > 0 {
			amount = l.RemainingAmount
		} else {
			amount = l.InstallmentAmount
		}
	case PaymentFull:
		if !req.Amount.IsZero() {
			return money.Money{}, fmt.Errorf("%w: explicit amount is only valid for partial payments", ErrInvalidPaymentAmount)
		}
		amount = l.RemainingAmount
	case PaymentPartial:
		amount = req.Amount
	default:
		return money.Money{}, fmt.Errorf("%w: unknown payment type %q", ErrInvalidPaymentAmount, req.Type)
	}

	if !amount.IsPositive() {
		return money.Money{}, fmt.Errorf("%w: payment must be positive, got %s", ErrInvalidPaymentAmount, amount.Format())
	}
	cmp, err := amount.Cmp(l.RemainingAmount)
	if err != nil {
		return money.Money{}, err
	}
	if cmp > 0 {
		return money.Money{}, fmt.Errorf("%w: %s exceeds remaining balance %s",
			ErrInvalidPaymentAmount, amount.Format(), l.RemainingAmount.Format())
	}
	cmp, err = amount.Cmp(a.Value)
	if err != nil {
		return money.Money{}, err
	}
	if cmp > 0 {
		return money.Money{}, &InsufficientFundsError{Asset: a.Type, Available: a.Value, Requested: amount}
	}

	// Validation done; mutations from here on cannot fail.
	if _, err := a.Debit(amount); err != nil {
		return money.Money{}, err
	}
	remaining, err := l.RemainingAmount.Sub(amount)
	if err != nil {
		return money.Money{}, err
	}
	l.RemainingAmount = remaining

	// A payment equal to one or more whole installments advances the
	// counter and the due date once per installment covered. Anything else
	// reduces the balance only.
	if l.InstallmentAmount.IsPositive() && amount.Cents%l.InstallmentAmount.Cents == 0 {
		steps := int(amount.Cents / l.InstallmentAmount.Cents)
		for i := 0; i < steps && l.InstallmentsPaid < l.InstallmentsTotal; i++ {
			l.InstallmentsPaid++
			l.advanceDueDate()
		}
	}

	if l.RemainingAmount.IsZero() {
		l.IsCompleted = true
	}
	l.UpdatedAt = a.UpdatedAt
	return amount, nil
}
