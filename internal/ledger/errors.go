package ledger

import (
	"errors"
	"fmt"

	"github.com/finwise/finance-service/internal/money"
)

// Validation failures surfaced verbatim to the caller. None of these are
// retryable; they describe an invalid request, not a transient fault.
var (
	ErrInvalidSchedule          = errors.New("invalid schedule")
	ErrScheduleShrinkBelowPaid  = errors.New("new total amount is below the amount already paid")
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrLiabilityCompleted       = errors.New("liability is already completed")
	ErrInvalidPaymentAmount     = errors.New("invalid payment amount")
	ErrAssetNotLiquid           = errors.New("asset is not liquid")
	ErrNotFound                 = errors.New("not found")
)

// InsufficientFundsError reports a debit that exceeds the asset balance.
// The message carries the asset label and available balance so the UI can
// display it directly.
type InsufficientFundsError struct {
	Asset     string
	Available money.Money
	Requested money.Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %s: available %s, requested %s",
		e.Asset, e.Available.Format(), e.Requested.Format())
}

// TransientError wraps persistence or network failures that the caller may
// retry. Domain validation errors are never wrapped in it.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }
