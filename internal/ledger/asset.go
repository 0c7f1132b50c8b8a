package ledger

import (
	"fmt"
	"time"

	"github.com/finwise/finance-service/internal/money"
)

// Asset is a holding that can fund liability payments when liquid.
// Its value never drops below zero.
type Asset struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"user_id"`
	Type         string      `json:"asset_type"`
	Description  string      `json:"description"`
	Value        money.Money `json:"asset_value"`
	IsLiquid     bool        `json:"is_liquid"`
	DateReceived time.Time   `json:"date_received"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewAsset validates and returns a fresh asset.
func NewAsset(userID int64, typ, description string, value money.Money, isLiquid bool, dateReceived time.Time) (*Asset, error) {
	if value.IsNegative() {
		return nil, fmt.Errorf("%w: asset value cannot be negative, got %s", ErrInvalidAmount, value.Format())
	}
	now := time.Now().UTC()
	return &Asset{
		UserID:       userID,
		Type:         typ,
		Description:  description,
		Value:        value,
		IsLiquid:     isLiquid,
		DateReceived: dateReceived,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Debit reduces the asset value by amount. The stored value is the sole
// source of truth; no history is kept here.
func (a *Asset) Debit(amount money.Money) (money.Money, error) {
	if !amount.IsPositive() {
		return a.Value, fmt.Errorf("%w: debit must be positive, got %s", ErrInvalidAmount, amount.Format())
	}
	cmp, err := amount.Cmp(a.Value)
	if err != nil {
		return a.Value, err
	}
	if cmp > 0 {
		return a.Value, &InsufficientFundsError{Asset: a.Type, Available: a.Value, Requested: amount}
	}
	v, err := a.Value.Sub(amount)
	if err != nil {
		return a.Value, err
	}
	a.Value = v
	a.UpdatedAt = time.Now().UTC()
	return a.Value, nil
}

// SetValue replaces the asset value during an edit.
func (a *Asset) SetValue(value money.Money) error {
	if value.IsNegative() {
		return fmt.Errorf("%w: asset value cannot be negative, got %s", ErrInvalidAmount, value.Format())
	}
	a.Value = value
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// TentativeAsset is a forecast holding. It shares the asset shape but has an
// expected date instead of a received date and never funds payments.
type TentativeAsset struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"user_id"`
	Type         string      `json:"asset_type"`
	Description  string      `json:"description"`
	Amount       money.Money `json:"asset_amount"`
	ExpectedDate time.Time   `json:"expected_date"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewTentativeAsset validates and returns a forecast entry.
func NewTentativeAsset(userID int64, typ, description string, amount money.Money, expectedDate time.Time) (*TentativeAsset, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: expected amount cannot be negative, got %s", ErrInvalidAmount, amount.Format())
	}
	if expectedDate.IsZero() {
		return nil, fmt.Errorf("%w: expected date is required", ErrInvalidAmount)
	}
	return &TentativeAsset{
		UserID:       userID,
		Type:         typ,
		Description:  description,
		Amount:       amount,
		ExpectedDate: expectedDate,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
