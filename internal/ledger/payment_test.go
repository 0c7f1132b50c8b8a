package ledger

import (
	"testing"

	"github.com/finwise/finance-service/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAsset(t *testing.T, cents int64, liquid bool) *Asset {
	t.Helper()
	a, err := NewAsset(1, "Checking Account", "", money.New(cents, "USD"), liquid, due)
	require.NoError(t, err)
	return a
}

func TestInstallmentPayments(t *testing.T) {
	// 3500.00 over 10 monthly installments of 350.00.
	l := newTestLiability(t, 350000, 10)
	a := newTestAsset(t, 500000, true)

	for i := 0; i < 3; i++ {
		paid, err := ApplyPayment(l, a, PaymentRequest{Type: PaymentInstallment})
		require.NoError(t, err)
		assert.Equal(t, int64(35000), paid.Cents)
	}

	assert.Equal(t, int64(245000), l.RemainingAmount.Cents)
	assert.Equal(t, 3, l.InstallmentsPaid)
	assert.Equal(t, int64(395000), a.Value.Cents)
	assert.False(t, l.IsCompleted)
}

func TestInstallmentCappedAtRemaining(t *testing.T) {
	l := newTestLiability(t, 100000, 3)
	a := newTestAsset(t, 100000, true)

	// Pay down to a final stub smaller than one installment.
	_, err := ApplyPayment(l, a, PaymentRequest{Type: PaymentPartial, Amount: money.New(80000, "USD")})
	require.NoError(t, err)
	require.Equal(t, int64(20000), l.RemainingAmount.Cents)

	paid, err := ApplyPayment(l, a, PaymentRequest{Type: PaymentInstallment})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), paid.Cents)
	assert.True(t, l.IsCompleted)
	assert.True(t, l.RemainingAmount.IsZero())
}

func TestFullPaymentCompletes(t *testing.T) {
	l := newTestLiability(t, 350000, 10)
	a := newTestAsset(t, 400000, true)

	paid, err := ApplyPayment(l, a, PaymentRequest{Type: PaymentFull})
	require.NoError(t, err)
	assert.Equal(t, int64(350000), paid.Cents)
	assert.True(t, l.IsCompleted)
	assert.True(t, l.RemainingAmount.IsZero())
	assert.Equal(t, int64(50000), a.Value.Cents)
}

func TestPartialPayment(t *testing.T) {
	l := newTestLiability(t, 350000, 10)
	a := newTestAsset(t, 400000, true)

	// Not a whole-installment multiple: balance drops, counter stays.
	paid, err := ApplyPayment(l, a, PaymentRequest{Type: PaymentPartial, Amount: money.New(12300, "USD")})
	require.NoError(t, err)
	assert.Equal(t, int64(12300), paid.Cents)
	assert.Equal(t, int64(337700), l.RemainingAmount.Cents)
	assert.Equal(t, 0, l.InstallmentsPaid)
}

func TestPartialMultipleAdvancesCounter(t *testing.T) {
	l := newTestLiability(t, 350000, 10)
	a := newTestAsset(t, 400000, true)

	// Exactly two installments worth advances the counter twice.
	_, err := ApplyPayment(l, a, PaymentRequest{Type: PaymentPartial, Amount: money.New(70000, "USD")})
	require.NoError(t, err)
	assert.Equal(t, 2, l.InstallmentsPaid)
	assert.Equal(t, int64(280000), l.RemainingAmount.Cents)
}

func TestInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	l := newTestLiability(t, 350000, 10)
	a := newTestAsset(t, 10000, true)

	_, err := ApplyPayment(l, a, PaymentRequest{Type: PaymentInstallment})
	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Checking Account", insufficient.Asset)
	assert.Equal(t, int64(10000), insufficient.Available.Cents)
	assert.Contains(t, err.Error(), "Checking Account")
	assert.Contains(t, err.Error(), "USD 100.00")

	// Neither side moved.
	assert.Equal(t, int64(350000), l.RemainingAmount.Cents)
	assert.Equal(t, 0, l.InstallmentsPaid)
	assert.Equal(t, int64(10000), a.Value.Cents)
}

func TestPaymentValidation(t *testing.T) {
	tests := []struct {
		name    string
		prep    func(l *Liability, a *Asset)
		req     PaymentRequest
		wantErr error
	}{
		{
			name:    "completed liability",
			prep:    func(l *Liability, _ *Asset) { l.RemainingAmount = money.New(0, "USD"); l.IsCompleted = true },
			req:     PaymentRequest{Type: PaymentInstallment},
			wantErr: ErrLiabilityCompleted,
		},
		{
			name:    "non-liquid asset",
			prep:    func(_ *Liability, a *Asset) { a.IsLiquid = false },
			req:     PaymentRequest{Type: PaymentInstallment},
			wantErr: ErrAssetNotLiquid,
		},
		{
			name:    "explicit amount on installment",
			req:     PaymentRequest{Type: PaymentInstallment, Amount: money.New(100, "USD")},
			wantErr: ErrInvalidPaymentAmount,
		},
		{
			name:    "explicit amount on full",
			req:     PaymentRequest{Type: PaymentFull, Amount: money.New(100, "USD")},
			wantErr: ErrInvalidPaymentAmount,
		},
		{
			name:    "partial without amount",
			req:     PaymentRequest{Type: PaymentPartial},
			wantErr: ErrInvalidPaymentAmount,
		},
		{
			name:    "partial negative amount",
			req:     PaymentRequest{Type: PaymentPartial, Amount: money.New(-100, "USD")},
			wantErr: ErrInvalidPaymentAmount,
		},
		{
			name:    "partial exceeds remaining",
			req:     PaymentRequest{Type: PaymentPartial, Amount: money.New(999999, "USD")},
			wantErr: ErrInvalidPaymentAmount,
		},
		{
			name:    "unknown payment type",
			req:     PaymentRequest{Type: PaymentType("bonus")},
			wantErr: ErrInvalidPaymentAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLiability(t, 350000, 10)
			a := newTestAsset(t, 500000, true)
			if tt.prep != nil {
				tt.prep(l, a)
			}

			before := *l
			beforeAsset := *a
			_, err := ApplyPayment(l, a, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before.RemainingAmount, l.RemainingAmount)
			assert.Equal(t, before.InstallmentsPaid, l.InstallmentsPaid)
			assert.Equal(t, beforeAsset.Value, a.Value)
		})
	}
}

func TestCurrencyMismatchRejected(t *testing.T) {
	l := newTestLiability(t, 350000, 10)
	a, err := NewAsset(1, "Savings Account", "", money.New(500000, "EUR"), true, due)
	require.NoError(t, err)

	_, err = ApplyPayment(l, a, PaymentRequest{Type: PaymentInstallment})
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
	assert.Equal(t, int64(350000), l.RemainingAmount.Cents)
	assert.Equal(t, int64(500000), a.Value.Cents)
}
