package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/money"
	"github.com/finwise/finance-service/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func seedEngine(t *testing.T, assetCents int64) (*ledger.Engine, *repository.Memory, *ledger.Liability) {
	t.Helper()
	repo := repository.NewMemory()
	ctx := context.Background()

	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	l, err := ledger.NewLiability(1, "Car Payment", "", money.New(100000, "USD"), 10, ledger.Monthly, due, 80, 0)
	require.NoError(t, err)
	require.NoError(t, repo.CreateLiability(ctx, l))

	a, err := ledger.NewAsset(1, "Checking Account", "", money.New(assetCents, "USD"), true, due)
	require.NoError(t, err)
	require.NoError(t, repo.CreateAsset(ctx, a))

	return ledger.NewEngine(repo, testLogger()), repo, l
}

func TestEnginePay(t *testing.T) {
	engine, repo, l := seedEngine(t, 100000)
	ctx := context.Background()

	result, err := engine.Pay(ctx, 1, l.ID, "Checking Account", ledger.PaymentRequest{Type: ledger.PaymentInstallment})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), result.Paid.Cents)
	assert.Equal(t, int64(90000), result.Liability.RemainingAmount.Cents)

	// The committed state matches the result.
	stored, err := repo.LiabilityByID(ctx, 1, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), stored.RemainingAmount.Cents)
	assert.Equal(t, 1, stored.InstallmentsPaid)
}

func TestEngineConcurrentPaymentsSerialize(t *testing.T) {
	engine, repo, l := seedEngine(t, 100000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Pay(ctx, 1, l.ID, "Checking Account", ledger.PaymentRequest{Type: ledger.PaymentInstallment})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.LiabilityByID(ctx, 1, l.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	assert.True(t, stored.RemainingAmount.IsZero())
	assert.Equal(t, 10, stored.InstallmentsPaid)

	asset, err := repo.AssetByType(ctx, 1, "Checking Account")
	require.NoError(t, err)
	assert.True(t, asset.Value.IsZero())
}

func TestEngineNoDoubleSpend(t *testing.T) {
	// Asset covers five installments; ten concurrent payment attempts must
	// not overdraw it.
	engine, repo, l := seedEngine(t, 50000)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, failed := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Pay(ctx, 1, l.ID, "Checking Account", ledger.PaymentRequest{Type: ledger.PaymentInstallment})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				var insufficient *ledger.InsufficientFundsError
				assert.ErrorAs(t, err, &insufficient)
				failed++
			} else {
				succeeded++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, failed)

	asset, err := repo.AssetByType(ctx, 1, "Checking Account")
	require.NoError(t, err)
	assert.True(t, asset.Value.IsZero())

	stored, err := repo.LiabilityByID(ctx, 1, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), stored.RemainingAmount.Cents)
}

func TestEngineCommitFailureLeavesStateUnchanged(t *testing.T) {
	engine, repo, l := seedEngine(t, 100000)
	ctx := context.Background()
	repo.FailSavePayment = true

	_, err := engine.Pay(ctx, 1, l.ID, "Checking Account", ledger.PaymentRequest{Type: ledger.PaymentInstallment})
	var transient *ledger.TransientError
	require.ErrorAs(t, err, &transient)

	stored, err := repo.LiabilityByID(ctx, 1, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), stored.RemainingAmount.Cents)
	assert.Equal(t, 0, stored.InstallmentsPaid)

	asset, err := repo.AssetByType(ctx, 1, "Checking Account")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), asset.Value.Cents)

	// Clears up once the store recovers.
	repo.FailSavePayment = false
	_, err = engine.Pay(ctx, 1, l.ID, "Checking Account", ledger.PaymentRequest{Type: ledger.PaymentInstallment})
	assert.NoError(t, err)
}

func TestEngineUnknownEntities(t *testing.T) {
	engine, _, l := seedEngine(t, 100000)
	ctx := context.Background()

	_, err := engine.Pay(ctx, 1, 999, "Checking Account", ledger.PaymentRequest{Type: ledger.PaymentInstallment})
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = engine.Pay(ctx, 1, l.ID, "Brokerage", ledger.PaymentRequest{Type: ledger.PaymentInstallment})
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	// Wrong owner cannot see the liability at all.
	_, err = engine.Pay(ctx, 2, l.ID, "Checking Account", ledger.PaymentRequest{Type: ledger.PaymentInstallment})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
