package ledger

import (
	"context"
	"sync"

	"github.com/finwise/finance-service/internal/money"
	"github.com/sirupsen/logrus"
)

// Store is the persistence seam of the engine. SavePayment is the atomicity
// boundary: both snapshots commit together or not at all.
type Store interface {
	LiabilityByID(ctx context.Context, userID, id int64) (*Liability, error)
	AssetByType(ctx context.Context, userID int64, assetType string) (*Asset, error)
	SavePayment(ctx context.Context, l *Liability, a *Asset) error
}

// Engine serializes payment transactions per liability so concurrent
// requests cannot double-spend a balance.
type Engine struct {
	store Store
	log   *logrus.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewEngine initializes a new ledger engine.
func NewEngine(store Store, log *logrus.Logger) *Engine {
	return &Engine{
		store: store,
		log:   log,
		locks: make(map[int64]*sync.Mutex),
	}
}

func (e *Engine) lockFor(liabilityID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[liabilityID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[liabilityID] = l
	}
	return l
}

// PaymentResult is the committed outcome of a payment transaction.
type PaymentResult struct {
	Liability *Liability  `json:"liability"`
	Asset     *Asset      `json:"asset"`
	Paid      money.Money `json:"paid"`
}

// Pay runs one payment transaction: load both entities, apply the payment on
// private copies, then commit. A failure at any step leaves the stored state
// unchanged.
func (e *Engine) Pay(ctx context.Context, userID, liabilityID int64, account string, req PaymentRequest) (*PaymentResult, error) {
	lock := e.lockFor(liabilityID)
	lock.Lock()
	defer lock.Unlock()

	liability, err := e.store.LiabilityByID(ctx, userID, liabilityID)
	if err != nil {
		return nil, err
	}
	asset, err := e.store.AssetByType(ctx, userID, account)
	if err != nil {
		return nil, err
	}

	// Work on copies so a commit failure cannot leak half-applied state.
	l := *liability
	a := *asset
	paid, err := ApplyPayment(&l, &a, req)
	if err != nil {
		return nil, err
	}

	if err := e.store.SavePayment(ctx, &l, &a); err != nil {
		return nil, &TransientError{Err: err}
	}

	e.log.WithFields(logrus.Fields{
		"user_id":      userID,
		"liability_id": liabilityID,
		"account":      account,
		"paid":         paid.Format(),
		"remaining":    l.RemainingAmount.Format(),
		"completed":    l.IsCompleted,
	}).Info("payment applied")

	return &PaymentResult{Liability: &l, Asset: &a, Paid: paid}, nil
}
