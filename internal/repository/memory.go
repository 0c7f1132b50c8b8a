package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/models"
)

// Memory is an in-memory implementation of the repository surface, used by
// tests and local development without a database.
type Memory struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	assets     map[int64]*ledger.Asset
	tentative  map[int64]*ledger.TentativeAsset
	liabs      map[int64]*ledger.Liability
	sessions   map[string]*models.ChatSession
	messages   map[string][]models.ChatMessage
	nextUser   int64
	nextAsset  int64
	nextTent   int64
	nextLiab   int64
	nextMsg    int64

	// FailSavePayment simulates a persistence fault for atomicity tests.
	FailSavePayment bool
}

// NewMemory initializes an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		users:     make(map[int64]*models.User),
		assets:    make(map[int64]*ledger.Asset),
		tentative: make(map[int64]*ledger.TentativeAsset),
		liabs:     make(map[int64]*ledger.Liability),
		sessions:  make(map[string]*models.ChatSession),
		messages:  make(map[string][]models.ChatMessage),
	}
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("user already exists")
		}
	}
	m.nextUser++
	user.ID = m.nextUser
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *Memory) UserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", ledger.ErrNotFound)
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", ledger.ErrNotFound)
}

func (m *Memory) UserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", ledger.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) UpdateProfile(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[user.ID]
	if !ok {
		return fmt.Errorf("user: %w", ledger.ErrNotFound)
	}
	u.Name = user.Name
	u.CurrencyPref = user.CurrencyPref
	u.MonthlySalary = user.MonthlySalary
	u.OtherIncome = user.OtherIncome
	u.UpdatedAt = time.Now().UTC()
	user.UpdatedAt = u.UpdatedAt
	return nil
}

func (m *Memory) UpdatePassword(_ context.Context, userID int64, passwordHash, secretKeyHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", ledger.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	u.SecretKeyHash = secretKeyHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) CreateAsset(_ context.Context, a *ledger.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAsset++
	a.ID = m.nextAsset
	cp := *a
	m.assets[a.ID] = &cp
	return nil
}

func (m *Memory) UpdateAsset(_ context.Context, a *ledger.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.assets[a.ID]
	if !ok || cur.UserID != a.UserID {
		return fmt.Errorf("asset %d: %w", a.ID, ledger.ErrNotFound)
	}
	cp := *a
	m.assets[a.ID] = &cp
	return nil
}

func (m *Memory) AssetByID(_ context.Context, userID, id int64) (*ledger.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok || a.UserID != userID {
		return nil, fmt.Errorf("asset %d: %w", id, ledger.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) AssetByType(_ context.Context, userID int64, assetType string) (*ledger.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *ledger.Asset
	for _, a := range m.assets {
		if a.UserID == userID && a.Type == assetType {
			if found == nil || a.ID < found.ID {
				found = a
			}
		}
	}
	if found == nil {
		return nil, fmt.Errorf("asset %q: %w", assetType, ledger.ErrNotFound)
	}
	cp := *found
	return &cp, nil
}

func (m *Memory) ListAssets(_ context.Context, userID int64) ([]ledger.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.Asset
	for id := int64(1); id <= m.nextAsset; id++ {
		if a, ok := m.assets[id]; ok && a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *Memory) AssetTypes(ctx context.Context, userID int64) ([]string, error) {
	assets, _ := m.ListAssets(ctx, userID)
	seen := make(map[string]bool)
	var out []string
	for _, a := range assets {
		if !seen[a.Type] {
			seen[a.Type] = true
			out = append(out, a.Type)
		}
	}
	return out, nil
}

func (m *Memory) CreateTentativeAsset(_ context.Context, t *ledger.TentativeAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTent++
	t.ID = m.nextTent
	cp := *t
	m.tentative[t.ID] = &cp
	return nil
}

func (m *Memory) ListTentativeAssets(_ context.Context, userID int64) ([]ledger.TentativeAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.TentativeAsset
	for id := int64(1); id <= m.nextTent; id++ {
		if t, ok := m.tentative[id]; ok && t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *Memory) CreateLiability(_ context.Context, l *ledger.Liability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLiab++
	l.ID = m.nextLiab
	cp := *l
	m.liabs[l.ID] = &cp
	return nil
}

func (m *Memory) UpdateLiability(_ context.Context, l *ledger.Liability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.liabs[l.ID]
	if !ok || cur.UserID != l.UserID {
		return fmt.Errorf("liability %d: %w", l.ID, ledger.ErrNotFound)
	}
	cp := *l
	m.liabs[l.ID] = &cp
	return nil
}

func (m *Memory) LiabilityByID(_ context.Context, userID, id int64) (*ledger.Liability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.liabs[id]
	if !ok || l.UserID != userID {
		return nil, fmt.Errorf("liability %d: %w", id, ledger.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (m *Memory) ListLiabilities(_ context.Context, userID int64) ([]ledger.Liability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.Liability
	for id := int64(1); id <= m.nextLiab; id++ {
		if l, ok := m.liabs[id]; ok && l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *Memory) LiabilityTypes(ctx context.Context, userID int64) ([]string, error) {
	liabs, _ := m.ListLiabilities(ctx, userID)
	seen := make(map[string]bool)
	var out []string
	for _, l := range liabs {
		if !seen[l.Type] {
			seen[l.Type] = true
			out = append(out, l.Type)
		}
	}
	return out, nil
}

func (m *Memory) SavePayment(_ context.Context, l *ledger.Liability, a *ledger.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSavePayment {
		return fmt.Errorf("simulated persistence failure")
	}
	if _, ok := m.liabs[l.ID]; !ok {
		return fmt.Errorf("liability %d: %w", l.ID, ledger.ErrNotFound)
	}
	if _, ok := m.assets[a.ID]; !ok {
		return fmt.Errorf("asset %d: %w", a.ID, ledger.ErrNotFound)
	}
	lcp := *l
	acp := *a
	m.liabs[l.ID] = &lcp
	m.assets[a.ID] = &acp
	return nil
}

func (m *Memory) CreateSession(_ context.Context, s *models.ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.CreatedAt = time.Now().UTC()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *Memory) SessionByID(_ context.Context, userID int64, id string) (*models.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, fmt.Errorf("chat session %s: %w", id, ledger.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) AppendMessage(_ context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMsg++
	msg.ID = m.nextMsg
	msg.CreatedAt = time.Now().UTC()
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], *msg)
	return nil
}

func (m *Memory) ListMessages(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChatMessage, len(m.messages[sessionID]))
	copy(out, m.messages[sessionID])
	return out, nil
}

func (m *Memory) ListDueWithin(_ context.Context, days int) ([]ReminderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().UTC().AddDate(0, 0, days)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	var out []ReminderItem
	for id := int64(1); id <= m.nextLiab; id++ {
		l, ok := m.liabs[id]
		if !ok || l.IsCompleted || l.NextDueDate.After(cutoff) {
			continue
		}
		u, ok := m.users[l.UserID]
		if !ok {
			continue
		}
		amount := l.InstallmentAmount
		if l.RemainingAmount.Cents < amount.Cents {
			amount = l.RemainingAmount
		}
		out = append(out, ReminderItem{
			Email:         u.Email,
			Name:          u.Name,
			LiabilityType: l.Type,
			NextDueDate:   l.NextDueDate,
			Amount:        amount,
			Overdue:       l.NextDueDate.Before(today),
		})
	}
	return out, nil
}
