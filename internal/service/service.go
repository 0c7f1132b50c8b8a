// Package service implements the business logic between the HTTP handlers
// and the repository.
package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/finwise/finance-service/internal/cache"
	"github.com/finwise/finance-service/internal/config"
	"github.com/finwise/finance-service/internal/events"
	"github.com/finwise/finance-service/internal/integrations/assistant"
	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/models"
	"github.com/finwise/finance-service/internal/utils/email"
	"github.com/sirupsen/logrus"
)

// Store is the persistence surface the service depends on. Both the
// Postgres repository and the in-memory repository satisfy it.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash, secretKeyHash string) error

	CreateAsset(ctx context.Context, a *ledger.Asset) error
	UpdateAsset(ctx context.Context, a *ledger.Asset) error
	AssetByID(ctx context.Context, userID, id int64) (*ledger.Asset, error)
	AssetByType(ctx context.Context, userID int64, assetType string) (*ledger.Asset, error)
	ListAssets(ctx context.Context, userID int64) ([]ledger.Asset, error)
	AssetTypes(ctx context.Context, userID int64) ([]string, error)
	CreateTentativeAsset(ctx context.Context, t *ledger.TentativeAsset) error
	ListTentativeAssets(ctx context.Context, userID int64) ([]ledger.TentativeAsset, error)

	CreateLiability(ctx context.Context, l *ledger.Liability) error
	UpdateLiability(ctx context.Context, l *ledger.Liability) error
	LiabilityByID(ctx context.Context, userID, id int64) (*ledger.Liability, error)
	ListLiabilities(ctx context.Context, userID int64) ([]ledger.Liability, error)
	LiabilityTypes(ctx context.Context, userID int64) ([]string, error)

	CreateSession(ctx context.Context, s *models.ChatSession) error
	SessionByID(ctx context.Context, userID int64, id string) (*models.ChatSession, error)
	AppendMessage(ctx context.Context, m *models.ChatMessage) error
	ListMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
}

// Service handles business logic
type Service struct {
	repo      Store
	engine    *ledger.Engine
	cache     cache.Cache
	events    events.Publisher
	assistant assistant.Assistant
	email     *email.Sender
	log       *logrus.Logger
	config    *config.Config
}

// NewService initializes a new service
func NewService(repo Store, engine *ledger.Engine, c cache.Cache, pub events.Publisher, asst assistant.Assistant, sender *email.Sender, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		cache:     c,
		events:    pub,
		assistant: asst,
		email:     sender,
		log:       log,
		config:    cfg,
	}
}

// userIDFromContext extracts the authenticated user ID stored by the auth
// middleware.
func userIDFromContext(ctx context.Context) (int64, error) {
	userIDStr, ok := ctx.Value("userID").(string)
	if !ok || userIDStr == "" {
		return 0, fmt.Errorf("user ID not found in context")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %w", err)
	}
	return userID, nil
}

// invalidateInsights drops the cached dashboard and recommendations after a
// mutation.
func (s *Service) invalidateInsights(ctx context.Context, userID int64) {
	for _, key := range []string{dashboardKey(userID), recommendationsKey(userID)} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warnf("Failed to invalidate cache key %s: %v", key, err)
		}
	}
}

func dashboardKey(userID int64) string {
	return fmt.Sprintf("dashboard:%d", userID)
}

func recommendationsKey(userID int64) string {
	return fmt.Sprintf("recommendations:%d", userID)
}
