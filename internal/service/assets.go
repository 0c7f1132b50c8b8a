package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/money"
)

// defaultAssetTypes seed the type dropdown before the user has recorded
// anything.
var defaultAssetTypes = []string{
	"Cash",
	"Checking Account",
	"Savings Account",
	"Investment",
	"Real Estate",
	"Vehicle",
	"Other",
}

// AssetParams carries the fields of a create or edit request. Value is a
// decimal string; an empty currency falls back to the user's preference.
type AssetParams struct {
	Type         string
	Description  string
	Value        string
	Currency     string
	IsLiquid     bool
	DateReceived time.Time
}

// resolveCurrency returns the explicit currency or the user's preference.
func (s *Service) resolveCurrency(ctx context.Context, userID int64, currency string) (string, error) {
	if currency != "" {
		return currency, nil
	}
	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.CurrencyPref, nil
}

// CreateAsset records a new asset for the authenticated user
func (s *Service) CreateAsset(ctx context.Context, p AssetParams) (*ledger.Asset, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if p.Type == "" {
		return nil, fmt.Errorf("asset_type is required")
	}

	currency, err := s.resolveCurrency(ctx, userID, p.Currency)
	if err != nil {
		return nil, err
	}
	value, err := money.Parse(p.Value, currency)
	if err != nil {
		return nil, err
	}
	if p.DateReceived.IsZero() {
		p.DateReceived = time.Now().UTC()
	}

	asset, err := ledger.NewAsset(userID, p.Type, p.Description, value, p.IsLiquid, p.DateReceived)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}

	s.invalidateInsights(ctx, userID)
	s.log.Infof("Asset created for user %d: %s %s", userID, asset.Type, asset.Value.Format())
	return asset, nil
}

// AssetEditParams carries the editable asset fields. Nil fields keep the
// current value.
type AssetEditParams struct {
	Type         *string
	Description  *string
	Value        *string
	Currency     *string
	IsLiquid     *bool
	DateReceived *time.Time
}

// UpdateAsset edits an existing asset owned by the authenticated user
func (s *Service) UpdateAsset(ctx context.Context, id int64, p AssetEditParams) (*ledger.Asset, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	asset, err := s.repo.AssetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if p.Type != nil {
		asset.Type = *p.Type
	}
	if p.Description != nil {
		asset.Description = *p.Description
	}
	if p.IsLiquid != nil {
		asset.IsLiquid = *p.IsLiquid
	}
	if p.DateReceived != nil {
		asset.DateReceived = *p.DateReceived
	}
	if p.Value != nil {
		currency := asset.Value.Currency
		if p.Currency != nil && *p.Currency != "" {
			currency = *p.Currency
		}
		value, err := money.Parse(*p.Value, currency)
		if err != nil {
			return nil, err
		}
		if err := asset.SetValue(value); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}

	s.invalidateInsights(ctx, userID)
	s.log.Infof("Asset %d updated for user %d", id, userID)
	return asset, nil
}

// ListAssets returns the authenticated user's assets
func (s *Service) ListAssets(ctx context.Context) ([]ledger.Asset, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAssets(ctx, userID)
}

// AssetTypes returns the default type labels merged with the labels the user
// has already recorded.
func (s *Service) AssetTypes(ctx context.Context) ([]string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	used, err := s.repo.AssetTypes(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mergeTypes(defaultAssetTypes, used), nil
}

// mergeTypes unions defaults with recorded labels, defaults first, extras
// sorted after.
func mergeTypes(defaults, used []string) []string {
	seen := make(map[string]bool, len(defaults))
	out := make([]string, 0, len(defaults)+len(used))
	for _, t := range defaults {
		seen[t] = true
		out = append(out, t)
	}
	var extra []string
	for _, t := range used {
		if !seen[t] {
			seen[t] = true
			extra = append(extra, t)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// CreateTentativeAsset records an expected future holding
func (s *Service) CreateTentativeAsset(ctx context.Context, p AssetParams, expectedDate time.Time) (*ledger.TentativeAsset, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if p.Type == "" {
		return nil, fmt.Errorf("asset_type is required")
	}

	currency, err := s.resolveCurrency(ctx, userID, p.Currency)
	if err != nil {
		return nil, err
	}
	amount, err := money.Parse(p.Value, currency)
	if err != nil {
		return nil, err
	}

	tentative, err := ledger.NewTentativeAsset(userID, p.Type, p.Description, amount, expectedDate)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateTentativeAsset(ctx, tentative); err != nil {
		return nil, err
	}

	s.log.Infof("Tentative asset created for user %d: %s %s", userID, tentative.Type, tentative.Amount.Format())
	return tentative, nil
}

// ListTentativeAssets returns the authenticated user's expected holdings
func (s *Service) ListTentativeAssets(ctx context.Context) ([]ledger.TentativeAsset, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTentativeAssets(ctx, userID)
}
