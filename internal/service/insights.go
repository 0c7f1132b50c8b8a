package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/models"
	"github.com/finwise/finance-service/internal/money"
)

// insightsTTL bounds how stale a cached dashboard or recommendation response
// can get; mutations invalidate earlier.
const insightsTTL = 5 * time.Minute

// Dashboard aggregates the user's position: net worth, totals and the most
// urgent liabilities. Amounts in other currencies than the user's preference
// are left out of the totals.
func (s *Service) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if raw, ok := s.cache.Get(ctx, dashboardKey(userID)); ok {
		var cached models.Dashboard
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	assets, err := s.repo.ListAssets(ctx, userID)
	if err != nil {
		return nil, err
	}
	liabilities, err := s.repo.ListLiabilities(ctx, userID)
	if err != nil {
		return nil, err
	}

	currency := user.CurrencyPref
	totalAssets := money.New(0, currency)
	for _, a := range assets {
		if a.Value.Currency == currency {
			totalAssets.Cents += a.Value.Cents
		}
	}

	totalLiabilities := money.New(0, currency)
	activeCount := 0
	var urgent []models.HighPriorityLiability
	for _, l := range liabilities {
		if l.IsCompleted {
			continue
		}
		activeCount++
		if l.RemainingAmount.Currency == currency {
			totalLiabilities.Cents += l.RemainingAmount.Cents
		}
		if l.PriorityScore > 75 {
			urgent = append(urgent, models.HighPriorityLiability{Liability: l, PriorityScore: l.PriorityScore})
		}
	}

	sort.Slice(urgent, func(i, j int) bool {
		if urgent[i].PriorityScore != urgent[j].PriorityScore {
			return urgent[i].PriorityScore > urgent[j].PriorityScore
		}
		return urgent[i].Liability.ID < urgent[j].Liability.ID
	})
	if len(urgent) > 5 {
		urgent = urgent[:5]
	}

	dashboard := &models.Dashboard{
		NetWorth:                money.New(totalAssets.Cents-totalLiabilities.Cents, currency),
		TotalAssets:             totalAssets,
		TotalLiabilities:        totalLiabilities,
		ActiveLiabilitiesCount:  activeCount,
		HighPriorityLiabilities: urgent,
	}

	s.cacheInsights(ctx, dashboardKey(userID), dashboard)
	return dashboard, nil
}

// Recommendations builds the payment-priority plan: the configured share of
// monthly income is allocated to the highest-ranked liabilities first.
func (s *Service) Recommendations(ctx context.Context) (*ledger.Plan, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if raw, ok := s.cache.Get(ctx, recommendationsKey(userID)); ok {
		var cached ledger.Plan
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	liabilities, err := s.repo.ListLiabilities(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalIncome := money.New(user.MonthlySalary+user.OtherIncome, user.CurrencyPref)
	budget, err := totalIncome.ScaleFraction(int64(s.config.BudgetPercent), 100)
	if err != nil {
		return nil, err
	}

	plan := ledger.BuildPlan(liabilities, totalIncome, budget)

	s.cacheInsights(ctx, recommendationsKey(userID), &plan)
	return &plan, nil
}

func (s *Service) cacheInsights(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), insightsTTL); err != nil {
		s.log.Warnf("Failed to cache %s: %v", key, err)
	}
}
