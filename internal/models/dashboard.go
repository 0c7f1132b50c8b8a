package models

import (
	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/money"
)

// Dashboard represents the aggregate overview numbers, denominated in the
// user's preferred currency.
type Dashboard struct {
	NetWorth                money.Money             `json:"net_worth"`
	TotalAssets             money.Money             `json:"total_assets"`
	TotalLiabilities        money.Money             `json:"total_liabilities"`
	ActiveLiabilitiesCount  int                     `json:"active_liabilities_count"`
	HighPriorityLiabilities []HighPriorityLiability `json:"high_priority_liabilities"`
}

// HighPriorityLiability is one entry of the dashboard's urgent list.
type HighPriorityLiability struct {
	Liability     ledger.Liability `json:"liability"`
	PriorityScore int              `json:"priority_score"`
}
