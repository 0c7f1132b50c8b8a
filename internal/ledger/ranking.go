package ledger

import (
	"sort"

	"github.com/finwise/finance-service/internal/money"
)

// Recommended actions for a ranked liability.
const (
	ActionPay   = "Pay this month"
	ActionDefer = "Defer or partial payment"
)

// Recommendation is one entry of the payment-priority plan.
type Recommendation struct {
	Liability         Liability   `json:"liability"`
	PriorityScore     int         `json:"priority_score"`
	RecommendedAction string      `json:"recommended_action"`
	Amount            money.Money `json:"amount"`
	Urgency           string      `json:"urgency"`
}

// Plan is the full recommendation output for one user.
type Plan struct {
	TotalIncome     money.Money      `json:"total_income"`
	AvailableBudget money.Money      `json:"available_budget"`
	RemainingBudget money.Money      `json:"remaining_budget"`
	Recommendations []Recommendation `json:"recommendations"`
}

// BuildPlan ranks the active liabilities and greedily allocates the budget.
//
// Order: highest priority score first, ties broken by earliest next due
// date, then by lowest remaining amount (smaller debts clear first), then by
// ID. The ordering is total, so identical input always yields identical
// output. A liability whose due amount fits the remaining budget is marked
// for payment and the budget is reduced; otherwise it is deferred and the
// budget is left alone.
func BuildPlan(liabilities []Liability, totalIncome, availableBudget money.Money) Plan {
	active := make([]Liability, 0, len(liabilities))
	for _, l := range liabilities {
		if !l.IsCompleted {
			active = append(active, l)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if !a.NextDueDate.Equal(b.NextDueDate) {
			return a.NextDueDate.Before(b.NextDueDate)
		}
		if a.RemainingAmount.Cents != b.RemainingAmount.Cents {
			return a.RemainingAmount.Cents < b.RemainingAmount.Cents
		}
		return a.ID < b.ID
	})

	remaining := availableBudget
	recs := make([]Recommendation, 0, len(active))
	for _, l := range active {
		due := dueAmount(l)
		action := ActionDefer
		if due.Currency == remaining.Currency && due.Cents <= remaining.Cents {
			action = ActionPay
			remaining.Cents -= due.Cents
		}
		recs = append(recs, Recommendation{
			Liability:         l,
			PriorityScore:     l.PriorityScore,
			RecommendedAction: action,
			Amount:            due,
			Urgency:           urgency(l.PriorityScore),
		})
	}

	if remaining.IsNegative() {
		remaining.Cents = 0
	}
	return Plan{
		TotalIncome:     totalIncome,
		AvailableBudget: availableBudget,
		RemainingBudget: remaining,
		Recommendations: recs,
	}
}

// dueAmount is the next payment owed: one installment, or the remaining
// balance when that is smaller.
func dueAmount(l Liability) money.Money {
	if l.RemainingAmount.Cents < l.InstallmentAmount.Cents {
		return l.RemainingAmount
	}
	return l.InstallmentAmount
}

func urgency(score int) string {
	switch {
	case score > 90:
		return "High"
	case score > 75:
		return "Medium"
	default:
		return "Low"
	}
}
