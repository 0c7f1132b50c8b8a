package ledger

import (
	"testing"
	"time"

	"github.com/finwise/finance-service/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedLiability(t *testing.T, id int64, totalCents int64, installments, priority int, nextDue time.Time) Liability {
	t.Helper()
	l, err := NewLiability(1, "Credit Card", "", money.New(totalCents, "USD"), installments, Monthly, nextDue, priority, 0)
	require.NoError(t, err)
	l.ID = id
	return *l
}

func TestBuildPlanOrdering(t *testing.T) {
	early := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	late := early.AddDate(0, 1, 0)

	liabilities := []Liability{
		rankedLiability(t, 1, 60000, 6, 50, early),
		rankedLiability(t, 2, 60000, 6, 95, late),
		rankedLiability(t, 3, 60000, 6, 95, early),  // same score as 2, earlier due date
		rankedLiability(t, 4, 30000, 6, 95, early),  // ties with 3, smaller remaining
		rankedLiability(t, 5, 30000, 6, 95, early),  // full tie with 4, higher ID
	}

	plan := BuildPlan(liabilities, money.New(1000000, "USD"), money.New(700000, "USD"))
	require.Len(t, plan.Recommendations, 5)

	order := make([]int64, 0, 5)
	for _, rec := range plan.Recommendations {
		order = append(order, rec.Liability.ID)
	}
	assert.Equal(t, []int64{4, 5, 3, 2, 1}, order)
}

func TestBuildPlanDeterministic(t *testing.T) {
	nextDue := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	liabilities := []Liability{
		rankedLiability(t, 1, 50000, 5, 80, nextDue),
		rankedLiability(t, 2, 50000, 5, 80, nextDue),
		rankedLiability(t, 3, 50000, 5, 60, nextDue),
	}

	first := BuildPlan(liabilities, money.New(500000, "USD"), money.New(350000, "USD"))
	for i := 0; i < 10; i++ {
		again := BuildPlan(liabilities, money.New(500000, "USD"), money.New(350000, "USD"))
		assert.Equal(t, first, again)
	}
}

func TestBuildPlanGreedyAllocation(t *testing.T) {
	nextDue := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	liabilities := []Liability{
		rankedLiability(t, 1, 120000, 6, 95, nextDue), // installment 200.00
		rankedLiability(t, 2, 90000, 3, 85, nextDue),  // installment 300.00
		rankedLiability(t, 3, 60000, 2, 70, nextDue),  // installment 300.00
	}

	// Budget covers the first two installments only.
	plan := BuildPlan(liabilities, money.New(100000, "USD"), money.New(55000, "USD"))
	require.Len(t, plan.Recommendations, 3)

	assert.Equal(t, ActionPay, plan.Recommendations[0].RecommendedAction)
	assert.Equal(t, ActionPay, plan.Recommendations[1].RecommendedAction)
	assert.Equal(t, ActionDefer, plan.Recommendations[2].RecommendedAction)

	// 550.00 - 200.00 - 300.00 leaves 50.00; the deferred entry does not
	// touch the budget.
	assert.Equal(t, int64(5000), plan.RemainingBudget.Cents)
	assert.Equal(t, int64(100000), plan.TotalIncome.Cents)
	assert.Equal(t, int64(55000), plan.AvailableBudget.Cents)
}

func TestBuildPlanSkipsCompleted(t *testing.T) {
	nextDue := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	active := rankedLiability(t, 1, 50000, 5, 80, nextDue)
	settled := rankedLiability(t, 2, 50000, 5, 99, nextDue)
	settled.RemainingAmount = money.New(0, "USD")
	settled.IsCompleted = true

	plan := BuildPlan([]Liability{active, settled}, money.New(500000, "USD"), money.New(350000, "USD"))
	require.Len(t, plan.Recommendations, 1)
	assert.Equal(t, int64(1), plan.Recommendations[0].Liability.ID)
}

func TestBuildPlanDueAmountCappedAtRemaining(t *testing.T) {
	nextDue := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	l := rankedLiability(t, 1, 100000, 3, 80, nextDue)
	l.RemainingAmount = money.New(10000, "USD") // final stub below one installment

	plan := BuildPlan([]Liability{l}, money.New(500000, "USD"), money.New(350000, "USD"))
	require.Len(t, plan.Recommendations, 1)
	assert.Equal(t, int64(10000), plan.Recommendations[0].Amount.Cents)
}

func TestUrgencyBands(t *testing.T) {
	nextDue := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	liabilities := []Liability{
		rankedLiability(t, 1, 50000, 5, 95, nextDue),
		rankedLiability(t, 2, 50000, 5, 80, nextDue),
		rankedLiability(t, 3, 50000, 5, 75, nextDue),
	}

	plan := BuildPlan(liabilities, money.New(500000, "USD"), money.New(350000, "USD"))
	require.Len(t, plan.Recommendations, 3)
	assert.Equal(t, "High", plan.Recommendations[0].Urgency)
	assert.Equal(t, "Medium", plan.Recommendations[1].Urgency)
	assert.Equal(t, "Low", plan.Recommendations[2].Urgency)
}

func TestBuildPlanEmptyInput(t *testing.T) {
	plan := BuildPlan(nil, money.New(500000, "USD"), money.New(350000, "USD"))
	assert.Empty(t, plan.Recommendations)
	assert.Equal(t, int64(350000), plan.RemainingBudget.Cents)
}
