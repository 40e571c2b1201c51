// Package budget tracks cumulative token usage and USD cost across
// language-model calls.
package budget

import (
	"sync"

	"github.com/shopspring/decimal"
)

// MaxDecimal is a sentinel value representing an effectively unlimited
// remaining budget.
var MaxDecimal = decimal.New(1, 18) // 1e18

// Usage holds token counts for a single model call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Tracker accumulates usage and cost across calls. Safe for concurrent use.
type Tracker struct {
	maxBudget  decimal.Decimal // 0 = unlimited
	totalCost  decimal.Decimal
	totalUsage Usage
	pricing    map[string]ModelPricing
	mu         sync.Mutex
}

// NewTracker creates a tracker. A maxBudget of 0 means unlimited.
func NewTracker(maxBudget decimal.Decimal, pricing map[string]ModelPricing) *Tracker {
	return &Tracker{
		maxBudget: maxBudget,
		totalCost: decimal.Zero,
		pricing:   pricing,
	}
}

// Record adds one call's usage and updates the cumulative cost. Unknown
// models have their tokens counted but contribute no cost.
func (t *Tracker) Record(model string, usage Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalUsage.InputTokens += usage.InputTokens
	t.totalUsage.OutputTokens += usage.OutputTokens

	pricing, ok := t.pricing[model]
	if !ok {
		return
	}
	t.totalCost = t.totalCost.Add(pricing.Cost(usage))
}

// TotalCost returns the cumulative cost across all recorded calls.
func (t *Tracker) TotalCost() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalCost
}

// TotalUsage returns the cumulative token usage across all recorded calls.
func (t *Tracker) TotalUsage() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalUsage
}

// Remaining returns the remaining budget, or MaxDecimal when unlimited.
func (t *Tracker) Remaining() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.maxBudget.IsZero() {
		return MaxDecimal
	}
	return t.maxBudget.Sub(t.totalCost)
}

// Exhausted reports whether the total cost has reached maxBudget.
// Always false when unlimited.
func (t *Tracker) Exhausted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.maxBudget.IsZero() {
		return false
	}
	return t.totalCost.GreaterThanOrEqual(t.maxBudget)
}
