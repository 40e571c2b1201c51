package budget

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var testPricing = map[string]ModelPricing{
	"test-model": {
		InputPerMTok:  decimal.NewFromInt(10),
		OutputPerMTok: decimal.NewFromInt(20),
	},
}

func TestTracker_RecordAccumulates(t *testing.T) {
	tracker := NewTracker(decimal.Zero, testPricing)

	tracker.Record("test-model", Usage{InputTokens: 100_000, OutputTokens: 50_000})
	tracker.Record("test-model", Usage{InputTokens: 100_000, OutputTokens: 50_000})

	assert.Equal(t, Usage{InputTokens: 200_000, OutputTokens: 100_000}, tracker.TotalUsage())
	// 200k * $10/MTok + 100k * $20/MTok = $4.
	assert.True(t, tracker.TotalCost().Equal(decimal.NewFromInt(4)),
		"got %s", tracker.TotalCost())
}

func TestTracker_UnknownModelCountsTokensOnly(t *testing.T) {
	tracker := NewTracker(decimal.Zero, testPricing)

	tracker.Record("mystery-model", Usage{InputTokens: 500, OutputTokens: 500})

	assert.Equal(t, Usage{InputTokens: 500, OutputTokens: 500}, tracker.TotalUsage())
	assert.True(t, tracker.TotalCost().IsZero())
}

func TestTracker_UnlimitedNeverExhausts(t *testing.T) {
	tracker := NewTracker(decimal.Zero, testPricing)
	tracker.Record("test-model", Usage{InputTokens: 1_000_000_000, OutputTokens: 1_000_000_000})

	assert.False(t, tracker.Exhausted())
	assert.True(t, tracker.Remaining().Equal(MaxDecimal))
}

func TestTracker_ExhaustedAtCeiling(t *testing.T) {
	tracker := NewTracker(decimal.NewFromFloat(0.01), testPricing)

	tracker.Record("test-model", Usage{InputTokens: 500, OutputTokens: 100})
	assert.False(t, tracker.Exhausted())
	assert.True(t, tracker.Remaining().IsPositive())

	tracker.Record("test-model", Usage{InputTokens: 1_000_000, OutputTokens: 0})
	assert.True(t, tracker.Exhausted())
	assert.False(t, tracker.Remaining().IsPositive())
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tracker := NewTracker(decimal.Zero, testPricing)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Record("test-model", Usage{InputTokens: 10, OutputTokens: 5})
		}()
	}
	wg.Wait()

	assert.Equal(t, Usage{InputTokens: 500, OutputTokens: 250}, tracker.TotalUsage())
}

func TestDefaultPricingCoversKnownModels(t *testing.T) {
	for _, model := range []string{"claude-opus-4-6", "claude-sonnet-4-5", "claude-haiku-4-5"} {
		pricing, ok := DefaultPricing[model]
		assert.True(t, ok, model)
		assert.True(t, pricing.OutputPerMTok.GreaterThan(pricing.InputPerMTok), model)
	}
}
