package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPricingCost(t *testing.T) {
	t.Parallel()

	p := Pricing{InputPer1M: 2.50, OutputPer1M: 10.00}

	// (1000*2.50 + 500*10.00) / 1_000_000
	assert.InDelta(t, 0.0075, p.Cost(1000, 500), 1e-12)
	assert.Zero(t, p.Cost(0, 0))
}

func TestPriceTableForModel(t *testing.T) {
	t.Parallel()

	def := Pricing{InputPer1M: 0.15, OutputPer1M: 0.60}
	table := PriceTable{
		"gpt-4-turbo": {InputPer1M: 10.00, OutputPer1M: 30.00},
	}

	assert.Equal(t, table["gpt-4-turbo"], table.ForModel("gpt-4-turbo", def))
	assert.Equal(t, def, table.ForModel("some-unknown-model", def))
}
