package llm

// Pricing is the cost of a model in USD per one million tokens.
type Pricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// Cost estimates the USD cost of a call from its token usage.
func (p Pricing) Cost(promptTokens, completionTokens int) float64 {
	return (float64(promptTokens)*p.InputPer1M + float64(completionTokens)*p.OutputPer1M) / 1_000_000
}

// PriceTable maps model names to per-model pricing overrides.
type PriceTable map[string]Pricing

// ForModel returns the table entry for model, or def when the model has no
// override.
func (t PriceTable) ForModel(model string, def Pricing) Pricing {
	if p, ok := t[model]; ok {
		return p
	}
	return def
}
