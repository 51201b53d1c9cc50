package costs

import "promptlab/saturn/pkg/providers"

const tokensPerUnit = 1_000_000

// Calculate computes the cost breakdown for the given normalized usage at
// the given model's rates. Input and output costs are computed and
// reported separately plus the sum.
func Calculate(usage providers.TokenUsage, model providers.ModelInfo) *Breakdown {
	inputCost := tokenCost(usage.InputTokens, model.InputCost)
	outputCost := tokenCost(usage.OutputTokens, model.OutputCost)

	return &Breakdown{
		InputCost:  inputCost,
		OutputCost: outputCost,
		TotalCost:  inputCost + outputCost,
		Currency:   "USD",
		Rates: RateSnapshot{
			InputRate:  model.InputCost,
			OutputRate: model.OutputCost,
		},
	}
}

// ForModel looks up the model in a provider catalog by exact name match
// and computes the breakdown. Returns nil when the catalog has no pricing
// for the model: costs are omitted rather than guessed.
func ForModel(usage providers.TokenUsage, model string, catalog []providers.ModelInfo) *Breakdown {
	for _, info := range catalog {
		if info.Name == model {
			return Calculate(usage, info)
		}
	}
	return nil
}

// tokenCost converts a token count to USD at a per-million-token rate.
func tokenCost(tokens int, ratePerMillion float64) float64 {
	if tokens <= 0 {
		return 0.0
	}
	return (float64(tokens) / tokensPerUnit) * ratePerMillion
}
