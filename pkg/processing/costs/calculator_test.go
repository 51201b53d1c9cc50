package costs

import (
	"math"
	"testing"

	"promptlab/saturn/pkg/providers"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		usage      providers.TokenUsage
		model      providers.ModelInfo
		wantInput  float64
		wantOutput float64
		wantTotal  float64
	}{
		{
			name:       "one million tokens each side",
			usage:      providers.TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000},
			model:      providers.ModelInfo{Name: "gpt-4o-mini", InputCost: 0.15, OutputCost: 0.60},
			wantInput:  0.15,
			wantOutput: 0.60,
			wantTotal:  0.75,
		},
		{
			name:       "small usage scales linearly",
			usage:      providers.TokenUsage{InputTokens: 1000, OutputTokens: 2000},
			model:      providers.ModelInfo{Name: "claude-3-5-sonnet-20240620", InputCost: 3.00, OutputCost: 15.00},
			wantInput:  0.003,
			wantOutput: 0.03,
			wantTotal:  0.033,
		},
		{
			name:       "zero usage is free",
			usage:      providers.TokenUsage{},
			model:      providers.ModelInfo{Name: "gpt-4o", InputCost: 2.50, OutputCost: 10.00},
			wantInput:  0,
			wantOutput: 0,
			wantTotal:  0,
		},
		{
			name:       "negative counts clamp to zero",
			usage:      providers.TokenUsage{InputTokens: -5, OutputTokens: -10},
			model:      providers.ModelInfo{Name: "gpt-4o", InputCost: 2.50, OutputCost: 10.00},
			wantInput:  0,
			wantOutput: 0,
			wantTotal:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.usage, tt.model)

			if !almostEqual(got.InputCost, tt.wantInput) {
				t.Errorf("InputCost = %v, want %v", got.InputCost, tt.wantInput)
			}
			if !almostEqual(got.OutputCost, tt.wantOutput) {
				t.Errorf("OutputCost = %v, want %v", got.OutputCost, tt.wantOutput)
			}
			if !almostEqual(got.TotalCost, tt.wantTotal) {
				t.Errorf("TotalCost = %v, want %v", got.TotalCost, tt.wantTotal)
			}
			if got.Currency != "USD" {
				t.Errorf("Currency = %q, want USD", got.Currency)
			}
			if got.Rates.InputRate != tt.model.InputCost || got.Rates.OutputRate != tt.model.OutputCost {
				t.Errorf("Rates = %+v, want snapshot of model rates", got.Rates)
			}
		})
	}
}

func TestCalculateIsPure(t *testing.T) {
	usage := providers.TokenUsage{InputTokens: 500, OutputTokens: 700}
	model := providers.ModelInfo{Name: "gpt-4o-mini", InputCost: 0.15, OutputCost: 0.60}

	first := Calculate(usage, model)
	second := Calculate(usage, model)

	if *first != *second {
		t.Errorf("repeated calls disagree: %+v vs %+v", first, second)
	}
}

func TestForModel(t *testing.T) {
	catalog := []providers.ModelInfo{
		{Name: "gpt-4o-mini", InputCost: 0.15, OutputCost: 0.60},
		{Name: "gpt-4o", InputCost: 2.50, OutputCost: 10.00},
	}
	usage := providers.TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}

	t.Run("known model", func(t *testing.T) {
		got := ForModel(usage, "gpt-4o-mini", catalog)
		if got == nil {
			t.Fatal("expected breakdown, got nil")
		}
		if !almostEqual(got.TotalCost, 0.75) {
			t.Errorf("TotalCost = %v, want 0.75", got.TotalCost)
		}
	})

	t.Run("unknown model omits costs", func(t *testing.T) {
		if got := ForModel(usage, "gpt-99", catalog); got != nil {
			t.Errorf("expected nil for unknown model, got %+v", got)
		}
	})

	t.Run("match is exact, not prefix", func(t *testing.T) {
		if got := ForModel(usage, "gpt-4o-mini-2024", catalog); got != nil {
			t.Errorf("expected nil for non-exact name, got %+v", got)
		}
	})
}
