package costs

// RateSnapshot records the per-million-token rates a breakdown was
// computed with, so callers can audit the numbers later even if the
// catalog changes.
type RateSnapshot struct {
	// InputRate is USD per million input tokens.
	InputRate float64 `json:"input_rate"`

	// OutputRate is USD per million output tokens.
	OutputRate float64 `json:"output_rate"`
}

// Breakdown contains the cost split for one generation in USD.
// It is derived, not authoritative: recomputed per call from the
// then-current pricing table.
type Breakdown struct {
	// InputCost is the cost for input tokens in USD.
	InputCost float64 `json:"input_cost"`

	// OutputCost is the cost for output tokens in USD.
	OutputCost float64 `json:"output_cost"`

	// TotalCost is input plus output in USD.
	TotalCost float64 `json:"total_cost"`

	// Currency is the currency code (always "USD").
	Currency string `json:"currency"`

	// Rates is the rate snapshot used for this breakdown.
	Rates RateSnapshot `json:"rates"`
}
