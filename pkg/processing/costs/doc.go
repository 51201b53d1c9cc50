// Package costs computes USD cost breakdowns for LLM generations from
// normalized token usage and per-million-token model pricing.
//
// Calculation is a pure function of (usage, pricing): no state, no
// historical rate versioning. When a model is absent from a provider's
// pricing catalog the breakdown is omitted entirely rather than guessed.
package costs
