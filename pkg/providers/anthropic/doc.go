// Package anthropic implements the provider adapter for the Anthropic
// Messages API. The system prompt travels as the separate "system" field,
// max_tokens is always set (the API requires it), and the vendor's
// input_tokens/output_tokens usage vocabulary is normalized into the
// shared provider-agnostic shape.
package anthropic
