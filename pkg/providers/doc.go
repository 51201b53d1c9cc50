// Package providers defines the provider-agnostic adapter interface for
// LLM vendors and the shared HTTP plumbing used by the concrete adapters.
//
// Each adapter translates a generic generation request into its vendor's
// wire format, sends it, and normalizes the response back into the common
// shape. Vendor-specific usage vocabularies (prompt_tokens/completion_tokens
// vs input_tokens/output_tokens) are reduced to the normalized TokenUsage
// at this boundary; callers never see vendor quirks.
//
// Concrete adapters live in subpackages (openai, anthropic) and embed
// HTTPProvider for connection pooling, timeouts, and error classification.
package providers
