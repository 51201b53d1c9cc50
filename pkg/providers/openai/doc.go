// Package openai implements the provider adapter for the OpenAI Chat
// Completions API. It transforms generic generation requests into the
// chat/completions wire format and normalizes responses, including the
// prompt_tokens/completion_tokens usage vocabulary, into the shared
// provider-agnostic shape.
package openai
