package providers

import "time"

// Message is a single turn in a conversation history.
// Histories passed to GenerateWithHistory contain only user and assistant
// roles; the system prompt travels separately on the request.
type Message struct {
	// Role identifies the message sender (user or assistant)
	Role string `json:"role"`

	// Content is the message text content
	Content string `json:"content"`
}

// TokenUsage is the normalized token accounting for one generation.
// Adapters map their vendor's vocabulary into this shape so that cost
// calculation and reporting never depend on which vendor answered.
type TokenUsage struct {
	// InputTokens is the number of tokens consumed by the prompt side
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the number of tokens generated
	OutputTokens int `json:"output_tokens"`

	// TotalTokens is input plus output
	TotalTokens int `json:"total_tokens"`
}

// ModelInfo describes one entry in a provider's default-model catalog,
// including per-million-token pricing used for cost breakdowns.
type ModelInfo struct {
	// Type is the catalog key (e.g. "fast", "smart", "vision")
	Type string `json:"type" yaml:"type"`

	// Name is the vendor model identifier (e.g. "gpt-4o-mini")
	Name string `json:"name" yaml:"name"`

	// InputCost is USD per million input tokens
	InputCost float64 `json:"input_cost" yaml:"input_cost"`

	// OutputCost is USD per million output tokens
	OutputCost float64 `json:"output_cost" yaml:"output_cost"`

	// Description is a short human-readable summary
	Description string `json:"description" yaml:"description"`
}

// GenerateRequest is a provider-agnostic generation request.
// Sampling parameters are pointers so that "not supplied" is distinct
// from a zero value; adapters apply their own defaults for nil fields.
type GenerateRequest struct {
	// Model is the vendor model identifier
	Model string

	// SystemPrompt is the system instruction for the generation
	SystemPrompt string

	// UserPrompt is the user message for single-turn generation.
	// Ignored when History is set.
	UserPrompt string

	// History is the ordered user/assistant history for multi-turn
	// generation. Empty for single-turn requests.
	History []Message

	// Temperature controls randomness (vendor default applied when nil)
	Temperature *float64

	// MaxTokens bounds the generated output length
	MaxTokens *int

	// TopP controls nucleus sampling
	TopP *float64

	// Extra carries provider-specific passthrough parameters. Only
	// single-turn requests forward extras; continuations replay the
	// recognized sampling parameters alone.
	Extra map[string]any
}

// GenerateResult is the normalized outcome of one generation.
type GenerateResult struct {
	// Text is the generated completion text
	Text string `json:"text"`

	// Model is the model identifier echoed by the vendor. It may differ
	// from the requested name when the vendor normalizes model ids.
	Model string `json:"model"`

	// Usage is the normalized token accounting
	Usage TokenUsage `json:"usage"`

	// RawUsage preserves the vendor's own usage vocabulary for callers
	// that want to see exactly what the vendor reported
	RawUsage map[string]int `json:"raw_usage,omitempty"`

	// FinishReason is the vendor's stop/finish reason
	FinishReason string `json:"finish_reason,omitempty"`

	// ResponseTime is the wall-clock duration of the vendor call in seconds
	ResponseTime float64 `json:"response_time"`
}

// Config contains configuration for a single provider adapter instance.
type Config struct {
	// Name is the provider identifier (e.g. "openai", "anthropic")
	Name string

	// BaseURL is the API endpoint base URL
	BaseURL string

	// APIKey is the authentication key
	APIKey string

	// Timeout is the per-call deadline for vendor requests
	Timeout time.Duration

	// MaxRetries is the number of automatic retries for transient
	// failures. Zero by default: the caller owns retry policy and
	// failures surface immediately.
	MaxRetries int

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
