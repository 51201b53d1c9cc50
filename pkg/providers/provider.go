package providers

import "context"

// Provider is the interface every LLM provider adapter implements.
// It abstracts single-turn and history-aware generation plus the
// provider's default-model catalog with pricing.
//
// All methods that reach the network accept a context.Context for
// cancellation and deadline control. Implementations must return
// promptly when the context is cancelled.
//
// Example usage:
//
//	req := &GenerateRequest{
//	    Model:        "gpt-4o-mini",
//	    SystemPrompt: "Be terse.",
//	    UserPrompt:   "Hi",
//	}
//	result, err := provider.Generate(ctx, req)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Text)
type Provider interface {
	// Generate performs a single-turn generation from a system prompt
	// and one user prompt. Extra passthrough parameters on the request
	// are forwarded to the vendor.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// GenerateWithHistory performs a multi-turn generation over the full
	// ordered user/assistant history on the request. The system prompt is
	// supplied separately; the history must not contain system entries.
	GenerateWithHistory(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// DefaultModels returns the provider's default-model catalog with
	// per-million-token pricing. The catalog may lag behind the vendor:
	// models absent from it are still accepted for generation.
	DefaultModels() []ModelInfo

	// Name returns the provider's configured name (e.g. "openai").
	Name() string

	// Close releases any resources held by the adapter (HTTP
	// connections etc). After Close the adapter must not be used.
	Close() error
}
