package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"promptlab/saturn/pkg/providers"
)

// Provider is the Anthropic provider adapter.
// It implements the providers.Provider interface for the Messages API.
type Provider struct {
	*providers.HTTPProvider
}

const (
	// DefaultAnthropicVersion is the API version to use
	DefaultAnthropicVersion = "2023-06-01"
)

// NewProvider creates a new Anthropic provider instance.
func NewProvider(config providers.Config) (*Provider, error) {
	if config.Name == "" {
		config.Name = "anthropic"
	}

	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com"
	}

	// An empty API key is allowed at construction: credential presence
	// is checked per call upstream, so a keyless adapter can still serve
	// catalog listings.
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
	}

	slog.Debug("Anthropic provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
	)

	return p, nil
}

// Generate performs a single-turn generation. Passthrough extras on the
// request are forwarded to the vendor alongside the sampling parameters.
func (p *Provider) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResult, error) {
	return p.send(ctx, req, req.Extra)
}

// GenerateWithHistory performs a multi-turn generation over the request's
// ordered history. Extras are not replayed on continuation.
func (p *Provider) GenerateWithHistory(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResult, error) {
	return p.send(ctx, req, nil)
}

// send transforms, dispatches, and normalizes one messages call.
func (p *Provider) send(ctx context.Context, req *providers.GenerateRequest, extra map[string]any) (*providers.GenerateResult, error) {
	body, err := buildRequestBody(transformRequest(req), extra)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/messages", p.GetConfig().BaseURL)
	headers := map[string]string{
		"x-api-key":         p.GetConfig().APIKey,
		"anthropic-version": DefaultAnthropicVersion,
	}

	start := time.Now()
	var resp messagesResponse
	if err := p.DoJSONRequest(ctx, "POST", url, body, &resp, headers); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	result, err := transformResponse(&resp)
	if err != nil {
		return nil, &providers.ParseError{
			Provider: p.Name(),
			Cause:    err,
		}
	}
	result.ResponseTime = elapsed.Seconds()

	slog.Debug("messages request succeeded",
		"provider", p.Name(),
		"model", result.Model,
		"tokens", result.Usage.TotalTokens,
		"elapsed", elapsed,
	)

	return result, nil
}

// DefaultModels returns the default Anthropic models with pricing
// information. Rates are USD per million tokens.
func (p *Provider) DefaultModels() []providers.ModelInfo {
	return []providers.ModelInfo{
		{
			Type:        "fast",
			Name:        "claude-3-5-haiku-20241022",
			InputCost:   0.80,
			OutputCost:  4.00,
			Description: "Fastest Claude model with strong reasoning capabilities",
		},
		{
			Type:        "balanced",
			Name:        "claude-3-5-sonnet-20240620",
			InputCost:   3.00,
			OutputCost:  15.00,
			Description: "Balanced performance and quality with strong reasoning",
		},
		{
			Type:        "smart",
			Name:        "claude-3-opus-20240229",
			InputCost:   15.00,
			OutputCost:  75.00,
			Description: "Most powerful Claude model with superior reasoning",
		},
	}
}
