package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"promptlab/saturn/pkg/providers"
)

// Provider is the OpenAI provider adapter.
// It implements the providers.Provider interface for the Chat Completions API.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new OpenAI provider instance.
func NewProvider(config providers.Config) (*Provider, error) {
	if config.Name == "" {
		config.Name = "openai"
	}

	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
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

	slog.Debug("OpenAI provider initialized",
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

// send transforms, dispatches, and normalizes one chat completion call.
func (p *Provider) send(ctx context.Context, req *providers.GenerateRequest, extra map[string]any) (*providers.GenerateResult, error) {
	body, err := buildRequestBody(transformRequest(req), extra)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/chat/completions", p.GetConfig().BaseURL)
	headers := map[string]string{
		"Authorization": "Bearer " + p.GetConfig().APIKey,
	}

	start := time.Now()
	var resp chatResponse
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

	slog.Debug("completion request succeeded",
		"provider", p.Name(),
		"model", result.Model,
		"tokens", result.Usage.TotalTokens,
		"elapsed", elapsed,
	)

	return result, nil
}

// DefaultModels returns the default OpenAI models with pricing information.
// Rates are USD per million tokens.
func (p *Provider) DefaultModels() []providers.ModelInfo {
	return []providers.ModelInfo{
		{
			Type:        "fast",
			Name:        "gpt-4o-mini",
			InputCost:   0.15,
			OutputCost:  0.60,
			Description: "Fast and cost-effective model for most use cases",
		},
		{
			Type:        "smart",
			Name:        "o1-mini",
			InputCost:   1.10,
			OutputCost:  4.40,
			Description: "Advanced reasoning capabilities with superior performance",
		},
		{
			Type:        "vision",
			Name:        "gpt-4o",
			InputCost:   2.50,
			OutputCost:  10.00,
			Description: "Multimodal model that can process images and text",
		},
	}
}
