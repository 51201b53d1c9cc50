package anthropic

import (
	"encoding/json"
	"fmt"

	"promptlab/saturn/pkg/providers"
)

// Anthropic API request/response types

// messagesRequest represents an Anthropic messages request.
// Temperature and TopP are pointers so that unset values are omitted
// entirely; Anthropic rejects some parameter combinations.
type messagesRequest struct {
	Model       string         `json:"model"`
	System      string         `json:"system,omitempty"`
	Messages    []inputMessage `json:"messages"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature *float64       `json:"temperature,omitempty"`
	TopP        *float64       `json:"top_p,omitempty"`
}

// inputMessage represents a message in Anthropic format.
type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse represents an Anthropic messages response.
type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      messagesUsage  `json:"usage"`
}

// contentBlock represents a content block in Anthropic format.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// messagesUsage represents token usage in Anthropic format.
type messagesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Sampling defaults applied when the caller leaves a parameter unset.
// top_p has no default: it is only sent when explicitly requested.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// reservedParams are request fields that passthrough extras may not override.
var reservedParams = map[string]struct{}{
	"model":       {},
	"system":      {},
	"messages":    {},
	"temperature": {},
	"max_tokens":  {},
	"top_p":       {},
}

// transformRequest transforms a provider-agnostic request to Anthropic
// format. The system prompt moves to the dedicated system field and never
// appears in the messages list.
func transformRequest(req *providers.GenerateRequest) *messagesRequest {
	var messages []inputMessage
	if len(req.History) > 0 {
		messages = make([]inputMessage, 0, len(req.History))
		for _, msg := range req.History {
			messages = append(messages, inputMessage{Role: msg.Role, Content: msg.Content})
		}
	} else {
		messages = []inputMessage{{Role: providers.RoleUser, Content: req.UserPrompt}}
	}

	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	return &messagesRequest{
		Model:       req.Model,
		System:      req.SystemPrompt,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
		TopP:        req.TopP,
	}
}

// buildRequestBody merges passthrough extras into the typed request.
// Extras never override the reserved sampling and routing fields.
func buildRequestBody(req *messagesRequest, extra map[string]any) (map[string]any, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	body := make(map[string]any)
	if err := json.Unmarshal(encoded, &body); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}

	for k, v := range extra {
		if _, reserved := reservedParams[k]; reserved {
			continue
		}
		if v != nil {
			body[k] = v
		}
	}

	return body, nil
}

// transformResponse normalizes an Anthropic response into the shared
// result shape, mapping input_tokens/output_tokens into the normalized
// usage vocabulary.
func transformResponse(resp *messagesResponse) (*providers.GenerateResult, error) {
	var text string
	found := false
	for _, block := range resp.Content {
		if block.Type == "text" {
			text = block.Text
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("no text content in response")
	}

	return &providers.GenerateResult{
		Text:  text,
		Model: resp.Model,
		Usage: providers.TokenUsage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
		RawUsage: map[string]int{
			"input_tokens":  resp.Usage.InputTokens,
			"output_tokens": resp.Usage.OutputTokens,
		},
		FinishReason: resp.StopReason,
	}, nil
}
