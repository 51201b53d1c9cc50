package openai

import (
	"encoding/json"
	"fmt"

	"promptlab/saturn/pkg/providers"
)

// OpenAI API request/response types

// chatRequest represents an OpenAI chat completion request.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

// chatMessage represents a message in OpenAI format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse represents an OpenAI chat completion response.
type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

// chatChoice represents a completion choice in OpenAI format.
type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// chatUsage represents token usage in OpenAI format.
type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Sampling defaults applied when the caller leaves a parameter unset.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
	defaultTopP        = 1.0
)

// reservedParams are request fields that passthrough extras may not override.
var reservedParams = map[string]struct{}{
	"model":       {},
	"messages":    {},
	"temperature": {},
	"max_tokens":  {},
	"top_p":       {},
}

// transformRequest transforms a provider-agnostic request to OpenAI format.
// The system prompt becomes the leading system-role message; for multi-turn
// requests the stored history follows it verbatim.
func transformRequest(req *providers.GenerateRequest) *chatRequest {
	messages := make([]chatMessage, 0, len(req.History)+2)
	messages = append(messages, chatMessage{Role: providers.RoleSystem, Content: req.SystemPrompt})

	if len(req.History) > 0 {
		for _, msg := range req.History {
			messages = append(messages, chatMessage{Role: msg.Role, Content: msg.Content})
		}
	} else {
		messages = append(messages, chatMessage{Role: providers.RoleUser, Content: req.UserPrompt})
	}

	out := &chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		TopP:        defaultTopP,
	}

	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		out.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		out.TopP = *req.TopP
	}

	return out
}

// buildRequestBody merges passthrough extras into the typed request.
// Extras never override the reserved sampling and routing fields.
func buildRequestBody(req *chatRequest, extra map[string]any) (map[string]any, error) {
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

// transformResponse normalizes an OpenAI response into the shared result
// shape, mapping prompt_tokens/completion_tokens into the normalized
// usage vocabulary.
func transformResponse(resp *chatResponse) (*providers.GenerateResult, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response contains no choices")
	}

	choice := resp.Choices[0]

	return &providers.GenerateResult{
		Text:  choice.Message.Content,
		Model: resp.Model,
		Usage: providers.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		RawUsage: map[string]int{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
		FinishReason: choice.FinishReason,
	}, nil
}
