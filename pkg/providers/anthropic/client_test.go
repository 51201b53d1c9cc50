package anthropic

import (
	"context"
	"errors"
	"testing"
	"time"

	mock "promptlab/saturn/internal/providers"
	"promptlab/saturn/pkg/providers"
)

func newTestProvider(t *testing.T, ms *mock.MockServer) *Provider {
	t.Helper()
	p, err := NewProvider(mock.TestConfig("anthropic", ms.URL()))
	mock.AssertNoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestGenerate(t *testing.T) {
	ms := mock.NewMockServer()
	defer ms.Close()
	ms.SetResponse("/v1/messages", mock.MockResponse{
		StatusCode: 200,
		Body:       mock.MockAnthropicResponse("Hello there", "claude-3-5-haiku-20241022"),
	})

	p := newTestProvider(t, ms)

	result, err := p.Generate(context.Background(), &providers.GenerateRequest{
		Model:        "claude-3-5-haiku-20241022",
		SystemPrompt: "Be terse.",
		UserPrompt:   "Hi",
	})
	mock.AssertNoError(t, err)

	mock.AssertEqual(t, result.Text, "Hello there")
	mock.AssertEqual(t, result.Model, "claude-3-5-haiku-20241022")
	mock.AssertEqual(t, result.FinishReason, "end_turn")

	// TotalTokens is derived: Anthropic reports input and output only.
	mock.AssertEqual(t, result.Usage.InputTokens, 10)
	mock.AssertEqual(t, result.Usage.OutputTokens, 20)
	mock.AssertEqual(t, result.Usage.TotalTokens, 30)
	mock.AssertEqual(t, result.RawUsage["input_tokens"], 10)
	mock.AssertEqual(t, result.RawUsage["output_tokens"], 20)
	_, hasTotal := result.RawUsage["total_tokens"]
	mock.AssertTrue(t, !hasTotal, "raw usage carries the vendor vocabulary only")
}

func TestGenerateRequestShape(t *testing.T) {
	ms := mock.NewMockServer()
	defer ms.Close()
	ms.SetResponse("/v1/messages", mock.MockResponse{
		StatusCode: 200,
		Body:       mock.MockAnthropicResponse("ok", "claude-3-5-haiku-20241022"),
	})

	p := newTestProvider(t, ms)

	_, err := p.Generate(context.Background(), &providers.GenerateRequest{
		Model:        "claude-3-5-haiku-20241022",
		SystemPrompt: "Be terse.",
		UserPrompt:   "Hi",
	})
	mock.AssertNoError(t, err)

	body := ms.LastRequestBody()
	mock.AssertEqual(t, body["model"], "claude-3-5-haiku-20241022")

	// The system prompt travels in the dedicated field, not as a message.
	mock.AssertEqual(t, body["system"], "Be terse.")
	messages := body["messages"].([]any)
	mock.AssertEqual(t, len(messages), 1)
	mock.AssertEqual(t, messages[0].(map[string]any)["role"], "user")

	mock.AssertEqual(t, body["temperature"], 0.7)
	mock.AssertEqual(t, body["max_tokens"], float64(1000))

	// top_p has no default and must be absent when not requested.
	_, hasTopP := body["top_p"]
	mock.AssertTrue(t, !hasTopP, "top_p sent without being requested")
}

func TestGenerateForwardsSamplingAndExtras(t *testing.T) {
	ms := mock.NewMockServer()
	defer ms.Close()
	ms.SetResponse("/v1/messages", mock.MockResponse{
		StatusCode: 200,
		Body:       mock.MockAnthropicResponse("ok", "claude-3-5-haiku-20241022"),
	})

	p := newTestProvider(t, ms)

	temp := 0.1
	maxTokens := 256
	topP := 0.8
	_, err := p.Generate(context.Background(), &providers.GenerateRequest{
		Model:        "claude-3-5-haiku-20241022",
		SystemPrompt: "Be terse.",
		UserPrompt:   "Hi",
		Temperature:  &temp,
		MaxTokens:    &maxTokens,
		TopP:         &topP,
		Extra: map[string]any{
			"top_k":      5,
			"max_tokens": 9999,
		},
	})
	mock.AssertNoError(t, err)

	body := ms.LastRequestBody()
	mock.AssertEqual(t, body["temperature"], 0.1)
	mock.AssertEqual(t, body["max_tokens"], float64(256))
	mock.AssertEqual(t, body["top_p"], 0.8)
	mock.AssertEqual(t, body["top_k"], float64(5))
}

func TestGenerateWithHistory(t *testing.T) {
	ms := mock.NewMockServer()
	defer ms.Close()
	ms.SetResponse("/v1/messages", mock.MockResponse{
		StatusCode: 200,
		Body:       mock.MockAnthropicResponse("ok", "claude-3-5-haiku-20241022"),
	})

	p := newTestProvider(t, ms)

	_, err := p.GenerateWithHistory(context.Background(), &providers.GenerateRequest{
		Model:        "claude-3-5-haiku-20241022",
		SystemPrompt: "Be terse.",
		History: []providers.Message{
			{Role: providers.RoleUser, Content: "first"},
			{Role: providers.RoleAssistant, Content: "reply"},
			{Role: providers.RoleUser, Content: "second"},
		},
		Extra: map[string]any{"top_k": 5},
	})
	mock.AssertNoError(t, err)

	body := ms.LastRequestBody()
	messages := body["messages"].([]any)
	mock.AssertEqual(t, len(messages), 3)
	mock.AssertEqual(t, messages[2].(map[string]any)["content"], "second")

	_, sent := body["top_k"]
	mock.AssertTrue(t, !sent, "extras must not be replayed on continuation")
}

func TestGenerateAuthError(t *testing.T) {
	ms := mock.NewMockServer()
	defer ms.Close()
	ms.SetResponse("/v1/messages", mock.MockAuthError())

	p := newTestProvider(t, ms)

	_, err := p.Generate(context.Background(), &providers.GenerateRequest{
		Model:        "claude-3-5-haiku-20241022",
		SystemPrompt: "x",
		UserPrompt:   "y",
	})
	mock.AssertError(t, err)

	var authErr *providers.AuthError
	mock.AssertTrue(t, errors.As(err, &authErr), "expected AuthError")
	mock.AssertEqual(t, authErr.Provider, "anthropic")
}

func TestGenerateRateLimitError(t *testing.T) {
	ms := mock.NewMockServer()
	defer ms.Close()
	ms.SetResponse("/v1/messages", mock.MockRateLimitError(10))

	p := newTestProvider(t, ms)

	_, err := p.Generate(context.Background(), &providers.GenerateRequest{
		Model:        "claude-3-5-haiku-20241022",
		SystemPrompt: "x",
		UserPrompt:   "y",
	})
	mock.AssertError(t, err)

	var rateErr *providers.RateLimitError
	mock.AssertTrue(t, errors.As(err, &rateErr), "expected RateLimitError")
	mock.AssertEqual(t, rateErr.RetryAfter, 10*time.Second)
}

func TestGenerateNoTextContent(t *testing.T) {
	ms := mock.NewMockServer()
	defer ms.Close()
	ms.SetResponse("/v1/messages", mock.MockResponse{
		StatusCode: 200,
		Body: map[string]any{
			"model":   "claude-3-5-haiku-20241022",
			"content": []any{},
		},
	})

	p := newTestProvider(t, ms)

	_, err := p.Generate(context.Background(), &providers.GenerateRequest{
		Model:        "claude-3-5-haiku-20241022",
		SystemPrompt: "x",
		UserPrompt:   "y",
	})
	mock.AssertError(t, err)

	var parseErr *providers.ParseError
	mock.AssertTrue(t, errors.As(err, &parseErr), "expected ParseError")
}

func TestDefaultModels(t *testing.T) {
	p, err := NewProvider(providers.Config{})
	mock.AssertNoError(t, err)
	defer p.Close()

	models := p.DefaultModels()
	mock.AssertEqual(t, len(models), 3)

	byType := map[string]providers.ModelInfo{}
	for _, m := range models {
		byType[m.Type] = m
	}
	mock.AssertEqual(t, byType["fast"].Name, "claude-3-5-haiku-20241022")
	mock.AssertEqual(t, byType["balanced"].Name, "claude-3-5-sonnet-20240620")
	mock.AssertEqual(t, byType["smart"].Name, "claude-3-opus-20240229")
}

func TestNewProviderDefaults(t *testing.T) {
	p, err := NewProvider(providers.Config{})
	mock.AssertNoError(t, err)
	defer p.Close()

	cfg := p.GetConfig()
	mock.AssertEqual(t, cfg.Name, "anthropic")
	mock.AssertEqual(t, cfg.BaseURL, "https://api.anthropic.com")
	mock.AssertEqual(t, cfg.Timeout, 60*time.Second)
}
