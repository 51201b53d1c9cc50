package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"
)

// HTTPProvider is the base implementation for HTTP-based provider adapters.
// It provides connection pooling, per-call deadlines, transient-error retry,
// and HTTP status classification into the typed provider errors.
//
// Concrete adapters (OpenAI, Anthropic) embed this struct and implement
// the Provider interface methods on top of DoJSONRequest.
type HTTPProvider struct {
	// config contains the provider configuration
	config Config

	// client is the HTTP client with connection pooling
	client *http.Client
}

// NewHTTPProvider creates a new base HTTP provider with connection pooling.
func NewHTTPProvider(config Config) *HTTPProvider {
	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	return &HTTPProvider{
		config: config,
		client: client,
	}
}

// Name returns the provider's configured name.
func (p *HTTPProvider) Name() string {
	return p.config.Name
}

// GetConfig returns the provider's configuration.
func (p *HTTPProvider) GetConfig() Config {
	return p.config
}

// Close releases the adapter's idle connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// DoJSONRequest sends a JSON request body, classifies the HTTP outcome, and
// decodes a successful response into result. Transient failures (5xx,
// connection errors) are retried with exponential backoff up to
// config.MaxRetries; auth and client errors are never retried.
func (p *HTTPProvider) DoJSONRequest(ctx context.Context, method, url string, body any, result any, headers map[string]string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	var lastErr error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			slog.Debug("retrying request",
				"provider", p.config.Name,
				"attempt", attempt,
				"max_retries", p.config.MaxRetries,
				"backoff", backoff,
			)

			select {
			case <-ctx.Done():
				return p.classifyTransportError(ctx.Err())
			case <-time.After(backoff):
			}
		}

		err := p.doOnce(ctx, method, url, payload, result, headers)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}
	}

	return lastErr
}

// doOnce performs a single HTTP exchange without retry.
func (p *HTTPProvider) doOnce(ctx context.Context, method, url string, payload []byte, result any, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return p.classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectionError{Provider: p.config.Name, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return p.classifyStatus(resp, respBody)
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &ParseError{
			Provider:    p.config.Name,
			RawResponse: string(respBody),
			Cause:       err,
		}
	}

	return nil
}

// classifyStatus maps a non-2xx HTTP response to a typed provider error.
func (p *HTTPProvider) classifyStatus(resp *http.Response, body []byte) error {
	message := extractAPIErrorMessage(body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Provider: p.config.Name, Message: message}

	case resp.StatusCode == http.StatusTooManyRequests:
		var retryAfter time.Duration
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{
			Provider:   p.config.Name,
			RetryAfter: retryAfter,
			Message:    message,
		}

	default:
		return &ProviderError{
			Provider:   p.config.Name,
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}
}

// classifyTransportError maps client/context failures to typed errors.
func (p *HTTPProvider) classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
	}

	// net/http wraps its client timeout in a *url.Error with Timeout()=true.
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
	}

	if errors.Is(err, context.Canceled) {
		return &ProviderError{Provider: p.config.Name, Message: "request cancelled", Cause: err}
	}

	return &ConnectionError{Provider: p.config.Name, Cause: err}
}

// isRetryable reports whether an error is worth retrying.
// Only transient server-side and transport failures qualify.
func isRetryable(err error) bool {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.StatusCode >= 500
	}

	return false
}

// apiErrorEnvelope matches the error envelope shared by the OpenAI and
// Anthropic APIs: {"error": {"message": "..."}}.
type apiErrorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// extractAPIErrorMessage pulls a human-readable message out of a vendor
// error body, falling back to the raw body when it is not the standard
// envelope.
func extractAPIErrorMessage(body []byte) string {
	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}

	const maxRaw = 512
	raw := string(body)
	if len(raw) > maxRaw {
		raw = raw[:maxRaw]
	}
	return raw
}
