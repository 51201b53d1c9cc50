package comparison

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"promptlab/saturn/pkg/conversation"
	"promptlab/saturn/pkg/processing/costs"
	"promptlab/saturn/pkg/providers"
	"promptlab/saturn/pkg/telemetry/logging"
	"promptlab/saturn/pkg/telemetry/metrics"
)

const (
	// minConfigs and maxConfigs bound the comparison fan-out.
	minConfigs = 1
	maxConfigs = 4

	defaultCallTimeout = 2 * time.Minute
)

// Runner executes comparison requests: a bounded set of one-shot
// generation configs run concurrently, each slot isolated from the
// others.
type Runner struct {
	providers   conversation.ProviderLookup
	creds       conversation.Credentials
	logger      *logging.Logger
	metrics     *metrics.Collector
	callTimeout time.Duration
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Providers resolves provider names to adapters (required).
	Providers conversation.ProviderLookup

	// Credentials is the credential presence check (required).
	Credentials conversation.Credentials

	// Logger is the structured logger. Defaults to a no-op logger.
	Logger *logging.Logger

	// Metrics is the optional metrics collector.
	Metrics *metrics.Collector

	// CallTimeout bounds each slot's adapter call.
	// Default: 2 minutes.
	CallTimeout time.Duration
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Runner{
		providers:   cfg.Providers,
		creds:       cfg.Credentials,
		logger:      logger,
		metrics:     cfg.Metrics,
		callTimeout: timeout,
	}
}

// Run executes all configs concurrently and returns the aggregate
// result. The results list preserves input order; each entry is either
// a success payload or {isError: true, error: message}. Slot failures
// never abort siblings.
func (r *Runner) Run(ctx context.Context, configs []map[string]any) map[string]any {
	if len(configs) == 0 {
		return map[string]any{
			"isError": true,
			"error":   "The 'comparisons' argument must be a non-empty list.",
		}
	}
	if len(configs) < minConfigs || len(configs) > maxConfigs {
		return map[string]any{
			"isError": true,
			"error":   fmt.Sprintf("You can compare between %d and %d configurations.", minConfigs, maxConfigs),
		}
	}

	results := make([]map[string]any, len(configs))

	var wg sync.WaitGroup
	for i, config := range configs {
		wg.Add(1)
		go func(slot int, config map[string]any) {
			defer wg.Done()
			results[slot] = r.runSlot(ctx, slot, config)
		}(i, config)
	}
	wg.Wait()

	return map[string]any{
		"isError": false,
		"results": results,
	}
}

// runSlot validates and executes one configuration. Panics are
// contained here so a misbehaving slot degrades to an error entry.
func (r *Runner) runSlot(ctx context.Context, slot int, config map[string]any) (result map[string]any) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("comparison slot panicked", "slot", slot, "panic", rec)
			result = slotError(fmt.Sprintf("Unexpected error: %v", rec))
			if r.metrics != nil {
				r.metrics.RecordComparisonSlot("panic")
			}
		}
	}()

	providerName, haveProvider := stringValue(config, "provider")
	model, haveModel := stringValue(config, "model")
	systemPrompt, havePrompt := stringValue(config, "system_prompt")
	userPrompt, _ := stringValue(config, "user_prompt")

	if !haveProvider || !haveModel || !havePrompt {
		return r.failSlot("Missing required parameters in a comparison configuration.")
	}

	provider, ok := r.providers.Get(providerName)
	if !ok {
		return r.failSlot((&conversation.UnsupportedProviderError{Provider: providerName}).Error())
	}
	if !r.creds.HasCredential(providerName) {
		return r.failSlot(missingCredentialMessage(providerName))
	}

	// An unfamiliar model name is a warning, not a blocker: provider
	// catalogs lag behind newly released models.
	if !modelInCatalog(model, provider.DefaultModels()) {
		r.logger.Warn("model not found in default models, attempting to use it anyway",
			"slot", slot,
			"provider", providerName,
			"model", model,
		)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	generated, err := provider.Generate(callCtx, &providers.GenerateRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  floatValue(config, "temperature"),
		MaxTokens:    intValue(config, "max_tokens"),
		TopP:         floatValue(config, "top_p"),
		Extra:        extraValues(config),
	})
	if err != nil {
		r.logger.Warn("comparison slot generation failed",
			"slot", slot,
			"provider", providerName,
			"model", model,
			"error", err,
		)
		if r.metrics != nil {
			r.metrics.RecordProviderError(providerName, "comparison")
		}
		if providers.IsProviderFailure(err) {
			return r.failSlot(fmt.Sprintf("Provider error: %v", err))
		}
		return r.failSlot(fmt.Sprintf("Unexpected error: %v", err))
	}

	breakdown := costs.ForModel(generated.Usage, model, provider.DefaultModels())

	if r.metrics != nil {
		r.metrics.RecordComparisonSlot("success")
		totalCost := 0.0
		if breakdown != nil {
			totalCost = breakdown.TotalCost
		}
		r.metrics.RecordProviderCall(providerName, generated.Model, generated.ResponseTime, generated.Usage.TotalTokens, totalCost)
	}

	return slotSuccess(providerName, generated, breakdown)
}

// failSlot records the outcome and builds the slot error payload.
func (r *Runner) failSlot(message string) map[string]any {
	if r.metrics != nil {
		r.metrics.RecordComparisonSlot("error")
	}
	return slotError(message)
}

// missingCredentialMessage names the environment variable the caller
// should set; comparison requests are often the first thing a user runs,
// so the error points at the remedy.
func missingCredentialMessage(providerName string) string {
	return fmt.Sprintf("API key for provider '%s' is not available. Please set %s_API_KEY in your environment or .env file.",
		providerName, strings.ToUpper(providerName))
}

func slotError(message string) map[string]any {
	return map[string]any{
		"isError": true,
		"error":   message,
	}
}

// slotSuccess builds the per-slot success payload. Vendor-reported
// usage passes through verbatim; response fields beyond the standard
// set land under metadata.
func slotSuccess(providerName string, generated *providers.GenerateResult, breakdown *costs.Breakdown) map[string]any {
	usage := map[string]any{}
	for k, v := range generated.RawUsage {
		usage[k] = v
	}

	var costValue any = map[string]any{}
	if breakdown != nil {
		costValue = breakdown
	}

	metadata := map[string]any{}
	if generated.FinishReason != "" {
		metadata["finish_reason"] = generated.FinishReason
	}

	return map[string]any{
		"isError":       false,
		"response":      generated.Text,
		"model":         generated.Model,
		"provider":      providerName,
		"usage":         usage,
		"costs":         costValue,
		"response_time": generated.ResponseTime,
		"metadata":      metadata,
	}
}

func modelInCatalog(model string, catalog []providers.ModelInfo) bool {
	for _, info := range catalog {
		if info.Name == model {
			return true
		}
	}
	return false
}
