package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"promptlab/saturn/pkg/processing/costs"
	"promptlab/saturn/pkg/providers"
	"promptlab/saturn/pkg/telemetry/logging"
	"promptlab/saturn/pkg/telemetry/metrics"
)

// Operation modes accepted by Execute.
const (
	ModeStart    = "start"
	ModeContinue = "continue"
	ModeGet      = "get"
	ModeList     = "list"
	ModeClose    = "close"
)

// ProviderLookup resolves provider names to adapters. Satisfied by
// *registry.Registry; tests supply a fake.
type ProviderLookup interface {
	Get(name string) (providers.Provider, bool)
}

// Credentials answers whether a provider has a usable credential.
// Non-throwing by contract.
type Credentials interface {
	HasCredential(provider string) bool
}

// Manager orchestrates the five conversation operations. It owns the
// validation ordering (required fields, then provider, then credential,
// then adapter call, then persistence) and keeps the store consistent
// with adapter outcomes: a failed turn never leaves partial state.
type Manager struct {
	store       Store
	providers   ProviderLookup
	creds       Credentials
	logger      *logging.Logger
	metrics     *metrics.Collector
	callTimeout time.Duration
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Store is the conversation store (required).
	Store Store

	// Providers resolves provider names to adapters (required).
	Providers ProviderLookup

	// Credentials is the credential presence check (required).
	Credentials Credentials

	// Logger is the structured logger. Defaults to a no-op logger.
	Logger *logging.Logger

	// Metrics is the optional metrics collector.
	Metrics *metrics.Collector

	// CallTimeout bounds each provider adapter call.
	// Default: 2 minutes.
	CallTimeout time.Duration
}

// NewManager creates a conversation manager.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	callTimeout := cfg.CallTimeout
	if callTimeout == 0 {
		callTimeout = 2 * time.Minute
	}

	return &Manager{
		store:       cfg.Store,
		providers:   cfg.Providers,
		creds:       cfg.Credentials,
		logger:      logger,
		metrics:     cfg.Metrics,
		callTimeout: callTimeout,
	}
}

// Execute dispatches one operation from a flat argument map and returns
// a JSON-able result map with an isError flag. All failures, including
// panics, reduce to the error shape; nothing escapes to the transport.
func (m *Manager) Execute(ctx context.Context, args map[string]any) (result map[string]any) {
	start := time.Now()
	mode, _ := args["mode"].(string)

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("operation panicked", "mode", mode, "panic", r)
			result = errorResult(fmt.Sprintf("Unexpected error: %v", r))
		}
		if m.metrics != nil {
			outcome := "success"
			if isErr, _ := result["isError"].(bool); isErr {
				outcome = "error"
			}
			m.metrics.RecordOperation(mode, outcome, time.Since(start))
		}
	}()

	if mode == "" {
		return errorResult("Missing required parameter 'mode'.")
	}

	switch mode {
	case ModeStart:
		for _, param := range []string{"provider", "model", "system_prompt"} {
			if _, ok := stringArg(args, param); !ok {
				return errorResult((&ValidationError{Param: param, Mode: ModeStart}).Error())
			}
		}
		return m.start(ctx, args)

	case ModeContinue:
		if _, ok := stringArg(args, "conversation_id"); !ok {
			return errorResult((&ValidationError{Param: "conversation_id", Mode: ModeContinue}).Error())
		}
		return m.continueConversation(ctx, args)

	case ModeGet:
		if _, ok := stringArg(args, "conversation_id"); !ok {
			return errorResult((&ValidationError{Param: "conversation_id", Mode: ModeGet}).Error())
		}
		return m.get(ctx, args)

	case ModeList:
		return m.list(ctx)

	case ModeClose:
		if _, ok := stringArg(args, "conversation_id"); !ok {
			return errorResult((&ValidationError{Param: "conversation_id", Mode: ModeClose}).Error())
		}
		return m.close(ctx, args)

	default:
		return errorResult("Invalid mode. Must be 'start', 'continue', 'get', 'list', or 'close'.")
	}
}

// start creates a new conversation. Validation and the adapter call both
// precede any persistence: a failure at any stage leaves no record.
func (m *Manager) start(ctx context.Context, args map[string]any) map[string]any {
	providerName, _ := stringArg(args, "provider")
	model, _ := stringArg(args, "model")
	systemPrompt, _ := stringArg(args, "system_prompt")
	userPrompt := stringOr(args, "user_prompt", "")

	temperature := floatArg(args, "temperature")
	maxTokens := intArg(args, "max_tokens")
	topP := floatArg(args, "top_p")
	extra := extraArgs(args)

	provider, ok := m.providers.Get(providerName)
	if !ok {
		return errorResult((&UnsupportedProviderError{Provider: providerName}).Error())
	}
	if !m.creds.HasCredential(providerName) {
		return errorResult((&MissingCredentialError{Provider: providerName}).Error())
	}

	hyperparameters := make(map[string]any)
	if temperature != nil {
		hyperparameters["temperature"] = *temperature
	}
	if maxTokens != nil {
		hyperparameters["max_tokens"] = *maxTokens
	}
	if topP != nil {
		hyperparameters["top_p"] = *topP
	}
	for k, v := range extra {
		hyperparameters[k] = v
	}

	callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()

	result, err := provider.Generate(callCtx, &providers.GenerateRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		TopP:         topP,
		Extra:        extra,
	})
	if err != nil {
		m.logger.Warn("start generation failed",
			"provider", providerName,
			"model", model,
			"error", err,
		)
		if m.metrics != nil {
			m.metrics.RecordProviderError(providerName, errorKind(err))
		}
		return errorResult(generationErrorMessage(err))
	}

	breakdown := costs.ForModel(result.Usage, model, provider.DefaultModels())

	conv := &Conversation{
		ID:              uuid.NewString(),
		Provider:        providerName,
		Model:           model,
		SystemPrompt:    systemPrompt,
		Hyperparameters: hyperparameters,
	}
	exchange := Exchange{
		UserMessage:      Message{Role: RoleUser, Content: userPrompt},
		AssistantMessage: Message{Role: RoleAssistant, Content: result.Text},
		Usage:            result.RawUsage,
		Costs:            breakdown,
		ResponseTime:     result.ResponseTime,
	}

	if err := m.store.Create(ctx, conv, exchange); err != nil {
		m.logger.Error("failed to persist conversation",
			"conversation_id", conv.ID,
			"error", err,
		)
		return errorResult(fmt.Sprintf("Unexpected error during generation: %v", err))
	}

	m.logger.Info("conversation started",
		"conversation_id", conv.ID,
		"provider", providerName,
		"model", result.Model,
	)
	m.recordTurn(providerName, result, breakdown)
	m.updateActiveGauge(ctx)

	return turnResult(conv.ID, result, breakdown)
}

// continueConversation appends one turn to an existing conversation.
// The user message and assistant reply commit together only after the
// adapter succeeds, so a failed call leaves the history untouched.
func (m *Manager) continueConversation(ctx context.Context, args map[string]any) map[string]any {
	id, _ := stringArg(args, "conversation_id")
	userPrompt := stringOr(args, "user_prompt", "")

	// The system prompt is immutable after start; a supplied value is
	// ignored, not an error.
	if _, supplied := args["system_prompt"]; supplied {
		m.logger.Warn("system_prompt parameter ignored in conversation continuation",
			"conversation_id", id,
		)
	}

	conv, err := m.store.Get(ctx, id)
	if err != nil {
		return errorResult(operationErrorMessage(err))
	}

	provider, ok := m.providers.Get(conv.Provider)
	if !ok {
		return errorResult((&UnsupportedProviderError{Provider: conv.Provider}).Error())
	}

	history := make([]providers.Message, 0, len(conv.History)+1)
	for _, msg := range conv.History {
		history = append(history, providers.Message{Role: msg.Role, Content: msg.Content})
	}
	history = append(history, providers.Message{Role: providers.RoleUser, Content: userPrompt})

	// Only the recognized sampling parameters are replayed on
	// continuation; extras captured at start apply to the first turn only.
	temperature := hyperFloat(conv.Hyperparameters, "temperature")
	maxTokens := hyperInt(conv.Hyperparameters, "max_tokens")
	topP := hyperFloat(conv.Hyperparameters, "top_p")

	callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()

	result, err := provider.GenerateWithHistory(callCtx, &providers.GenerateRequest{
		Model:        conv.Model,
		SystemPrompt: conv.SystemPrompt,
		History:      history,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		TopP:         topP,
	})
	if err != nil {
		m.logger.Warn("continuation generation failed",
			"conversation_id", id,
			"provider", conv.Provider,
			"error", err,
		)
		if m.metrics != nil {
			m.metrics.RecordProviderError(conv.Provider, errorKind(err))
		}
		return errorResult(continuationErrorMessage(err))
	}

	breakdown := costs.ForModel(result.Usage, conv.Model, provider.DefaultModels())

	exchange := Exchange{
		UserMessage:      Message{Role: RoleUser, Content: userPrompt},
		AssistantMessage: Message{Role: RoleAssistant, Content: result.Text},
		Usage:            result.RawUsage,
		Costs:            breakdown,
		ResponseTime:     result.ResponseTime,
	}

	if err := m.store.Append(ctx, id, exchange); err != nil {
		m.logger.Error("failed to persist turn",
			"conversation_id", id,
			"error", err,
		)
		return errorResult(operationErrorMessage(err))
	}

	m.recordTurn(conv.Provider, result, breakdown)

	return turnResult(id, result, breakdown)
}

// get is a pure read of one conversation.
func (m *Manager) get(ctx context.Context, args map[string]any) map[string]any {
	id, _ := stringArg(args, "conversation_id")

	conv, err := m.store.Get(ctx, id)
	if err != nil {
		return errorResult(operationErrorMessage(err))
	}

	history := conv.History
	if history == nil {
		history = []Message{}
	}
	hyperparameters := conv.Hyperparameters
	if hyperparameters == nil {
		hyperparameters = map[string]any{}
	}

	return map[string]any{
		"isError":         false,
		"conversation_id": conv.ID,
		"history":         history,
		"usage":           usageValue(conv.Usage),
		"costs":           costsValue(conv.Costs),
		"response_time":   conv.ResponseTime,
		"provider":        conv.Provider,
		"model":           conv.Model,
		"system_prompt":   conv.SystemPrompt,
		"hyperparameters": hyperparameters,
	}
}

// list is a pure read summarizing every conversation.
func (m *Manager) list(ctx context.Context) map[string]any {
	convs, err := m.store.List(ctx)
	if err != nil {
		return errorResult(operationErrorMessage(err))
	}

	summaries := make(map[string]Summary, len(convs))
	for _, conv := range convs {
		summaries[conv.ID] = Summarize(conv)
	}

	return map[string]any{
		"isError":            false,
		"conversation_count": len(convs),
		"conversations":      summaries,
	}
}

// close deletes a conversation and its messages. A second close of the
// same id fails with not-found and has no side effect.
func (m *Manager) close(ctx context.Context, args map[string]any) map[string]any {
	id, _ := stringArg(args, "conversation_id")

	if err := m.store.Delete(ctx, id); err != nil {
		return errorResult(operationErrorMessage(err))
	}

	m.logger.Info("conversation closed", "conversation_id", id)
	m.updateActiveGauge(ctx)

	return map[string]any{
		"isError": false,
		"message": fmt.Sprintf("Conversation '%s' closed.", id),
	}
}

// recordTurn feeds the metrics collector after a successful exchange.
func (m *Manager) recordTurn(provider string, result *providers.GenerateResult, breakdown *costs.Breakdown) {
	if m.metrics == nil {
		return
	}
	totalCost := 0.0
	if breakdown != nil {
		totalCost = breakdown.TotalCost
	}
	m.metrics.RecordProviderCall(provider, result.Model, result.ResponseTime, result.Usage.TotalTokens, totalCost)
}

// updateActiveGauge refreshes the active-conversation gauge from the store.
func (m *Manager) updateActiveGauge(ctx context.Context) {
	if m.metrics == nil {
		return
	}
	if count, err := m.store.Count(ctx); err == nil {
		m.metrics.SetActiveConversations(count)
	}
}

// turnResult builds the shared success payload for start and continue.
func turnResult(id string, result *providers.GenerateResult, breakdown *costs.Breakdown) map[string]any {
	return map[string]any{
		"isError":         false,
		"conversation_id": id,
		"response":        result.Text,
		"model":           result.Model,
		"usage":           usageValue(result.RawUsage),
		"costs":           costsValue(breakdown),
		"response_time":   result.ResponseTime,
	}
}

// errorResult builds the uniform error payload.
func errorResult(message string) map[string]any {
	return map[string]any{
		"isError": true,
		"error":   message,
	}
}

// usageValue keeps the payload shape stable when no usage was reported.
func usageValue(usage map[string]int) any {
	if usage == nil {
		return map[string]any{}
	}
	return usage
}

// costsValue keeps the payload shape stable when pricing was unavailable.
func costsValue(breakdown *costs.Breakdown) any {
	if breakdown == nil {
		return map[string]any{}
	}
	return breakdown
}

// generationErrorMessage reduces a start-time adapter failure to the
// caller-facing error string.
func generationErrorMessage(err error) string {
	if providers.IsProviderFailure(err) {
		return fmt.Sprintf("Provider error: %v", err)
	}
	return fmt.Sprintf("Unexpected error during generation: %v", err)
}

// continuationErrorMessage is the continuation counterpart.
func continuationErrorMessage(err error) string {
	if providers.IsProviderFailure(err) {
		return fmt.Sprintf("Provider error: %v", err)
	}
	return fmt.Sprintf("Unexpected error during continuation: %v", err)
}

// operationErrorMessage reduces store-level failures, keeping the typed
// operation errors verbatim.
func operationErrorMessage(err error) string {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return notFound.Error()
	}
	return fmt.Sprintf("Unexpected error: %v", err)
}

// errorKind labels an adapter failure for metrics.
func errorKind(err error) string {
	var (
		connErr    *providers.ConnectionError
		authErr    *providers.AuthError
		rateErr    *providers.RateLimitError
		timeoutErr *providers.TimeoutError
		parseErr   *providers.ParseError
	)
	switch {
	case errors.As(err, &connErr):
		return "connection"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "api"
	}
}
