package conversation

import (
	"time"

	"promptlab/saturn/pkg/processing/costs"
)

// Message role constants. Histories never contain system entries; the
// system prompt lives on the conversation record.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation's ordered, append-only history.
type Message struct {
	// Role identifies the message sender (user or assistant)
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// Conversation is a stateful dialogue session. Provider, model, and
// system prompt are fixed at creation; only history, usage, costs, and
// latency mutate over the conversation's lifetime.
type Conversation struct {
	// ID is the opaque unique identifier, generated at creation
	ID string `json:"conversation_id"`

	// Provider is the provider name the conversation is bound to
	Provider string `json:"provider"`

	// Model is the model name the conversation is bound to
	Model string `json:"model"`

	// SystemPrompt is the immutable system instruction
	SystemPrompt string `json:"system_prompt"`

	// Hyperparameters holds the sampling parameters and provider-specific
	// extras captured at start
	Hyperparameters map[string]any `json:"hyperparameters"`

	// History is the ordered user/assistant message history
	History []Message `json:"history"`

	// Usage is the vendor-vocabulary token usage of the most recent
	// exchange only; it is overwritten per turn, never accumulated
	Usage map[string]int `json:"usage"`

	// Costs is the cost breakdown of the most recent exchange, nil when
	// the model has no pricing data
	Costs *costs.Breakdown `json:"costs"`

	// ResponseTime is the most recent exchange's latency in seconds
	ResponseTime float64 `json:"response_time"`

	// CreatedAt is when the conversation was started
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the conversation last committed a turn
	UpdatedAt time.Time `json:"updated_at"`
}

// Exchange is one committed turn: the user message, the assistant reply,
// and the accounting snapshot for that turn. Stores persist an exchange
// as a single atomic unit.
type Exchange struct {
	UserMessage      Message
	AssistantMessage Message
	Usage            map[string]int
	Costs            *costs.Breakdown
	ResponseTime     float64
}

// summarySystemPromptLimit caps the system prompt length in list summaries.
const summarySystemPromptLimit = 100

// Summary is the per-conversation digest returned by the list operation.
type Summary struct {
	Provider               string `json:"provider"`
	Model                  string `json:"model"`
	FirstUserMessage       string `json:"first_user_message"`
	LatestAssistantMessage string `json:"latest_assistant_message"`
	MessageCount           int    `json:"message_count"`
	SystemPrompt           string `json:"system_prompt"`
}

// Summarize builds the list digest for a conversation: oldest user
// message, newest assistant message, message count, and the system
// prompt truncated to 100 characters with an ellipsis marker.
func Summarize(conv *Conversation) Summary {
	var firstUser, latestAssistant string
	for _, msg := range conv.History {
		if msg.Role == RoleUser && firstUser == "" {
			firstUser = msg.Content
		}
		if msg.Role == RoleAssistant {
			latestAssistant = msg.Content
		}
	}

	// The limit counts characters, not bytes; slicing runes keeps
	// multibyte prompts intact and never splits a code point.
	systemPrompt := conv.SystemPrompt
	if runes := []rune(systemPrompt); len(runes) > summarySystemPromptLimit {
		systemPrompt = string(runes[:summarySystemPromptLimit]) + "..."
	}

	return Summary{
		Provider:               conv.Provider,
		Model:                  conv.Model,
		FirstUserMessage:       firstUser,
		LatestAssistantMessage: latestAssistant,
		MessageCount:           len(conv.History),
		SystemPrompt:           systemPrompt,
	}
}
