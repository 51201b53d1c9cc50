package conversation

import "context"

// Store is the durable keyed storage for conversation records and their
// ordered message histories. It is the only shared mutable resource in
// the harness and the unit of durability across process restarts.
//
// Every mutating method is atomic: it either fully commits or leaves the
// store unchanged. The manager relies on this to guarantee that a failed
// provider call never leaves an orphan record or a dangling user message.
//
// Implementations return *NotFoundError for operations that target a
// nonexistent conversation id.
type Store interface {
	// Create persists a new conversation record together with its first
	// exchange (user message, assistant reply, accounting snapshot) as
	// one atomic unit.
	Create(ctx context.Context, conv *Conversation, first Exchange) error

	// Append commits one further exchange to an existing conversation:
	// both messages are appended in order and the usage/costs/latency
	// snapshot is overwritten with the exchange's values.
	Append(ctx context.Context, id string, ex Exchange) error

	// Get returns the conversation record with its full ordered history.
	Get(ctx context.Context, id string) (*Conversation, error)

	// List returns all conversations with their histories, in no
	// particular order.
	List(ctx context.Context) ([]*Conversation, error)

	// Delete removes the conversation record and all its messages as one
	// atomic unit.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored conversations.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
