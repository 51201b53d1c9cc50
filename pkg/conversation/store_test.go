package conversation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"promptlab/saturn/pkg/processing/costs"
)

// storeFactories enumerates every Store implementation; the contract
// tests below run against each.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "conversations.db"))
			if err != nil {
				t.Fatalf("failed to open sqlite store: %v", err)
			}
			return store
		},
	}
}

func sampleConversation(id string) *Conversation {
	return &Conversation{
		ID:           id,
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		SystemPrompt: "You are terse.",
		Hyperparameters: map[string]any{
			"temperature": 0.3,
		},
	}
}

func sampleExchange(user, assistant string, total int) Exchange {
	return Exchange{
		UserMessage:      Message{Role: RoleUser, Content: user},
		AssistantMessage: Message{Role: RoleAssistant, Content: assistant},
		Usage: map[string]int{
			"prompt_tokens":     total - 5,
			"completion_tokens": 5,
			"total_tokens":      total,
		},
		Costs: &costs.Breakdown{
			InputCost:  0.001,
			OutputCost: 0.002,
			TotalCost:  0.003,
			Currency:   "USD",
			Rates:      costs.RateSnapshot{InputRate: 0.15, OutputRate: 0.60},
		},
		ResponseTime: 0.42,
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close()
			ctx := context.Background()

			conv := sampleConversation("conv-1")
			if err := store.Create(ctx, conv, sampleExchange("hi", "hello", 30)); err != nil {
				t.Fatalf("Create: %v", err)
			}

			got, err := store.Get(ctx, "conv-1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}

			if got.Provider != "openai" || got.Model != "gpt-4o-mini" {
				t.Errorf("record = %+v", got)
			}
			if got.SystemPrompt != "You are terse." {
				t.Errorf("SystemPrompt = %q", got.SystemPrompt)
			}
			if temp, ok := got.Hyperparameters["temperature"].(float64); !ok || temp != 0.3 {
				t.Errorf("Hyperparameters = %v", got.Hyperparameters)
			}
			if len(got.History) != 2 {
				t.Fatalf("history length = %d, want 2", len(got.History))
			}
			if got.History[0].Content != "hi" || got.History[1].Content != "hello" {
				t.Errorf("history = %+v", got.History)
			}
			if got.Usage["total_tokens"] != 30 {
				t.Errorf("usage = %v", got.Usage)
			}
			if got.Costs == nil || got.Costs.TotalCost != 0.003 {
				t.Errorf("costs = %+v", got.Costs)
			}
			if got.ResponseTime != 0.42 {
				t.Errorf("response time = %v", got.ResponseTime)
			}
			if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
				t.Error("timestamps not set")
			}
		})
	}
}

func TestStoreAppendOrderingAndSnapshot(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close()
			ctx := context.Background()

			if err := store.Create(ctx, sampleConversation("conv-1"), sampleExchange("one", "1", 30)); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if err := store.Append(ctx, "conv-1", sampleExchange("two", "2", 50)); err != nil {
				t.Fatalf("Append: %v", err)
			}
			if err := store.Append(ctx, "conv-1", sampleExchange("three", "3", 70)); err != nil {
				t.Fatalf("Append: %v", err)
			}

			got, err := store.Get(ctx, "conv-1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}

			wantContents := []string{"one", "1", "two", "2", "three", "3"}
			if len(got.History) != len(wantContents) {
				t.Fatalf("history length = %d, want %d", len(got.History), len(wantContents))
			}
			for i, want := range wantContents {
				if got.History[i].Content != want {
					t.Errorf("history[%d] = %q, want %q", i, got.History[i].Content, want)
				}
			}

			// The accounting snapshot holds only the latest exchange.
			if got.Usage["total_tokens"] != 70 {
				t.Errorf("usage total_tokens = %d, want 70", got.Usage["total_tokens"])
			}
		})
	}
}

func TestStoreAppendUnknownID(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close()

			err := store.Append(context.Background(), "ghost", sampleExchange("x", "y", 10))

			var notFound *NotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("error = %v, want *NotFoundError", err)
			}
			if notFound.ID != "ghost" {
				t.Errorf("NotFoundError.ID = %q", notFound.ID)
			}
		})
	}
}

func TestStoreGetUnknownID(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close()

			_, err := store.Get(context.Background(), "ghost")

			var notFound *NotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("error = %v, want *NotFoundError", err)
			}
		})
	}
}

func TestStoreDeleteAndCount(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close()
			ctx := context.Background()

			for _, id := range []string{"a", "b"} {
				if err := store.Create(ctx, sampleConversation(id), sampleExchange("hi", "yo", 30)); err != nil {
					t.Fatalf("Create %s: %v", id, err)
				}
			}

			if count, _ := store.Count(ctx); count != 2 {
				t.Errorf("Count = %d, want 2", count)
			}

			if err := store.Delete(ctx, "a"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if count, _ := store.Count(ctx); count != 1 {
				t.Errorf("Count after delete = %d, want 1", count)
			}

			var notFound *NotFoundError
			if err := store.Delete(ctx, "a"); !errors.As(err, &notFound) {
				t.Errorf("second delete error = %v, want *NotFoundError", err)
			}

			convs, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(convs) != 1 || convs[0].ID != "b" {
				t.Errorf("List = %+v", convs)
			}
		})
	}
}

func TestStoreNilAccountingFields(t *testing.T) {
	// Unpriced models have no cost breakdown and some responses carry
	// no usage block; the store round-trips both as absent.
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close()
			ctx := context.Background()

			conv := sampleConversation("bare")
			conv.Hyperparameters = nil
			ex := Exchange{
				UserMessage:      Message{Role: RoleUser, Content: "hi"},
				AssistantMessage: Message{Role: RoleAssistant, Content: "yo"},
			}
			if err := store.Create(ctx, conv, ex); err != nil {
				t.Fatalf("Create: %v", err)
			}

			got, err := store.Get(ctx, "bare")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Costs != nil {
				t.Errorf("Costs = %+v, want nil", got.Costs)
			}
			if len(got.Usage) != 0 {
				t.Errorf("Usage = %v, want empty", got.Usage)
			}
		})
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Create(ctx, sampleConversation("durable"), sampleExchange("hi", "yo", 30)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "durable")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if len(got.History) != 2 || got.History[0].Content != "hi" {
		t.Errorf("history after reopen = %+v", got.History)
	}
}

func TestSQLiteStoreUsesWAL(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "conversations.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	var mode string
	if err := store.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}

	var busyTimeout int
	if err := store.db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Fatalf("PRAGMA busy_timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", busyTimeout)
	}
}

func TestSQLiteStoreCheckpoint(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "conversations.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Create(ctx, sampleConversation("c"), sampleExchange("hi", "yo", 30)); err != nil {
		t.Fatal(err)
	}
	if err := store.Checkpoint(ctx); err != nil {
		t.Errorf("Checkpoint: %v", err)
	}
}

func TestSQLiteStoreCloseIdempotent(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "conversations.db"))
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestMemoryStoreCopiesOnRead(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if err := store.Create(ctx, sampleConversation("iso"), sampleExchange("hi", "yo", 30)); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "iso")
	if err != nil {
		t.Fatal(err)
	}

	// Mutating the returned record must not leak into the store.
	got.History[0].Content = "tampered"
	got.Usage["total_tokens"] = 999
	got.Hyperparameters["temperature"] = 2.0

	fresh, err := store.Get(ctx, "iso")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.History[0].Content != "hi" {
		t.Error("history mutation leaked into store")
	}
	if fresh.Usage["total_tokens"] != 30 {
		t.Error("usage mutation leaked into store")
	}
	if temp := fresh.Hyperparameters["temperature"]; temp != 0.3 {
		t.Errorf("hyperparameter mutation leaked into store: %v", temp)
	}
}
