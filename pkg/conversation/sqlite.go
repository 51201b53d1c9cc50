package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"promptlab/saturn/pkg/processing/costs"
)

// SQLiteStore implements Store using SQLite for persistence.
// Conversations and their messages live in two tables; every mutating
// method runs inside an explicit transaction so a turn commits fully or
// not at all. WAL mode keeps readers unblocked during writes.
type SQLiteStore struct {
	db        *sql.DB
	dbPath    string
	mu        sync.RWMutex
	closeOnce sync.Once

	// preparedStatements contains pre-compiled SQL for the hot paths
	insertConvStmt  *sql.Stmt
	insertMsgStmt   *sql.Stmt
	updateSnapStmt  *sql.Stmt
	selectConvStmt  *sql.Stmt
	selectMsgsStmt  *sql.Stmt
	maxSeqStmt      *sql.Stmt
	deleteConvStmt  *sql.Stmt
	deleteMsgsStmt  *sql.Stmt
	countConvsStmt  *sql.Stmt
	selectConvsStmt *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite store.
type SQLiteStoreConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// schema creates the conversation tables. Message order is carried by
// the per-conversation seq column, which is the only ordering key.
const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	system_prompt TEXT NOT NULL,
	hyperparameters TEXT NOT NULL DEFAULT '{}',
	usage TEXT,
	costs TEXT,
	response_time REAL NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	conversation_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (conversation_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);
`

// NewSQLiteStore opens (or creates) the conversation database at path
// with default settings.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{Path: path})
}

// NewSQLiteStoreWithConfig opens the store with custom configuration.
// Schema initialization failure here is the only fatal storage
// condition; everything later reduces to per-operation errors.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	// modernc.org/sqlite takes pragmas as _pragma=name(value) pairs;
	// the mattn-style _journal_mode keys are silently ignored by it.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:     db,
		dbPath: cfg.Path,
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return s, nil
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStore) prepareStatements() error {
	stmts := []struct {
		target **sql.Stmt
		query  string
	}{
		{&s.insertConvStmt, `
			INSERT INTO conversations
				(id, provider, model, system_prompt, hyperparameters, usage, costs, response_time, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`},
		{&s.insertMsgStmt, `
			INSERT INTO messages (conversation_id, seq, role, content, created_at)
			VALUES (?, ?, ?, ?, ?)
		`},
		{&s.updateSnapStmt, `
			UPDATE conversations
			SET usage = ?, costs = ?, response_time = ?, updated_at = ?
			WHERE id = ?
		`},
		{&s.selectConvStmt, `
			SELECT id, provider, model, system_prompt, hyperparameters, usage, costs, response_time, created_at, updated_at
			FROM conversations
			WHERE id = ?
		`},
		{&s.selectMsgsStmt, `
			SELECT role, content
			FROM messages
			WHERE conversation_id = ?
			ORDER BY seq ASC
		`},
		{&s.maxSeqStmt, `
			SELECT COALESCE(MAX(seq), -1)
			FROM messages
			WHERE conversation_id = ?
		`},
		{&s.deleteConvStmt, `DELETE FROM conversations WHERE id = ?`},
		{&s.deleteMsgsStmt, `DELETE FROM messages WHERE conversation_id = ?`},
		{&s.countConvsStmt, `SELECT COUNT(*) FROM conversations`},
		{&s.selectConvsStmt, `
			SELECT id, provider, model, system_prompt, hyperparameters, usage, costs, response_time, created_at, updated_at
			FROM conversations
		`},
	}

	for _, st := range stmts {
		prepared, err := s.db.Prepare(st.query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		*st.target = prepared
	}

	return nil
}

// Create persists a new conversation record together with its first
// exchange as one transaction.
func (s *SQLiteStore) Create(ctx context.Context, conv *Conversation, first Exchange) error {
	if conv == nil {
		return fmt.Errorf("conversation cannot be nil")
	}
	if conv.ID == "" {
		return fmt.Errorf("conversation id cannot be empty")
	}

	hyperJSON, err := marshalField(conv.Hyperparameters)
	if err != nil {
		return fmt.Errorf("failed to marshal hyperparameters: %w", err)
	}
	usageJSON, err := marshalField(first.Usage)
	if err != nil {
		return fmt.Errorf("failed to marshal usage: %w", err)
	}
	costsJSON, err := marshalField(first.Costs)
	if err != nil {
		return fmt.Errorf("failed to marshal costs: %w", err)
	}

	now := time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	conv.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.StmtContext(ctx, s.insertConvStmt).ExecContext(ctx,
		conv.ID,
		conv.Provider,
		conv.Model,
		conv.SystemPrompt,
		hyperJSON,
		usageJSON,
		costsJSON,
		first.ResponseTime,
		conv.CreatedAt.Unix(),
		conv.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	insertMsg := tx.StmtContext(ctx, s.insertMsgStmt)
	for seq, msg := range []Message{first.UserMessage, first.AssistantMessage} {
		if _, err := insertMsg.ExecContext(ctx, conv.ID, seq, msg.Role, msg.Content, now.Unix()); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// Append commits one further exchange to an existing conversation as one
// transaction: two messages in order plus the snapshot overwrite.
func (s *SQLiteStore) Append(ctx context.Context, id string, ex Exchange) error {
	if id == "" {
		return fmt.Errorf("conversation id cannot be empty")
	}

	usageJSON, err := marshalField(ex.Usage)
	if err != nil {
		return fmt.Errorf("failed to marshal usage: %w", err)
	}
	costsJSON, err := marshalField(ex.Costs)
	if err != nil {
		return fmt.Errorf("failed to marshal costs: %w", err)
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.StmtContext(ctx, s.updateSnapStmt).ExecContext(ctx,
		usageJSON, costsJSON, ex.ResponseTime, now.Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{ID: id}
	}

	var maxSeq int
	if err := tx.StmtContext(ctx, s.maxSeqStmt).QueryRowContext(ctx, id).Scan(&maxSeq); err != nil {
		return fmt.Errorf("failed to read message sequence: %w", err)
	}

	insertMsg := tx.StmtContext(ctx, s.insertMsgStmt)
	for i, msg := range []Message{ex.UserMessage, ex.AssistantMessage} {
		if _, err := insertMsg.ExecContext(ctx, id, maxSeq+1+i, msg.Role, msg.Content, now.Unix()); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// Get returns the conversation with its full ordered history.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Conversation, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation id cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, err := s.scanConversation(s.selectConvStmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	if conv.History, err = s.loadMessages(ctx, id); err != nil {
		return nil, err
	}

	return conv, nil
}

// List returns all conversations with their histories.
func (s *SQLiteStore) List(ctx context.Context) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.selectConvsStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []*Conversation
	for rows.Next() {
		conv, err := s.scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for _, conv := range convs {
		if conv.History, err = s.loadMessages(ctx, conv.ID); err != nil {
			return nil, err
		}
	}

	return convs, nil
}

// Delete removes the conversation and all its messages as one transaction.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("conversation id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.StmtContext(ctx, s.deleteConvStmt).ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{ID: id}
	}

	if _, err := tx.StmtContext(ctx, s.deleteMsgsStmt).ExecContext(ctx, id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// Count returns the number of stored conversations.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.countConvsStmt.QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return count, nil
}

// Checkpoint flushes the WAL into the main database file. Called by the
// scheduled maintenance job.
func (s *SQLiteStore) Checkpoint(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(PASSIVE)"); err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}
	return nil
}

// Close releases any resources held by the store.
// Close is idempotent and safe to call multiple times.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{
			s.insertConvStmt, s.insertMsgStmt, s.updateSnapStmt,
			s.selectConvStmt, s.selectMsgsStmt, s.maxSeqStmt,
			s.deleteConvStmt, s.deleteMsgsStmt, s.countConvsStmt,
			s.selectConvsStmt,
		} {
			if stmt != nil {
				stmt.Close()
			}
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanConversation decodes one conversation row, deserializing the JSON
// snapshot columns.
func (s *SQLiteStore) scanConversation(row rowScanner) (*Conversation, error) {
	var (
		conv         Conversation
		hyperJSON    string
		usageJSON    sql.NullString
		costsJSON    sql.NullString
		createdUnix  int64
		updatedUnix  int64
		responseTime float64
	)

	err := row.Scan(
		&conv.ID,
		&conv.Provider,
		&conv.Model,
		&conv.SystemPrompt,
		&hyperJSON,
		&usageJSON,
		&costsJSON,
		&responseTime,
		&createdUnix,
		&updatedUnix,
	)
	if err != nil {
		return nil, err
	}

	conv.ResponseTime = responseTime
	conv.CreatedAt = time.Unix(createdUnix, 0)
	conv.UpdatedAt = time.Unix(updatedUnix, 0)

	if hyperJSON != "" {
		if err := json.Unmarshal([]byte(hyperJSON), &conv.Hyperparameters); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hyperparameters: %w", err)
		}
	}
	if usageJSON.Valid && usageJSON.String != "" {
		if err := json.Unmarshal([]byte(usageJSON.String), &conv.Usage); err != nil {
			return nil, fmt.Errorf("failed to unmarshal usage: %w", err)
		}
	}
	if costsJSON.Valid && costsJSON.String != "" {
		conv.Costs = &costs.Breakdown{}
		if err := json.Unmarshal([]byte(costsJSON.String), conv.Costs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal costs: %w", err)
		}
	}

	return &conv, nil
}

// loadMessages reads a conversation's history in seq order.
func (s *SQLiteStore) loadMessages(ctx context.Context, id string) ([]Message, error) {
	rows, err := s.selectMsgsStmt.QueryContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	var history []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		history = append(history, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return history, nil
}

// marshalField serializes a snapshot column value, mapping nil to NULL.
func marshalField(v any) (any, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case map[string]int:
		if value == nil {
			return nil, nil
		}
	case map[string]any:
		if value == nil {
			return "{}", nil
		}
	case *costs.Breakdown:
		if value == nil {
			return nil, nil
		}
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}
