package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"promptlab/saturn/pkg/telemetry/logging"
	"promptlab/saturn/pkg/telemetry/metrics"
)

// Checkpointer is implemented by stores that support an explicit
// durability checkpoint, such as the SQLite store's WAL checkpoint.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// Maintenance runs periodic housekeeping against the conversation
// store: a durability checkpoint when the store supports one, plus a
// summary log and gauge refresh. Scheduling uses cron syntax.
type Maintenance struct {
	store    Store
	schedule string
	cron     *cron.Cron
	logger   *logging.Logger
	metrics  *metrics.Collector

	mu      sync.Mutex
	running bool
}

// NewMaintenance creates a maintenance scheduler for the store.
// schedule is a standard cron expression; empty disables scheduling.
func NewMaintenance(store Store, schedule string, logger *logging.Logger, collector *metrics.Collector) *Maintenance {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Maintenance{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
		metrics:  collector,
	}
}

// Start begins scheduled maintenance. With an empty schedule it does
// nothing. The scheduler stops itself when the context is cancelled.
func (m *Maintenance) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.schedule == "" {
		m.logger.Info("maintenance schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(m.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", m.schedule, err)
	}

	if _, err := m.cron.AddFunc(m.schedule, func() {
		m.runCycle(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	m.cron.Start()
	m.running = true

	m.logger.Info("store maintenance scheduler started", "schedule", m.schedule)

	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	return nil
}

// runCycle executes one maintenance pass.
func (m *Maintenance) runCycle(ctx context.Context) {
	if checkpointer, ok := m.store.(Checkpointer); ok {
		if err := checkpointer.Checkpoint(ctx); err != nil {
			m.logger.Error("scheduled checkpoint failed", "error", err)
		} else {
			m.logger.Debug("scheduled checkpoint completed")
		}
	}

	count, err := m.store.Count(ctx)
	if err != nil {
		m.logger.Error("conversation count failed during maintenance", "error", err)
		return
	}

	if m.metrics != nil {
		m.metrics.SetActiveConversations(count)
	}
	m.logger.Info("store maintenance completed", "active_conversations", count)
}

// Stop stops the scheduler and waits for a running cycle to complete.
func (m *Maintenance) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cron != nil && m.running {
		ctx := m.cron.Stop()
		<-ctx.Done()
		m.running = false
		m.logger.Info("store maintenance scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (m *Maintenance) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// NextRun returns the next scheduled maintenance time, or nil when
// nothing is scheduled.
func (m *Maintenance) NextRun() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
