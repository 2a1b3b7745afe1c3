package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domain "sagra/internal/domain/outbox"
)

// OutboxStore is the persistence the processor needs.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// ActionExecutor performs one kind of side effect.
type ActionExecutor interface {
	// Execute runs the action for payload and returns the provider's ID.
	Execute(ctx context.Context, payload string) (string, error)
}

// ErrDeliveryFailed is returned by ProcessSingle when the action ran and failed.
var ErrDeliveryFailed = errors.New("delivery failed")

// Default backoff and batch settings.
const (
	DefaultOutboxBaseDelay = 30 * time.Second
	DefaultOutboxMaxDelay  = time.Hour
	DefaultOutboxBatchSize = 10
)

// OutboxProcessor delivers queued entries with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStore
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a processor. Non-positive delays fall back to the defaults.
// PRE: store is non-nil; executors maps action types to their executor
// POST: Returns a processor ready for ProcessPending
func NewOutboxProcessor(store OutboxStore, executors map[string]ActionExecutor, baseDelay, maxDelay time.Duration) *OutboxProcessor {
	if baseDelay <= 0 {
		baseDelay = DefaultOutboxBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultOutboxMaxDelay
	}
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: baseDelay,
		maxDelay:  maxDelay,
		batchSize: DefaultOutboxBatchSize,
		now:       time.Now,
	}
}

// ProcessPending runs every due entry of the oldest pending batch.
// PRE: ctx is valid
// POST: Returns how many entries were delivered; per-entry failures are logged and recorded on the entry
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (int, error) {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending outbox entries: %w", err)
	}

	delivered := 0
	for _, entry := range entries {
		if p.now().Before(entry.DueAt(p.baseDelay, p.maxDelay)) {
			continue
		}
		updated, err := p.run(ctx, entry)
		if err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
			continue
		}
		if updated.Status == domain.StatusDone {
			delivered++
		}
	}
	return delivered, nil
}

// ProcessSingle retries one entry immediately, ignoring backoff.
// PRE: entryID is non-empty
// POST: Entry attempted and saved; terminal entries return domain.ErrTerminal,
// a failed attempt returns ErrDeliveryFailed
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.IsTerminal() {
		return fmt.Errorf("entry %s: %w", entryID, domain.ErrTerminal)
	}
	updated, err := p.run(ctx, entry)
	if err != nil {
		return err
	}
	if updated.Status != domain.StatusDone {
		return fmt.Errorf("entry %s: %w: %s", entryID, ErrDeliveryFailed, updated.ErrorMessage)
	}
	return nil
}

// AbandonEntry stops further attempts for an entry.
// PRE: entryID is non-empty
// POST: Entry status is abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	entry.MarkAbandoned()
	slog.Info("outbox_entry_abandoned", "entry_id", entry.ID, "attempts", entry.Attempts)
	return p.store.Save(ctx, entry)
}

// run attempts entry once and saves the outcome. The error is reserved for
// failures to record the outcome; delivery failures live on the returned entry.
func (p *OutboxProcessor) run(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	entry.MarkAttempt(p.now())

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkFailed(fmt.Errorf("no executor registered for action type %q", entry.ActionType))
		return entry, p.store.Save(ctx, entry)
	}

	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "status", entry.Status, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return entry, p.store.Save(ctx, entry)
}

// StartBackgroundWorker processes the outbox every interval until stopCh closes.
// PRE: interval > 0
// POST: Worker goroutine started; it exits when stopCh is closed
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if n, err := processor.ProcessPending(ctx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err.Error())
				} else if n > 0 {
					slog.Info("outbox_delivered", "count", n)
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
}
