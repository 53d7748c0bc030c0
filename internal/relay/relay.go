// Package relay drains the ledger's changes journal into the message broker.
// The journal doubles as an outbox: every mutation appends a row inside its
// transaction, and the relay publishes rows past a persisted cursor. Delivery
// is at-least-once; consumers deduplicate by cursor.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/lumenarts/mint-ledger/internal/adapter"
	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/logger"
	"github.com/lumenarts/mint-ledger/internal/messaging"
	"github.com/lumenarts/mint-ledger/internal/store/schema"
)

// pollInterval is the idle wait between cycles when the journal has no new rows
const pollInterval = 3 * time.Second

// Config holds the relay tuning knobs
type Config struct {
	// BatchSize caps the journal rows drained per cycle
	BatchSize int
	// WorkerPoolSize bounds concurrent publishes; rows for the same subject
	// are always published in order by one worker
	WorkerPoolSize int
	// PublishTimeout bounds the retry budget for one row
	PublishTimeout time.Duration
}

// JournalSource is the slice of the store the relay reads and advances
type JournalSource interface {
	GetChangesAfter(ctx context.Context, cursor int64, limit int) ([]*schema.ChangesJournal, error)
	GetRelayCursor(ctx context.Context) (int64, error)
	SetRelayCursor(ctx context.Context, cursor int64) error
}

// Relay drains the changes journal into the broker
type Relay interface {
	// Start runs the drain loop until the context is canceled or Stop is called
	Start(ctx context.Context) error
	// Stop gracefully stops the relay
	Stop(ctx context.Context) error
}

type journalRelay struct {
	config    Config
	source    JournalSource
	publisher messaging.Publisher
	clock     adapter.Clock

	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// New creates a journal relay
func New(cfg Config, source JournalSource, publisher messaging.Publisher, clock adapter.Clock) Relay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 4
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 30 * time.Second
	}
	return &journalRelay{
		config:    cfg,
		source:    source,
		publisher: publisher,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start begins the relay's main loop
func (r *journalRelay) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return fmt.Errorf("relay already running")
	}
	defer func() {
		r.running.Store(false)
		close(r.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting journal relay",
		zap.Int("batch_size", r.config.BatchSize),
		zap.Int("worker_pool_size", r.config.WorkerPoolSize))

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Journal relay stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-r.stopChan:
			logger.InfoCtx(ctx, "Journal relay stop requested")
			return nil
		default:
			if err := r.runCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
		}
	}
}

// Stop gracefully stops the relay
func (r *journalRelay) Stop(ctx context.Context) error {
	if !r.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	close(r.stopChan)

	select {
	case <-r.stoppedCh:
		logger.InfoCtx(ctx, "Journal relay stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Journal relay stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runCycle drains one batch of journal rows. Rows are grouped by subject so
// per-subject order is preserved while distinct subjects publish in parallel.
// The cursor only advances past rows that were published; a failed row halts
// its subject and caps the advance, so nothing is ever skipped.
func (r *journalRelay) runCycle(ctx context.Context) error {
	cursor, err := r.source.GetRelayCursor(ctx)
	if err != nil {
		return fmt.Errorf("failed to get relay cursor: %w", err)
	}

	changes, err := r.source.GetChangesAfter(ctx, cursor, r.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get journal changes: %w", err)
	}

	if len(changes) == 0 {
		if !r.sleep(ctx, pollInterval) {
			return ctx.Err()
		}
		return nil
	}

	// Group rows by subject, preserving cursor order within each group
	groupOrder := make([]string, 0, len(changes))
	groups := make(map[string][]*schema.ChangesJournal)
	for _, change := range changes {
		key := change.SubjectType + ":" + change.SubjectID
		if _, ok := groups[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], change)
	}

	var mu sync.Mutex
	lowestFailed := int64(0)

	pool := pond.NewPool(r.config.WorkerPoolSize, pond.WithContext(ctx))
	for _, key := range groupOrder {
		group := groups[key]
		pool.Submit(func() {
			for _, change := range group {
				if err := r.publishWithRetry(ctx, change); err != nil {
					logger.ErrorCtx(ctx, fmt.Errorf("failed to publish journal row: %w", err),
						zap.Int64("cursor", change.Cursor),
						zap.String("subject", key))

					mu.Lock()
					if lowestFailed == 0 || change.Cursor < lowestFailed {
						lowestFailed = change.Cursor
					}
					mu.Unlock()
					return
				}
			}
		})
	}
	pool.StopAndWait()

	next := changes[len(changes)-1].Cursor
	if lowestFailed != 0 {
		next = lowestFailed - 1
	}
	if next > cursor {
		if err := r.source.SetRelayCursor(ctx, next); err != nil {
			return fmt.Errorf("failed to advance relay cursor: %w", err)
		}
		logger.InfoCtx(ctx, "Journal batch relayed",
			zap.Int("count", len(changes)),
			zap.Int64("cursor", next))
	}

	return nil
}

// publishWithRetry publishes one row, retrying transient broker errors with
// exponential backoff
func (r *journalRelay) publishWithRetry(ctx context.Context, change *schema.ChangesJournal) error {
	event, err := eventFromRow(change)
	if err != nil {
		// A row that cannot be decoded will never succeed
		return backoff.Permanent(err)
	}

	operation := func() error {
		return r.publisher.PublishEvent(ctx, event)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = r.config.PublishTimeout

	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

// sleep waits for the duration but can be interrupted by context cancellation
func (r *journalRelay) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-r.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-r.stopChan:
		return false
	}
}

// eventFromRow converts a journal row into the wire event
func eventFromRow(change *schema.ChangesJournal) (*domain.LedgerEvent, error) {
	event := &domain.LedgerEvent{
		Cursor:      change.Cursor,
		SubjectType: domain.SubjectType(change.SubjectType),
		SubjectID:   change.SubjectID,
		Action:      domain.Action(change.Action),
		ChangedAt:   change.ChangedAt,
	}

	if len(change.Meta) > 0 {
		if err := json.Unmarshal(change.Meta, &event.Meta); err != nil {
			return nil, fmt.Errorf("failed to decode journal meta: %w", err)
		}
	}

	return event, nil
}
