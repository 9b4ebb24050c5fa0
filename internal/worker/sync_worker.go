// Package worker consumes transaction events and mirrors them to the
// configured spreadsheet exporter.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finbook/internal/amqp"
	"finbook/internal/export"
	"finbook/internal/storage"
)

// SyncWorker applies transaction events to the export target. The
// SQLite database stays the source of truth; the spreadsheet is a
// mirror, so a row that cannot be found locally is skipped rather
// than retried forever.
type SyncWorker struct {
	storage  *storage.Repository
	appender export.TransactionAppender
	remover  export.TransactionRemover
}

func NewSyncWorker(storage *storage.Repository, appender export.TransactionAppender, remover export.TransactionRemover) *SyncWorker {
	return &SyncWorker{
		storage:  storage,
		appender: appender,
		remover:  remover,
	}
}

// HandleEvent processes a single transaction event. Returning an
// error requeues the message, so transient exporter failures are
// retried while permanently unservable events are dropped with a log
// line.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"type", ev.Type,
		"id", ev.ID)

	switch ev.Type {
	case amqp.EventTransactionCreated:
		return w.handleCreated(ctx, ev)
	case amqp.EventTransactionDeleted:
		return w.handleDeleted(ctx, ev)
	default:
		slog.WarnContext(ctx, "Unknown event type, dropping", "type", ev.Type, "id", ev.ID)
		return nil
	}
}

func (w *SyncWorker) handleCreated(ctx context.Context, ev *amqp.TransactionEvent) error {
	t, err := w.storage.GetTransaction(ctx, ev.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted before the event was consumed; the matching
			// delete event will follow, nothing to mirror.
			slog.WarnContext(ctx, "Transaction no longer exists, skipping", "id", ev.ID)
			return nil
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.appender.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction synced",
		"id", t.ID,
		"sheet_ref", ref,
		"category", t.Category,
		"amount_cents", t.Amount.Cents)
	return nil
}

func (w *SyncWorker) handleDeleted(ctx context.Context, ev *amqp.TransactionEvent) error {
	if w.remover == nil {
		slog.WarnContext(ctx, "No remover configured, skipping delete", "id", ev.ID)
		return nil
	}

	if err := w.remover.Remove(ctx, ev.ID); err != nil {
		return fmt.Errorf("remove transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction removal synced",
		"id", ev.ID,
		"category", ev.Category)
	return nil
}
