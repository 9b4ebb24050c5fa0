package services

import (
	"context"
	"fmt"
	"log/slog"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/storage"
)

// TransactionService orchestrates transaction writes across SQLite
// and AMQP. SQLite is the source of truth; publish failures are
// logged and never fail the request.
type TransactionService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.Repository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Create saves a transaction locally and publishes a created event.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publish(ctx, amqp.NewCreatedEvent(id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish created event",
			"id", id, "error", err)
	}

	return id, nil
}

// Delete removes a transaction owned by userID and publishes a
// deleted event carrying the row data, since the row is gone by the
// time the worker consumes it.
func (s *TransactionService) Delete(ctx context.Context, id, userID int64) error {
	t, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if t.UserID != userID {
		return storage.ErrNotFound
	}

	if err := s.storage.DeleteTransaction(ctx, id, userID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	ev := amqp.NewDeletedEvent(id, t.Date.ISO(), t.Description, t.Category, t.Amount.Cents)
	if err := s.publish(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish deleted event",
			"id", id, "error", err)
	}

	return nil
}

func (s *TransactionService) publish(ctx context.Context, ev *amqp.TransactionEvent) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping event", "type", ev.Type)
		return nil
	}
	return s.amqpClient.PublishEvent(ctx, ev)
}

// Close releases storage and AMQP resources.
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
