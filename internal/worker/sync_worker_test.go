package worker

import (
	"context"
	"path/filepath"
	"testing"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/export/memory"
	"finbook/internal/storage"
)

func setup(t *testing.T) (*SyncWorker, *storage.Repository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "finbook.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	store := memory.New()
	return NewSyncWorker(repo, store, store), repo, store
}

func TestHandleCreatedEvent(t *testing.T) {
	w, repo, store := setup(t)
	ctx := context.Background()

	userID, err := repo.CreateUser(ctx, "alice", []byte("hash"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	id, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID:      userID,
		Date:        core.NewDate(2025, 6, 1),
		Description: "groceries",
		Category:    "Food",
		Amount:      core.Money{Cents: -4200},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	ev := amqp.NewCreatedEvent(id)
	if err := w.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("exported %d items, want 1", len(items))
	}
	if items[0].Description != "groceries" || items[0].Amount.Cents != -4200 {
		t.Errorf("exported item = %+v", items[0])
	}
}

func TestHandleCreatedEventMissingTransaction(t *testing.T) {
	w, _, store := setup(t)

	// The row was deleted before the event got consumed. The worker
	// must drop the event instead of requeueing it.
	ev := amqp.NewCreatedEvent(12345)
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if got := len(store.Items()); got != 0 {
		t.Errorf("exported %d items, want 0", got)
	}
}

func TestHandleDeletedEvent(t *testing.T) {
	w, repo, store := setup(t)
	ctx := context.Background()

	userID, err := repo.CreateUser(ctx, "alice", []byte("hash"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	id, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID:      userID,
		Date:        core.NewDate(2025, 6, 1),
		Description: "rent",
		Category:    "Rent",
		Amount:      core.Money{Cents: -120000},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	created := amqp.NewCreatedEvent(id)
	if err := w.HandleEvent(ctx, created); err != nil {
		t.Fatalf("HandleEvent created: %v", err)
	}

	deleted := amqp.NewDeletedEvent(id, "2025-06-01", "rent", "Rent", -120000)
	if err := w.HandleEvent(ctx, deleted); err != nil {
		t.Fatalf("HandleEvent deleted: %v", err)
	}
	if got := len(store.Items()); got != 0 {
		t.Errorf("exported %d items after delete, want 0", got)
	}
}

func TestHandleUnknownEventType(t *testing.T) {
	w, _, _ := setup(t)

	ev := amqp.TransactionEvent{Type: "transaction.mystery", ID: 1}
	if err := w.HandleEvent(context.Background(), &ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}
