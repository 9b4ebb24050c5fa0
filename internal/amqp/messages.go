package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types published to the sync queue.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
)

// TransactionEvent is the message mirrored transactions travel as.
// Created events carry only the row id; the worker fetches the full
// row from the database. Deleted events carry the row data because
// the row is already gone by the time the worker runs.
type TransactionEvent struct {
	Type        string    `json:"type"`
	ID          int64     `json:"id"`
	Date        string    `json:"date,omitempty"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewCreatedEvent builds a created event referencing a stored row.
func NewCreatedEvent(id int64) *TransactionEvent {
	return &TransactionEvent{
		Type:      EventTransactionCreated,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// NewDeletedEvent builds a deleted event carrying the removed row.
func NewDeletedEvent(id int64, date, description, category string, amountCents int64) *TransactionEvent {
	return &TransactionEvent{
		Type:        EventTransactionDeleted,
		ID:          id,
		Date:        date,
		Description: description,
		Category:    category,
		AmountCents: amountCents,
		Timestamp:   time.Now(),
	}
}

// Validate checks the event shape before handling.
func (e *TransactionEvent) Validate() error {
	switch e.Type {
	case EventTransactionCreated, EventTransactionDeleted:
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.ID <= 0 {
		return fmt.Errorf("invalid event id %d", e.ID)
	}
	return nil
}

// ToJSON converts the event to JSON bytes.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes an event from JSON bytes.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
