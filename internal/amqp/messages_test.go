package amqp

import "testing"

func TestTransactionEventRoundTrip(t *testing.T) {
	event := NewDeletedEvent(12, "2025-04-01", "groceries", "Food", -4200)

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := TransactionEventFromJSON(data)
	if err != nil {
		t.Fatalf("TransactionEventFromJSON: %v", err)
	}
	if got.Type != EventTransactionDeleted || got.ID != 12 || got.Category != "Food" || got.AmountCents != -4200 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestTransactionEventValidate(t *testing.T) {
	if err := NewCreatedEvent(1).Validate(); err != nil {
		t.Fatalf("created event should validate: %v", err)
	}

	bad := []*TransactionEvent{
		{Type: "transaction.exploded", ID: 1},
		{Type: EventTransactionCreated, ID: 0},
		{Type: EventTransactionDeleted, ID: -5},
	}
	for i, e := range bad {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionEventFromJSONInvalid(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
