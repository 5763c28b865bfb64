package events

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mrossi/peptrack/pkg/domain/entities"
)

type capturingHandler struct {
	types []string
	seen  []Event
}

func (h *capturingHandler) Handle(event Event) error {
	h.seen = append(h.seen, event)
	return nil
}

func (h *capturingHandler) CanHandle(eventType string) bool {
	for _, t := range h.types {
		if t == eventType {
			return true
		}
	}
	return false
}

func TestInMemoryEventStore_VersionsPerStream(t *testing.T) {
	store := NewInMemoryEventStore()

	events := []Event{
		NewWastageRecordedEvent(1, decimal.NewFromFloat(0.2), entities.WastageSpillage, ""),
		NewWastageRecordedEvent(1, decimal.NewFromFloat(0.3), entities.WastageSpillage, ""),
		NewPreparationDepletedEvent(2, nil),
	}
	for _, event := range events {
		if err := store.AppendEvent(event.StreamID(), event); err != nil {
			t.Fatalf("Failed to append event: %v", err)
		}
	}

	stream, err := store.ReadEvents("preparation:1", 0)
	if err != nil {
		t.Fatalf("Failed to read stream: %v", err)
	}
	if len(stream) != 2 {
		t.Fatalf("Expected 2 events in preparation:1, got %d", len(stream))
	}
	if stream[0].Version() != 1 || stream[1].Version() != 2 {
		t.Errorf("Expected versions 1 and 2, got %d and %d", stream[0].Version(), stream[1].Version())
	}

	// Reading from a later version skips earlier events.
	tail, err := store.ReadEvents("preparation:1", 2)
	if err != nil {
		t.Fatalf("Failed to read stream tail: %v", err)
	}
	if len(tail) != 1 || tail[0].Version() != 2 {
		t.Errorf("Expected only version 2, got %v", tail)
	}

	all, err := store.ReadAllEvents(0)
	if err != nil {
		t.Fatalf("Failed to read all events: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 events in the global log, got %d", len(all))
	}
}

func TestInMemoryEventStore_NotifiesSubscribersSynchronously(t *testing.T) {
	store := NewInMemoryEventStore()

	handler := &capturingHandler{types: []string{PreparationDepletedEvent}}
	if err := store.Subscribe([]string{PreparationDepletedEvent}, handler); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	wastage := NewWastageRecordedEvent(1, decimal.NewFromFloat(0.2), entities.WastageOther, "")
	depleted := NewPreparationDepletedEvent(1, nil)
	if err := store.AppendEvent(wastage.StreamID(), wastage); err != nil {
		t.Fatalf("Failed to append event: %v", err)
	}
	if err := store.AppendEvent(depleted.StreamID(), depleted); err != nil {
		t.Fatalf("Failed to append event: %v", err)
	}

	if len(handler.seen) != 1 {
		t.Fatalf("Expected handler to see only the depletion event, got %d events", len(handler.seen))
	}
	if handler.seen[0].Type() != PreparationDepletedEvent {
		t.Errorf("Expected %s, got %s", PreparationDepletedEvent, handler.seen[0].Type())
	}
}
