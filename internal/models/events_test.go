package models

import (
	"encoding/json"
	"testing"
)

func decodeReferenceEvent(t *testing.T, payload string) ReferenceEvent {
	t.Helper()
	var ev ReferenceEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return ev
}

func TestReferenceEventAfter_HeartbeatKeepsState(t *testing.T) {
	// A connected client rewriting last_changed produces a delta without a
	// state field; the after-value is data patched with that delta.
	ev := decodeReferenceEvent(t, `{"data":{"state":"online","last_changed":1756600000000},"delta":{"last_changed":1756600300000}}`)

	after := ev.After()
	if after == nil {
		t.Fatal("expected a value after a heartbeat write")
	}
	if after.State != PresenceOnline {
		t.Fatalf("expected merged state online, got %q", after.State)
	}
	if after.LastChanged != 1756600300000 {
		t.Fatalf("expected delta's last_changed to win, got %d", after.LastChanged)
	}
}

func TestReferenceEventAfter_StateChangeWins(t *testing.T) {
	ev := decodeReferenceEvent(t, `{"data":{"state":"online","last_changed":1756600000000},"delta":{"state":"offline","last_changed":1756600300000}}`)

	after := ev.After()
	if after == nil || after.State != PresenceOffline {
		t.Fatalf("expected delta's state to win, got %+v", after)
	}
}

func TestReferenceEventAfter_InitialWrite(t *testing.T) {
	ev := decodeReferenceEvent(t, `{"data":null,"delta":{"state":"online","last_changed":1756600000000}}`)

	after := ev.After()
	if after == nil || after.State != PresenceOnline {
		t.Fatalf("expected online from a fresh node, got %+v", after)
	}
}

func TestReferenceEventAfter_DeletedNode(t *testing.T) {
	ev := decodeReferenceEvent(t, `{"data":{"state":"online","last_changed":1756600000000},"delta":null}`)

	if after := ev.After(); after != nil {
		t.Fatalf("expected nil after a node deletion, got %+v", after)
	}
}
