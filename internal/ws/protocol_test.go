package ws

import "testing"

func TestParseEventValid(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"drawing-start","data":{"x":1,"y":2,"color":"#fff","width":3}}`))
	if err != nil {
		t.Fatalf("Valid event rejected: %v", err)
	}
	if ev.Type != EventDrawStart {
		t.Errorf("Expected drawing-start, got %s", ev.Type)
	}
}

func TestParseEventNoPayloadAllowed(t *testing.T) {
	for _, eventType := range []string{EventDrawEnd, EventRequestUndo, EventRequestRedo, EventRequestClear, EventRequestRedraw} {
		if _, err := ParseEvent([]byte(`{"type":"` + eventType + `"}`)); err != nil {
			t.Errorf("%s without data should parse: %v", eventType, err)
		}
	}
}

func TestParseEventRejectsUnknownType(t *testing.T) {
	if _, err := ParseEvent([]byte(`{"type":"drop-tables"}`)); err == nil {
		t.Error("Unknown event type should be rejected")
	}
}

func TestParseEventRejectsMissingPayload(t *testing.T) {
	for _, eventType := range []string{EventJoinRoom, EventDrawStart, EventDrawMove, EventCursorMove} {
		if _, err := ParseEvent([]byte(`{"type":"` + eventType + `"}`)); err == nil {
			t.Errorf("%s without data should be rejected", eventType)
		}
	}
}

func TestParseEventRejectsGarbage(t *testing.T) {
	if _, err := ParseEvent(nil); err == nil {
		t.Error("Empty message should be rejected")
	}
	if _, err := ParseEvent([]byte("not json")); err == nil {
		t.Error("Non-JSON message should be rejected")
	}
}

func TestEventCostOrdering(t *testing.T) {
	if eventCost(EventDrawMove) >= eventCost(EventRequestUndo) {
		t.Error("Pointer traffic should cost less than snapshot-triggering events")
	}
}
