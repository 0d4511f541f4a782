package ws

import (
	"encoding/json"
	"fmt"

	"github.com/freehand-live/freehand/internal/room"
)

// Client -> server event types
const (
	EventJoinRoom      = "joinRoom"
	EventDrawStart     = "drawing-start"
	EventDrawMove      = "drawing-move"
	EventDrawEnd       = "drawing-end"
	EventRequestUndo   = "request-undo"
	EventRequestRedo   = "request-redo"
	EventRequestClear  = "request-clear"
	EventCursorMove    = "cursor-move"
	EventRequestRedraw = "request-redraw"
)

// Server -> client event types
const (
	EventUserConnected    = "user-connected"
	EventUserJoined       = "user-joined"
	EventUserDisconnected = "user-disconnected"
	EventDrawFromServer   = "draw-from-server"
	EventForceRedraw      = "force-redraw"
	EventClearCanvas      = "clear-canvas"
	EventCursorUpdate     = "cursor-update"
)

// Phases of an in-progress stroke relayed to peers
const (
	RelayStart = "start"
	RelayMove  = "move"
	RelayEnd   = "end"
)

// Wire envelope for every message in either direction
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// drawing-start payload
type DrawStartPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// drawing-move and cursor-move payload
type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// user-connected payload, sent once to the joining connection
type ConnectedPayload struct {
	CurrentUser room.Member   `json:"currentUser"`
	AllUsers    []room.Member `json:"allUsers"`
}

// draw-from-server payload: an in-progress stroke event relayed to the
// rest of the room. Data carries the author's original payload; it is
// visual-only and never authoritative.
type DrawRelayPayload struct {
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
	UserID string          `json:"userId"`
}

// cursor-update payload
type CursorUpdatePayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	UserID string  `json:"userId"`
}

// wantsPayload lists inbound events that must carry data
var wantsPayload = map[string]bool{
	EventJoinRoom:   true,
	EventDrawStart:  true,
	EventDrawMove:   true,
	EventCursorMove: true,
}

var inboundTypes = map[string]bool{
	EventJoinRoom:      true,
	EventDrawStart:     true,
	EventDrawMove:      true,
	EventDrawEnd:       true,
	EventRequestUndo:   true,
	EventRequestRedo:   true,
	EventRequestClear:  true,
	EventCursorMove:    true,
	EventRequestRedraw: true,
}

// Decodes and validates one inbound message
func ParseEvent(data []byte) (*Event, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty message")
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}
	if !inboundTypes[ev.Type] {
		return nil, fmt.Errorf("unknown event type: %q", ev.Type)
	}
	if wantsPayload[ev.Type] && len(ev.Data) == 0 {
		return nil, fmt.Errorf("event %q requires a payload", ev.Type)
	}
	return &ev, nil
}

// Serializes an outbound event. A nil payload produces an envelope with
// no data field (clear-canvas, drawing-end relays carry none or empty).
func encodeEvent(eventType string, payload interface{}) ([]byte, error) {
	ev := Event{Type: eventType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		ev.Data = data
	}
	return json.Marshal(ev)
}

// Rate-limit cost per inbound event. Pointer traffic is cheap and high
// frequency; events that trigger a full-room snapshot broadcast spend
// more of the same budget.
func eventCost(eventType string) int {
	switch eventType {
	case EventDrawMove, EventCursorMove:
		return 1
	case EventDrawStart, EventDrawEnd:
		return 2
	default:
		return 5
	}
}
