package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/freehand-live/freehand/internal/canvas"
	"github.com/freehand-live/freehand/internal/room"
	"github.com/freehand-live/freehand/internal/store"
)

// Coordinates every session in the process. All room mutation happens
// inside Run's single goroutine: events from different connections are
// serialized in arrival order, so history and membership never see
// parallel writes. The mutex only guards the clients map for the
// read-side stats API.
type Hub struct {
	registry  *room.Registry
	directory *store.Store

	// Connected clients, joined or not
	clients map[*Client]bool

	// Register requests from new connections
	register chan *Client

	// Unregister requests from closing connections
	unregister chan *Client

	// Parsed events from client read pumps
	inbound chan *inboundEvent

	mu sync.RWMutex
}

type inboundEvent struct {
	sender *Client
	event  *Event
}

// Creates a hub. directory may be nil; the hub then runs without the
// room directory (stats lose their lifetime totals, nothing else).
func NewHub(directory *store.Store, maxStrokes int) *Hub {
	return &Hub{
		registry:   room.NewRegistry(maxStrokes),
		directory:  directory,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *inboundEvent),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()

			log.Printf("Client %s connected (total: %d)", client.id, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; !ok {
				h.mu.Unlock()
				continue
			}
			delete(h.clients, client)
			close(client.send)
			h.mu.Unlock()

			h.leaveRoom(client)
			log.Printf("Client %s disconnected", client.id)

		case ev := <-h.inbound:
			h.handle(ev.sender, ev.event)
		}
	}
}

// Dispatches one inbound event according to the protocol state machine.
// Events that arrive before joinRoom, or that reference state the
// sender does not have, are dropped without response.
func (h *Hub) handle(c *Client, ev *Event) {
	// A client dropped for a full send buffer may still have events in
	// flight from its read pump; none of them may touch room state.
	if !h.registered(c) {
		return
	}

	if ev.Type == EventJoinRoom {
		h.handleJoin(c, ev)
		return
	}

	r := h.joinedRoom(c)
	if r == nil {
		return
	}

	switch ev.Type {
	case EventDrawStart:
		var p DrawStartPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return
		}
		r.BeginStroke(c.id, p.Color, p.Width, canvas.Point{X: p.X, Y: p.Y})
		h.relayDrawing(r.ID, c, RelayStart, ev.Data)

	case EventDrawMove:
		var p PointPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return
		}
		if r.ExtendStroke(c.id, canvas.Point{X: p.X, Y: p.Y}) {
			h.relayDrawing(r.ID, c, RelayMove, ev.Data)
		}

	case EventDrawEnd:
		if _, ok := r.EndStroke(c.id); ok {
			h.recordStroke(r.ID)
		}
		h.relayDrawing(r.ID, c, RelayEnd, json.RawMessage(`{}`))

	case EventRequestUndo:
		if snapshot, ok := r.Undo(); ok {
			h.broadcastRoom(r.ID, nil, EventForceRedraw, snapshot)
		}

	case EventRequestRedo:
		if snapshot, ok := r.Redo(); ok {
			h.broadcastRoom(r.ID, nil, EventForceRedraw, snapshot)
		}

	case EventRequestClear:
		r.ClearCanvas()
		h.broadcastRoom(r.ID, nil, EventClearCanvas, nil)

	case EventRequestRedraw:
		h.sendTo(c, EventForceRedraw, r.Snapshot())

	case EventCursorMove:
		var p PointPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return
		}
		r.UpdateCursor(c.id, canvas.Point{X: p.X, Y: p.Y})
		h.broadcastRoom(r.ID, c, EventCursorUpdate, CursorUpdatePayload{X: p.X, Y: p.Y, UserID: c.id})
	}
}

func (h *Hub) handleJoin(c *Client, ev *Event) {
	if c.roomID != "" {
		// Already joined; a connection belongs to one room for its lifetime
		return
	}

	var roomID string
	if err := json.Unmarshal(ev.Data, &roomID); err != nil || roomID == "" {
		return
	}

	r, created := h.registry.GetOrCreate(roomID)
	if created {
		log.Printf("Room %s opened", roomID)
	}

	member := room.Member{ID: c.id, Name: c.name, Color: c.color}
	r.AddMember(member)
	c.roomID = roomID

	if h.directory != nil {
		if err := h.directory.RecordJoin(roomID); err != nil {
			log.Printf("Directory: failed to record join for room %s: %v", roomID, err)
		}
	}

	// The joiner gets its identity, the member list, and the full canvas;
	// everyone else just learns about the new member.
	h.sendTo(c, EventUserConnected, ConnectedPayload{CurrentUser: member, AllUsers: r.ListMembers()})
	h.sendTo(c, EventForceRedraw, r.Snapshot())
	if !h.registered(c) {
		// Dropped while receiving its own snapshot; peers were already
		// told it disconnected
		return
	}
	h.broadcastRoom(roomID, c, EventUserJoined, member)

	log.Printf("User %s joined room %s (members: %d)", c.id, roomID, r.MemberCount())
}

// Removes the client from its room, tells the remaining members, and
// tears the room down when it empties. Safe to call for unjoined
// clients.
func (h *Hub) leaveRoom(c *Client) {
	if c.roomID == "" {
		return
	}
	roomID := c.roomID
	c.roomID = ""

	r := h.registry.Get(roomID)
	if r == nil {
		return
	}
	if !r.RemoveMember(c.id) {
		return
	}

	if r.MemberCount() == 0 {
		h.registry.Drop(roomID)
		log.Printf("Room %s closed (empty)", roomID)
		return
	}
	h.broadcastRoom(roomID, nil, EventUserDisconnected, c.id)
}

func (h *Hub) joinedRoom(c *Client) *room.Room {
	if c.roomID == "" {
		return nil
	}
	return h.registry.Get(c.roomID)
}

func (h *Hub) recordStroke(roomID string) {
	if h.directory == nil {
		return
	}
	if err := h.directory.RecordStroke(roomID); err != nil {
		log.Printf("Directory: failed to count stroke in room %s: %v", roomID, err)
	}
}

// Relays an in-progress stroke phase to everyone in the room except the
// author
func (h *Hub) relayDrawing(roomID string, author *Client, phase string, data json.RawMessage) {
	h.broadcastRoom(roomID, author, EventDrawFromServer, DrawRelayPayload{
		Type:   phase,
		Data:   data,
		UserID: author.id,
	})
}

func (h *Hub) sendTo(c *Client, eventType string, payload interface{}) {
	data, err := encodeEvent(eventType, payload)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", eventType, err)
		return
	}
	if !h.deliver(c, data) {
		h.dropClient(c)
	}
}

// Sends one event to every member of the room, minus except when set.
// Clients whose send buffers are full are dropped only after the whole
// recipient loop has run: a drop broadcasts user-disconnected itself,
// and that nested broadcast must never close a channel the outer loop
// still intends to send on.
func (h *Hub) broadcastRoom(roomID string, except *Client, eventType string, payload interface{}) {
	data, err := encodeEvent(eventType, payload)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", eventType, err)
		return
	}

	h.mu.RLock()
	recipients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client.roomID == roomID && client != except {
			recipients = append(recipients, client)
		}
	}
	h.mu.RUnlock()

	var dropped []*Client
	for _, client := range recipients {
		if !h.deliver(client, data) {
			dropped = append(dropped, client)
		}
	}
	for _, client := range dropped {
		h.dropClient(client)
	}
}

// Queues data for one client. Returns false when the client's send
// buffer is full and the client should be dropped. A client that is no
// longer registered has a closed send channel; it is skipped, never
// sent to.
func (h *Hub) deliver(c *Client, data []byte) bool {
	if !h.registered(c) {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Removes a client that cannot keep up with the room. Idempotent: a
// client already dropped by a nested broadcast is left alone.
func (h *Hub) dropClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	log.Printf("Client %s dropped (send buffer full)", c.id)
	h.leaveRoom(c)
}

func (h *Hub) registered(c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[c]
	return ok
}

// Stats accessors for the HTTP API

func (h *Hub) RoomCount() int {
	return h.registry.Count()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Member count per live room
func (h *Hub) ActiveRooms() map[string]int {
	return h.registry.ActiveRooms()
}

// Committed stroke count of a live room, or -1 when it has no session
func (h *Hub) RoomStrokeCount(roomID string) int {
	r := h.registry.Get(roomID)
	if r == nil {
		return -1
	}
	return r.StrokeCount()
}
