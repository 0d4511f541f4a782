package room

import (
	"sync"

	"github.com/freehand-live/freehand/internal/canvas"
)

// Presence metadata for one connection in a room
type Member struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Color      string        `json:"color"`
	LastCursor *canvas.Point `json:"lastCursor,omitempty"`
}

// A collaborative drawing session: the authoritative stroke history, the
// pending stroke buffers, and the membership of one room. All mutation
// is driven by the hub's run loop; the lock only makes the read-side API
// (stats, member lists) safe from other goroutines.
type Room struct {
	ID string

	mu      sync.RWMutex
	history *canvas.History
	buffers *canvas.BufferSet
	members map[string]*Member
	order   []string
}

// Creates a new room with the given ID. maxStrokes bounds the history
// (0 selects the default).
func NewRoom(id string, maxStrokes int) *Room {
	return &Room{
		ID:      id,
		history: canvas.NewHistory(maxStrokes),
		buffers: canvas.NewBufferSet(),
		members: make(map[string]*Member),
		order:   make([]string, 0),
	}
}

// Membership

func (r *Room) AddMember(m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[m.ID]; !ok {
		r.order = append(r.order, m.ID)
	}
	copied := m
	r.members[m.ID] = &copied
}

// Removes the member and discards any stroke they were still drawing.
// Returns false if the member was not present.
func (r *Room) RemoveMember(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	r.buffers.Discard(id)
	for i, memberID := range r.order {
		if memberID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Records the member's latest cursor position, best effort
func (r *Room) UpdateCursor(id string, p canvas.Point) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return false
	}
	cursor := p
	m.LastCursor = &cursor
	return true
}

// Returns the members in join order. The slice and its entries are
// copies; callers cannot disturb room state through them.
func (r *Room) ListMembers() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]Member, 0, len(r.order))
	for _, id := range r.order {
		if m, ok := r.members[id]; ok {
			members = append(members, *m)
		}
	}
	return members
}

func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Stroke buffering

// Opens a pending stroke for the author, abandoning any earlier one
func (r *Room) BeginStroke(authorID, color string, width float64, first canvas.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffers.Begin(authorID, color, width, first)
}

// Adds a point to the author's pending stroke. Returns false when the
// author has nothing open, so stray move events can be dropped.
func (r *Room) ExtendStroke(authorID string, p canvas.Point) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buffers.Extend(authorID, p)
}

// Closes the author's pending stroke and, when it is eligible, commits
// it to the history in one step. The committed stroke is returned.
func (r *Room) EndStroke(authorID string) (canvas.Stroke, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stroke, ok := r.buffers.Commit(authorID)
	if !ok {
		return canvas.Stroke{}, false
	}
	r.history.Commit(stroke)
	return stroke, true
}

// History

// Undoes the most recent stroke and returns the resulting history.
// A no-op on an empty history.
func (r *Room) Undo() ([]canvas.Stroke, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Undo()
}

// Restores the most recently undone stroke and returns the resulting
// history. A no-op when nothing is undoable.
func (r *Room) Redo() ([]canvas.Stroke, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Redo()
}

// Wipes the canvas: history and redo shadow both emptied
func (r *Room) ClearCanvas() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history.Clear()
}

// Returns a copy of the full ordered stroke history
func (r *Room) Snapshot() []canvas.Stroke {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.history.Snapshot()
}

func (r *Room) StrokeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.history.Len()
}
