package room

import "sync"

// Process-wide set of live rooms, keyed by room id. Rooms are created
// lazily on first join and dropped once their last member leaves; the
// registry never reaches across room boundaries.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	maxStrokes int
}

func NewRegistry(maxStrokes int) *Registry {
	return &Registry{
		rooms:      make(map[string]*Room),
		maxStrokes: maxStrokes,
	}
}

// Returns the room for the id, creating it on first use. The second
// return value reports whether this call created it.
func (reg *Registry) GetOrCreate(id string) (*Room, bool) {
	reg.mu.RLock()
	r, ok := reg.rooms[id]
	reg.mu.RUnlock()
	if ok {
		return r, false
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r, ok := reg.rooms[id]; ok {
		return r, false
	}
	r = NewRoom(id, reg.maxStrokes)
	reg.rooms[id] = r
	return r, true
}

// Returns the room or nil if it has no live session
func (reg *Registry) Get(id string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[id]
}

// Drops the room from the registry. History and membership go with it.
func (reg *Registry) Drop(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, id)
}

func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Returns the member count of every live room
func (reg *Registry) ActiveRooms() map[string]int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	active := make(map[string]int, len(reg.rooms))
	for id, r := range reg.rooms {
		active[id] = r.MemberCount()
	}
	return active
}
