package canvas

// Upper bound on committed strokes per room when no explicit limit is
// configured. Long sessions keep drawing; the oldest strokes simply stop
// being undoable once evicted.
const DefaultMaxStrokes = 10000

// The ordered drawing history of one room: a stack of committed strokes
// plus a shadow stack of undone strokes. The history alone determines
// what a canvas looks like.
//
// History is not safe for concurrent use; callers serialize access.
type History struct {
	strokes    []Stroke
	shadow     []Stroke
	maxStrokes int
}

// Creates an empty history. maxStrokes <= 0 selects DefaultMaxStrokes.
func NewHistory(maxStrokes int) *History {
	if maxStrokes <= 0 {
		maxStrokes = DefaultMaxStrokes
	}
	return &History{
		strokes:    make([]Stroke, 0),
		shadow:     make([]Stroke, 0),
		maxStrokes: maxStrokes,
	}
}

// Appends a newly drawn stroke. Any redo candidates are invalidated:
// redo is only valid immediately after undo with nothing drawn between.
// When the history is at capacity the oldest stroke is evicted and
// becomes permanent background content.
func (h *History) Commit(s Stroke) {
	if len(h.strokes) >= h.maxStrokes {
		h.strokes = h.strokes[1:]
	}
	h.strokes = append(h.strokes, s)
	h.shadow = h.shadow[:0]
}

// Moves the most recent stroke onto the shadow stack and returns the new
// full history. Undo on an empty history is a benign no-op reported by
// the second return value.
func (h *History) Undo() ([]Stroke, bool) {
	if len(h.strokes) == 0 {
		return nil, false
	}
	last := h.strokes[len(h.strokes)-1]
	h.strokes = h.strokes[:len(h.strokes)-1]
	h.shadow = append(h.shadow, last)
	return h.Snapshot(), true
}

// Moves the most recently undone stroke back into the history and
// returns the new full history. Redo with an empty shadow is a benign
// no-op.
func (h *History) Redo() ([]Stroke, bool) {
	if len(h.shadow) == 0 {
		return nil, false
	}
	last := h.shadow[len(h.shadow)-1]
	h.shadow = h.shadow[:len(h.shadow)-1]
	h.strokes = append(h.strokes, last)
	return h.Snapshot(), true
}

// Empties both stacks unconditionally.
func (h *History) Clear() {
	h.strokes = h.strokes[:0]
	h.shadow = h.shadow[:0]
}

// Returns a copy of the full ordered history, oldest first. The copy
// never aliases internal storage, so later commits and undos cannot
// disturb a snapshot already handed out.
func (h *History) Snapshot() []Stroke {
	snapshot := make([]Stroke, len(h.strokes))
	copy(snapshot, h.strokes)
	return snapshot
}

// Number of committed strokes
func (h *History) Len() int {
	return len(h.strokes)
}

// Number of undone strokes available for redo
func (h *History) ShadowLen() int {
	return len(h.shadow)
}
