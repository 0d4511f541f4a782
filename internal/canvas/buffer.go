package canvas

// A stroke needs at least two samples to be drawable; a click with no
// drag never enters history.
const MinStrokePoints = 2

// Collects in-progress strokes per author. An author is either idle (no
// entry) or buffering (one open stroke); the transitions are
//
//	idle --Begin--> buffering --Commit--> idle (stroke returned if eligible)
//	            \-> buffering --Begin---> buffering (previous stroke discarded)
//	                buffering --Discard-> idle
//
// Buffered points are invisible to history until Commit; abandoning a
// buffer loses its points by design.
//
// BufferSet is not safe for concurrent use; callers serialize access.
type BufferSet struct {
	open map[string]*Stroke
}

func NewBufferSet() *BufferSet {
	return &BufferSet{
		open: make(map[string]*Stroke),
	}
}

// Opens a buffer for the author. A second Begin while one is open
// discards the earlier buffer without committing it.
func (b *BufferSet) Begin(authorID, color string, width float64, first Point) {
	b.Discard(authorID)
	b.open[authorID] = &Stroke{
		Kind:     StrokeKindPath,
		AuthorID: authorID,
		Color:    color,
		Width:    width,
		Points:   []Point{first},
	}
}

// Appends a point to the author's open buffer. Returns false if the
// author has no buffer open; stray move events are ignored, not errors.
func (b *BufferSet) Extend(authorID string, p Point) bool {
	pending, ok := b.open[authorID]
	if !ok {
		return false
	}
	pending.Points = append(pending.Points, p)
	return true
}

// Closes the author's buffer. The finished stroke is returned when the
// buffer was open and holds at least MinStrokePoints samples; otherwise
// the buffer is dropped silently.
func (b *BufferSet) Commit(authorID string) (Stroke, bool) {
	pending, ok := b.open[authorID]
	if !ok {
		return Stroke{}, false
	}
	delete(b.open, authorID)
	if len(pending.Points) < MinStrokePoints {
		return Stroke{}, false
	}
	return *pending, true
}

// Drops the author's buffer, if any, without committing
func (b *BufferSet) Discard(authorID string) {
	delete(b.open, authorID)
}

// Reports whether the author has a buffer open
func (b *BufferSet) Open(authorID string) bool {
	_, ok := b.open[authorID]
	return ok
}
