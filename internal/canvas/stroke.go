package canvas

// A single pointer sample in canvas coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// The shape of a committed drawing operation
type StrokeKind string

const (
	// Freehand path; the only kind currently drawn by clients
	StrokeKindPath StrokeKind = "path"
)

// A committed, atomic drawing operation. Once a Stroke enters a room's
// history it is never mutated; undo and redo move whole strokes between
// stacks.
type Stroke struct {
	Kind     StrokeKind `json:"type"`
	AuthorID string     `json:"user"`
	Color    string     `json:"color"`
	Width    float64    `json:"width"`
	Points   []Point    `json:"points"`
}
