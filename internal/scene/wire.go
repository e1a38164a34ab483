package scene

import "math"

// Wire type tags for the compressed object record.
// The minimal protocol collapses all shape kinds to three tags: anything
// rectangular paints as 'r', circles as 'c', text as 't'.
const (
	WireRect   = "r"
	WireCircle = "c"
	WireText   = "t"
)

// WireObject is the compressed record written to the remote objects tree:
//
//	canvas/{canvasId}/objects/{shapeId} -> {t, x, y, w, h, txt?}
//
// Coordinates are rounded to integers before transmission. Width, height
// and type are immutable post-creation in the minimal protocol; updates
// transmit position only.
type WireObject struct {
	T   string `json:"t"`
	X   int    `json:"x"`
	Y   int    `json:"y"`
	W   int    `json:"w"`
	H   int    `json:"h"`
	Txt string `json:"txt,omitempty"`
}

// Snapshot is the full object tree of a canvas as delivered by the remote
// subscription on every change. The transport has no incremental deltas;
// consumers diff successive snapshots themselves.
type Snapshot map[string]WireObject

// Clone returns a copy of the snapshot safe to retain across deliveries.
func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	for id, obj := range s {
		c[id] = obj
	}
	return c
}

// WireTag maps a shape type to its wire tag.
func WireTag(t ShapeType) string {
	switch t {
	case TypeCircle:
		return WireCircle
	case TypeText:
		return WireText
	default:
		return WireRect
	}
}

// ToWire converts a shape into its compressed wire record.
func ToWire(s Shape) WireObject {
	w := WireObject{
		T: WireTag(s.Type),
		X: roundCoord(s.X),
		Y: roundCoord(s.Y),
		W: roundCoord(s.Width),
		H: roundCoord(s.Height),
	}
	if w.T == WireText {
		w.Txt = NormalizeText(s.Text)
	}
	return w
}

// FromWire reconstructs a shape from a wire record. The reconstruction is
// lossy: only the minimal protocol fields survive the trip.
func FromWire(id string, w WireObject) Shape {
	s := Shape{
		ID:     id,
		X:      float64(w.X),
		Y:      float64(w.Y),
		Width:  float64(w.W),
		Height: float64(w.H),
	}
	switch w.T {
	case WireCircle:
		s.Type = TypeCircle
	case WireText:
		s.Type = TypeText
		s.Text = w.Txt
	default:
		s.Type = TypeRectangle
	}
	return s
}

// roundCoord rounds half away from zero, matching Math.round on the
// non-negative coordinates the canvas uses.
func roundCoord(v float64) int {
	return int(math.Round(v))
}
