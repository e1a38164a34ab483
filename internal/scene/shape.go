package scene

// ShapeType tags the visual kind of a shape.
type ShapeType string

const (
	TypeRectangle      ShapeType = "rectangle"
	TypeCircle         ShapeType = "circle"
	TypeText           ShapeType = "text"
	TypeLine           ShapeType = "line"
	TypePolygon        ShapeType = "polygon"
	TypeStar           ShapeType = "star"
	TypeRoundedRect    ShapeType = "roundedRect"
	TypePath           ShapeType = "path"
	TypeAnimatedSprite ShapeType = "animatedSprite"
)

// Valid reports whether t is one of the known shape types.
func (t ShapeType) Valid() bool {
	switch t {
	case TypeRectangle, TypeCircle, TypeText, TypeLine, TypePolygon,
		TypeStar, TypeRoundedRect, TypePath, TypeAnimatedSprite:
		return true
	}
	return false
}

// Shape is one visual object on the canvas.
//
// Geometry is stored as float64 for smooth local manipulation; the wire
// protocol rounds to integers (see WireObject). Optional, type-specific
// fields are sparse JSON (omitempty) following the whiteboard data model.
type Shape struct {
	ID       string    `json:"id"`
	Type     ShapeType `json:"type"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Rotation float64   `json:"rotation,omitempty"` // degrees

	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`

	Text         string    `json:"text,omitempty"`
	Points       []float64 `json:"points,omitempty"`
	Sides        int       `json:"sides,omitempty"`
	CornerRadius float64   `json:"cornerRadius,omitempty"`
	Tension      float64   `json:"tension,omitempty"`
	AnimationRef string    `json:"animationRef,omitempty"`

	// ZIndex is the real-valued paint-order key; higher paints later.
	// Not necessarily contiguous. Two shapes may share a value only
	// transiently (tie-break by creation order).
	ZIndex float64 `json:"zIndex"`
}

// Bounds returns the shape's axis-aligned bounding box.
func (s Shape) Bounds() Rect {
	return Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// Clone returns a deep copy of the shape (Points slice included).
// Commands snapshot shapes via Clone so that undo data cannot alias
// live store state.
func (s Shape) Clone() Shape {
	c := s
	if s.Points != nil {
		c.Points = make([]float64, len(s.Points))
		copy(c.Points, s.Points)
	}
	return c
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.Width, o.X+o.Width)
	maxY := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Delta is a positional offset applied to a shape.
type Delta struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Position is an absolute shape position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
