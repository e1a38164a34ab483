package session

import (
	"context"
	"fmt"

	"github.com/okono/slate/internal/history"
	"github.com/okono/slate/internal/scene"
)

// PasteOffset is the nudge applied to pasted shapes so the copy does not
// land exactly on the original.
const PasteOffset = 16.0

// Clipboard holds detached shape snapshots between copy and paste. The
// snapshots are plain values: pasting always mints fresh ids, so the
// originals can be deleted (or mutated remotely) without corrupting a
// later paste.
type Clipboard struct {
	shapes []scene.Shape
	pastes int
}

// NewClipboard creates an empty clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

// Len reports how many shapes are held.
func (c *Clipboard) Len() int { return len(c.shapes) }

// put replaces the clipboard contents with clones of shapes.
func (c *Clipboard) put(shapes []scene.Shape) {
	c.shapes = make([]scene.Shape, len(shapes))
	for i, s := range shapes {
		c.shapes[i] = s.Clone()
	}
	c.pastes = 0
}

// take returns clones of the held shapes with fresh ids and a cascaded
// offset, ready for insertion.
func (c *Clipboard) take(ids scene.IDGenerator) []scene.Shape {
	c.pastes++
	offset := PasteOffset * float64(c.pastes)
	out := make([]scene.Shape, len(c.shapes))
	for i, s := range c.shapes {
		cp := s.Clone()
		cp.ID = ids.NewID()
		cp.X += offset
		cp.Y += offset
		out[i] = cp
	}
	return out
}

// Copy captures the current selection onto the clipboard.
func (s *Session) Copy(ctx context.Context) int {
	shapes := s.selectedShapes()
	if len(shapes) == 0 {
		return 0
	}
	s.clipboard.put(shapes)
	return len(shapes)
}

// Cut captures the current selection and deletes it in one reversible
// step. Undoing a cut restores the shapes; the clipboard keeps its copy.
func (s *Session) Cut(ctx context.Context) (int, error) {
	n := s.Copy(ctx)
	if n == 0 {
		return 0, nil
	}
	if err := s.DeleteSelection(ctx); err != nil {
		return 0, fmt.Errorf("cut: %w", err)
	}
	return n, nil
}

// Paste inserts clipboard contents as new shapes, offset from the
// originals, and selects them. Repeated pastes cascade.
func (s *Session) Paste(ctx context.Context) ([]scene.Shape, error) {
	if s.clipboard.Len() == 0 {
		return nil, nil
	}
	shapes := s.clipboard.take(s.ids)
	for i := range shapes {
		shapes[i].ZIndex = s.store.NextZIndex() + float64(i)
	}
	cmd := &history.BatchCreate{Store: s.store, Bridge: s.bridge, Label: "paste", Shapes: shapes}
	if err := s.history.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	ids := make([]string, len(shapes))
	for i, sh := range shapes {
		ids[i] = sh.ID
	}
	s.SetSelection(ctx, ids)
	return shapes, nil
}
