// Package store holds the authoritative local view of a canvas: the shape
// collection, group collection, and selection set.
//
// The store exposes pure state transitions only - no I/O happens here.
// Remote propagation is the sync bridge's job, and every local mutation
// reaches the store through the command layer. Removals cascade: deleting
// a shape drops it from the selection and from every group's membership,
// auto-dissolving groups that fall below two members.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/okono/slate/internal/scene"
)

// ErrDuplicateID is returned by Insert when the id is already present.
var ErrDuplicateID = errors.New("duplicate shape id")

// Patch is a sparse field update. Nil fields are left untouched, so a
// patch carries exactly the fields that differ - the same shape updates
// take on the wire.
type Patch struct {
	X           *float64
	Y           *float64
	Width       *float64
	Height      *float64
	Rotation    *float64
	Fill        *string
	Stroke      *string
	StrokeWidth *float64
	Text        *string
	ZIndex      *float64
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil &&
		p.Rotation == nil && p.Fill == nil && p.Stroke == nil &&
		p.StrokeWidth == nil && p.Text == nil && p.ZIndex == nil
}

// Store is the in-memory authoritative local state of one canvas.
//
// Thread-safety: guarded by a mutex because inbound remote notifications
// may arrive on the remote's goroutine while the session mutates locally.
// All methods are synchronous and never block on I/O.
type Store struct {
	mu sync.Mutex

	shapes     map[string]scene.Shape
	shapeOrder []string // creation order; zIndex tie-break and paint fallback

	groups     map[string]scene.Group
	groupOrder []string

	selection []string // ordered; last added is the primary
}

// New creates an empty store.
func New() *Store {
	return &Store{
		shapes: make(map[string]scene.Shape),
		groups: make(map[string]scene.Group),
	}
}

// Insert adds a new shape. Fails with ErrDuplicateID if the id exists.
func (s *Store) Insert(shape scene.Shape) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shapes[shape.ID]; exists {
		return fmt.Errorf("insert %s: %w", shape.ID, ErrDuplicateID)
	}
	s.shapes[shape.ID] = shape.Clone()
	s.shapeOrder = append(s.shapeOrder, shape.ID)
	return nil
}

// Shape returns a copy of the shape with the given id.
func (s *Store) Shape(id string) (scene.Shape, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shape, ok := s.shapes[id]
	if !ok {
		return scene.Shape{}, false
	}
	return shape.Clone(), true
}

// Shapes returns all shapes in creation order.
func (s *Store) Shapes() []scene.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]scene.Shape, 0, len(s.shapeOrder))
	for _, id := range s.shapeOrder {
		out = append(out, s.shapes[id].Clone())
	}
	return out
}

// ShapesByID returns copies of the named shapes, skipping unknown ids.
func (s *Store) ShapesByID(ids []string) []scene.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]scene.Shape, 0, len(ids))
	for _, id := range ids {
		if shape, ok := s.shapes[id]; ok {
			out = append(out, shape.Clone())
		}
	}
	return out
}

// Len returns the number of shapes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shapes)
}

// Patch applies a sparse update to one shape. Returns false for an
// unknown id.
func (s *Store) Patch(id string, p Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patchLocked(id, p)
}

// BulkPatch applies sparse updates to many shapes in one transition.
// Unknown ids are skipped; returns the number of shapes patched.
func (s *Store) BulkPatch(patches map[string]Patch) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, p := range patches {
		if s.patchLocked(id, p) {
			n++
		}
	}
	return n
}

func (s *Store) patchLocked(id string, p Patch) bool {
	shape, ok := s.shapes[id]
	if !ok {
		return false
	}
	if p.X != nil {
		shape.X = *p.X
	}
	if p.Y != nil {
		shape.Y = *p.Y
	}
	if p.Width != nil {
		shape.Width = *p.Width
	}
	if p.Height != nil {
		shape.Height = *p.Height
	}
	if p.Rotation != nil {
		shape.Rotation = *p.Rotation
	}
	if p.Fill != nil {
		shape.Fill = *p.Fill
	}
	if p.Stroke != nil {
		shape.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		shape.StrokeWidth = *p.StrokeWidth
	}
	if p.Text != nil {
		shape.Text = *p.Text
	}
	if p.ZIndex != nil {
		shape.ZIndex = *p.ZIndex
	}
	s.shapes[id] = shape
	return true
}

// Remove deletes a shape and cascades: the id leaves the selection and
// every group's membership; groups falling below two members dissolve.
// Returns the removed shape for undo snapshots.
func (s *Store) Remove(id string) (scene.Shape, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

// BulkRemove deletes many shapes in one transition, cascading each.
// Returns the removed shapes in creation order.
func (s *Store) BulkRemove(ids []string) []scene.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}
	var removed []scene.Shape
	for _, id := range append([]string(nil), s.shapeOrder...) {
		if !doomed[id] {
			continue
		}
		if shape, ok := s.removeLocked(id); ok {
			removed = append(removed, shape)
		}
	}
	return removed
}

func (s *Store) removeLocked(id string) (scene.Shape, bool) {
	shape, ok := s.shapes[id]
	if !ok {
		return scene.Shape{}, false
	}
	delete(s.shapes, id)
	s.shapeOrder = without(s.shapeOrder, id)
	s.selection = without(s.selection, id)

	// Cascade group membership; auto-dissolve groups left under 2 members.
	for _, gid := range append([]string(nil), s.groupOrder...) {
		g := s.groups[gid]
		if !g.HasMember(id) {
			continue
		}
		g.MemberIDs = without(g.MemberIDs, id)
		if len(g.MemberIDs) < 2 {
			delete(s.groups, gid)
			s.groupOrder = without(s.groupOrder, gid)
			continue
		}
		s.groups[gid] = g
	}
	return shape, true
}

// NextZIndex returns a zIndex strictly above every current shape.
// An empty canvas starts at 1.
func (s *Store) NextZIndex() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxZ float64
	for _, shape := range s.shapes {
		if shape.ZIndex > maxZ {
			maxZ = shape.ZIndex
		}
	}
	return maxZ + 1
}

func without(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
