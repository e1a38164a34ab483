package store

import "github.com/okono/slate/internal/scene"

// Group collection accessors. Validation (cycle detection, minimum
// membership) lives in the groups package; the store only holds state.

// Group returns a copy of the group with the given id.
func (s *Store) Group(id string) (scene.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return scene.Group{}, false
	}
	return g.Clone(), true
}

// Groups returns all groups in creation order.
func (s *Store) Groups() []scene.Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]scene.Group, 0, len(s.groupOrder))
	for _, id := range s.groupOrder {
		out = append(out, s.groups[id].Clone())
	}
	return out
}

// PutGroup inserts or replaces a group record.
func (s *Store) PutGroup(g scene.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[g.ID]; !exists {
		s.groupOrder = append(s.groupOrder, g.ID)
	}
	s.groups[g.ID] = g.Clone()
}

// DeleteGroup removes a group record. Member shapes are untouched.
func (s *Store) DeleteGroup(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[id]; !exists {
		return
	}
	delete(s.groups, id)
	s.groupOrder = without(s.groupOrder, id)
}

// ShapeBounds resolves a shape's bounding box. Satisfies groups.State.
func (s *Store) ShapeBounds(id string) (scene.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shape, ok := s.shapes[id]
	if !ok {
		return scene.Rect{}, false
	}
	return shape.Bounds(), true
}
