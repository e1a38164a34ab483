package store

// Selection is an ordered set of shape ids. The last-added id is treated
// as the primary selection for single-selection compatibility.

// Select makes id the sole selection. Unknown ids clear the selection.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shapes[id]; !ok {
		s.selection = nil
		return
	}
	s.selection = []string{id}
}

// AddToSelection appends id to the selection, making it primary. Re-adding
// an already selected id promotes it to primary without duplication.
// Unknown ids are ignored.
func (s *Store) AddToSelection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shapes[id]; !ok {
		return
	}
	s.selection = append(without(s.selection, id), id)
}

// RemoveFromSelection drops id from the selection.
func (s *Store) RemoveFromSelection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = without(s.selection, id)
}

// SetSelection replaces the selection, keeping only known shape ids and
// preserving the given order.
func (s *Store) SetSelection(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if _, ok := s.shapes[id]; !ok {
			continue
		}
		seen[id] = true
		sel = append(sel, id)
	}
	s.selection = sel
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
}

// Selection returns the selected ids in selection order.
func (s *Store) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selection...)
}

// Primary returns the primary (last-added) selected id.
func (s *Store) Primary() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.selection) == 0 {
		return "", false
	}
	return s.selection[len(s.selection)-1], true
}
