// Package groups implements hierarchical group membership for canvases.
//
// Groups reference shapes or other groups by id. The membership graph is
// kept acyclic: every mutation runs cycle detection before committing, and
// a rejected operation leaves no partial state. A group whose membership
// drops below two is auto-dissolved; its members keep their pre-group
// shape state.
package groups

import (
	"time"

	"github.com/okono/slate/internal/scene"
)

// State is the group/shape collection the manager operates on.
// Implemented by store.Store. The manager never performs I/O; remote
// propagation of group records is the session's concern.
type State interface {
	Group(id string) (scene.Group, bool)
	Groups() []scene.Group
	PutGroup(g scene.Group)
	DeleteGroup(id string)

	// ShapeBounds resolves a leaf shape's bounding box.
	ShapeBounds(id string) (scene.Rect, bool)
}

// Manager validates and applies group mutations against a State.
//
// Single-threaded: the manager is driven only by the command
// layer (local actions) and the sync bridge (remote actions), both of
// which run on the session's logical thread.
type Manager struct {
	state State
	ids   scene.IDGenerator
	now   func() time.Time
}

// NewManager creates a group manager over the given state.
func NewManager(state State, ids scene.IDGenerator) *Manager {
	return &Manager{state: state, ids: ids, now: time.Now}
}

// WithNow overrides the creation timestamp source. Used by tests and the
// scenario harness for deterministic group records.
func (m *Manager) WithNow(now func() time.Time) *Manager {
	m.now = now
	return m
}

// CreateGroup validates and commits a new group over memberIDs.
//
// Rejections (ValidationError, no partial state):
//   - fewer than 2 members
//   - duplicate member ids
//   - a member id resolving to neither shape nor group
//   - any candidate being a transitive ancestor of another candidate
func (m *Manager) CreateGroup(memberIDs []string, name, createdBy string) (scene.Group, error) {
	if len(memberIDs) < 2 {
		return scene.Group{}, &ValidationError{
			Code:    ErrCodeTooFewMembers,
			Message: "a group requires at least 2 members",
		}
	}

	seen := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		if seen[id] {
			return scene.Group{}, &ValidationError{
				Code:     ErrCodeDuplicateMember,
				Message:  "member listed twice",
				MemberID: id,
			}
		}
		seen[id] = true

		if _, isShape := m.state.ShapeBounds(id); isShape {
			continue
		}
		if _, isGroup := m.state.Group(id); isGroup {
			continue
		}
		return scene.Group{}, &ValidationError{
			Code:     ErrCodeUnknownMember,
			Message:  "member is neither a shape nor a group",
			MemberID: id,
		}
	}

	// Cycle detection across the candidate set: no candidate group may
	// transitively contain another candidate.
	for _, id := range memberIDs {
		if _, isGroup := m.state.Group(id); !isGroup {
			continue
		}
		for _, other := range memberIDs {
			if other == id {
				continue
			}
			if m.contains(id, other) {
				return scene.Group{}, newCycleError(id, other)
			}
		}
	}

	g := scene.Group{
		ID:        m.ids.NewID(),
		Name:      name,
		MemberIDs: append([]string(nil), memberIDs...),
		Visible:   true,
		CreatedAt: m.now(),
		CreatedBy: createdBy,
	}
	if b := m.boundsOf(g.MemberIDs, map[string]bool{g.ID: true}); b != nil {
		g.Bounds = *b
	}
	m.state.PutGroup(g)
	return g, nil
}

// AddToGroup adds a member, re-running the cycle check first.
func (m *Manager) AddToGroup(groupID, memberID string) error {
	g, ok := m.state.Group(groupID)
	if !ok {
		return &ValidationError{
			Code:    ErrCodeUnknownGroup,
			Message: "no such group",
			GroupID: groupID,
		}
	}
	if g.HasMember(memberID) {
		return &ValidationError{
			Code:     ErrCodeDuplicateMember,
			Message:  "already a member",
			GroupID:  groupID,
			MemberID: memberID,
		}
	}
	if _, isShape := m.state.ShapeBounds(memberID); !isShape {
		if _, isGroup := m.state.Group(memberID); !isGroup {
			return &ValidationError{
				Code:     ErrCodeUnknownMember,
				Message:  "member is neither a shape nor a group",
				GroupID:  groupID,
				MemberID: memberID,
			}
		}
	}

	// Adding memberID under groupID creates a cycle if memberID is the
	// group itself or a group that transitively contains it.
	if memberID == groupID || m.contains(memberID, groupID) {
		return newCycleError(groupID, memberID)
	}

	g.MemberIDs = append(g.MemberIDs, memberID)
	if b := m.boundsOf(g.MemberIDs, map[string]bool{g.ID: true}); b != nil {
		g.Bounds = *b
	}
	m.state.PutGroup(g)
	return nil
}

// RemoveFromGroup removes a member. If the resulting membership drops
// below two, the group auto-dissolves: the group record is deleted and
// the remaining members keep their pre-group state.
//
// Returns (dissolved, error).
func (m *Manager) RemoveFromGroup(groupID, memberID string) (bool, error) {
	g, ok := m.state.Group(groupID)
	if !ok {
		return false, &ValidationError{
			Code:    ErrCodeUnknownGroup,
			Message: "no such group",
			GroupID: groupID,
		}
	}
	if !g.HasMember(memberID) {
		return false, &ValidationError{
			Code:     ErrCodeUnknownMember,
			Message:  "not a member of this group",
			GroupID:  groupID,
			MemberID: memberID,
		}
	}

	members := make([]string, 0, len(g.MemberIDs)-1)
	for _, id := range g.MemberIDs {
		if id != memberID {
			members = append(members, id)
		}
	}
	if len(members) < 2 {
		m.state.DeleteGroup(groupID)
		return true, nil
	}

	g.MemberIDs = members
	if b := m.boundsOf(g.MemberIDs, map[string]bool{g.ID: true}); b != nil {
		g.Bounds = *b
	}
	m.state.PutGroup(g)
	return false, nil
}

// Dissolve deletes a group record outright (ungroup). Members keep their
// shape state. Returns false for an unknown group.
func (m *Manager) Dissolve(groupID string) bool {
	if _, ok := m.state.Group(groupID); !ok {
		return false
	}
	m.state.DeleteGroup(groupID)
	return true
}

// CalculateBounds recursively expands nested-group members down to leaf
// shapes and returns their union bounding box. Returns nil for an unknown
// group or one resolving to no leaves.
func (m *Manager) CalculateBounds(groupID string) *scene.Rect {
	g, ok := m.state.Group(groupID)
	if !ok {
		return nil
	}
	return m.boundsOf(g.MemberIDs, map[string]bool{groupID: true})
}

// IsInAnyGroup reports whether id appears as a direct member of any group.
func (m *Manager) IsInAnyGroup(id string) bool {
	for _, g := range m.state.Groups() {
		if g.HasMember(id) {
			return true
		}
	}
	return false
}

// GetAllGroupMembers returns the transitive leaf shape ids of a group, in
// membership order. Returns nil for an unknown group.
func (m *Manager) GetAllGroupMembers(groupID string) []string {
	g, ok := m.state.Group(groupID)
	if !ok {
		return nil
	}
	var leaves []string
	m.collectLeaves(g.MemberIDs, map[string]bool{groupID: true}, &leaves)
	return leaves
}

// contains reports whether rootID (a group) transitively contains
// targetID. Non-group roots contain nothing.
func (m *Manager) contains(rootID, targetID string) bool {
	g, ok := m.state.Group(rootID)
	if !ok {
		return false
	}
	// visited guards traversal even if an invariant-violating cycle is
	// already present (e.g. from a raced remote write).
	visited := map[string]bool{rootID: true}
	stack := append([]string(nil), g.MemberIDs...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == targetID {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		if nested, ok := m.state.Group(id); ok {
			stack = append(stack, nested.MemberIDs...)
		}
	}
	return false
}

// boundsOf unions the bounds of all leaf shapes reachable from memberIDs.
func (m *Manager) boundsOf(memberIDs []string, visited map[string]bool) *scene.Rect {
	var leaves []string
	m.collectLeaves(memberIDs, visited, &leaves)
	var box *scene.Rect
	for _, id := range leaves {
		b, ok := m.state.ShapeBounds(id)
		if !ok {
			continue
		}
		if box == nil {
			r := b
			box = &r
		} else {
			*box = box.Union(b)
		}
	}
	return box
}

func (m *Manager) collectLeaves(memberIDs []string, visited map[string]bool, out *[]string) {
	for _, id := range memberIDs {
		if visited[id] {
			continue
		}
		if nested, ok := m.state.Group(id); ok {
			visited[id] = true
			m.collectLeaves(nested.MemberIDs, visited, out)
			continue
		}
		if _, ok := m.state.ShapeBounds(id); ok {
			*out = append(*out, id)
		}
	}
}
