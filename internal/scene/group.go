package scene

import "time"

// Group is a named, ordered set of shape-or-group references.
//
// INVARIANTS:
//   - MemberIDs has at least 2 entries for a committed group
//   - The membership graph is acyclic: no group may, directly or through
//     nested groups, contain itself
//
// A group whose membership drops below 2 is auto-dissolved by the
// group manager.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	MemberIDs []string `json:"memberIds"`
	Locked    bool     `json:"locked"`
	Visible   bool     `json:"visible"`
	ZIndex    float64  `json:"zIndex"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`

	// Cached union bounding box of all leaf members. Maintained by the
	// group manager; zero value means not yet computed.
	Bounds Rect `json:"bounds"`
}

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	c := g
	c.MemberIDs = make([]string, len(g.MemberIDs))
	copy(c.MemberIDs, g.MemberIDs)
	return c
}

// HasMember reports whether id is a direct member of the group.
func (g Group) HasMember(id string) bool {
	for _, m := range g.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}
