package bridge

import (
	"sort"

	"github.com/okono/slate/internal/scene"
)

// EventKind tags a snapshot diff event.
type EventKind int

const (
	// EventCreate: id present now, absent before.
	EventCreate EventKind = iota + 1
	// EventUpdate: id present in both, at least one tracked field differs.
	EventUpdate
	// EventDelete: id present before, absent now.
	EventDelete
)

// FieldChange is one differing wire field in an update event.
type FieldChange struct {
	X, Y, W, H *int
	Txt        *string
}

// IsZero reports whether no tracked field differs.
func (c FieldChange) IsZero() bool {
	return c.X == nil && c.Y == nil && c.W == nil && c.H == nil && c.Txt == nil
}

// Event is one id-level difference between two snapshots.
type Event struct {
	Kind   EventKind
	ID     string
	Object scene.WireObject // create: full record
	Change FieldChange      // update: only the differing fields
}

// Diff computes the id-level difference between two snapshots.
//
// Deterministic: events are emitted in sorted id order, deletes first,
// then creates, then updates. Idempotent: Diff(s, s) is empty, so
// re-delivering the same snapshot produces no further events.
func Diff(prev, next scene.Snapshot) []Event {
	var deleted, created, updated []string
	for id := range prev {
		if _, ok := next[id]; !ok {
			deleted = append(deleted, id)
		}
	}
	for id, obj := range next {
		before, ok := prev[id]
		if !ok {
			created = append(created, id)
			continue
		}
		if before != obj {
			updated = append(updated, id)
		}
	}
	sort.Strings(deleted)
	sort.Strings(created)
	sort.Strings(updated)

	events := make([]Event, 0, len(deleted)+len(created)+len(updated))
	for _, id := range deleted {
		events = append(events, Event{Kind: EventDelete, ID: id})
	}
	for _, id := range created {
		events = append(events, Event{Kind: EventCreate, ID: id, Object: next[id]})
	}
	for _, id := range updated {
		events = append(events, Event{
			Kind:   EventUpdate,
			ID:     id,
			Change: changedFields(prev[id], next[id]),
		})
	}
	return events
}

// changedFields extracts only the differing fields of an updated record.
// Type changes are ignored: t is immutable post-creation in the minimal
// protocol, so a differing tag means a conflicting concurrent rewrite and
// last-write-wins already resolved it at the record level.
func changedFields(before, after scene.WireObject) FieldChange {
	var c FieldChange
	if before.X != after.X {
		v := after.X
		c.X = &v
	}
	if before.Y != after.Y {
		v := after.Y
		c.Y = &v
	}
	if before.W != after.W {
		v := after.W
		c.W = &v
	}
	if before.H != after.H {
		v := after.H
		c.H = &v
	}
	if before.Txt != after.Txt {
		v := after.Txt
		c.Txt = &v
	}
	return c
}
