package remote

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okono/slate/internal/scene"
)

// Memory is an in-process Remote. It backs tests, the scenario harness and
// single-process collaboration (several sessions sharing one Memory see
// each other's edits).
//
// Snapshot delivery is synchronous on the writer's goroutine, which keeps
// tests deterministic. Subscribers are notified in subscription order.
type Memory struct {
	mu sync.Mutex

	objects  map[string]map[string]scene.WireObject // canvasID -> shapeID -> record
	groups   map[string]map[string]scene.Group
	presence map[string]map[string]scene.Presence
	canvases map[string]map[string]scene.CanvasMeta // userID -> canvasID -> meta

	subs   map[string]map[int]func(scene.Snapshot) // canvasID -> token -> listener
	nextID int
}

// NewMemory creates an empty in-memory remote.
func NewMemory() *Memory {
	return &Memory{
		objects:  make(map[string]map[string]scene.WireObject),
		groups:   make(map[string]map[string]scene.Group),
		presence: make(map[string]map[string]scene.Presence),
		canvases: make(map[string]map[string]scene.CanvasMeta),
		subs:     make(map[string]map[int]func(scene.Snapshot)),
	}
}

// PutObject upserts one object record (last-write-wins).
func (m *Memory) PutObject(_ context.Context, canvasID, shapeID string, obj scene.WireObject) error {
	m.mu.Lock()
	if m.objects[canvasID] == nil {
		m.objects[canvasID] = make(map[string]scene.WireObject)
	}
	m.objects[canvasID][shapeID] = obj
	m.mu.Unlock()

	m.notify(canvasID)
	return nil
}

// PutObjects upserts a batch of records, notifying once.
func (m *Memory) PutObjects(_ context.Context, canvasID string, objs map[string]scene.WireObject) error {
	m.mu.Lock()
	if m.objects[canvasID] == nil {
		m.objects[canvasID] = make(map[string]scene.WireObject)
	}
	for id, obj := range objs {
		m.objects[canvasID][id] = obj
	}
	m.mu.Unlock()

	m.notify(canvasID)
	return nil
}

// UpdateObjectPosition writes only the position fields of one record.
func (m *Memory) UpdateObjectPosition(_ context.Context, canvasID, shapeID string, x, y int) error {
	m.mu.Lock()
	obj, ok := m.objects[canvasID][shapeID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("update position: no object %s/%s", canvasID, shapeID)
	}
	obj.X, obj.Y = x, y
	m.objects[canvasID][shapeID] = obj
	m.mu.Unlock()

	m.notify(canvasID)
	return nil
}

// DeleteObject removes one record. Deleting an absent record is a no-op.
func (m *Memory) DeleteObject(_ context.Context, canvasID, shapeID string) error {
	m.mu.Lock()
	delete(m.objects[canvasID], shapeID)
	m.mu.Unlock()

	m.notify(canvasID)
	return nil
}

// DeleteObjects removes a batch of records, notifying once.
func (m *Memory) DeleteObjects(_ context.Context, canvasID string, shapeIDs []string) error {
	m.mu.Lock()
	for _, id := range shapeIDs {
		delete(m.objects[canvasID], id)
	}
	m.mu.Unlock()

	m.notify(canvasID)
	return nil
}

// Objects returns the current snapshot of a canvas.
func (m *Memory) Objects(_ context.Context, canvasID string) (scene.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(canvasID), nil
}

// Subscribe registers a snapshot listener. The listener receives the
// current snapshot immediately, then one snapshot per mutation.
func (m *Memory) Subscribe(canvasID string, fn func(scene.Snapshot)) (Unsubscribe, error) {
	m.mu.Lock()
	if m.subs[canvasID] == nil {
		m.subs[canvasID] = make(map[int]func(scene.Snapshot))
	}
	token := m.nextID
	m.nextID++
	m.subs[canvasID][token] = fn
	initial := m.snapshotLocked(canvasID)
	m.mu.Unlock()

	fn(initial)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[canvasID], token)
			m.mu.Unlock()
		})
	}, nil
}

// PutGroup upserts a group record.
func (m *Memory) PutGroup(_ context.Context, canvasID string, g scene.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.groups[canvasID] == nil {
		m.groups[canvasID] = make(map[string]scene.Group)
	}
	m.groups[canvasID][g.ID] = g.Clone()
	return nil
}

// DeleteGroup removes a group record.
func (m *Memory) DeleteGroup(_ context.Context, canvasID, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups[canvasID], groupID)
	return nil
}

// Groups returns all group records of a canvas, sorted by id for
// determinism.
func (m *Memory) Groups(_ context.Context, canvasID string) ([]scene.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]scene.Group, 0, len(m.groups[canvasID]))
	for _, g := range m.groups[canvasID] {
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutPresence upserts a user's presence record.
func (m *Memory) PutPresence(_ context.Context, canvasID, userID string, p scene.Presence) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.presence[canvasID] == nil {
		m.presence[canvasID] = make(map[string]scene.Presence)
	}
	m.presence[canvasID][userID] = p
	return nil
}

// ClearPresence erases a user's presence record.
func (m *Memory) ClearPresence(_ context.Context, canvasID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.presence[canvasID], userID)
	return nil
}

// Presences returns all live presence records of a canvas.
func (m *Memory) Presences(_ context.Context, canvasID string) (map[string]scene.Presence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]scene.Presence, len(m.presence[canvasID]))
	for userID, p := range m.presence[canvasID] {
		out[userID] = p
	}
	return out, nil
}

// PutCanvasMeta upserts a canvas metadata record for a user.
func (m *Memory) PutCanvasMeta(_ context.Context, userID string, meta scene.CanvasMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.canvases[userID] == nil {
		m.canvases[userID] = make(map[string]scene.CanvasMeta)
	}
	m.canvases[userID][meta.ID] = meta
	return nil
}

// Canvases lists a user's canvases, sorted by id for determinism.
func (m *Memory) Canvases(_ context.Context, userID string) ([]scene.CanvasMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]scene.CanvasMeta, 0, len(m.canvases[userID]))
	for _, meta := range m.canvases[userID] {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// snapshotLocked copies the object tree of a canvas. Callers hold mu.
func (m *Memory) snapshotLocked(canvasID string) scene.Snapshot {
	snap := make(scene.Snapshot, len(m.objects[canvasID]))
	for id, obj := range m.objects[canvasID] {
		snap[id] = obj
	}
	return snap
}

// notify delivers the current snapshot to every subscriber of a canvas.
// Listener order follows subscription order.
func (m *Memory) notify(canvasID string) {
	m.mu.Lock()
	snap := m.snapshotLocked(canvasID)
	tokens := make([]int, 0, len(m.subs[canvasID]))
	for token := range m.subs[canvasID] {
		tokens = append(tokens, token)
	}
	sort.Ints(tokens)
	listeners := make([]func(scene.Snapshot), 0, len(tokens))
	for _, token := range tokens {
		listeners = append(listeners, m.subs[canvasID][token])
	}
	m.mu.Unlock()

	// Deliver outside the lock so listeners may call back into the remote.
	for _, fn := range listeners {
		fn(snap.Clone())
	}
}

var _ Remote = (*Memory)(nil)
