// Package bridge keeps the local shape store eventually consistent with
// the remote shared store.
//
// Outbound, it translates store mutations into compressed remote writes.
// Writes are fire-and-forget: a failure is logged and never rolled back
// into local state - the session continues optimistically until a later
// write or snapshot reconciles it. "Log and continue" also keeps local
// behavior deterministic regardless of network state.
//
// Inbound, the remote subscription delivers a full snapshot on every
// change. The bridge retains the previous snapshot, computes the id-level
// diff (see Diff), suppresses echoes of its own creates, and applies
// foreign changes directly to the store - remote changes bypass the
// command history and are not locally undoable.
package bridge

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/okono/slate/internal/remote"
	"github.com/okono/slate/internal/scene"
	"github.com/okono/slate/internal/store"
)

// Bridge connects one session's store to the remote shared store.
//
// Thread-safety: inbound snapshots may arrive on another session's
// goroutine (the remote notifies synchronously), so inbound state is
// mutex-guarded. Outbound methods are called from the session's logical
// thread only.
type Bridge struct {
	remote   remote.Remote
	local    *store.Store
	canvasID string

	mu       sync.Mutex
	prev     scene.Snapshot
	localIDs map[string]bool // locally originated creates, for echo suppression
	unsub    remote.Unsubscribe

	// Diff event counters, exposed for tests and diagnostics.
	creates, updates, deletes, suppressed int
}

// New creates a bridge for one canvas. Call Open to start receiving
// remote changes.
func New(r remote.Remote, local *store.Store, canvasID string) *Bridge {
	return &Bridge{
		remote:   r,
		local:    local,
		canvasID: canvasID,
		localIDs: make(map[string]bool),
	}
}

// Open subscribes to the remote change feed. The initial snapshot seeds
// both the local store and the diff baseline.
func (b *Bridge) Open() error {
	unsub, err := b.remote.Subscribe(b.canvasID, b.handleSnapshot)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.unsub = unsub
	b.mu.Unlock()
	return nil
}

// Close unsubscribes from the remote change feed. Safe to call twice.
func (b *Bridge) Close() {
	b.mu.Lock()
	unsub := b.unsub
	b.unsub = nil
	b.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// ShapeCreated propagates a local shape creation. The id is recorded as
// locally originated BEFORE the write so the snapshot echo is recognized.
func (b *Bridge) ShapeCreated(ctx context.Context, s scene.Shape) {
	b.markLocal(s.ID)
	if err := b.remote.PutObject(ctx, b.canvasID, s.ID, scene.ToWire(s)); err != nil {
		slog.Error("remote create failed", "canvas", b.canvasID, "shape", s.ID, "error", err)
	}
}

// ShapesCreated propagates a batch creation (paste, document import).
func (b *Bridge) ShapesCreated(ctx context.Context, shapes []scene.Shape) {
	if len(shapes) == 0 {
		return
	}
	objs := make(map[string]scene.WireObject, len(shapes))
	for _, s := range shapes {
		b.markLocal(s.ID)
		objs[s.ID] = scene.ToWire(s)
	}
	if err := b.remote.PutObjects(ctx, b.canvasID, objs); err != nil {
		slog.Error("remote batch create failed", "canvas", b.canvasID, "count", len(shapes), "error", err)
	}
}

// ShapeMoved propagates a position-only update; the baseline protocol
// never retransmits size, type or style.
func (b *Bridge) ShapeMoved(ctx context.Context, id string, x, y float64) {
	wx, wy := int(math.Round(x)), int(math.Round(y))
	if err := b.remote.UpdateObjectPosition(ctx, b.canvasID, id, wx, wy); err != nil {
		slog.Error("remote move failed", "canvas", b.canvasID, "shape", id, "error", err)
	}
}

// ShapesMoved propagates a bulk move, one position write per shape.
func (b *Bridge) ShapesMoved(ctx context.Context, positions map[string]scene.Position) {
	for id, pos := range positions {
		b.ShapeMoved(ctx, id, pos.X, pos.Y)
	}
}

// ShapeUpdated rewrites a shape's full record (text edits). Last write
// wins at the record level; concurrent editors of the same shape race.
func (b *Bridge) ShapeUpdated(ctx context.Context, s scene.Shape) {
	if err := b.remote.PutObject(ctx, b.canvasID, s.ID, scene.ToWire(s)); err != nil {
		slog.Error("remote update failed", "canvas", b.canvasID, "shape", s.ID, "error", err)
	}
}

// ShapeDeleted propagates a local deletion.
func (b *Bridge) ShapeDeleted(ctx context.Context, id string) {
	if err := b.remote.DeleteObject(ctx, b.canvasID, id); err != nil {
		slog.Error("remote delete failed", "canvas", b.canvasID, "shape", id, "error", err)
	}
}

// ShapesDeleted propagates a bulk deletion.
func (b *Bridge) ShapesDeleted(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := b.remote.DeleteObjects(ctx, b.canvasID, ids); err != nil {
		slog.Error("remote bulk delete failed", "canvas", b.canvasID, "count", len(ids), "error", err)
	}
}

// GroupCreated mirrors a group record to the remote tree.
func (b *Bridge) GroupCreated(ctx context.Context, g scene.Group) {
	if err := b.remote.PutGroup(ctx, b.canvasID, g); err != nil {
		slog.Error("remote group create failed", "canvas", b.canvasID, "group", g.ID, "error", err)
	}
}

// GroupDeleted removes a group record from the remote tree.
func (b *Bridge) GroupDeleted(ctx context.Context, id string) {
	if err := b.remote.DeleteGroup(ctx, b.canvasID, id); err != nil {
		slog.Error("remote group delete failed", "canvas", b.canvasID, "group", id, "error", err)
	}
}

// Counters returns the inbound event counts (creates, updates, deletes,
// suppressed echoes). For tests and diagnostics.
func (b *Bridge) Counters() (creates, updates, deletes, suppressed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creates, b.updates, b.deletes, b.suppressed
}

func (b *Bridge) markLocal(id string) {
	b.mu.Lock()
	b.localIDs[id] = true
	b.mu.Unlock()
}

// handleSnapshot is the remote-change listener: diff against the retained
// snapshot and apply foreign events to the local store.
func (b *Bridge) handleSnapshot(snap scene.Snapshot) {
	b.mu.Lock()
	events := Diff(b.prev, snap)
	b.prev = snap.Clone()

	type applied struct {
		ev       Event
		suppress bool
	}
	batch := make([]applied, 0, len(events))
	for _, ev := range events {
		a := applied{ev: ev}
		switch ev.Kind {
		case EventCreate:
			if b.localIDs[ev.ID] {
				// Echo of our own create: first write wins, drop it.
				a.suppress = true
				b.suppressed++
			} else {
				b.creates++
			}
		case EventUpdate:
			b.updates++
		case EventDelete:
			delete(b.localIDs, ev.ID)
			b.deletes++
		}
		batch = append(batch, a)
	}
	b.mu.Unlock()

	// Apply outside the bridge lock; the store has its own.
	for _, a := range batch {
		if a.suppress {
			continue
		}
		b.apply(a.ev)
	}
}

func (b *Bridge) apply(ev Event) {
	switch ev.Kind {
	case EventCreate:
		s := scene.FromWire(ev.ID, ev.Object)
		s.ZIndex = b.local.NextZIndex()
		if err := b.local.Insert(s); err != nil {
			// Duplicate means the record already exists locally; keep
			// the first write.
			slog.Debug("remote create already applied", "shape", ev.ID)
		}
	case EventUpdate:
		b.local.Patch(ev.ID, patchFromChange(ev.Change))
	case EventDelete:
		b.local.Remove(ev.ID)
	}
}

// patchFromChange lifts wire field changes into a store patch.
func patchFromChange(c FieldChange) store.Patch {
	var p store.Patch
	if c.X != nil {
		v := float64(*c.X)
		p.X = &v
	}
	if c.Y != nil {
		v := float64(*c.Y)
		p.Y = &v
	}
	if c.W != nil {
		v := float64(*c.W)
		p.Width = &v
	}
	if c.H != nil {
		v := float64(*c.H)
		p.Height = &v
	}
	if c.Txt != nil {
		v := *c.Txt
		p.Text = &v
	}
	return p
}
