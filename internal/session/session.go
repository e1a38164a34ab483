// Package session wires the canvas core together for one client: the
// local shape store, the sync bridge, the command history, the group
// manager, the presence writer and the clipboard.
//
// The session replaces the source UI's mount/unmount lifecycle with
// explicit Open/Close calls, callable from any host environment. Every
// user-facing mutation goes through the command history; inbound remote
// changes are applied by the bridge and never enter the history.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/okono/slate/internal/bridge"
	"github.com/okono/slate/internal/groups"
	"github.com/okono/slate/internal/history"
	"github.com/okono/slate/internal/remote"
	"github.com/okono/slate/internal/scene"
	"github.com/okono/slate/internal/store"
	"github.com/okono/slate/internal/zorder"
)

// Default canvas dimensions for center-in-canvas when the host has not
// provided a viewport size.
const (
	DefaultCanvasWidth  = 1920.0
	DefaultCanvasHeight = 1080.0
)

// Session is one client's live editing session on one canvas.
//
// Single-threaded cooperative execution: mutation, bridge emission and
// command bookkeeping happen synchronously within one logical step. The
// store itself is mutated only by the command layer (local actions) and
// the bridge's inbound handlers (remote actions).
type Session struct {
	canvasID  string
	userID    string
	userName  string
	userColor string

	canvasW float64
	canvasH float64

	store     *store.Store
	remote    remote.Remote
	bridge    *bridge.Bridge
	history   *history.History
	groups    *groups.Manager
	presence  *bridge.PresenceWriter
	clipboard *Clipboard
	ids       scene.IDGenerator
	now       func() time.Time

	opened bool
}

// Option configures a session.
type Option func(*Session)

// WithIDGenerator overrides the id source (fixed ids in tests).
func WithIDGenerator(ids scene.IDGenerator) Option {
	return func(s *Session) { s.ids = ids }
}

// WithUser sets the display name and cursor color broadcast in presence.
func WithUser(name, color string) Option {
	return func(s *Session) { s.userName, s.userColor = name, color }
}

// WithCanvasSize sets the logical canvas size used by center-in-canvas.
func WithCanvasSize(w, h float64) Option {
	return func(s *Session) { s.canvasW, s.canvasH = w, h }
}

// WithNow overrides the wall clock (canvas metadata timestamps, presence
// throttle). For tests and the scenario harness.
func WithNow(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session for userID on canvasID. Call Open before
// mutating.
func New(r remote.Remote, canvasID, userID string, opts ...Option) *Session {
	s := &Session{
		canvasID:  canvasID,
		userID:    userID,
		userName:  userID,
		userColor: "#4f8ef7",
		canvasW:   DefaultCanvasWidth,
		canvasH:   DefaultCanvasHeight,
		store:     store.New(),
		remote:    r,
		history:   history.New(),
		ids:       scene.UUIDv7Generator{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.bridge = bridge.New(r, s.store, canvasID)
	s.groups = groups.NewManager(s.store, s.ids).WithNow(func() time.Time { return s.now() })
	s.presence = bridge.NewPresenceWriter(r, canvasID, userID, s.userName, s.userColor).WithNow(func() time.Time { return s.now() })
	s.clipboard = NewClipboard()
	return s
}

// Open subscribes to the remote change feed, loads remote group records,
// announces presence and touches the canvas metadata record.
func (s *Session) Open(ctx context.Context) error {
	if s.opened {
		return fmt.Errorf("session already open")
	}
	if err := s.bridge.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	// Group records ride a separate tree; seed them once at open.
	remoteGroups, err := s.remote.Groups(ctx, s.canvasID)
	if err != nil {
		slog.Error("group load failed", "canvas", s.canvasID, "error", err)
	} else {
		for _, g := range remoteGroups {
			s.store.PutGroup(g)
		}
	}

	s.presence.Announce(ctx)
	s.touchCanvasMeta(ctx)
	s.opened = true
	return nil
}

// Close unsubscribes, erases this client's presence record (best-effort)
// and drops the in-memory history. Safe to call on an unopened session.
func (s *Session) Close(ctx context.Context) {
	s.bridge.Close()
	s.presence.Close(ctx)
	s.history.Clear()
	s.opened = false
}

// Store exposes the read side for the rendering layer.
func (s *Session) Store() *store.Store { return s.store }

// Bridge exposes diff counters for diagnostics.
func (s *Session) Bridge() *bridge.Bridge { return s.bridge }

// Groups exposes the read-only group traversals (bounds, membership).
func (s *Session) Groups() *groups.Manager { return s.groups }

// CanUndo reports undo availability for UI flags.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports redo availability for UI flags.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Undo reverts the most recent local command.
func (s *Session) Undo(ctx context.Context) bool { return s.history.Undo(ctx) }

// Redo re-applies the most recently undone local command.
func (s *Session) Redo(ctx context.Context) bool { return s.history.Redo(ctx) }

// AddShape validates, assigns an id and paint order, and executes an
// add-shape command. The new shape becomes the sole selection.
func (s *Session) AddShape(ctx context.Context, shape scene.Shape) (scene.Shape, error) {
	if !shape.Type.Valid() {
		return scene.Shape{}, fmt.Errorf("add shape: unknown type %q", shape.Type)
	}
	if shape.Type == scene.TypeText && shape.Text == "" {
		return scene.Shape{}, fmt.Errorf("add shape: empty text")
	}
	if shape.ID == "" {
		shape.ID = s.ids.NewID()
	}
	if shape.ZIndex == 0 {
		shape.ZIndex = s.store.NextZIndex()
	}
	cmd := &history.AddShape{Store: s.store, Bridge: s.bridge, Shape: shape}
	if err := s.history.Execute(ctx, cmd); err != nil {
		return scene.Shape{}, err
	}
	s.Select(ctx, shape.ID)
	return shape, nil
}

// DeleteShapes deletes the given shapes through one reversible command.
func (s *Session) DeleteShapes(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.history.Execute(ctx, &history.DeleteShapes{Store: s.store, Bridge: s.bridge, IDs: ids})
}

// DeleteSelection deletes the current selection.
func (s *Session) DeleteSelection(ctx context.Context) error {
	return s.DeleteShapes(ctx, s.store.Selection())
}

// MoveShapesBy moves the given shapes by a shared delta (drag commit).
func (s *Session) MoveShapesBy(ctx context.Context, ids []string, dx, dy float64) error {
	shapes := s.store.ShapesByID(ids)
	if len(shapes) == 0 {
		return nil
	}
	before := make(map[string]scene.Position, len(shapes))
	after := make(map[string]scene.Position, len(shapes))
	for _, sh := range shapes {
		before[sh.ID] = scene.Position{X: sh.X, Y: sh.Y}
		after[sh.ID] = scene.Position{X: sh.X + dx, Y: sh.Y + dy}
	}
	return s.history.Execute(ctx, &history.MoveShapes{
		Store: s.store, Bridge: s.bridge, Label: "move", Before: before, After: after,
	})
}

// MoveSelectionBy moves the current selection by a shared delta.
func (s *Session) MoveSelectionBy(ctx context.Context, dx, dy float64) error {
	return s.MoveShapesBy(ctx, s.store.Selection(), dx, dy)
}

// SetFill changes a shape's fill color (reversible, local-only style).
func (s *Session) SetFill(ctx context.Context, id, fill string) error {
	return s.history.Execute(ctx, &history.SetFill{Store: s.store, ID: id, Fill: fill})
}

// SetText changes a text shape's content (reversible; rewrites the
// remote record).
func (s *Session) SetText(ctx context.Context, id, text string) error {
	return s.history.Execute(ctx, &history.SetText{Store: s.store, Bridge: s.bridge, ID: id, Text: text})
}

// touchCanvasMeta upserts this user's canvas listing record.
func (s *Session) touchCanvasMeta(ctx context.Context) {
	now := s.now()
	meta := scene.CanvasMeta{
		ID:        s.canvasID,
		Name:      s.canvasID,
		CreatedAt: now,
		UpdatedAt: now,
		OwnerID:   s.userID,
	}
	if existing, err := s.remote.Canvases(ctx, s.userID); err == nil {
		for _, m := range existing {
			if m.ID == s.canvasID {
				meta.Name = m.Name
				meta.CreatedAt = m.CreatedAt
				meta.Thumbnail = m.Thumbnail
				break
			}
		}
	}
	if err := s.remote.PutCanvasMeta(ctx, s.userID, meta); err != nil {
		slog.Error("canvas meta write failed", "canvas", s.canvasID, "user", s.userID, "error", err)
	}
}

// zEntries projects the store into zorder entries in creation order.
func (s *Session) zEntries() []zorder.Entry {
	shapes := s.store.Shapes()
	entries := make([]zorder.Entry, len(shapes))
	for i, sh := range shapes {
		entries[i] = zorder.Entry{ID: sh.ID, ZIndex: sh.ZIndex}
	}
	return entries
}

// runZOrder executes a reversible z-index command unless the operation
// is a no-op (empty selection, already at the extreme).
func (s *Session) runZOrder(ctx context.Context, label string, updates map[string]float64) error {
	if len(updates) == 0 {
		return nil
	}
	return s.history.Execute(ctx, &history.SetZIndices{Store: s.store, Label: label, Updates: updates})
}

// BringToFront raises the selection above every other shape.
func (s *Session) BringToFront(ctx context.Context) error {
	return s.runZOrder(ctx, "bring-to-front", zorder.BringToFront(s.zEntries(), s.store.Selection()))
}

// SendToBack lowers the selection below every other shape.
func (s *Session) SendToBack(ctx context.Context) error {
	return s.runZOrder(ctx, "send-to-back", zorder.SendToBack(s.zEntries(), s.store.Selection()))
}

// BringForward swaps each selected shape with its upper neighbor.
func (s *Session) BringForward(ctx context.Context) error {
	return s.runZOrder(ctx, "bring-forward", zorder.BringForward(s.zEntries(), s.store.Selection()))
}

// SendBackward swaps each selected shape with its lower neighbor.
func (s *Session) SendBackward(ctx context.Context) error {
	return s.runZOrder(ctx, "send-backward", zorder.SendBackward(s.zEntries(), s.store.Selection()))
}

// GroupSelection groups the current selection.
func (s *Session) GroupSelection(ctx context.Context, name string) (scene.Group, error) {
	cmd := &history.GroupShapes{
		Store: s.store, Manager: s.groups, Bridge: s.bridge,
		MemberIDs: s.store.Selection(), GroupName: name, CreatedBy: s.userID,
	}
	if err := s.history.Execute(ctx, cmd); err != nil {
		return scene.Group{}, err
	}
	return cmd.Group(), nil
}

// Ungroup dissolves a group, keeping its members.
func (s *Session) Ungroup(ctx context.Context, groupID string) error {
	return s.history.Execute(ctx, &history.Ungroup{
		Store: s.store, Manager: s.groups, Bridge: s.bridge, GroupID: groupID,
	})
}

// Selection passthroughs. Selection changes are broadcast on the
// presence channel, unthrottled.

// Select makes id the sole selection.
func (s *Session) Select(ctx context.Context, id string) {
	s.store.Select(id)
	s.presence.UpdateSelection(ctx, s.store.Selection())
}

// AddToSelection appends id to the selection.
func (s *Session) AddToSelection(ctx context.Context, id string) {
	s.store.AddToSelection(id)
	s.presence.UpdateSelection(ctx, s.store.Selection())
}

// SetSelection replaces the selection.
func (s *Session) SetSelection(ctx context.Context, ids []string) {
	s.store.SetSelection(ids)
	s.presence.UpdateSelection(ctx, s.store.Selection())
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection(ctx context.Context) {
	s.store.ClearSelection()
	s.presence.UpdateSelection(ctx, nil)
}

// Cursor broadcasts the local cursor position (throttled to 20 Hz).
func (s *Session) Cursor(ctx context.Context, x, y int) {
	s.presence.UpdateCursor(ctx, x, y)
}

// Presences returns the other collaborators' live records.
func (s *Session) Presences(ctx context.Context) (map[string]scene.Presence, error) {
	all, err := s.remote.Presences(ctx, s.canvasID)
	if err != nil {
		return nil, err
	}
	delete(all, s.userID)
	return all, nil
}
