package bridge

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/okono/slate/internal/remote"
	"github.com/okono/slate/internal/scene"
)

// CursorThrottle is the minimum interval between cursor-position writes
// per client (20 Hz). Selection writes are never throttled.
const CursorThrottle = 50 * time.Millisecond

// PresenceWriter owns this client's presence record on one canvas.
// Only the owner writes it; the record is erased on Close (best-effort,
// backed by a server-side disconnect hook).
type PresenceWriter struct {
	remote   remote.Remote
	canvasID string
	userID   string
	now      func() time.Time // injectable for deterministic throttle tests

	mu        sync.Mutex
	current   scene.Presence
	lastWrite time.Time
}

// NewPresenceWriter creates a presence writer for userID on canvasID.
func NewPresenceWriter(r remote.Remote, canvasID, userID, name, color string) *PresenceWriter {
	return &PresenceWriter{
		remote:   r,
		canvasID: canvasID,
		userID:   userID,
		now:      time.Now,
		current:  scene.Presence{Name: name, Color: color},
	}
}

// WithNow overrides the throttle clock. For tests.
func (w *PresenceWriter) WithNow(now func() time.Time) *PresenceWriter {
	w.now = now
	return w
}

// Announce writes the initial presence record.
func (w *PresenceWriter) Announce(ctx context.Context) {
	w.mu.Lock()
	p := w.current
	w.mu.Unlock()
	w.put(ctx, p)
}

// UpdateCursor records a cursor move. Writes are rate-limited to one per
// CursorThrottle; a suppressed move is dropped, not queued - the next
// unsuppressed write carries the latest position anyway.
// Returns whether a remote write was issued.
func (w *PresenceWriter) UpdateCursor(ctx context.Context, x, y int) bool {
	w.mu.Lock()
	w.current.Cursor = [2]int{x, y}
	nowT := w.now()
	if !w.lastWrite.IsZero() && nowT.Sub(w.lastWrite) < CursorThrottle {
		w.mu.Unlock()
		return false
	}
	w.lastWrite = nowT
	p := w.current
	w.mu.Unlock()

	w.put(ctx, p)
	return true
}

// UpdateSelection records the selected-id set. Unthrottled.
func (w *PresenceWriter) UpdateSelection(ctx context.Context, ids []string) {
	w.mu.Lock()
	if len(ids) == 0 {
		w.current.Selected = nil
	} else {
		w.current.Selected = append([]string(nil), ids...)
	}
	p := w.current
	w.mu.Unlock()

	w.put(ctx, p)
}

// Close erases this client's presence record. Best-effort.
func (w *PresenceWriter) Close(ctx context.Context) {
	if err := w.remote.ClearPresence(ctx, w.canvasID, w.userID); err != nil {
		slog.Error("presence clear failed", "canvas", w.canvasID, "user", w.userID, "error", err)
	}
}

func (w *PresenceWriter) put(ctx context.Context, p scene.Presence) {
	if err := w.remote.PutPresence(ctx, w.canvasID, w.userID, p); err != nil {
		slog.Error("presence write failed", "canvas", w.canvasID, "user", w.userID, "error", err)
	}
}
