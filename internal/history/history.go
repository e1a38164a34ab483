// Package history implements the reversible command layer.
//
// Every user-visible mutation is a Command: it mutates the local store
// synchronously and asks the sync bridge to propagate. Undo performs the
// exact inverse local mutation and the inverse remote write. Remote
// failures are logged inside the bridge and never block or roll back the
// local transition - local undo/redo always succeeds synchronously.
//
// The history is linear: a cursor splits done from undone commands, and
// executing a new command while the cursor is not at the end discards the
// undone tail. History is per-session and in-memory only; remote changes
// arrive through the bridge and never enter the history.
package history

import "context"

// Command is a reversible unit of change.
//
// INVARIANT: Execute(); Undo(); Redo() leaves the store in the same
// observable state as after the original Execute(). zIndex values may
// differ numerically across re-execution, but relative order among
// untouched shapes must not.
type Command interface {
	// Name identifies the command kind ("add-shape", "align-left", ...).
	Name() string

	// Execute performs the forward mutation. A validation rejection
	// returns an error and must leave no partial state; such a command
	// is not recorded.
	Execute(ctx context.Context) error

	// Undo performs the exact inverse mutation. Always succeeds locally.
	Undo(ctx context.Context)

	// Redo re-applies the forward mutation. Always succeeds locally.
	Redo(ctx context.Context)
}

// History is the linear undo/redo stack.
//
// Single-threaded: driven only from the session's logical
// thread. Remote changes bypass the history entirely.
type History struct {
	entries []Command
	cursor  int // entries[:cursor] are done, entries[cursor:] are undone
}

// New creates an empty history.
func New() *History {
	return &History{}
}

// Execute runs a command and records it. A failed Execute records
// nothing. Recording discards any undone tail.
func (h *History) Execute(ctx context.Context, cmd Command) error {
	if err := cmd.Execute(ctx); err != nil {
		return err
	}
	h.entries = append(h.entries[:h.cursor], cmd)
	h.cursor = len(h.entries)
	return nil
}

// Undo reverts the most recent done command. Returns false with no
// effect when there is nothing to undo.
func (h *History) Undo(ctx context.Context) bool {
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	h.entries[h.cursor].Undo(ctx)
	return true
}

// Redo re-applies the most recently undone command. Returns false with
// no effect when there is nothing to redo.
func (h *History) Redo(ctx context.Context) bool {
	if h.cursor >= len(h.entries) {
		return false
	}
	h.entries[h.cursor].Redo(ctx)
	h.cursor++
	return true
}

// CanUndo reports undo availability (for UI flags).
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports redo availability (for UI flags).
func (h *History) CanRedo() bool { return h.cursor < len(h.entries) }

// Len returns the number of done commands.
func (h *History) Len() int { return h.cursor }

// Clear drops all history. Used when a session closes or a document is
// imported wholesale.
func (h *History) Clear() {
	h.entries = nil
	h.cursor = 0
}
