package session

import (
	"context"

	"github.com/okono/slate/internal/align"
	"github.com/okono/slate/internal/history"
	"github.com/okono/slate/internal/scene"
)

// runAlign turns pure per-shape deltas into one reversible move command.
// An empty delta map (too few shapes, or nothing would move) records
// nothing and returns nil.
func (s *Session) runAlign(ctx context.Context, label string, deltas map[string]scene.Delta) error {
	if len(deltas) == 0 {
		return nil
	}
	before := make(map[string]scene.Position, len(deltas))
	after := make(map[string]scene.Position, len(deltas))
	for id, d := range deltas {
		sh, ok := s.store.Shape(id)
		if !ok {
			continue
		}
		before[id] = scene.Position{X: sh.X, Y: sh.Y}
		after[id] = scene.Position{X: sh.X + d.DX, Y: sh.Y + d.DY}
	}
	if len(after) == 0 {
		return nil
	}
	return s.history.Execute(ctx, &history.MoveShapes{
		Store: s.store, Bridge: s.bridge, Label: label, Before: before, After: after,
	})
}

// selectedShapes resolves the selection into shape values, selection order.
func (s *Session) selectedShapes() []scene.Shape {
	return s.store.ShapesByID(s.store.Selection())
}

// AlignLeft aligns the selection's left edges to the leftmost shape.
func (s *Session) AlignLeft(ctx context.Context) error {
	return s.runAlign(ctx, "align-left", align.Left(s.selectedShapes()))
}

// AlignRight aligns the selection's right edges to the rightmost shape.
func (s *Session) AlignRight(ctx context.Context) error {
	return s.runAlign(ctx, "align-right", align.Right(s.selectedShapes()))
}

// AlignTop aligns the selection's top edges to the topmost shape.
func (s *Session) AlignTop(ctx context.Context) error {
	return s.runAlign(ctx, "align-top", align.Top(s.selectedShapes()))
}

// AlignBottom aligns the selection's bottom edges to the bottommost shape.
func (s *Session) AlignBottom(ctx context.Context) error {
	return s.runAlign(ctx, "align-bottom", align.Bottom(s.selectedShapes()))
}

// AlignCenter centers the selection on a shared vertical axis.
func (s *Session) AlignCenter(ctx context.Context) error {
	return s.runAlign(ctx, "align-center", align.Center(s.selectedShapes()))
}

// AlignMiddle centers the selection on a shared horizontal axis.
func (s *Session) AlignMiddle(ctx context.Context) error {
	return s.runAlign(ctx, "align-middle", align.Middle(s.selectedShapes()))
}

// DistributeHorizontally equalizes horizontal gaps across the selection.
// Fewer than three shapes is a no-op.
func (s *Session) DistributeHorizontally(ctx context.Context) error {
	return s.runAlign(ctx, "distribute-h", align.DistributeHorizontally(s.selectedShapes()))
}

// DistributeVertically equalizes vertical gaps across the selection.
func (s *Session) DistributeVertically(ctx context.Context) error {
	return s.runAlign(ctx, "distribute-v", align.DistributeVertically(s.selectedShapes()))
}

// CenterInCanvas centers the selection's collective bounds on the canvas,
// preserving relative layout.
func (s *Session) CenterInCanvas(ctx context.Context) error {
	return s.runAlign(ctx, "center-in-canvas", align.CenterInCanvas(s.selectedShapes(), s.canvasW, s.canvasH))
}
