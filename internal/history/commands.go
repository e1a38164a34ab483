package history

import (
	"context"
	"fmt"

	"github.com/okono/slate/internal/bridge"
	"github.com/okono/slate/internal/scene"
	"github.com/okono/slate/internal/store"
)

// AddShape inserts one shape and propagates the create.
type AddShape struct {
	Store  *store.Store
	Bridge *bridge.Bridge
	Shape  scene.Shape
}

func (c *AddShape) Name() string { return "add-shape" }

func (c *AddShape) Execute(ctx context.Context) error {
	if err := c.Store.Insert(c.Shape); err != nil {
		return fmt.Errorf("add shape: %w", err)
	}
	c.Bridge.ShapeCreated(ctx, c.Shape)
	return nil
}

func (c *AddShape) Undo(ctx context.Context) {
	c.Store.Remove(c.Shape.ID)
	c.Bridge.ShapeDeleted(ctx, c.Shape.ID)
}

func (c *AddShape) Redo(ctx context.Context) {
	// Recreate with the original id and all original fields.
	if err := c.Store.Insert(c.Shape); err == nil {
		c.Bridge.ShapeCreated(ctx, c.Shape)
	}
}

// DeleteShapes removes one or more shapes, snapshotting them for undo.
// Undo recreates each shape with its original id and every original
// field, including non-positional ones.
type DeleteShapes struct {
	Store  *store.Store
	Bridge *bridge.Bridge
	IDs    []string

	snapshots []scene.Shape
}

func (c *DeleteShapes) Name() string { return "delete-shapes" }

func (c *DeleteShapes) Execute(ctx context.Context) error {
	c.snapshots = c.Store.BulkRemove(c.IDs)
	if len(c.snapshots) == 0 {
		return fmt.Errorf("delete shapes: no matching ids")
	}
	c.Bridge.ShapesDeleted(ctx, idsOf(c.snapshots))
	return nil
}

func (c *DeleteShapes) Undo(ctx context.Context) {
	for _, s := range c.snapshots {
		if err := c.Store.Insert(s); err != nil {
			continue
		}
	}
	c.Bridge.ShapesCreated(ctx, c.snapshots)
}

func (c *DeleteShapes) Redo(ctx context.Context) {
	c.Store.BulkRemove(idsOf(c.snapshots))
	c.Bridge.ShapesDeleted(ctx, idsOf(c.snapshots))
}

// MoveShapes applies absolute positions to a shape set. It backs plain
// drags as well as every alignment/distribution operation: the session
// resolves deltas into before/after positions and labels the command.
type MoveShapes struct {
	Store  *store.Store
	Bridge *bridge.Bridge
	Label  string // "move", "align-left", "distribute-h", ...
	Before map[string]scene.Position
	After  map[string]scene.Position
}

func (c *MoveShapes) Name() string {
	if c.Label == "" {
		return "move-shapes"
	}
	return c.Label
}

func (c *MoveShapes) Execute(ctx context.Context) error {
	if len(c.After) == 0 {
		return fmt.Errorf("%s: nothing to move", c.Name())
	}
	c.applyPositions(ctx, c.After)
	return nil
}

func (c *MoveShapes) Undo(ctx context.Context) {
	c.applyPositions(ctx, c.Before)
}

func (c *MoveShapes) Redo(ctx context.Context) {
	c.applyPositions(ctx, c.After)
}

func (c *MoveShapes) applyPositions(ctx context.Context, positions map[string]scene.Position) {
	patches := make(map[string]store.Patch, len(positions))
	for id, pos := range positions {
		x, y := pos.X, pos.Y
		patches[id] = store.Patch{X: &x, Y: &y}
	}
	c.Store.BulkPatch(patches)
	c.Bridge.ShapesMoved(ctx, positions)
}

// SetFill changes a shape's fill color. Style never rides the minimal
// wire protocol, so the change is local-only; collaborators converge on
// style through full-record rewrites (SetText) or document exchange.
type SetFill struct {
	Store *store.Store
	ID    string
	Fill  string

	before string
}

func (c *SetFill) Name() string { return "set-fill" }

func (c *SetFill) Execute(_ context.Context) error {
	s, ok := c.Store.Shape(c.ID)
	if !ok {
		return fmt.Errorf("set fill: no shape %s", c.ID)
	}
	c.before = s.Fill
	fill := c.Fill
	c.Store.Patch(c.ID, store.Patch{Fill: &fill})
	return nil
}

func (c *SetFill) Undo(_ context.Context) {
	fill := c.before
	c.Store.Patch(c.ID, store.Patch{Fill: &fill})
}

func (c *SetFill) Redo(_ context.Context) {
	fill := c.Fill
	c.Store.Patch(c.ID, store.Patch{Fill: &fill})
}

// SetText changes a text shape's content. The full record is rewritten on
// the remote (last-write-wins), since txt is a tracked snapshot field.
// Empty text is a validation rejection.
type SetText struct {
	Store  *store.Store
	Bridge *bridge.Bridge
	ID     string
	Text   string

	before string
}

func (c *SetText) Name() string { return "set-text" }

func (c *SetText) Execute(ctx context.Context) error {
	if c.Text == "" {
		return fmt.Errorf("set text: empty text")
	}
	s, ok := c.Store.Shape(c.ID)
	if !ok {
		return fmt.Errorf("set text: no shape %s", c.ID)
	}
	c.before = s.Text
	c.apply(ctx, c.Text)
	return nil
}

func (c *SetText) Undo(ctx context.Context) { c.apply(ctx, c.before) }
func (c *SetText) Redo(ctx context.Context) { c.apply(ctx, c.Text) }

func (c *SetText) apply(ctx context.Context, text string) {
	normalized := scene.NormalizeText(text)
	c.Store.Patch(c.ID, store.Patch{Text: &normalized})
	if s, ok := c.Store.Shape(c.ID); ok {
		c.Bridge.ShapeUpdated(ctx, s)
	}
}

// SetZIndices applies new paint-order values computed by the zorder
// package. zIndex never rides the wire; paint order is a local concern
// reconstructed per client.
type SetZIndices struct {
	Store   *store.Store
	Label   string // "bring-to-front", "send-backward", ...
	Updates map[string]float64

	before map[string]float64
}

func (c *SetZIndices) Name() string {
	if c.Label == "" {
		return "set-z-indices"
	}
	return c.Label
}

func (c *SetZIndices) Execute(_ context.Context) error {
	if len(c.Updates) == 0 {
		return fmt.Errorf("%s: nothing to reorder", c.Name())
	}
	c.before = make(map[string]float64, len(c.Updates))
	for id := range c.Updates {
		if s, ok := c.Store.Shape(id); ok {
			c.before[id] = s.ZIndex
		}
	}
	c.apply(c.Updates)
	return nil
}

func (c *SetZIndices) Undo(_ context.Context) { c.apply(c.before) }
func (c *SetZIndices) Redo(_ context.Context) { c.apply(c.Updates) }

func (c *SetZIndices) apply(values map[string]float64) {
	patches := make(map[string]store.Patch, len(values))
	for id, z := range values {
		v := z
		patches[id] = store.Patch{ZIndex: &v}
	}
	c.Store.BulkPatch(patches)
}

// BatchCreate inserts a set of shapes in one step (paste, document
// import). Undo removes them all.
type BatchCreate struct {
	Store  *store.Store
	Bridge *bridge.Bridge
	Label  string // "paste", "import"
	Shapes []scene.Shape
}

func (c *BatchCreate) Name() string {
	if c.Label == "" {
		return "batch-create"
	}
	return c.Label
}

func (c *BatchCreate) Execute(ctx context.Context) error {
	if len(c.Shapes) == 0 {
		return fmt.Errorf("%s: no shapes", c.Name())
	}
	inserted := make([]scene.Shape, 0, len(c.Shapes))
	for _, s := range c.Shapes {
		if err := c.Store.Insert(s); err != nil {
			// Roll back the partial batch; validation rejections leave
			// no partial state.
			for _, done := range inserted {
				c.Store.Remove(done.ID)
			}
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
		inserted = append(inserted, s)
	}
	c.Bridge.ShapesCreated(ctx, c.Shapes)
	return nil
}

func (c *BatchCreate) Undo(ctx context.Context) {
	c.Store.BulkRemove(idsOf(c.Shapes))
	c.Bridge.ShapesDeleted(ctx, idsOf(c.Shapes))
}

func (c *BatchCreate) Redo(ctx context.Context) {
	for _, s := range c.Shapes {
		if err := c.Store.Insert(s); err != nil {
			continue
		}
	}
	c.Bridge.ShapesCreated(ctx, c.Shapes)
}

func idsOf(shapes []scene.Shape) []string {
	ids := make([]string, len(shapes))
	for i, s := range shapes {
		ids[i] = s.ID
	}
	return ids
}
