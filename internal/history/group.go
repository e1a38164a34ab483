package history

import (
	"context"
	"fmt"

	"github.com/okono/slate/internal/bridge"
	"github.com/okono/slate/internal/groups"
	"github.com/okono/slate/internal/scene"
	"github.com/okono/slate/internal/store"
)

// GroupShapes creates a group over the member set. The cycle check runs
// inside the manager before anything commits; a rejection records nothing.
type GroupShapes struct {
	Store     *store.Store
	Manager   *groups.Manager
	Bridge    *bridge.Bridge
	MemberIDs []string
	GroupName string
	CreatedBy string

	created scene.Group
}

func (c *GroupShapes) Name() string { return "group" }

// Group returns the created group record (valid after Execute).
func (c *GroupShapes) Group() scene.Group { return c.created }

func (c *GroupShapes) Execute(ctx context.Context) error {
	g, err := c.Manager.CreateGroup(c.MemberIDs, c.GroupName, c.CreatedBy)
	if err != nil {
		return fmt.Errorf("group: %w", err)
	}
	c.created = g
	c.Bridge.GroupCreated(ctx, g)
	return nil
}

func (c *GroupShapes) Undo(ctx context.Context) {
	c.Manager.Dissolve(c.created.ID)
	c.Bridge.GroupDeleted(ctx, c.created.ID)
}

func (c *GroupShapes) Redo(ctx context.Context) {
	// Restore the identical record; re-running CreateGroup would mint a
	// fresh id and break later undos that reference this one.
	c.Store.PutGroup(c.created)
	c.Bridge.GroupCreated(ctx, c.created)
}

// Ungroup dissolves a group. Members keep their shape state; undo
// restores the identical group record.
type Ungroup struct {
	Store   *store.Store
	Manager *groups.Manager
	Bridge  *bridge.Bridge
	GroupID string

	snapshot scene.Group
}

func (c *Ungroup) Name() string { return "ungroup" }

func (c *Ungroup) Execute(ctx context.Context) error {
	g, ok := c.Store.Group(c.GroupID)
	if !ok {
		return fmt.Errorf("ungroup: no group %s", c.GroupID)
	}
	c.snapshot = g
	c.Manager.Dissolve(c.GroupID)
	c.Bridge.GroupDeleted(ctx, c.GroupID)
	return nil
}

func (c *Ungroup) Undo(ctx context.Context) {
	c.Store.PutGroup(c.snapshot)
	c.Bridge.GroupCreated(ctx, c.snapshot)
}

func (c *Ungroup) Redo(ctx context.Context) {
	c.Manager.Dissolve(c.GroupID)
	c.Bridge.GroupDeleted(ctx, c.GroupID)
}
