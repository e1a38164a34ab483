package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okono/slate/internal/groups"
	"github.com/okono/slate/internal/scene"
)

func TestGroupShapes_ExecuteUndoRedoKeepsID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := New()

	require.NoError(t, f.store.Insert(rectShape("a", 0, 0)))
	require.NoError(t, f.store.Insert(rectShape("b", 20, 0)))

	mgr := groups.NewManager(f.store, scene.NewFixedGenerator("g-1"))
	cmd := &GroupShapes{
		Store: f.store, Manager: mgr, Bridge: f.bridge,
		MemberIDs: []string{"a", "b"}, GroupName: "pair", CreatedBy: "u1",
	}
	require.NoError(t, h.Execute(ctx, cmd))
	assert.Equal(t, "g-1", cmd.Group().ID)
	_, ok := f.store.Group("g-1")
	assert.True(t, ok)

	h.Undo(ctx)
	_, ok = f.store.Group("g-1")
	assert.False(t, ok)

	h.Redo(ctx)
	g, ok := f.store.Group("g-1")
	require.True(t, ok, "redo restores the identical record, never a fresh id")
	assert.ElementsMatch(t, []string{"a", "b"}, g.MemberIDs)
	assert.Equal(t, "pair", g.Name)
}

func TestGroupShapes_RejectionRecordsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := New()

	require.NoError(t, f.store.Insert(rectShape("a", 0, 0)))

	mgr := groups.NewManager(f.store, scene.NewFixedGenerator("g-1"))
	err := h.Execute(ctx, &GroupShapes{
		Store: f.store, Manager: mgr, Bridge: f.bridge,
		MemberIDs: []string{"a"}, CreatedBy: "u1",
	})
	require.Error(t, err)
	assert.True(t, groups.IsValidationError(err))
	assert.False(t, h.CanUndo())
	assert.Empty(t, f.store.Groups())
}

func TestUngroup_UndoRestoresIdenticalGroup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := New()

	require.NoError(t, f.store.Insert(rectShape("a", 0, 0)))
	require.NoError(t, f.store.Insert(rectShape("b", 20, 0)))

	mgr := groups.NewManager(f.store, scene.NewFixedGenerator("g-1"))
	created, err := mgr.CreateGroup([]string{"a", "b"}, "pair", "u1")
	require.NoError(t, err)
	f.bridge.GroupCreated(ctx, created)

	require.NoError(t, h.Execute(ctx, &Ungroup{
		Store: f.store, Manager: mgr, Bridge: f.bridge, GroupID: "g-1",
	}))
	_, ok := f.store.Group("g-1")
	assert.False(t, ok)
	// Members are untouched.
	assert.Equal(t, 2, f.store.Len())

	h.Undo(ctx)
	restored, ok := f.store.Group("g-1")
	require.True(t, ok)
	assert.Equal(t, created, restored)

	h.Redo(ctx)
	_, ok = f.store.Group("g-1")
	assert.False(t, ok)
}

func TestUngroup_UnknownGroupRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := New()

	mgr := groups.NewManager(f.store, scene.NewFixedGenerator("g-1"))
	err := h.Execute(ctx, &Ungroup{Store: f.store, Manager: mgr, Bridge: f.bridge, GroupID: "ghost"})
	require.Error(t, err)
	assert.False(t, h.CanUndo())
}
