package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okono/slate/internal/scene"
)

func wireRect(x, y int) scene.WireObject {
	return scene.WireObject{T: scene.WireRect, X: x, Y: y, W: 10, H: 10}
}

func TestMemory_SubscribeDeliversInitialSnapshot(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.PutObject(ctx, "c1", "a", wireRect(1, 2)))

	var got []scene.Snapshot
	unsub, err := m.Subscribe("c1", func(s scene.Snapshot) { got = append(got, s) })
	require.NoError(t, err)
	defer unsub()

	require.Len(t, got, 1)
	assert.Equal(t, wireRect(1, 2), got[0]["a"])
}

func TestMemory_NotifiesInSubscriptionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var order []string
	unsub1, err := m.Subscribe("c1", func(scene.Snapshot) { order = append(order, "first") })
	require.NoError(t, err)
	defer unsub1()
	unsub2, err := m.Subscribe("c1", func(scene.Snapshot) { order = append(order, "second") })
	require.NoError(t, err)
	defer unsub2()
	order = order[:0]

	require.NoError(t, m.PutObject(ctx, "c1", "a", wireRect(0, 0)))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestMemory_UnsubscribeStopsDelivery(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	calls := 0
	unsub, err := m.Subscribe("c1", func(scene.Snapshot) { calls++ })
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	unsub()
	unsub() // second call is a no-op
	require.NoError(t, m.PutObject(ctx, "c1", "a", wireRect(0, 0)))
	assert.Equal(t, 1, calls)
}

func TestMemory_BatchWritesNotifyOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	calls := 0
	unsub, err := m.Subscribe("c1", func(scene.Snapshot) { calls++ })
	require.NoError(t, err)
	defer unsub()
	calls = 0

	require.NoError(t, m.PutObjects(ctx, "c1", map[string]scene.WireObject{
		"a": wireRect(0, 0),
		"b": wireRect(5, 5),
	}))
	assert.Equal(t, 1, calls)

	require.NoError(t, m.DeleteObjects(ctx, "c1", []string{"a", "b"}))
	assert.Equal(t, 2, calls)
}

func TestMemory_SnapshotsAreIsolatedPerCanvas(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.PutObject(ctx, "c1", "a", wireRect(0, 0)))
	require.NoError(t, m.PutObject(ctx, "c2", "b", wireRect(1, 1)))

	snap1, err := m.Objects(ctx, "c1")
	require.NoError(t, err)
	snap2, err := m.Objects(ctx, "c2")
	require.NoError(t, err)
	assert.Contains(t, snap1, "a")
	assert.NotContains(t, snap1, "b")
	assert.Contains(t, snap2, "b")
}

func TestMemory_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.PutObject(ctx, "c1", "a", wireRect(1, 1)))
	require.NoError(t, m.PutObject(ctx, "c1", "a", wireRect(9, 9)))

	snap, err := m.Objects(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, wireRect(9, 9), snap["a"])
}

func TestMemory_UpdateObjectPosition(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	obj := scene.WireObject{T: scene.WireText, X: 1, Y: 2, W: 100, H: 20, Txt: "hi"}
	require.NoError(t, m.PutObject(ctx, "c1", "a", obj))

	require.NoError(t, m.UpdateObjectPosition(ctx, "c1", "a", 7, 8))
	snap, err := m.Objects(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 7, snap["a"].X)
	assert.Equal(t, 8, snap["a"].Y)
	assert.Equal(t, "hi", snap["a"].Txt, "only position changes")
}

func TestMemory_UpdateUnknownObjectErrorsWithoutNotify(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	calls := 0
	unsub, err := m.Subscribe("c1", func(scene.Snapshot) { calls++ })
	require.NoError(t, err)
	defer unsub()
	calls = 0

	require.Error(t, m.UpdateObjectPosition(ctx, "c1", "ghost", 1, 1))
	assert.Equal(t, 0, calls)
}

func TestMemory_DeleteAbsentObjectIsNoop(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	assert.NoError(t, m.DeleteObject(ctx, "c1", "ghost"))
}

func TestMemory_GroupsSortedByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.PutGroup(ctx, "c1", scene.Group{ID: "g-2", MemberIDs: []string{"a", "b"}}))
	require.NoError(t, m.PutGroup(ctx, "c1", scene.Group{ID: "g-1", MemberIDs: []string{"c", "d"}}))

	got, err := m.Groups(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "g-1", got[0].ID)
	assert.Equal(t, "g-2", got[1].ID)

	require.NoError(t, m.DeleteGroup(ctx, "c1", "g-1"))
	got, err = m.Groups(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "g-2", got[0].ID)
}

func TestMemory_GroupRecordsAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	g := scene.Group{ID: "g-1", MemberIDs: []string{"a", "b"}}
	require.NoError(t, m.PutGroup(ctx, "c1", g))

	g.MemberIDs[0] = "mutated"
	got, err := m.Groups(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got[0].MemberIDs)
}

func TestMemory_PresenceLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	p := scene.Presence{Name: "Ada", Color: "#ff0000", Cursor: [2]int{3, 4}}
	require.NoError(t, m.PutPresence(ctx, "c1", "u1", p))

	got, err := m.Presences(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, p, got["u1"])

	require.NoError(t, m.ClearPresence(ctx, "c1", "u1"))
	got, err = m.Presences(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemory_CanvasesSortedByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.PutCanvasMeta(ctx, "u1", scene.CanvasMeta{ID: "c2", Name: "Second", CreatedAt: now}))
	require.NoError(t, m.PutCanvasMeta(ctx, "u1", scene.CanvasMeta{ID: "c1", Name: "First", CreatedAt: now}))

	got, err := m.Canvases(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "c2", got[1].ID)

	other, err := m.Canvases(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}
