package remote

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okono/slate/internal/scene"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	r, err := OpenSQLite(filepath.Join(t.TempDir(), "slate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLite_PutObjectUpserts(t *testing.T) {
	ctx := context.Background()
	r := openTestDB(t)

	require.NoError(t, r.PutObject(ctx, "c1", "a", wireRect(1, 1)))
	require.NoError(t, r.PutObject(ctx, "c1", "a", wireRect(9, 9)))

	snap, err := r.Objects(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, wireRect(9, 9), snap["a"])
}

func TestSQLite_TextRoundTrips(t *testing.T) {
	ctx := context.Background()
	r := openTestDB(t)

	obj := scene.WireObject{T: scene.WireText, X: 5, Y: 6, W: 100, H: 20, Txt: "héllo"}
	require.NoError(t, r.PutObject(ctx, "c1", "t1", obj))

	snap, err := r.Objects(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, obj, snap["t1"])
}

func TestSQLite_BatchPutAndDelete(t *testing.T) {
	ctx := context.Background()
	r := openTestDB(t)

	require.NoError(t, r.PutObjects(ctx, "c1", map[string]scene.WireObject{
		"a": wireRect(0, 0),
		"b": wireRect(5, 5),
		"c": wireRect(9, 9),
	}))
	snap, err := r.Objects(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, snap, 3)

	require.NoError(t, r.DeleteObjects(ctx, "c1", []string{"a", "c"}))
	snap, err = r.Objects(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Contains(t, snap, "b")
}

func TestSQLite_UpdateObjectPosition(t *testing.T) {
	ctx := context.Background()
	r := openTestDB(t)

	require.NoError(t, r.PutObject(ctx, "c1", "a", wireRect(1, 2)))
	require.NoError(t, r.UpdateObjectPosition(ctx, "c1", "a", 7, 8))

	snap, err := r.Objects(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 7, snap["a"].X)
	assert.Equal(t, 8, snap["a"].Y)

	require.Error(t, r.UpdateObjectPosition(ctx, "c1", "ghost", 0, 0))
}

func TestSQLite_SubscribeNotifiesOnWrites(t *testing.T) {
	ctx := context.Background()
	r := openTestDB(t)

	var got []scene.Snapshot
	unsub, err := r.Subscribe("c1", func(s scene.Snapshot) { got = append(got, s) })
	require.NoError(t, err)
	defer unsub()
	require.Len(t, got, 1, "initial snapshot")
	assert.Empty(t, got[0])

	require.NoError(t, r.PutObject(ctx, "c1", "a", wireRect(3, 4)))
	require.Len(t, got, 2)
	assert.Equal(t, wireRect(3, 4), got[1]["a"])

	unsub()
	require.NoError(t, r.DeleteObject(ctx, "c1", "a"))
	assert.Len(t, got, 2)
}

func TestSQLite_GroupRecordsRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := openTestDB(t)

	g := scene.Group{
		ID:        "g-1",
		Name:      "pair",
		MemberIDs: []string{"a", "b"},
		Visible:   true,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy: "u1",
	}
	require.NoError(t, r.PutGroup(ctx, "c1", g))
	require.NoError(t, r.PutGroup(ctx, "c1", scene.Group{ID: "g-0", MemberIDs: []string{"c", "d"}}))

	got, err := r.Groups(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "g-0", got[0].ID)
	assert.Equal(t, g.MemberIDs, got[1].MemberIDs)
	assert.True(t, got[1].CreatedAt.Equal(g.CreatedAt))

	require.NoError(t, r.DeleteGroup(ctx, "c1", "g-0"))
	got, err = r.Groups(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSQLite_PresenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := openTestDB(t)

	p := scene.Presence{Name: "Ada", Color: "#22cc88", Cursor: [2]int{10, 20}, Selected: []string{"a"}}
	require.NoError(t, r.PutPresence(ctx, "c1", "u1", p))

	got, err := r.Presences(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, p, got["u1"])

	require.NoError(t, r.ClearPresence(ctx, "c1", "u1"))
	got, err = r.Presences(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_CanvasMetaRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := openTestDB(t)

	meta := scene.CanvasMeta{
		ID:        "c1",
		Name:      "Board",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		OwnerID:   "u1",
	}
	require.NoError(t, r.PutCanvasMeta(ctx, "u1", meta))
	require.NoError(t, r.PutCanvasMeta(ctx, "u1", scene.CanvasMeta{ID: "c0", OwnerID: "u1"}))

	got, err := r.Canvases(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c0", got[0].ID)
	assert.Equal(t, meta.Name, got[1].Name)
	assert.True(t, got[1].UpdatedAt.Equal(meta.UpdatedAt))
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "slate.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.PutObject(ctx, "c1", "a", wireRect(1, 2)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	snap, err := second.Objects(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, wireRect(1, 2), snap["a"])
}
