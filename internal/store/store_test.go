package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okono/slate/internal/scene"
)

func shape(id string, x, y float64) scene.Shape {
	return scene.Shape{ID: id, Type: scene.TypeRectangle, X: x, Y: y, Width: 10, Height: 10}
}

func TestInsert_RejectsDuplicateID(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(shape("a", 0, 0)))
	err := s.Insert(shape("a", 5, 5))
	assert.ErrorIs(t, err, ErrDuplicateID)

	// The first write wins; the second never lands.
	got, ok := s.Shape("a")
	require.True(t, ok)
	assert.Equal(t, 0.0, got.X)
}

func TestShapes_CreationOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(shape("b", 0, 0)))
	require.NoError(t, s.Insert(shape("a", 0, 0)))
	require.NoError(t, s.Insert(shape("c", 0, 0)))

	all := s.Shapes()
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "a", all[1].ID)
	assert.Equal(t, "c", all[2].ID)
}

func TestShape_ReturnsCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(scene.Shape{ID: "p", Type: scene.TypePath, Points: []float64{1, 2}}))
	got, _ := s.Shape("p")
	got.Points[0] = 99
	again, _ := s.Shape("p")
	assert.Equal(t, 1.0, again.Points[0])
}

func TestPatch_SparseFieldsOnly(t *testing.T) {
	s := New()
	orig := shape("a", 10, 20)
	orig.Fill = "#abc"
	require.NoError(t, s.Insert(orig))

	x := 50.0
	assert.True(t, s.Patch("a", Patch{X: &x}))

	got, _ := s.Shape("a")
	assert.Equal(t, 50.0, got.X)
	assert.Equal(t, 20.0, got.Y)      // untouched
	assert.Equal(t, "#abc", got.Fill) // untouched
}

func TestPatch_UnknownIDReturnsFalse(t *testing.T) {
	s := New()
	x := 1.0
	assert.False(t, s.Patch("ghost", Patch{X: &x}))
}

func TestBulkPatch_SkipsUnknownIDs(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(shape("a", 0, 0)))
	x := 5.0
	n := s.BulkPatch(map[string]Patch{
		"a":     {X: &x},
		"ghost": {X: &x},
	})
	assert.Equal(t, 1, n)
}

func TestRemove_CascadesSelection(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(shape("a", 0, 0)))
	require.NoError(t, s.Insert(shape("b", 0, 0)))
	s.SetSelection([]string{"a", "b"})

	_, ok := s.Remove("a")
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, s.Selection())
}

func TestRemove_CascadesGroupMembership(t *testing.T) {
	s := New()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Insert(shape(id, 0, 0)))
	}
	s.PutGroup(scene.Group{ID: "g", MemberIDs: []string{"a", "b", "c"}})

	s.Remove("c")
	g, ok := s.Group("g")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, g.MemberIDs)
}

func TestRemove_AutoDissolvesGroupBelowTwoMembers(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(shape("a", 0, 0)))
	require.NoError(t, s.Insert(shape("b", 0, 0)))
	s.PutGroup(scene.Group{ID: "g", MemberIDs: []string{"a", "b"}})

	s.Remove("a")
	_, ok := s.Group("g")
	assert.False(t, ok, "group with one remaining member must dissolve")

	// The survivor keeps its shape state.
	_, ok = s.Shape("b")
	assert.True(t, ok)
}

func TestBulkRemove_ReturnsSnapshotsInCreationOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(shape("a", 1, 0)))
	require.NoError(t, s.Insert(shape("b", 2, 0)))
	require.NoError(t, s.Insert(shape("c", 3, 0)))

	removed := s.BulkRemove([]string{"c", "a"})
	require.Len(t, removed, 2)
	assert.Equal(t, "a", removed[0].ID)
	assert.Equal(t, "c", removed[1].ID)
	assert.Equal(t, 1, s.Len())
}

func TestNextZIndex_StrictlyAboveAllShapes(t *testing.T) {
	s := New()
	assert.Equal(t, 1.0, s.NextZIndex())

	sh := shape("a", 0, 0)
	sh.ZIndex = 7
	require.NoError(t, s.Insert(sh))
	assert.Equal(t, 8.0, s.NextZIndex())
}

func TestSelection_PrimaryIsLastAdded(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(shape("a", 0, 0)))
	require.NoError(t, s.Insert(shape("b", 0, 0)))

	s.AddToSelection("a")
	s.AddToSelection("b")
	primary, ok := s.Primary()
	require.True(t, ok)
	assert.Equal(t, "b", primary)

	// Re-adding promotes to primary without duplicating.
	s.AddToSelection("a")
	assert.Equal(t, []string{"b", "a"}, s.Selection())
}

func TestSetSelection_DropsUnknownAndDuplicateIDs(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(shape("a", 0, 0)))
	s.SetSelection([]string{"a", "ghost", "a"})
	assert.Equal(t, []string{"a"}, s.Selection())
}

func TestSelect_UnknownIDClearsSelection(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(shape("a", 0, 0)))
	s.Select("a")
	s.Select("ghost")
	assert.Empty(t, s.Selection())
}

func TestPutGroup_ReplaceKeepsCreationOrder(t *testing.T) {
	s := New()
	s.PutGroup(scene.Group{ID: "g1", MemberIDs: []string{"a", "b"}})
	s.PutGroup(scene.Group{ID: "g2", MemberIDs: []string{"c", "d"}})
	s.PutGroup(scene.Group{ID: "g1", MemberIDs: []string{"a", "b"}, Name: "renamed"})

	all := s.Groups()
	require.Len(t, all, 2)
	assert.Equal(t, "g1", all[0].ID)
	assert.Equal(t, "renamed", all[0].Name)
}
