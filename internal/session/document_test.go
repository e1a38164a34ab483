package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okono/slate/internal/remote"
	"github.com/okono/slate/internal/scene"
)

func TestSession_ExportDocument(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, remote.NewMemory(), "c1", "u1", "g-1")

	_, err := s.AddShape(ctx, rect("a", 0, 0))
	require.NoError(t, err)
	_, err = s.AddShape(ctx, rect("b", 20, 0))
	require.NoError(t, err)
	s.SetSelection(ctx, []string{"a", "b"})
	_, err = s.GroupSelection(ctx, "pair")
	require.NoError(t, err)

	doc := s.ExportDocument("board")
	assert.Equal(t, scene.DocumentVersion, doc.Version)
	assert.Equal(t, "board", doc.Name)
	require.Len(t, doc.Shapes, 2)
	require.Len(t, doc.Groups, 1)
	assert.Equal(t, "a", doc.Shapes[0].ID, "creation order")
}

func TestSession_ImportDocumentRemintsIDs(t *testing.T) {
	ctx := context.Background()
	r := remote.NewMemory()
	s := newSession(t, r, "c1", "u1", "n-1", "n-2", "n-g")

	_, err := s.AddShape(ctx, rect("a", 0, 0))
	require.NoError(t, err)

	doc := scene.Document{
		Version: scene.DocumentVersion,
		Shapes:  []scene.Shape{rect("a", 5, 5), rect("b", 25, 5)},
		Groups: []scene.Group{
			{ID: "g1", Name: "pair", MemberIDs: []string{"a", "b"}, Visible: true},
		},
	}
	require.NoError(t, s.ImportDocument(ctx, doc))

	// The imported "a" does not collide with the existing "a".
	assert.Equal(t, 3, s.Store().Len())
	imported, ok := s.Store().Shape("n-1")
	require.True(t, ok)
	assert.Equal(t, 5.0, imported.X)

	g, ok := s.Store().Group("n-g")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"n-1", "n-2"}, g.MemberIDs)
	assert.Equal(t, scene.Rect{X: 5, Y: 5, Width: 30, Height: 10}, g.Bounds)

	remoteGroups, err := r.Groups(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, remoteGroups, 1)
	assert.Equal(t, "n-g", remoteGroups[0].ID)
}

func TestSession_ImportDocumentUndoRemovesShapes(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, remote.NewMemory(), "c1", "u1", "n-1", "n-2")

	doc := scene.Document{
		Version: scene.DocumentVersion,
		Shapes:  []scene.Shape{rect("a", 0, 0), rect("b", 20, 0)},
	}
	require.NoError(t, s.ImportDocument(ctx, doc))
	assert.Equal(t, 2, s.Store().Len())

	require.True(t, s.Undo(ctx))
	assert.Equal(t, 0, s.Store().Len())
}

func TestSession_ImportDocumentWrongVersion(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, remote.NewMemory(), "c1", "u1")

	err := s.ImportDocument(ctx, scene.Document{Version: 99})
	assert.Error(t, err)
}

func TestSession_ImportSkipsGroupsWithDanglingMembers(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, remote.NewMemory(), "c1", "u1", "n-1", "n-2", "n-g")

	doc := scene.Document{
		Version: scene.DocumentVersion,
		Shapes:  []scene.Shape{rect("a", 0, 0), rect("b", 20, 0)},
		Groups: []scene.Group{
			{ID: "g1", MemberIDs: []string{"a", "ghost"}},
		},
	}
	require.NoError(t, s.ImportDocument(ctx, doc))
	assert.Empty(t, s.Store().Groups(), "a group with fewer than two resolvable members is dropped")
}

func TestSession_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := remote.NewMemory()
	src := newSession(t, r, "c1", "u1")
	_, err := src.AddShape(ctx, rect("a", 7, 8))
	require.NoError(t, err)

	data, err := scene.EncodeDocument(src.ExportDocument("board"))
	require.NoError(t, err)
	decoded, err := scene.DecodeDocument(data)
	require.NoError(t, err)

	dst := newSession(t, remote.NewMemory(), "c2", "u2", "n-1")
	require.NoError(t, dst.ImportDocument(ctx, decoded))
	got, ok := dst.Store().Shape("n-1")
	require.True(t, ok)
	assert.Equal(t, 7.0, got.X)
	assert.Equal(t, 8.0, got.Y)
}
