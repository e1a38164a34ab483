package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_EncodeDecodeRoundTrip(t *testing.T) {
	doc := Document{
		Version: DocumentVersion,
		Name:    "board",
		Shapes: []Shape{
			{ID: "a", Type: TypeRectangle, X: 10, Y: 20, Width: 100, Height: 50, Fill: "#ff0000", ZIndex: 1},
			{ID: "b", Type: TypeText, X: 5, Y: 5, Width: 80, Height: 20, Text: "hello", ZIndex: 2},
		},
		Groups: []Group{
			{ID: "g1", MemberIDs: []string{"a", "b"}, Visible: true},
		},
	}

	data, err := EncodeDocument(doc)
	require.NoError(t, err)

	got, err := DecodeDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Name, got.Name)
	require.Len(t, got.Shapes, 2)
	assert.Equal(t, doc.Shapes[0], got.Shapes[0])
	require.Len(t, got.Groups, 1)
	assert.Equal(t, []string{"a", "b"}, got.Groups[0].MemberIDs)
}

func TestDecodeDocument_RejectsWrongVersion(t *testing.T) {
	_, err := DecodeDocument([]byte(`{"version":99,"shapes":[]}`))
	assert.ErrorContains(t, err, "unsupported document version")
}

func TestDecodeDocument_RejectsDuplicateIDs(t *testing.T) {
	data := []byte(`{"version":1,"shapes":[
		{"id":"a","type":"rectangle","x":0,"y":0,"width":1,"height":1,"zIndex":1},
		{"id":"a","type":"circle","x":0,"y":0,"width":1,"height":1,"zIndex":2}
	]}`)
	_, err := DecodeDocument(data)
	assert.ErrorContains(t, err, "duplicate id")
}

func TestDecodeDocument_RejectsUnknownType(t *testing.T) {
	data := []byte(`{"version":1,"shapes":[
		{"id":"a","type":"blob","x":0,"y":0,"width":1,"height":1,"zIndex":1}
	]}`)
	_, err := DecodeDocument(data)
	assert.ErrorContains(t, err, "unknown type")
}

func TestShape_CloneIsDeep(t *testing.T) {
	s := Shape{ID: "a", Type: TypePath, Points: []float64{1, 2, 3}}
	c := s.Clone()
	c.Points[0] = 99
	assert.Equal(t, 1.0, s.Points[0])
}

func TestRect_Union(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 20, Y: 5, Width: 10, Height: 20}
	u := a.Union(b)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 30, Height: 25}, u)
}

func TestFixedGenerator_ReturnsIDsInOrder(t *testing.T) {
	gen := NewFixedGenerator("one", "two")
	assert.Equal(t, "one", gen.NewID())
	assert.Equal(t, "two", gen.NewID())
	assert.Panics(t, func() { gen.NewID() })
}

func TestUUIDv7Generator_IDsAreUniqueAndSortable(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.NewID()
	b := gen.NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
	// v7 ids minted in sequence sort in creation order.
	assert.LessOrEqual(t, a, b)
}
