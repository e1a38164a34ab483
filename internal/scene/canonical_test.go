package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSnapshot_SortsIDs(t *testing.T) {
	s := Snapshot{
		"b": {T: WireRect, X: 1, Y: 2, W: 3, H: 4},
		"a": {T: WireCircle, X: 5, Y: 6, W: 7, H: 8},
	}
	out, err := MarshalSnapshot(s)
	require.NoError(t, err)
	assert.Equal(t,
		`{"a":{"h":8,"t":"c","w":7,"x":5,"y":6},"b":{"h":4,"t":"r","w":3,"x":1,"y":2}}`,
		string(out))
}

func TestMarshalSnapshot_EmptySnapshot(t *testing.T) {
	out, err := MarshalSnapshot(Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}

func TestMarshalSnapshot_TextField(t *testing.T) {
	s := Snapshot{"t1": {T: WireText, X: 0, Y: 0, W: 100, H: 20, Txt: "hi"}}
	out, err := MarshalSnapshot(s)
	require.NoError(t, err)
	assert.Equal(t, `{"t1":{"h":20,"t":"t","txt":"hi","w":100,"x":0,"y":0}}`, string(out))
}

func TestMarshalSnapshot_NoHTMLEscaping(t *testing.T) {
	s := Snapshot{"t1": {T: WireText, W: 1, H: 1, Txt: "<a> & <b>"}}
	out, err := MarshalSnapshot(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"<a> & <b>"`)
}

func TestMarshalSnapshot_NFCNormalization(t *testing.T) {
	decomposed := Snapshot{"t1": {T: WireText, W: 1, H: 1, Txt: "é"}}
	precomposed := Snapshot{"t1": {T: WireText, W: 1, H: 1, Txt: "é"}}

	a, err := MarshalSnapshot(decomposed)
	require.NoError(t, err)
	b, err := MarshalSnapshot(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestSnapshotHash_DeterministicAcrossMapOrder(t *testing.T) {
	s1 := Snapshot{
		"a": {T: WireRect, X: 1, Y: 1, W: 1, H: 1},
		"b": {T: WireRect, X: 2, Y: 2, W: 2, H: 2},
		"c": {T: WireRect, X: 3, Y: 3, W: 3, H: 3},
	}
	s2 := Snapshot{}
	for id, obj := range s1 {
		s2[id] = obj
	}

	h1, err := SnapshotHash(s1)
	require.NoError(t, err)
	h2, err := SnapshotHash(s2)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex sha256
}

func TestSnapshotHash_ChangesWithContent(t *testing.T) {
	h1, err := SnapshotHash(Snapshot{"a": {T: WireRect, X: 1, W: 1, H: 1}})
	require.NoError(t, err)
	h2, err := SnapshotHash(Snapshot{"a": {T: WireRect, X: 2, W: 1, H: 1}})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
