package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	f := New(4, 3, 3)
	require.Len(t, f.Pix, 36)
	assert.Equal(t, Shape{Width: 4, Height: 3, Channels: 3, Len: 36}, f.Shape())
}

func TestShapeEquality(t *testing.T) {
	a := New(8, 4, 3)
	b := New(8, 4, 3)
	assert.Equal(t, a.Shape(), b.Shape())

	c := New(4, 8, 3)
	assert.NotEqual(t, a.Shape(), c.Shape())

	// Same dims but truncated data must not compare equal.
	b.Pix = b.Pix[:len(b.Pix)-1]
	assert.NotEqual(t, a.Shape(), b.Shape())
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "1920x1080x3", New(1920, 1080, 3).Shape().String())
}

func TestCloneIsDeep(t *testing.T) {
	f := New(2, 2, 1)
	f.Set(0, 0, 0, 42)

	c := f.Clone()
	require.Equal(t, f.Shape(), c.Shape())
	assert.Equal(t, byte(42), c.At(0, 0, 0))

	c.Set(0, 0, 0, 7)
	assert.Equal(t, byte(42), f.At(0, 0, 0), "clone must not alias the original")
}

func TestAtSet(t *testing.T) {
	f := New(3, 2, 2)
	f.Set(2, 1, 1, 99)
	assert.Equal(t, byte(99), f.At(2, 1, 1))
	assert.Equal(t, byte(99), f.Pix[(1*3+2)*2+1])
}

func TestFill(t *testing.T) {
	f := New(2, 2, 3)
	f.Fill(128)
	for _, v := range f.Pix {
		require.Equal(t, byte(128), v)
	}
}
