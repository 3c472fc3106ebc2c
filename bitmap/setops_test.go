package bitmap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnionAndIntersect(t *testing.T) {
	a, err := New(2)
	require.NoError(t, err)
	defer a.Close()
	b, err := New(2)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.WriteRange(0, 2, []byte{0b1100_0011, 0xF0}))
	require.NoError(t, b.WriteRange(0, 2, []byte{0b1010_1010, 0x0F}))

	u, err := Union(a, b)
	require.NoError(t, err)
	defer u.Close()
	require.Equal(t, ModeAnonymous, u.Mode())
	got, err := u.ReadRange(0, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0b1110_1011, 0xFF}, got)

	n, err := Intersect(a, b)
	require.NoError(t, err)
	defer n.Close()
	got, err = n.ReadRange(0, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0b1000_0010, 0x00}, got)

	// operands are untouched
	got, err = a.ReadRange(0, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0b1100_0011, 0xF0}, got)
}

func TestUnionToFile(t *testing.T) {
	a, err := New(4)
	require.NoError(t, err)
	defer a.Close()
	b, err := New(4)
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, a.SetBit(1, true))
	require.NoError(t, b.SetBit(30, true))

	path := filepath.Join(t.TempDir(), "union.mmap")
	u, err := Union(a, b, WithFile(path))
	require.NoError(t, err)
	defer u.Close()
	require.Equal(t, ModeShared, u.Mode())

	got, err := u.ReadRange(0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0x40, 0, 0, 0x02}, got)
}

func TestSetOpsRejectBadOperands(t *testing.T) {
	a, err := New(2)
	require.NoError(t, err)
	defer a.Close()
	b, err := New(3)
	require.NoError(t, err)

	_, err = Union(a, b)
	require.ErrorIs(t, err, ErrSizeMismatch)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Intersect(a, b)
	require.ErrorIs(t, err, ErrSizeMismatch)

	_, err = Union(a, nil)
	require.ErrorIs(t, err, ErrNilOperand)
	_, err = Intersect(nil, a)
	require.ErrorIs(t, err, ErrInvalidArgument)

	require.NoError(t, b.Close())
	c, err := New(2)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	_, err = Union(a, c)
	require.ErrorIs(t, err, ErrClosed)
}
