package bitmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnonymousIsZeroed(t *testing.T) {
	b, err := New(16)
	require.NoError(t, err)
	defer b.Close()

	require.Equal(t, uint64(16), b.Size())
	require.Equal(t, uint64(128), b.Len())
	require.Equal(t, ModeAnonymous, b.Mode())
	require.Equal(t, "", b.Path())

	for i := uint64(0); i < b.Len(); i++ {
		v, err := b.Bit(i)
		require.NoError(t, err)
		require.False(t, v, "bit %d", i)
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	_, err := New(0)
	require.ErrorIs(t, err, ErrZeroSize)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(8, WithPrivate())
	require.ErrorIs(t, err, ErrPrivateNeedsFile)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSetBitIsMSBFirst(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.SetBit(0, true))
	require.NoError(t, b.SetBit(9, true))
	require.NoError(t, b.SetBit(31, true))

	got, err := b.ReadRange(0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0x80, 0x40, 0x00, 0x01}, got)

	v, err := b.Bit(9)
	require.NoError(t, err)
	require.True(t, v)

	require.NoError(t, b.SetBit(9, false))
	v, err = b.Bit(9)
	require.NoError(t, err)
	require.False(t, v)

	// clearing leaves neighbours alone
	got, err = b.ReadRange(0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0x80, 0x00, 0x00, 0x01}, got)
}

func TestBitOutOfRange(t *testing.T) {
	b, err := New(2)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Bit(16)
	require.ErrorIs(t, err, ErrOutOfRange)
	require.ErrorIs(t, b.SetBit(16, true), ErrOutOfRange)

	_, err = b.Bit(15)
	require.NoError(t, err)
}

func TestRangeAccess(t *testing.T) {
	b, err := New(8)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.WriteRange(2, 5, []byte{1, 2, 3}))
	got, err := b.ReadRange(0, 8)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 1, 2, 3, 0, 0, 0}, got)

	// ReadRange hands out a copy
	got[2] = 0xff
	again, err := b.ReadRange(2, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, again)

	empty, err := b.ReadRange(8, 8)
	require.NoError(t, err)
	require.Len(t, empty, 0)

	require.ErrorIs(t, b.WriteRange(0, 2, []byte{1}), ErrRangeLength)
	require.ErrorIs(t, b.WriteRange(6, 9, []byte{1, 2, 3}), ErrOutOfRange)
	_, err = b.ReadRange(5, 4)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestClosedUse(t *testing.T) {
	b, err := New(8)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.True(t, b.Closed())

	_, err = b.Bit(0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.SetBit(0, true), ErrClosed)
	_, err = b.ReadRange(0, 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.WriteRange(0, 1, []byte{1}), ErrClosed)
	assert.ErrorIs(t, b.Flush(), ErrClosed)
	assert.ErrorIs(t, b.FlushAsync(), ErrClosed)

	// a second close is not an error
	assert.NoError(t, b.Close())
}

func TestFileBackedPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.mmap")

	b, err := New(32, WithFile(path))
	require.NoError(t, err)
	require.Equal(t, ModeShared, b.Mode())
	require.Equal(t, path, b.Path())
	require.NoError(t, b.SetBit(3, true))
	require.NoError(t, b.SetBit(200, true))
	require.NoError(t, b.Close())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(32), fi.Size())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, byte(0x10), raw[0])
	require.Equal(t, byte(0x80), raw[25])

	b, err = New(32, WithFile(path))
	require.NoError(t, err)
	defer b.Close()
	for _, i := range []uint64{3, 200} {
		v, err := b.Bit(i)
		require.NoError(t, err)
		require.True(t, v, "bit %d", i)
	}
}

func TestZeroExtendPreservesExistingBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.mmap")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	b, err := New(100, WithFile(path), WithChunkSize(7))
	require.NoError(t, err)
	got, err := b.ReadRange(0, 6)
	require.NoError(t, err)
	require.Equal(t, []byte{'h', 'e', 'l', 'l', 'o', 0}, got)
	require.NoError(t, b.Close())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(100), fi.Size())
}

func TestZeroExtendChunks(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "chunks.mmap"))
	require.NoError(t, err)
	defer f.Close()

	added, err := zeroExtend(f, 23, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(23), added)

	// already long enough
	added, err = zeroExtend(f, 10, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(0), added)

	fi, err := f.Stat()
	require.NoError(t, err)
	require.Equal(t, int64(23), fi.Size())
}

func TestLongerFileIsNotTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.mmap")
	content := make([]byte, 64)
	content[0] = 0xAA
	content[63] = 0x55
	require.NoError(t, os.WriteFile(path, content, 0644))

	b, err := New(16, WithFile(path))
	require.NoError(t, err)
	got, err := b.ReadRange(0, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA}, got)
	require.NoError(t, b.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, content, raw)
}

func TestPrivateMappingIsIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "private.mmap")

	shared, err := New(8, WithFile(path))
	require.NoError(t, err)
	require.NoError(t, shared.SetBit(0, true))
	require.NoError(t, shared.Close())

	private, err := New(8, WithFile(path), WithPrivate())
	require.NoError(t, err)
	require.Equal(t, ModePrivate, private.Mode())

	v, err := private.Bit(0)
	require.NoError(t, err)
	require.True(t, v, "private mapping starts from the file content")

	require.NoError(t, private.SetBit(63, true))
	require.NoError(t, private.Flush())
	require.NoError(t, private.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte{0x80, 0, 0, 0, 0, 0, 0, 0}, raw)
}

func TestFlushModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flush.mmap")
	b, err := New(8, WithFile(path))
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.SetBit(7, true))
	require.NoError(t, b.FlushAsync())
	require.NoError(t, b.Flush())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, byte(0x01), raw[0])

	anon, err := New(8)
	require.NoError(t, err)
	defer anon.Close()
	require.NoError(t, anon.Flush())
	require.NoError(t, anon.FlushAsync())
}
