package bitmap

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/datatrails/go-datatrails-common/logger"
)

// Bitmap is a fixed length, bit addressable byte region. It is not safe for
// concurrent mutation; the owner is expected to serialize access.
type Bitmap struct {
	log    logger.Logger
	size   uint64
	mode   Mode
	path   string
	data   []byte
	file   *os.File
	closed bool
}

// New creates a zero initialized bitmap of size bytes.
//
// With WithFile the region is a mapping of the named file. A short file is
// zero extended first, in writes of at most ChunkSize bytes, and bytes already
// present are preserved. Without it the region is anonymous.
func New(size uint64, opts ...Option) (*Bitmap, error) {
	if size == 0 {
		return nil, ErrZeroSize
	}
	if size > math.MaxInt {
		return nil, ErrSizeNotAddressable
	}
	o := NewOptions(opts...)
	if o.Private && o.Path == "" {
		return nil, ErrPrivateNeedsFile
	}

	b := &Bitmap{
		log:  o.Log,
		size: size,
		path: o.Path,
	}

	if o.Path == "" {
		data, err := mapAnonymous(int(size))
		if err != nil {
			return nil, fmt.Errorf("%w: anonymous map of %d bytes: %w", ErrIOFailure, size, err)
		}
		b.mode = ModeAnonymous
		b.data = data
		b.debugf("bitmap: mapped %d anonymous bytes", size)
		return b, nil
	}

	f, err := os.OpenFile(o.Path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIOFailure, o.Path, err)
	}
	extended, err := zeroExtend(f, size, o.ChunkSize)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: extend %s: %w", ErrIOFailure, o.Path, err)
	}
	if extended > 0 {
		b.debugf("bitmap: zero extended %s by %d bytes", o.Path, extended)
	}

	data, err := mapFile(f, int(size), o.Private)
	if err != nil {
		f.Close()
		if errors.Is(err, ErrMmapUnsupported) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: map %s: %w", ErrIOFailure, o.Path, err)
	}

	b.mode = ModeShared
	if o.Private {
		b.mode = ModePrivate
	}
	b.file = f
	b.data = data
	b.debugf("bitmap: mapped %d bytes of %s (%s)", size, o.Path, b.mode)
	return b, nil
}

// zeroExtend grows f to at least size bytes by appending zeros, never writing
// more than chunk bytes at once. It returns the number of bytes added.
func zeroExtend(f *os.File, size uint64, chunk int) (uint64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	have := uint64(fi.Size())
	if have >= size {
		return 0, nil
	}
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	zeros := make([]byte, min(uint64(chunk), size-have))
	added := uint64(0)
	for have < size {
		n := min(uint64(len(zeros)), size-have)
		written, err := f.WriteAt(zeros[:n], int64(have))
		if err != nil {
			return added, err
		}
		have += uint64(written)
		added += uint64(written)
	}
	return added, nil
}

// Size returns the length of the region in bytes
func (b *Bitmap) Size() uint64 { return b.size }

// Len returns the number of addressable bits
func (b *Bitmap) Len() uint64 { return b.size << 3 }

func (b *Bitmap) Mode() Mode { return b.mode }

// Path returns the backing file name, or "" for an anonymous bitmap.
func (b *Bitmap) Path() string { return b.path }

func (b *Bitmap) Closed() bool { return b.closed }

// Bit returns the value of bit i.
func (b *Bitmap) Bit(i uint64) (bool, error) {
	if err := b.checkBit(i); err != nil {
		return false, err
	}
	return b.data[i>>3]&(0x80>>(i&7)) != 0, nil
}

// SetBit sets bit i when v is true and clears it otherwise.
func (b *Bitmap) SetBit(i uint64, v bool) error {
	if err := b.checkBit(i); err != nil {
		return err
	}
	mask := byte(0x80) >> (i & 7)
	if v {
		b.data[i>>3] |= mask
	} else {
		b.data[i>>3] &^= mask
	}
	return nil
}

func (b *Bitmap) checkBit(i uint64) error {
	if b.closed {
		return ErrClosed
	}
	if i >= b.size<<3 {
		return fmt.Errorf("%w: bit %d of %d", ErrOutOfRange, i, b.size<<3)
	}
	return nil
}

// ReadRange returns a copy of the bytes [i, j).
func (b *Bitmap) ReadRange(i, j uint64) ([]byte, error) {
	if err := b.checkRange(i, j); err != nil {
		return nil, err
	}
	out := make([]byte, j-i)
	copy(out, b.data[i:j])
	return out, nil
}

// WriteRange replaces the bytes [i, j) with data, which must be exactly j-i
// bytes long.
func (b *Bitmap) WriteRange(i, j uint64, data []byte) error {
	if err := b.checkRange(i, j); err != nil {
		return err
	}
	if uint64(len(data)) != j-i {
		return fmt.Errorf("%w: have %d bytes for [%d, %d)", ErrRangeLength, len(data), i, j)
	}
	copy(b.data[i:j], data)
	return nil
}

func (b *Bitmap) checkRange(i, j uint64) error {
	if b.closed {
		return ErrClosed
	}
	if i > j || j > b.size {
		return fmt.Errorf("%w: bytes [%d, %d) of %d", ErrOutOfRange, i, j, b.size)
	}
	return nil
}

// Flush makes the mapped bytes durable. It returns once the kernel has
// written them and the file has been synced. Anonymous bitmaps have nothing
// to flush.
func (b *Bitmap) Flush() error {
	if b.closed {
		return ErrClosed
	}
	return b.flush(false)
}

// FlushAsync schedules the mapped bytes for writing and returns immediately.
// Nothing is guaranteed about completion; callers needing durability must
// follow up with Flush or Close.
func (b *Bitmap) FlushAsync() error {
	if b.closed {
		return ErrClosed
	}
	return b.flush(true)
}

func (b *Bitmap) flush(async bool) error {
	if b.mode == ModeAnonymous {
		return nil
	}
	if err := syncRegion(b.data, async); err != nil {
		return fmt.Errorf("%w: msync %s: %w", ErrIOFailure, b.path, err)
	}
	if async {
		return nil
	}
	if err := b.file.Sync(); err != nil {
		return fmt.Errorf("%w: fsync %s: %w", ErrIOFailure, b.path, err)
	}
	return nil
}

// Close flushes then releases the mapping and, for file backed bitmaps, the
// file. Calling Close on a closed bitmap is a no-op.
func (b *Bitmap) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.flush(false); err != nil {
		errs = append(errs, err)
	}
	if err := unmap(b.data); err != nil {
		errs = append(errs, fmt.Errorf("%w: munmap: %w", ErrIOFailure, err))
	}
	b.data = nil
	if b.file != nil {
		if err := b.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: close %s: %w", ErrIOFailure, b.path, err))
		}
		b.file = nil
	}
	b.debugf("bitmap: closed %d byte %s bitmap %s", b.size, b.mode, b.path)
	return errors.Join(errs...)
}

func (b *Bitmap) debugf(format string, args ...any) {
	if b.log != nil {
		b.log.Debugf(format, args...)
	}
}
