package bloom

import (
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/forestrie/go-scalingbloom/bitmap"
	"github.com/forestrie/go-scalingbloom/hashmix"
)

// Filter is a fixed capacity bloom filter over a Bitmap it owns. The last
// HeaderBytes of the bitmap hold the persisted count and k, everything before
// them is the bit array.
type Filter struct {
	log    logger.Logger
	bm     *bitmap.Bitmap
	k      uint32
	bits   uint64
	count  uint64
	closed bool
}

// New wraps bm in a filter, taking ownership of it.
//
// If the header of bm is zero-filled, k is written as the persisted hash
// count. Otherwise the persisted k is used and the k argument is ignored, so
// reopening a file with a different k is harmless. A persisted k above MaxK
// or above the number of bits is ErrHeaderCorrupt.
func New(bm *bitmap.Bitmap, k uint32, opts ...Option) (*Filter, error) {
	if bm == nil {
		return nil, ErrNilBitmap
	}
	if k < 1 || k > MaxK {
		return nil, fmt.Errorf("%w: %d", ErrBadK, k)
	}
	if bm.Size() <= HeaderBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrBitmapTooSmall, bm.Size())
	}
	o := NewOptions(opts...)

	h, ok, err := ReadHeader(bm)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		log:  o.Log,
		bm:   bm,
		bits: (bm.Size() - HeaderBytes) << 3,
	}
	if ok {
		if h.K > MaxK || uint64(h.K) > f.bits {
			return nil, fmt.Errorf("%w: k=%d for %d bits", ErrHeaderCorrupt, h.K, f.bits)
		}
		f.k = h.K
		f.count = h.Count
		if h.K != k {
			f.debugf("bloom: using persisted k=%d, ignoring k=%d", h.K, k)
		}
		return f, nil
	}

	f.k = k
	if err := WriteHeader(bm, Header{K: k}); err != nil {
		return nil, err
	}
	return f, nil
}

// ForCapacity creates a filter sized by ParamsForCapacity. The bitmap is
// anonymous unless WithBitmapOptions directs it elsewhere.
func ForCapacity(capacity uint64, prob float64, opts ...Option) (*Filter, error) {
	if err := CheckParams(capacity, prob); err != nil {
		return nil, err
	}
	size, k := ParamsForCapacity(capacity, prob)
	o := NewOptions(opts...)

	bm, err := bitmap.New(size, o.bitmapOptions()...)
	if err != nil {
		return nil, err
	}
	f, err := New(bm, k, opts...)
	if err != nil {
		bm.Close()
		return nil, err
	}
	return f, nil
}

// K returns the number of bits set per key
func (f *Filter) K() uint32 { return f.k }

// Bits returns the size of the bit array, which excludes the header
func (f *Filter) Bits() uint64 { return f.bits }

// Size returns the size of the underlying bitmap in bytes, header included
func (f *Filter) Size() uint64 { return f.bm.Size() }

// Count returns the number of successful adds. It is advisory: it never
// decreases and it is approximate for filters built by Union or Intersect.
func (f *Filter) Count() uint64 { return f.count }

func (f *Filter) Bitmap() *bitmap.Bitmap { return f.bm }

func (f *Filter) Closed() bool { return f.closed }

// Add sets the k bits for key and increments the count.
//
// With checkFirst, a key whose bits are all set already is reported as
// probably present: Add returns false and changes nothing.
func (f *Filter) Add(key []byte, checkFirst bool) (bool, error) {
	if f.closed {
		return false, ErrClosed
	}
	indices, err := hashmix.Indices(key, int(f.k), f.bits)
	if err != nil {
		return false, err
	}
	if checkFirst {
		present, err := f.allSet(indices)
		if err != nil {
			return false, err
		}
		if present {
			return false, nil
		}
	}
	for _, i := range indices {
		if err := f.bm.SetBit(i, true); err != nil {
			return false, err
		}
	}
	f.count++
	return true, nil
}

// Contains reports whether key may have been added. False is definite.
func (f *Filter) Contains(key []byte) (bool, error) {
	if f.closed {
		return false, ErrClosed
	}
	indices, err := hashmix.Indices(key, int(f.k), f.bits)
	if err != nil {
		return false, err
	}
	return f.allSet(indices)
}

// AddValue is Add for a key that has not yet been checked to be a byte
// sequence. See KeyOf.
func (f *Filter) AddValue(v any, checkFirst bool) (bool, error) {
	key, err := KeyOf(v)
	if err != nil {
		return false, err
	}
	return f.Add(key, checkFirst)
}

// ContainsValue is Contains for a key that has not yet been checked to be a
// byte sequence. See KeyOf.
func (f *Filter) ContainsValue(v any) (bool, error) {
	key, err := KeyOf(v)
	if err != nil {
		return false, err
	}
	return f.Contains(key)
}

func (f *Filter) allSet(indices []uint64) (bool, error) {
	for _, i := range indices {
		set, err := f.bm.Bit(i)
		if err != nil {
			return false, err
		}
		if !set {
			return false, nil
		}
	}
	return true, nil
}

// Flush writes the count and k into the header. Unless sizeOnly is set the
// bitmap is then flushed to durable storage.
func (f *Filter) Flush(sizeOnly bool) error {
	if f.closed {
		return ErrClosed
	}
	if err := WriteHeader(f.bm, Header{Count: f.count, K: f.k}); err != nil {
		return err
	}
	if sizeOnly {
		return nil
	}
	return f.bm.Flush()
}

// Close flushes the filter and closes its bitmap. A second Close is a no-op.
func (f *Filter) Close() error {
	if f.closed {
		return nil
	}
	flushErr := f.Flush(false)
	f.closed = true
	return errors.Join(flushErr, f.bm.Close())
}

// Union returns a filter over the bytewise OR of the two bitmaps. Its count
// is the sum of the operand counts, which over counts keys added to both.
func Union(a, b *Filter, opts ...Option) (*Filter, error) {
	if err := checkOperands(a, b); err != nil {
		return nil, err
	}
	return combine(a, b, bitmap.Union, a.count+b.count, opts...)
}

// Intersect returns a filter over the bytewise AND of the two bitmaps. Its
// count is the smaller of the operand counts, an approximation.
func Intersect(a, b *Filter, opts ...Option) (*Filter, error) {
	if err := checkOperands(a, b); err != nil {
		return nil, err
	}
	return combine(a, b, bitmap.Intersect, min(a.count, b.count), opts...)
}

func checkOperands(a, b *Filter) error {
	if a == nil || b == nil {
		return ErrNilFilter
	}
	if a.closed || b.closed {
		return ErrClosed
	}
	if a.k != b.k {
		return fmt.Errorf("%w: %d != %d", ErrKMismatch, a.k, b.k)
	}
	return nil
}

type bitmapOp func(a, b *bitmap.Bitmap, opts ...bitmap.Option) (*bitmap.Bitmap, error)

func combine(a, b *Filter, op bitmapOp, count uint64, opts ...Option) (*Filter, error) {
	o := NewOptions(opts...)
	if o.Log == nil {
		o.Log = a.log
		opts = append([]Option{WithLogger(a.log)}, opts...)
	}

	bm, err := op(a.bm, b.bm, o.bitmapOptions()...)
	if err != nil {
		return nil, err
	}
	// The operation also combined the two tail records; replace the result.
	if err := WriteHeader(bm, Header{Count: count, K: a.k}); err != nil {
		bm.Close()
		return nil, err
	}
	f, err := New(bm, a.k, opts...)
	if err != nil {
		bm.Close()
		return nil, err
	}
	return f, nil
}

func (f *Filter) debugf(format string, args ...any) {
	if f.log != nil {
		f.log.Debugf(format, args...)
	}
}
