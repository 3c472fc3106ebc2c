package bloom

import (
	"errors"
	"fmt"

	"github.com/forestrie/go-scalingbloom/bitmap"
)

const (
	// Header layout, relative to the first byte of the tail record
	//
	// .      | count          | k        |
	// .      | 0            7 | 8     11 |
	// bytes  |       8        |    4     |
	//
	// Both fields are little endian. The record occupies the last HeaderBytes
	// of the bitmap, immediately after the bit addressable region.

	HeaderCountFirstByte = 0
	HeaderCountSize      = 8
	HeaderCountEnd       = HeaderCountFirstByte + HeaderCountSize
	HeaderKFirstByte     = HeaderCountEnd
	HeaderKSize          = 4
	HeaderKEnd           = HeaderKFirstByte + HeaderKSize

	// HeaderBytes is the fixed size of the tail record.
	HeaderBytes = HeaderKEnd

	// MaxK bounds the hash count. Filters sized by ParamsForCapacity need
	// far fewer; a larger persisted k means the tail record is not a header.
	MaxK = 1024
)

// Re-exported so callers need only import this package to classify errors.
var (
	ErrInvalidArgument = bitmap.ErrInvalidArgument
	ErrOutOfRange      = bitmap.ErrOutOfRange
	ErrIOFailure       = bitmap.ErrIOFailure
	ErrClosed          = bitmap.ErrClosed

	// ErrTypeMismatch is returned when a key is not a byte sequence.
	ErrTypeMismatch = errors.New("type mismatch")
)

var (
	ErrBadK           = fmt.Errorf("%w: bloom: k must be in [1, MaxK]", ErrInvalidArgument)
	ErrNilBitmap      = fmt.Errorf("%w: bloom: bitmap is nil", ErrInvalidArgument)
	ErrBitmapTooSmall = fmt.Errorf("%w: bloom: bitmap must be larger than the header", ErrInvalidArgument)
	ErrBadRegionSize  = fmt.Errorf("%w: bloom: header buffer has the wrong size", ErrInvalidArgument)
	ErrKMismatch      = fmt.Errorf("%w: bloom: filters use different k", ErrInvalidArgument)
	ErrNilFilter      = fmt.Errorf("%w: bloom: filter is nil", ErrInvalidArgument)
	ErrBadCapacity    = fmt.Errorf("%w: bloom: capacity must be greater than zero", ErrInvalidArgument)
	ErrBadProbability = fmt.Errorf("%w: bloom: probability must be in (0, 1)", ErrInvalidArgument)
	ErrHeaderCorrupt  = fmt.Errorf("%w: bloom: header tail record is corrupt", ErrIOFailure)
	ErrKeyNotBytes    = fmt.Errorf("%w: bloom: keys must be byte sequences", ErrTypeMismatch)
)

// Header is the persisted tail record of a filter.
type Header struct {
	Count uint64
	K     uint32
}
