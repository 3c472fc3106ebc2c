package bitmap

import (
	"errors"
	"fmt"
)

const (
	// DefaultChunkSize bounds each write used to zero extend a short file.
	DefaultChunkSize = 100000
)

// Mode identifies how the region of a Bitmap is backed.
type Mode uint8

const (
	ModeAnonymous Mode = iota
	ModeShared
	ModePrivate
)

func (m Mode) String() string {
	switch m {
	case ModeAnonymous:
		return "anonymous"
	case ModeShared:
		return "shared"
	case ModePrivate:
		return "private"
	default:
		return "unknown"
	}
}

// The failure taxonomy shared by every layer of the filter stack. Errors
// returned by this module wrap exactly one of these, so callers can branch
// with errors.Is regardless of which layer produced the failure.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfRange      = errors.New("index out of range")
	ErrIOFailure       = errors.New("storage i/o failure")
	ErrClosed          = errors.New("use of closed resource")
)

var (
	ErrZeroSize           = fmt.Errorf("%w: bitmap size must be greater than zero", ErrInvalidArgument)
	ErrSizeMismatch       = fmt.Errorf("%w: bitmap operand sizes differ", ErrInvalidArgument)
	ErrNilOperand         = fmt.Errorf("%w: bitmap operand is nil", ErrInvalidArgument)
	ErrRangeLength        = fmt.Errorf("%w: data length does not match the byte range", ErrInvalidArgument)
	ErrPrivateNeedsFile   = fmt.Errorf("%w: a private mapping requires a backing file", ErrInvalidArgument)
	ErrSizeNotAddressable = fmt.Errorf("%w: bitmap size exceeds the addressable range", ErrInvalidArgument)
	ErrMmapUnsupported    = fmt.Errorf("%w: file backed mappings are not supported on this platform", ErrIOFailure)
)
