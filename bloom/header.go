package bloom

import (
	"fmt"

	"github.com/forestrie/go-scalingbloom/bitmap"
)

// DecodeHeader decodes the tail record in tail, which must be exactly
// HeaderBytes long.
//
// ok=false indicates the record is zero-filled / uninitialized.
func DecodeHeader(tail []byte) (h Header, ok bool, err error) {
	if len(tail) != HeaderBytes {
		return Header{}, false, ErrBadRegionSize
	}

	h.Count = readU64LE(tail[HeaderCountFirstByte:HeaderCountEnd])
	h.K = readU32LE(tail[HeaderKFirstByte:HeaderKEnd])

	if h.K == 0 {
		// A count without a k can't come from a writer of this format.
		if h.Count != 0 {
			return Header{}, false, fmt.Errorf("%w: count %d without k", ErrHeaderCorrupt, h.Count)
		}
		return Header{}, false, nil
	}
	return h, true, nil
}

// EncodeHeader writes h into tail, which must be exactly HeaderBytes long.
func EncodeHeader(tail []byte, h Header) error {
	if len(tail) != HeaderBytes {
		return ErrBadRegionSize
	}
	if h.K == 0 {
		return ErrBadK
	}
	writeU64LE(tail[HeaderCountFirstByte:HeaderCountEnd], h.Count)
	writeU32LE(tail[HeaderKFirstByte:HeaderKEnd], h.K)
	return nil
}

// HeaderOffset returns the byte offset of the tail record in a bitmap of
// size bytes. The caller ensures size > HeaderBytes.
func HeaderOffset(size uint64) uint64 {
	return size - HeaderBytes
}

// ReadHeader decodes the tail record of bm.
func ReadHeader(bm *bitmap.Bitmap) (Header, bool, error) {
	if bm.Size() <= HeaderBytes {
		return Header{}, false, ErrBitmapTooSmall
	}
	tail, err := bm.ReadRange(HeaderOffset(bm.Size()), bm.Size())
	if err != nil {
		return Header{}, false, fmt.Errorf("reading bloom header: %w", err)
	}
	return DecodeHeader(tail)
}

// WriteHeader encodes h into the tail record of bm.
func WriteHeader(bm *bitmap.Bitmap, h Header) error {
	if bm.Size() <= HeaderBytes {
		return ErrBitmapTooSmall
	}
	var tail [HeaderBytes]byte
	if err := EncodeHeader(tail[:], h); err != nil {
		return err
	}
	if err := bm.WriteRange(HeaderOffset(bm.Size()), bm.Size(), tail[:]); err != nil {
		return fmt.Errorf("writing bloom header: %w", err)
	}
	return nil
}
