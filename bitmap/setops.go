package bitmap

import "fmt"

// Union returns a new bitmap where every byte is a[i] | b[i]. The result is
// anonymous unless opts say otherwise.
func Union(a, b *Bitmap, opts ...Option) (*Bitmap, error) {
	return combine(a, b, func(x, y byte) byte { return x | y }, opts...)
}

// Intersect returns a new bitmap where every byte is a[i] & b[i]. The result
// is anonymous unless opts say otherwise.
func Intersect(a, b *Bitmap, opts ...Option) (*Bitmap, error) {
	return combine(a, b, func(x, y byte) byte { return x & y }, opts...)
}

func combine(a, b *Bitmap, op func(x, y byte) byte, opts ...Option) (*Bitmap, error) {
	if a == nil || b == nil {
		return nil, ErrNilOperand
	}
	if a.closed || b.closed {
		return nil, ErrClosed
	}
	if a.size != b.size {
		return nil, fmt.Errorf("%w: %d != %d", ErrSizeMismatch, a.size, b.size)
	}

	if a.log != nil {
		opts = append([]Option{WithLogger(a.log)}, opts...)
	}
	out, err := New(a.size, opts...)
	if err != nil {
		return nil, err
	}
	for i := range out.data {
		out.data[i] = op(a.data[i], b.data[i])
	}
	return out, nil
}
