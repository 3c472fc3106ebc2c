// Package scaling grows a stack of bloom filters so that a target false
// positive probability holds however many keys are added.
package scaling

import (
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/forestrie/go-scalingbloom/bitmap"
	"github.com/forestrie/go-scalingbloom/bloom"
	"github.com/forestrie/go-scalingbloom/metrics"
)

// Layer is one fixed capacity filter in the stack together with the
// parameters it was designed for. Capacity and Probability are not persisted
// in the filter itself.
type Layer struct {
	Filter      *bloom.Filter
	Capacity    uint64
	Probability float64
}

// Filter is a stack of bloom filters that grows a new, larger and stricter,
// layer whenever the newest one reaches its designed capacity. Only the
// newest layer receives adds; queries consult every layer.
type Filter struct {
	log       logger.Logger
	metrics   *metrics.Metrics
	cfg       Config
	newBitmap BitmapFunc
	layers    []Layer
	closed    bool
}

// New creates a scaling filter.
//
// With WithFilters the given filters become the layers, oldest first, and
// their designed capacity and probability are derived from position.
// Otherwise a single layer sized for the initial capacity is created.
func New(opts ...Option) (*Filter, error) {
	o := NewOptions(opts...)
	if err := o.Config.Validate(); err != nil {
		return nil, err
	}

	s := &Filter{
		log:       o.Log,
		metrics:   o.Metrics,
		cfg:       o.Config,
		newBitmap: o.BitmapFunc,
	}
	if s.newBitmap == nil {
		bopts := o.BitmapOptions
		if o.Log != nil {
			bopts = append([]bitmap.Option{bitmap.WithLogger(o.Log)}, bopts...)
		}
		s.newBitmap = DefaultBitmapFunc(o.Filenames, bopts...)
	}

	for i, f := range o.Filters {
		if f == nil {
			return nil, fmt.Errorf("%w: layer %d", ErrNilFilter, i)
		}
		capacity, prob := s.cfg.Layer(i)
		s.layers = append(s.layers, Layer{Filter: f, Capacity: capacity, Probability: prob})
	}
	if len(s.layers) > 0 {
		for _, i := range s.misplacedLayers() {
			l := s.layers[i]
			size, _ := bloom.ParamsForCapacity(l.Capacity, l.Probability)
			s.infof(
				"scaling: layer %d has %d bytes, its position implies %d; growth parameters differ",
				i, l.Filter.Size(), size)
		}
		s.infof("scaling: resumed %d layers holding %d keys", len(s.layers), s.Count())
		s.publish()
		return s, nil
	}

	if err := s.grow(); err != nil {
		return nil, err
	}
	return s, nil
}

// misplacedLayers returns the positions of layers whose bitmap size differs
// from the size their designed capacity and probability imply. Such a layer
// was created with other growth parameters, so its designed capacity, and
// with it the growth trigger, is wrong.
func (s *Filter) misplacedLayers() []int {
	var out []int
	for i, l := range s.layers {
		size, _ := bloom.ParamsForCapacity(l.Capacity, l.Probability)
		if l.Filter.Size() != size {
			out = append(out, i)
		}
	}
	return out
}

// grow appends a new layer designed for the next capacity and probability in
// the sequence.
func (s *Filter) grow() error {
	capacity, prob := s.cfg.Layer(0)
	if n := len(s.layers); n > 0 {
		last := s.layers[n-1]
		capacity, prob = s.cfg.next(last.Capacity, last.Probability)
	}
	size, k := bloom.ParamsForCapacity(capacity, prob)

	bm, err := s.newBitmap(size)
	if err != nil {
		return fmt.Errorf("creating bitmap for layer %d: %w", len(s.layers), err)
	}
	f, err := bloom.New(bm, k, bloom.WithLogger(s.log))
	if err != nil {
		if bm != nil {
			bm.Close()
		}
		return err
	}

	s.layers = append(s.layers, Layer{Filter: f, Capacity: capacity, Probability: prob})
	s.infof(
		"scaling: added layer %d capacity=%d probability=%g bytes=%d k=%d path=%q",
		len(s.layers)-1, capacity, prob, f.Size(), f.K(), bm.Path())
	s.publish()
	return nil
}

func (s *Filter) active() Layer { return s.layers[len(s.layers)-1] }

// Add adds key to the newest layer, first growing a new layer if the newest
// is at capacity.
//
// With checkFirst, a key that any layer probably contains is not added and
// Add returns false.
func (s *Filter) Add(key []byte, checkFirst bool) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	if checkFirst {
		present, err := s.contains(key)
		if err != nil {
			return false, err
		}
		if present {
			s.metrics.RecordAdd(false)
			return false, nil
		}
	}

	if active := s.active(); active.Filter.Count()+1 >= active.Capacity {
		if err := s.grow(); err != nil {
			return false, err
		}
	}

	added, err := s.active().Filter.Add(key, false)
	if err != nil {
		return false, err
	}
	s.metrics.RecordAdd(added)
	return added, nil
}

// Contains reports whether any layer may contain key. Layers are consulted
// newest first.
func (s *Filter) Contains(key []byte) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	present, err := s.contains(key)
	if err != nil {
		return false, err
	}
	s.metrics.RecordQuery(present)
	return present, nil
}

func (s *Filter) contains(key []byte) (bool, error) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		present, err := s.layers[i].Filter.Contains(key)
		if err != nil {
			return false, err
		}
		if present {
			return true, nil
		}
	}
	return false, nil
}

// AddValue is Add for a key that has not yet been checked to be a byte
// sequence. See bloom.KeyOf.
func (s *Filter) AddValue(v any, checkFirst bool) (bool, error) {
	key, err := bloom.KeyOf(v)
	if err != nil {
		return false, err
	}
	return s.Add(key, checkFirst)
}

func (s *Filter) ContainsValue(v any) (bool, error) {
	key, err := bloom.KeyOf(v)
	if err != nil {
		return false, err
	}
	return s.Contains(key)
}

func (s *Filter) Config() Config { return s.cfg }

// Count returns the sum of the layer counts
func (s *Filter) Count() uint64 {
	var n uint64
	for _, l := range s.layers {
		n += l.Filter.Count()
	}
	return n
}

// Len returns the number of layers
func (s *Filter) Len() int { return len(s.layers) }

// Layers returns the layers, oldest first. The slice is a copy but the
// filters are shared with s.
func (s *Filter) Layers() []Layer {
	return append([]Layer(nil), s.layers...)
}

// TotalCapacity returns the sum of the designed layer capacities
func (s *Filter) TotalCapacity() uint64 {
	var n uint64
	for _, l := range s.layers {
		n += l.Capacity
	}
	return n
}

// TotalBitmapSize returns the sum of the layer bitmap sizes in bytes. It
// counts each 12 byte tail header, so it is what is mapped and stored on
// disk. TotalUsableBytes excludes the headers.
func (s *Filter) TotalBitmapSize() uint64 {
	var n uint64
	for _, l := range s.layers {
		n += l.Filter.Size()
	}
	return n
}

// TotalUsableBytes returns the sum of the layer bit array sizes in bytes,
// tail headers excluded.
func (s *Filter) TotalUsableBytes() uint64 {
	var n uint64
	for _, l := range s.layers {
		n += l.Filter.Bits() / 8
	}
	return n
}

func (s *Filter) Closed() bool { return s.closed }

// Flush flushes every layer, oldest first.
func (s *Filter) Flush() error {
	if s.closed {
		return ErrClosed
	}
	var errs []error
	for i, l := range s.layers {
		if err := l.Filter.Flush(false); err != nil {
			errs = append(errs, fmt.Errorf("flushing layer %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every layer, oldest first. A second Close is a no-op.
func (s *Filter) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for i, l := range s.layers {
		if err := l.Filter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing layer %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Filter) publish() {
	s.metrics.SetShape(len(s.layers), s.TotalCapacity(), s.TotalBitmapSize())
}

func (s *Filter) infof(format string, args ...any) {
	if s.log != nil {
		s.log.Infof(format, args...)
	}
}
