package bloom

import (
	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/forestrie/go-scalingbloom/bitmap"
)

type Options struct {
	Log logger.Logger

	// BitmapOptions apply whenever this package creates a bitmap itself,
	// in ForCapacity, Union and Intersect.
	BitmapOptions []bitmap.Option
}

type Option func(*Options)

func WithLogger(log logger.Logger) Option {
	return func(o *Options) {
		o.Log = log
	}
}

// WithBitmapOptions supplies options for bitmaps created on the caller's
// behalf. For example WithBitmapOptions(bitmap.WithFile(path)) makes
// ForCapacity produce a file backed filter.
func WithBitmapOptions(opts ...bitmap.Option) Option {
	return func(o *Options) {
		o.BitmapOptions = append(o.BitmapOptions, opts...)
	}
}

func NewOptions(opts ...Option) Options {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// bitmapOptions returns the caller's bitmap options, preceded by the filter
// logger so an explicit bitmap.WithLogger still wins.
func (o Options) bitmapOptions() []bitmap.Option {
	if o.Log == nil {
		return o.BitmapOptions
	}
	return append([]bitmap.Option{bitmap.WithLogger(o.Log)}, o.BitmapOptions...)
}
