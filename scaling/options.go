package scaling

import (
	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/forestrie/go-scalingbloom/bitmap"
	"github.com/forestrie/go-scalingbloom/bloom"
	"github.com/forestrie/go-scalingbloom/metrics"
)

type Options struct {
	Config

	// Filenames names the backing file of each new layer. Nil, or a
	// function returning "", means anonymous layers.
	Filenames FilenameFunc

	// BitmapFunc creates the bitmap of each new layer. It takes precedence
	// over Filenames and BitmapOptions.
	BitmapFunc BitmapFunc

	// BitmapOptions apply to bitmaps created by the default BitmapFunc
	BitmapOptions []bitmap.Option

	// Filters are existing layers, oldest first, to resume from
	Filters []*bloom.Filter

	Log     logger.Logger
	Metrics *metrics.Metrics
}

type Option func(*Options)

func NewOptions(opts ...Option) Options {
	o := Options{Config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithConfig replaces all growth parameters at once
func WithConfig(cfg Config) Option {
	return func(o *Options) {
		o.Config = cfg
	}
}

func WithInitialCapacity(capacity uint64) Option {
	return func(o *Options) {
		o.InitialCapacity = capacity
	}
}

func WithProbability(prob float64) Option {
	return func(o *Options) {
		o.Probability = prob
	}
}

func WithScaleSize(scale float64) Option {
	return func(o *Options) {
		o.ScaleSize = scale
	}
}

func WithProbReduction(r float64) Option {
	return func(o *Options) {
		o.ProbReduction = r
	}
}

func WithFilenames(fn FilenameFunc) Option {
	return func(o *Options) {
		o.Filenames = fn
	}
}

func WithBitmapFunc(fn BitmapFunc) Option {
	return func(o *Options) {
		o.BitmapFunc = fn
	}
}

func WithBitmapOptions(opts ...bitmap.Option) Option {
	return func(o *Options) {
		o.BitmapOptions = append(o.BitmapOptions, opts...)
	}
}

// WithFilters resumes from existing filters. Their designed capacity and
// probability are recomputed from their position, so they must be given
// oldest first and with the growth parameters they were created with.
func WithFilters(filters ...*bloom.Filter) Option {
	return func(o *Options) {
		o.Filters = append(o.Filters, filters...)
	}
}

func WithLogger(log logger.Logger) Option {
	return func(o *Options) {
		o.Log = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}
