package bitmap

import "github.com/datatrails/go-datatrails-common/logger"

type Options struct {
	// Path names the backing file. Empty means an anonymous region.
	Path string

	// Private maps the file copy-on-write. Mutations stay in this process
	// and are never written back, even by Flush.
	Private bool

	// ChunkSize bounds the size of each write used to zero extend a file
	// that is shorter than the requested length.
	ChunkSize int

	Log logger.Logger
}

type Option func(*Options)

// WithFile backs the bitmap with a shared mapping of path, creating the file
// if it does not exist.
func WithFile(path string) Option {
	return func(o *Options) {
		o.Path = path
	}
}

// WithPrivate makes a file backed bitmap copy-on-write. It has no meaning,
// and is rejected by New, without WithFile.
func WithPrivate() Option {
	return func(o *Options) {
		o.Private = true
	}
}

func WithChunkSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.ChunkSize = n
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(o *Options) {
		o.Log = log
	}
}

// NewOptions applies opts over the defaults
func NewOptions(opts ...Option) Options {
	o := Options{ChunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
