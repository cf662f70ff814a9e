package svs

import (
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Reader.
type Option func(*options)

type options struct {
	logger         log.Logger
	maxDirectories int
	cacheBytes     int64
	registerer     prometheus.Registerer
	codecs         map[uint16]Codec
}

func defaultOptions() options {
	return options{
		logger:         log.NewNopLogger(),
		maxDirectories: DefaultMaxDirectories,
	}
}

// WithLogger sets the logger used while deriving the pyramid.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxDirectories bounds the directory chain walk.
func WithMaxDirectories(n int) Option {
	return func(o *options) {
		o.maxDirectories = n
	}
}

// WithTileCache keeps up to maxBytes of compressed tiles in an LRU cache.
// Zero disables caching.
func WithTileCache(maxBytes int64) Option {
	return func(o *options) {
		o.cacheBytes = maxBytes
	}
}

// WithRegisterer registers the Reader's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithCodec decodes the given compression with c for this Reader only,
// taking precedence over codecs installed with RegisterCodec.
func WithCodec(compression uint16, c Codec) Option {
	return func(o *options) {
		if o.codecs == nil {
			o.codecs = make(map[uint16]Codec)
		}
		o.codecs[compression] = c
	}
}
