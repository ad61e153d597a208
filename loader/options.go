package loader

import (
	"time"

	"github.com/YuminosukeSato/linscore/pkg/log"
)

// DefaultMaxSize is the default cap on a model document, 64 MiB.
const DefaultMaxSize int64 = 64 << 20

// Option configures a Loader.
type Option func(*Loader)

// WithMaxSize sets the maximum document size in bytes. Values <= 0 are
// ignored.
func WithMaxSize(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxSize = n
		}
	}
}

// WithStrict makes an unrecognized non-empty modelType fail with
// UnknownModelTypeError instead of falling back.
func WithStrict(strict bool) Option {
	return func(l *Loader) {
		l.strict = strict
	}
}

// WithDummy makes Load skip the source and return the dummy classifier.
func WithDummy(dummy bool) Option {
	return func(l *Loader) {
		l.dummy = dummy
	}
}

// WithLogger sets the logger. The default is log.GetLoggerWithName("loader").
func WithLogger(logger log.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTimeout bounds every Load call. Zero means no loader-imposed deadline.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d >= 0 {
			l.timeout = d
		}
	}
}
