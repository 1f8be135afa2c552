package lang

import "github.com/ardnew/boi/log"

// DefaultMaxDepth is the default maximum nesting depth of expressions.
// Users may modify this before parsing to change the default.
var DefaultMaxDepth = 100

// options holds parser configuration.
type options struct {
	logger   log.Logger // not part of the cache key
	maxDepth int
	recovery bool
}

// Option configures parsing behavior.
type Option func(*options)

// WithMaxDepth sets the maximum nesting depth of expressions.
// Non-positive values select [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth <= 0 {
			depth = DefaultMaxDepth
		}

		o.maxDepth = depth
	}
}

// WithRecovery controls whether parsing continues after a failed item.
// When enabled, the parser skips to the next ";" or "let" and keeps
// collecting diagnostics. No program is returned if any item failed.
func WithRecovery(enable bool) Option {
	return func(o *options) {
		o.recovery = enable
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
