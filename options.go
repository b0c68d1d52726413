package keyedarchive

import "log/slog"

// DefaultMaxDepth bounds how deeply containers and references may nest.
const DefaultMaxDepth = 1 << 16

type DecodeOption func(*decodeState)

type decodeState struct {
	log      *slog.Logger
	maxDepth int
}

func newDecodeState(opts []DecodeOption) *decodeState {
	ds := &decodeState{
		log:      slog.New(slog.DiscardHandler),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(ds)
	}
	return ds
}

// WithLogger directs decoder diagnostics, logged at debug level, to l.
func WithLogger(l *slog.Logger) DecodeOption {
	return func(ds *decodeState) {
		if l != nil {
			ds.log = l
		}
	}
}

// MaxDepth sets the nesting limit; decoding deeper archives fails with
// ErrTooDeep.  n <= 0 restores DefaultMaxDepth.
func MaxDepth(n int) DecodeOption {
	return func(ds *decodeState) {
		if n <= 0 {
			n = DefaultMaxDepth
		}
		ds.maxDepth = n
	}
}
