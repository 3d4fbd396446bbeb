package czi

import (
	"io"
	"log/slog"
)

// Option configures a Packer or ImageFactory.
type Option func(*options)

type options struct {
	workers int
	logger  *slog.Logger
}

func defaultOptions() *options {
	return &options{
		workers: 1,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithWorkers sets how many tiles are decoded concurrently. Values below 1
// are ignored; the default of 1 decodes tiles sequentially in order.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
