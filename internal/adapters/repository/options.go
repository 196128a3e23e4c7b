package repository

import (
	"github.com/itbasis/go-clock"

	"github.com/okian/hoopsrank/pkg/logger"
)

type settings struct {
	clock  clock.Clock
	logger logger.Logger
}

func newSettings(opts []Option) settings {
	s := settings{clock: clock.New(), logger: logger.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option applies a configuration option to a draft store.
type Option func(*settings)

// WithClock sets the clock used to stamp pick updates.
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
