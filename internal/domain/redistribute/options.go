// Package redistribute recomputes every ranking record's score from its
// position alone, honoring tier bounds and minimum spacing.
package redistribute

import "github.com/fairwaylabs/fairway/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMinGap sets the minimum spacing between adjacent scores.
func WithMinGap(gap float64) Option {
	return func(e *Engine) {
		if gap > 0 {
			e.minGap = gap
		}
	}
}

// WithTolerance sets the floating-point tolerance used during verification.
func WithTolerance(tolerance float64) Option {
	return func(e *Engine) {
		if tolerance > 0 {
			e.tolerance = tolerance
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}
