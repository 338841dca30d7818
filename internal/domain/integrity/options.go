package integrity

import "github.com/fairwaylabs/fairway/pkg/logger"

// Option applies a configuration option to the Checker.
type Option func(*Checker)

// WithRepairThreshold sets how many consecutive repair attempts a key may
// make before its breaker opens.
func WithRepairThreshold(threshold int) Option {
	return func(c *Checker) {
		if threshold > 0 {
			c.threshold = uint32(threshold)
		}
	}
}

// WithLogger sets a custom logger for the checker.
func WithLogger(log logger.Logger) Option {
	return func(c *Checker) {
		if log != nil {
			c.log = log
		}
	}
}
