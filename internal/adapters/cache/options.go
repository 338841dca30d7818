package cache

import "time"

// Option applies a configuration option to the RankingCache.
type Option func(*RankingCache)

// WithTTL sets the baseline entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *RankingCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithVerifiedTTL sets the lifetime for freshly verified lists.
func WithVerifiedTTL(ttl time.Duration) Option {
	return func(c *RankingCache) {
		if ttl > 0 {
			c.verifiedTTL = ttl
		}
	}
}

// WithClock sets the time source, used by tests to step TTL expiry.
func WithClock(now func() time.Time) Option {
	return func(c *RankingCache) {
		if now != nil {
			c.now = now
		}
	}
}
