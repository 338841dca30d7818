// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CacheTTLSeconds bounds the lifetime of cached ranking lists.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// VerifiedCacheTTLSeconds applies to lists that just passed a full
	// post-redistribution verification.
	VerifiedCacheTTLSeconds int `koanf:"verified_cache_ttl_seconds"`

	// RepairThreshold is the consecutive-repair limit before a
	// (user, tier) key's breaker opens.
	RepairThreshold int `koanf:"repair_threshold"`

	// MinScoreGap is the minimum spacing between adjacent scores.
	MinScoreGap float64 `koanf:"min_score_gap"`

	// MaxRankingLimit caps the number of records returned per request.
	MaxRankingLimit int `koanf:"max_ranking_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		CacheTTLSeconds:         30,
		VerifiedCacheTTLSeconds: 300,
		RepairThreshold:         3,
		MinScoreGap:             0.1,
		MaxRankingLimit:         500,
	}
}
