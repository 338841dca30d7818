package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrEmptyAddr  = errors.New("addr must not be empty")
	ErrInvalidGap = errors.New("min_score_gap must be positive")
)
