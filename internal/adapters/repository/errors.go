package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound        = errors.New("ranking record not found")
	ErrDuplicateRecord = errors.New("ranking record already exists")
	ErrSwapMismatch    = errors.New("swap records must share user and tier")
	ErrInvalidRecord   = errors.New("invalid ranking record")
)
