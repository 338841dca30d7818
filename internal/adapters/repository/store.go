// Package repository defines the ranking record store interface and errors.
package repository

import (
	"context"

	"github.com/fairwaylabs/fairway/internal/domain/model"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
)

// Store provides durable keyed access to ranking records. The engine is
// written against this capability interface so an in-memory double and a
// real backing store satisfy the same contract.
type Store interface {
	// Select returns the (userID, tier) list ordered by position ascending.
	Select(ctx context.Context, userID string, t tier.Name) ([]model.RankingRecord, error)

	// Insert persists a single new record and returns it with its
	// store-assigned ID and timestamps populated.
	Insert(ctx context.Context, record model.RankingRecord) (model.RankingRecord, error)

	// BulkUpsert writes records atomically with respect to partial
	// failure: on error, nothing can be assumed persisted.
	BulkUpsert(ctx context.Context, records []model.RankingRecord) error

	// SwapPositions atomically moves record A into record B's position
	// and shifts every record strictly between the two one slot toward
	// A's old position.
	SwapPositions(ctx context.Context, recordIDA, recordIDB string) error

	// IncrementComparisonCounts bumps the comparison counter and
	// last-compared timestamp for the user's listed courses.
	IncrementComparisonCounts(ctx context.Context, userID string, courseIDs []string) error
}
