// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/fairwaylabs/fairway/internal/domain/tier"
)

// RankingRecord is one user's placement of one course within a tier.
// ID is store-assigned and distinct from the (UserID, CourseID, Tier) key.
type RankingRecord struct {
	ID              string
	UserID          string
	CourseID        string
	Tier            tier.Name
	Position        int     // 1-based rank within (UserID, Tier); lower is better
	Score           float64 // derived from Position; always within the tier band
	ComparisonCount int
	LastComparedAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Comparison is a resolved pairwise preference: the user preferred
// PreferredID over OtherID.
type Comparison struct {
	PreferredID string
	OtherID     string
}
