// Package tier defines the fixed sentiment tiers and their score bands.
package tier

import (
	"errors"
	"fmt"
)

// Name identifies one of the three sentiment tiers.
type Name string

// The three tiers. Bands are disjoint and ordered; "liked" carries the
// numerically highest range.
const (
	Liked     Name = "liked"
	Fine      Name = "fine"
	DidntLike Name = "didnt_like"
)

// ErrUnknownTier is returned when a tier name has no configured band.
var ErrUnknownTier = errors.New("unknown tier")

// Tier is an immutable score band for one sentiment.
type Tier struct {
	Name     Name
	ScoreMin float64
	ScoreMax float64
}

// Range returns the width of the tier's score band.
func (t Tier) Range() float64 {
	return t.ScoreMax - t.ScoreMin
}

// Clamp bounds score to the tier's band.
func (t Tier) Clamp(score float64) float64 {
	if score > t.ScoreMax {
		return t.ScoreMax
	}
	if score < t.ScoreMin {
		return t.ScoreMin
	}
	return score
}

// Contains reports whether score lies within the tier's closed band.
func (t Tier) Contains(score float64) bool {
	return score >= t.ScoreMin && score <= t.ScoreMax
}

var tiers = map[Name]Tier{
	Liked:     {Name: Liked, ScoreMin: 7.0, ScoreMax: 10.0},
	Fine:      {Name: Fine, ScoreMin: 4.0, ScoreMax: 6.9},
	DidntLike: {Name: DidntLike, ScoreMin: 0.0, ScoreMax: 3.9},
}

// Of returns the tier configured under name.
func Of(name Name) (Tier, error) {
	t, ok := tiers[name]
	if !ok {
		return Tier{}, fmt.Errorf("%w: %q", ErrUnknownTier, name)
	}
	return t, nil
}

// All returns the three tiers ordered best to worst.
func All() []Tier {
	return []Tier{tiers[Liked], tiers[Fine], tiers[DidntLike]}
}
