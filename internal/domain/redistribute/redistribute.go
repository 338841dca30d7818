// Package redistribute recomputes every ranking record's score from its
// position alone, honoring tier bounds and minimum spacing.
package redistribute

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fairwaylabs/fairway/internal/domain/model"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
	"github.com/fairwaylabs/fairway/pkg/logger"
	"github.com/fairwaylabs/fairway/pkg/metrics"
)

// Default spacing configuration constants.
const (
	defaultMinGap       = 0.1
	defaultTolerance    = 0.001
	defaultSafetyFactor = 0.9 // fraction of the remaining range consumed per step in the tight-bounds fallback
)

// Store is the persistence surface redistribution needs: a bulk write and
// a re-read for post-write verification.
type Store interface {
	Select(ctx context.Context, userID string, t tier.Name) ([]model.RankingRecord, error)
	BulkUpsert(ctx context.Context, records []model.RankingRecord) error
}

// Engine performs deterministic, idempotent score redistribution.
type Engine struct {
	store        Store
	minGap       float64
	tolerance    float64
	safetyFactor float64
	log          logger.Logger
}

// New constructs a redistribution engine backed by store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		minGap:       defaultMinGap,
		tolerance:    defaultTolerance,
		safetyFactor: defaultSafetyFactor,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = logger.Get()
	}

	return e
}

// Scores returns a copy of records, sorted ascending by position, with
// scores recomputed from positions. Pure computation; nothing is persisted.
//
// The record at position 1 always receives t.ScoreMax. Subsequent records
// receive evenly spaced candidates clamped to sit at least the minimum gap
// below their predecessor; when the candidate would sink below t.ScoreMin
// the remaining range is divided proportionally among the remaining
// records instead. All scores are rounded to one decimal place.
func (e *Engine) Scores(t tier.Tier, records []model.RankingRecord) ([]model.RankingRecord, error) {
	out := make([]model.RankingRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })

	n := len(out)
	if n == 0 {
		return out, nil
	}

	out[0].Score = t.ScoreMax
	if n == 1 {
		return out, nil
	}

	step := math.Max(e.minGap, t.Range()/float64(n-1))
	prev := t.ScoreMax
	for i := 1; i < n; i++ {
		candidate := t.ScoreMax - float64(i)*step
		if candidate > prev-e.minGap {
			candidate = prev - e.minGap
		}
		if candidate < t.ScoreMin {
			// Tight bounds: divide what is left of the band among the
			// remaining records, keeping a safety margin per step.
			remaining := n - i
			available := prev - t.ScoreMin
			if available > 0 {
				candidate = prev - (available/float64(remaining))*e.safetyFactor
			} else {
				candidate = math.Max(t.ScoreMin, prev-e.minGap)
			}
		}
		candidate = roundScore(candidate)
		if candidate < t.ScoreMin {
			candidate = t.ScoreMin
		}
		if candidate > t.ScoreMax {
			return nil, fmt.Errorf("%w: %.2f for position %d in tier %s",
				ErrScoreOutOfBounds, candidate, out[i].Position, t.Name)
		}
		out[i].Score = candidate
		prev = candidate
	}

	return out, nil
}

// Redistribute recomputes scores for the (userID, tier) list, persists them
// in one bulk write, and verifies the persisted state. Verification
// failures are logged and counted, never retried here; repair loops are
// bounded by the integrity breaker upstream.
func (e *Engine) Redistribute(ctx context.Context, userID string, t tier.Tier, records []model.RankingRecord) ([]model.RankingRecord, error) {
	start := time.Now()

	scored, err := e.Scores(t, records)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return scored, nil
	}

	now := time.Now().UTC()
	for i := range scored {
		scored[i].UpdatedAt = now
	}

	if err := e.store.BulkUpsert(ctx, scored); err != nil {
		return nil, fmt.Errorf("persist redistributed scores: %w", err)
	}

	metrics.RecordRedistribution()
	metrics.RecordRedistributionDuration(float64(time.Since(start).Nanoseconds()) / 1e6)

	e.verify(ctx, userID, t)

	return scored, nil
}

// verify re-reads the persisted list and checks that ascending positions
// carry non-increasing, in-band scores.
func (e *Engine) verify(ctx context.Context, userID string, t tier.Tier) {
	persisted, err := e.store.Select(ctx, userID, t.Name)
	if err != nil {
		e.log.Warn(ctx, "redistribution verification read failed",
			logger.String("userID", userID),
			logger.String("tier", string(t.Name)),
			logger.Error(err),
		)
		return
	}

	prev := math.Inf(1)
	for _, r := range persisted {
		if r.Score > prev+e.tolerance {
			metrics.RecordVerifyViolation()
			e.log.Error(ctx, "redistributed scores not monotonic",
				logger.String("userID", userID),
				logger.String("tier", string(t.Name)),
				logger.Int("position", r.Position),
				logger.Float64("score", r.Score),
				logger.Float64("previous", prev),
			)
		}
		if !t.Contains(r.Score) {
			metrics.RecordVerifyViolation()
			e.log.Error(ctx, "redistributed score outside tier band",
				logger.String("userID", userID),
				logger.String("tier", string(t.Name)),
				logger.Int("position", r.Position),
				logger.Float64("score", r.Score),
			)
		}
		prev = r.Score
	}
}

// roundScore rounds to one decimal place.
func roundScore(score float64) float64 {
	return math.Round(score*10) / 10
}
