// Package integrity inspects ranking lists for position/score corruption
// and normalizes them, bounded by a per-key circuit breaker so repair can
// never loop unbounded.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/fairwaylabs/fairway/internal/domain/model"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
	"github.com/fairwaylabs/fairway/pkg/logger"
	"github.com/fairwaylabs/fairway/pkg/metrics"
)

// Default breaker configuration constants.
const (
	defaultRepairThreshold = 3
	defaultTolerance       = 0.001

	// An open breaker stays open for the remainder of the process
	// lifetime for that key; a year approximates "never half-open".
	breakerOpenTimeout = 365 * 24 * time.Hour
)

// Store is the persistence surface position repair needs.
type Store interface {
	BulkUpsert(ctx context.Context, records []model.RankingRecord) error
}

// Redistributor recomputes and persists scores; score corruption is
// delegated to it rather than patched locally.
type Redistributor interface {
	Redistribute(ctx context.Context, userID string, t tier.Tier, records []model.RankingRecord) ([]model.RankingRecord, error)
}

// Report describes what a check found in one (user, tier) list.
type Report struct {
	Records            int
	DuplicatePositions []int
	MissingPositions   []int
	ScoreViolations    int
}

// PositionCorruption reports duplicate or missing positions.
func (r Report) PositionCorruption() bool {
	return len(r.DuplicatePositions) > 0 || len(r.MissingPositions) > 0
}

// Clean reports whether the list satisfies all ranking invariants.
func (r Report) Clean() bool {
	return !r.PositionCorruption() && r.ScoreViolations == 0
}

// Check inspects records against the ranking invariants: positions must be
// exactly {1..N}, scores must be non-increasing by position, distinct, the
// position-1 score must equal the tier maximum, and every score must lie
// within the tier band.
func Check(t tier.Tier, records []model.RankingRecord) Report {
	report := Report{Records: len(records)}
	if len(records) == 0 {
		return report
	}

	seen := make(map[int]bool, len(records))
	for _, r := range records {
		if seen[r.Position] {
			report.DuplicatePositions = append(report.DuplicatePositions, r.Position)
		}
		seen[r.Position] = true
	}
	for p := 1; p <= len(records); p++ {
		if !seen[p] {
			report.MissingPositions = append(report.MissingPositions, p)
		}
	}

	ordered := sortedByPosition(records)
	if math.Abs(ordered[0].Score-t.ScoreMax) > defaultTolerance {
		report.ScoreViolations++
	}
	prev := math.Inf(1)
	for i, r := range ordered {
		if !t.Contains(r.Score) {
			report.ScoreViolations++
		}
		if i > 0 && r.Score > prev+defaultTolerance {
			report.ScoreViolations++
		}
		if i > 0 && math.Abs(r.Score-prev) <= defaultTolerance {
			report.ScoreViolations++ // duplicate score
		}
		prev = r.Score
	}

	return report
}

// errCorruptionRepaired flows through the breaker so a repair attempt
// counts toward its consecutive-failure threshold while still handing the
// repaired list back to the caller.
var errCorruptionRepaired = errors.New("corruption found and repaired")

// Checker runs checks and repairs behind per-(user, tier) breakers.
type Checker struct {
	store  Store
	redist Redistributor

	mu        sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker[[]model.RankingRecord]
	threshold uint32

	log logger.Logger
}

// NewChecker constructs a Checker persisting repairs through store and
// delegating score corruption to redist.
func NewChecker(store Store, redist Redistributor, opts ...Option) *Checker {
	c := &Checker{
		store:     store,
		redist:    redist,
		breakers:  make(map[string]*gobreaker.CircuitBreaker[[]model.RankingRecord]),
		threshold: defaultRepairThreshold,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.Get()
	}

	return c
}

// EnsureConsistent checks records and repairs them if corrupted. It
// returns the (possibly repaired) list and whether a repair was attempted.
// A skipped check (open breaker) returns the input unchanged with no
// error; a persistence failure during repair is returned to the caller.
func (c *Checker) EnsureConsistent(ctx context.Context, userID string, t tier.Tier, records []model.RankingRecord) ([]model.RankingRecord, bool, error) {
	metrics.RecordIntegrityCheck()

	cb := c.breaker(userID, t.Name)
	repaired, err := cb.Execute(func() ([]model.RankingRecord, error) {
		report := Check(t, records)
		if report.Clean() {
			return records, nil
		}

		c.log.Warn(ctx, "ranking corruption detected",
			logger.String("userID", userID),
			logger.String("tier", string(t.Name)),
			logger.Any("duplicatePositions", report.DuplicatePositions),
			logger.Any("missingPositions", report.MissingPositions),
			logger.Int("scoreViolations", report.ScoreViolations),
		)

		fixed, rerr := c.repair(ctx, userID, t, records, report)
		if rerr != nil {
			return nil, rerr
		}
		return fixed, errCorruptionRepaired
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordRepairSkipped()
		c.log.Warn(ctx, "integrity repair skipped; breaker open",
			logger.String("userID", userID),
			logger.String("tier", string(t.Name)),
		)
		return records, false, nil
	case errors.Is(err, errCorruptionRepaired):
		metrics.RecordIntegrityRepair()
		return repaired, true, nil
	case err != nil:
		return records, false, fmt.Errorf("integrity repair for %s/%s: %w", userID, t.Name, err)
	}
	return repaired, false, nil
}

// repair renumbers corrupt positions consecutively (preserving relative
// order) and persists the renumbering, then delegates to redistribution
// whenever scores were violated or positions moved.
func (c *Checker) repair(ctx context.Context, userID string, t tier.Tier, records []model.RankingRecord, report Report) ([]model.RankingRecord, error) {
	fixed := sortedByPosition(records)

	if report.PositionCorruption() {
		now := time.Now().UTC()
		for i := range fixed {
			fixed[i].Position = i + 1
			fixed[i].UpdatedAt = now
		}
		if err := c.store.BulkUpsert(ctx, fixed); err != nil {
			return nil, fmt.Errorf("persist renumbered positions: %w", err)
		}
	}

	if report.ScoreViolations > 0 || report.PositionCorruption() {
		scored, err := c.redist.Redistribute(ctx, userID, t, fixed)
		if err != nil {
			return nil, err
		}
		fixed = scored
	}

	return fixed, nil
}

// breaker returns (creating on first use) the breaker guarding key.
func (c *Checker) breaker(userID string, name tier.Name) *gobreaker.CircuitBreaker[[]model.RankingRecord] {
	key := userID + "/" + string(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[key]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker[[]model.RankingRecord](gobreaker.Settings{
		Name:    key,
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				metrics.RecordBreakerTrip()
				c.log.Error(context.Background(), "repair breaker tripped open",
					logger.String("key", name),
				)
			}
		},
	})
	c.breakers[key] = cb
	return cb
}

// sortedByPosition copies records sorted ascending by current position,
// ties broken by course id for a stable, arbitrary order.
func sortedByPosition(records []model.RankingRecord) []model.RankingRecord {
	out := make([]model.RankingRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CourseID < out[j].CourseID
	})
	return out
}
