// Package engine provides the ranking engine orchestrator the rest of
// the application depends on: fetching rankings, adding ranked courses,
// reacting to comparison outcomes, and reconciling missing rankings.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/fairwaylabs/fairway/internal/adapters/cache"
	"github.com/fairwaylabs/fairway/internal/adapters/repository"
	"github.com/fairwaylabs/fairway/internal/domain/compare"
	"github.com/fairwaylabs/fairway/internal/domain/integrity"
	"github.com/fairwaylabs/fairway/internal/domain/model"
	"github.com/fairwaylabs/fairway/internal/domain/redistribute"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
	"github.com/fairwaylabs/fairway/pkg/logger"
	"github.com/fairwaylabs/fairway/pkg/metrics"
)

// initialScoreStep spaces provisional scores for records that have not
// been through redistribution yet.
const initialScoreStep = 0.1

// Reviews exposes the external set of courses a user has reviewed per
// tier; consumed only by ReconcileMissing.
type Reviews interface {
	ReviewedCourseIDs(ctx context.Context, userID string, t tier.Name) ([]string, error)
}

// Engine composes the store, cache, integrity checker and redistribution
// engine. It holds no locks of its own: invocations for different
// (user, tier) keys are independent, and same-key races are covered by
// the store's atomic operations plus the re-read-before-write discipline
// of every mutating operation.
type Engine struct {
	store   repository.Store
	cache   *cache.RankingCache
	redist  *redistribute.Engine
	checker *integrity.Checker
	reviews Reviews

	// Configuration applied to owned components
	cacheTTL         time.Duration
	verifiedCacheTTL time.Duration
	minGap           float64
	repairThreshold  int

	log logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithReviews sets the external reviews collaborator.
func WithReviews(reviews Reviews) Option {
	return func(e *Engine) {
		if reviews != nil {
			e.reviews = reviews
		}
	}
}

// WithCacheTTL sets the baseline ranking cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.cacheTTL = ttl
		}
	}
}

// WithVerifiedCacheTTL sets the TTL used for freshly verified lists.
func WithVerifiedCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.verifiedCacheTTL = ttl
		}
	}
}

// WithMinScoreGap sets the minimum spacing between adjacent scores.
func WithMinScoreGap(gap float64) Option {
	return func(e *Engine) {
		if gap > 0 {
			e.minGap = gap
		}
	}
}

// WithRepairThreshold sets the per-key repair breaker threshold.
func WithRepairThreshold(threshold int) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.repairThreshold = threshold
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New constructs the engine and its owned components around store.
func New(store repository.Store, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		minGap:          0.1,
		repairThreshold: 3,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = logger.Get()
	}

	var cacheOpts []cache.Option
	if e.cacheTTL > 0 {
		cacheOpts = append(cacheOpts, cache.WithTTL(e.cacheTTL))
	}
	if e.verifiedCacheTTL > 0 {
		cacheOpts = append(cacheOpts, cache.WithVerifiedTTL(e.verifiedCacheTTL))
	}
	e.cache = cache.New(cacheOpts...)

	e.redist = redistribute.New(store,
		redistribute.WithMinGap(e.minGap),
		redistribute.WithLogger(e.log),
	)
	e.checker = integrity.NewChecker(store, e.redist,
		integrity.WithRepairThreshold(e.repairThreshold),
		integrity.WithLogger(e.log),
	)

	return e
}

// Rankings returns the current (userID, tier) list, served from cache
// when valid. A store read is cached only when a cheap duplicate-position
// scan passes.
func (e *Engine) Rankings(ctx context.Context, userID string, name tier.Name) ([]model.RankingRecord, error) {
	if _, err := tier.Of(name); err != nil {
		return nil, err
	}

	if list, ok := e.cache.Get(ctx, userID, name); ok {
		return list, nil
	}

	list, err := e.store.Select(ctx, userID, name)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}

	if hasDuplicatePositions(list) {
		e.log.Warn(ctx, "skipping cache of corrupt ranking list",
			logger.String("userID", userID),
			logger.String("tier", string(name)),
		)
	} else {
		e.cache.Set(ctx, userID, name, list)
	}
	return list, nil
}

// AddRequest carries optional placement inputs for AddCourse.
type AddRequest struct {
	// Position pins the new record to an explicit slot when >= 1.
	Position int
	// Comparisons place the new record via prior pairwise judgments
	// when no explicit position is given.
	Comparisons []model.Comparison
}

// AddCourse creates a ranking record for a newly reviewed course. Without
// placement inputs it appends at the end; an explicit position or prior
// comparison edges place it earlier. The full list is redistributed and
// the persisted record for courseID returned.
func (e *Engine) AddCourse(ctx context.Context, userID, courseID string, name tier.Name, req AddRequest) (model.RankingRecord, error) {
	t, err := tier.Of(name)
	if err != nil {
		return model.RankingRecord{}, err
	}

	e.cache.Invalidate(ctx, userID, name)

	list, err := e.store.Select(ctx, userID, name)
	if err != nil {
		metrics.RecordStoreError()
		return model.RankingRecord{}, err
	}
	list = e.ensureConsistent(ctx, userID, t, list)

	pos := len(list) + 1
	switch {
	case req.Position >= 1:
		if req.Position < pos {
			pos = req.Position
		}
	case len(req.Comparisons) > 0:
		pos = compare.TargetPosition(courseIDs(list), courseID, req.Comparisons)
		if pos > len(list)+1 {
			pos = len(list) + 1
		}
	}

	// Make room when inserting above the tail.
	if pos <= len(list) {
		shifted := make([]model.RankingRecord, 0, len(list))
		for _, r := range list {
			if r.Position >= pos {
				r.Position++
				shifted = append(shifted, r)
			}
		}
		if err := e.store.BulkUpsert(ctx, shifted); err != nil {
			metrics.RecordStoreError()
			return model.RankingRecord{}, fmt.Errorf("shift positions for insert: %w", err)
		}
	}

	record := model.RankingRecord{
		UserID:   userID,
		CourseID: courseID,
		Tier:     name,
		Position: pos,
		Score:    t.Clamp(t.ScoreMax - float64(pos-1)*initialScoreStep),
	}
	inserted, err := e.store.Insert(ctx, record)
	if err != nil {
		metrics.RecordStoreError()
		return model.RankingRecord{}, err
	}
	metrics.RecordRecordCreated()

	scored, err := e.redistributeFresh(ctx, userID, t)
	if err != nil {
		return model.RankingRecord{}, err
	}

	for _, r := range scored {
		if r.CourseID == courseID {
			return r, nil
		}
	}
	return inserted, nil
}

// ResolveComparison applies the outcome "the user preferred preferredID
// over otherID". When the preferred course currently ranks worse it moves
// into the other's slot, pushing the records between them down one; when
// it already ranks better or equal only the comparison counters change.
// The refreshed list is returned either way.
func (e *Engine) ResolveComparison(ctx context.Context, userID, preferredID, otherID string, name tier.Name) ([]model.RankingRecord, error) {
	t, err := tier.Of(name)
	if err != nil {
		return nil, err
	}

	e.cache.Invalidate(ctx, userID, name)

	list, err := e.store.Select(ctx, userID, name)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}
	list = e.ensureConsistent(ctx, userID, t, list)

	preferred := findByCourse(list, preferredID)
	other := findByCourse(list, otherID)
	if preferred == nil || other == nil {
		return nil, fmt.Errorf("%w: comparison %s vs %s for %s/%s",
			ErrCourseNotRanked, preferredID, otherID, userID, name)
	}

	outcome := "confirmed"
	if preferred.Position > other.Position {
		outcome = "moved"
		if err := e.store.SwapPositions(ctx, preferred.ID, other.ID); err != nil {
			e.log.Warn(ctx, "atomic swap failed; using client-side renumbering",
				logger.String("userID", userID),
				logger.String("tier", string(name)),
				logger.Error(err),
			)
			if ferr := e.moveFallback(ctx, list, preferred, other); ferr != nil {
				metrics.RecordStoreError()
				return nil, ferr
			}
		}
	}

	// Counter increments are best-effort; a failure here never fails the
	// comparison itself.
	if err := e.store.IncrementComparisonCounts(ctx, userID, []string{preferredID, otherID}); err != nil {
		e.log.Warn(ctx, "comparison counter increment failed",
			logger.String("userID", userID),
			logger.Error(err),
		)
	}
	metrics.RecordComparisonResolved(outcome)

	return e.redistributeFresh(ctx, userID, t)
}

// ReconcileMissing creates placeholder records, appended at the end with
// provisional scores, for every reviewed course lacking a ranking record.
// It guards against partial failures upstream (a review recorded without
// its ranking).
func (e *Engine) ReconcileMissing(ctx context.Context, userID string, name tier.Name) ([]model.RankingRecord, error) {
	t, err := tier.Of(name)
	if err != nil {
		return nil, err
	}
	if e.reviews == nil {
		return nil, ErrNoReviewsSource
	}

	reviewed, err := e.reviews.ReviewedCourseIDs(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("load reviewed courses: %w", err)
	}

	e.cache.Invalidate(ctx, userID, name)

	list, err := e.store.Select(ctx, userID, name)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}

	ranked := make(map[string]bool, len(list))
	for _, r := range list {
		ranked[r.CourseID] = true
	}

	pos := len(list)
	created := 0
	for _, courseID := range reviewed {
		if courseID == "" || ranked[courseID] {
			continue
		}
		pos++
		record := model.RankingRecord{
			UserID:   userID,
			CourseID: courseID,
			Tier:     name,
			Position: pos,
			Score:    t.Clamp(t.ScoreMax - float64(pos-1)*initialScoreStep),
		}
		if _, err := e.store.Insert(ctx, record); err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("create placeholder for %s: %w", courseID, err)
		}
		ranked[courseID] = true
		created++
	}

	if created == 0 {
		if !hasDuplicatePositions(list) {
			e.cache.Set(ctx, userID, name, list)
		}
		return list, nil
	}

	metrics.RecordRecordsReconciled(created)
	e.log.Info(ctx, "reconciled missing rankings",
		logger.String("userID", userID),
		logger.String("tier", string(name)),
		logger.Int("created", created),
	)

	return e.redistributeFresh(ctx, userID, t)
}

// ensureConsistent runs the integrity checker and absorbs its failures:
// the operation proceeds with best-effort data rather than failing.
func (e *Engine) ensureConsistent(ctx context.Context, userID string, t tier.Tier, list []model.RankingRecord) []model.RankingRecord {
	checked, _, err := e.checker.EnsureConsistent(ctx, userID, t, list)
	if err != nil {
		e.log.Warn(ctx, "integrity repair failed; proceeding with unrepaired data",
			logger.String("userID", userID),
			logger.String("tier", string(t.Name)),
			logger.Error(err),
		)
		return list
	}
	return checked
}

// redistributeFresh re-reads the list (never trusting a stale snapshot
// about to be mutated), redistributes scores, and repopulates the cache
// under the verified TTL.
func (e *Engine) redistributeFresh(ctx context.Context, userID string, t tier.Tier) ([]model.RankingRecord, error) {
	fresh, err := e.store.Select(ctx, userID, t.Name)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}

	scored, err := e.redist.Redistribute(ctx, userID, t, fresh)
	if err != nil {
		return nil, err
	}

	e.cache.SetVerified(ctx, userID, t.Name, scored)
	return scored, nil
}

// moveFallback renumbers client-side when the store's atomic swap is
// unavailable: preferred takes other's slot and everything between moves
// down one, then the whole list is bulk-upserted.
func (e *Engine) moveFallback(ctx context.Context, list []model.RankingRecord, preferred, other *model.RankingRecord) error {
	target := other.Position
	updated := make([]model.RankingRecord, 0, len(list))
	for _, r := range list {
		switch {
		case r.CourseID == preferred.CourseID:
			r.Position = target
		case r.Position >= target && r.Position < preferred.Position:
			r.Position++
		default:
			continue
		}
		updated = append(updated, r)
	}
	if err := e.store.BulkUpsert(ctx, updated); err != nil {
		return fmt.Errorf("client-side move fallback: %w", err)
	}
	return nil
}

func findByCourse(list []model.RankingRecord, courseID string) *model.RankingRecord {
	for i := range list {
		if list[i].CourseID == courseID {
			return &list[i]
		}
	}
	return nil
}

func courseIDs(list []model.RankingRecord) []string {
	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.CourseID
	}
	return ids
}

func hasDuplicatePositions(list []model.RankingRecord) bool {
	seen := make(map[int]bool, len(list))
	for _, r := range list {
		if seen[r.Position] {
			return true
		}
		seen[r.Position] = true
	}
	return false
}
