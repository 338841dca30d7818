package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairwaylabs/fairway/internal/domain/model"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
	"github.com/fairwaylabs/fairway/pkg/metrics"
)

// MemStore is an in-memory Store implementation. Ranking lists are small
// (tens of records per user and tier), so records live in a flat map by ID
// and Select sorts on the way out; swap and increment run under one lock,
// which is what makes them atomic remote operations from the engine's
// point of view.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]model.RankingRecord // keyed by store-assigned ID
	now     func() time.Time
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithClock sets the time source, used by tests for deterministic stamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemStore creates an empty in-memory record store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		records: make(map[string]model.RankingRecord),
		now:     time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Select returns the (userID, tier) list ordered by position ascending.
func (s *MemStore) Select(ctx context.Context, userID string, t tier.Name) ([]model.RankingRecord, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOpLatency("select", elapsedMs(start)) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.RankingRecord
	for _, r := range s.records {
		if r.UserID == userID && r.Tier == t {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// Insert persists a new record, assigning its ID and timestamps.
func (s *MemStore) Insert(ctx context.Context, record model.RankingRecord) (model.RankingRecord, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOpLatency("insert", elapsedMs(start)) }()

	if err := ctx.Err(); err != nil {
		return model.RankingRecord{}, err
	}
	if err := validate(record); err != nil {
		return model.RankingRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.UserID == record.UserID && r.CourseID == record.CourseID && r.Tier == record.Tier {
			return model.RankingRecord{}, fmt.Errorf("%w: %s/%s/%s",
				ErrDuplicateRecord, record.UserID, record.CourseID, record.Tier)
		}
	}

	now := s.now().UTC()
	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now
	s.records[record.ID] = record
	return record, nil
}

// BulkUpsert writes all records or none. Records with a known ID replace
// the stored row; records matching an existing (user, course, tier) key
// update it; the rest are inserted with fresh IDs.
func (s *MemStore) BulkUpsert(ctx context.Context, records []model.RankingRecord) error {
	start := time.Now()
	defer func() { metrics.RecordStoreOpLatency("bulk_upsert", elapsedMs(start)) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range records {
		if err := validate(r); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	for _, r := range records {
		existing, ok := s.lookupLocked(r)
		if ok {
			r.ID = existing.ID
			r.CreatedAt = existing.CreatedAt
		} else {
			r.ID = uuid.NewString()
			r.CreatedAt = now
		}
		r.UpdatedAt = now
		s.records[r.ID] = r
	}
	return nil
}

// SwapPositions moves record A into record B's position and shifts the
// records strictly between them one slot toward A's old position.
func (s *MemStore) SwapPositions(ctx context.Context, recordIDA, recordIDB string) error {
	start := time.Now()
	defer func() { metrics.RecordStoreOpLatency("swap_positions", elapsedMs(start)) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.records[recordIDA]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, recordIDA)
	}
	b, ok := s.records[recordIDB]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, recordIDB)
	}
	if a.UserID != b.UserID || a.Tier != b.Tier {
		return ErrSwapMismatch
	}
	if a.Position == b.Position {
		return nil
	}

	now := s.now().UTC()
	from, to := a.Position, b.Position
	for id, r := range s.records {
		if r.UserID != a.UserID || r.Tier != a.Tier || id == recordIDA {
			continue
		}
		switch {
		case from > to && r.Position >= to && r.Position < from:
			r.Position++
		case from < to && r.Position > from && r.Position <= to:
			r.Position--
		default:
			continue
		}
		r.UpdatedAt = now
		s.records[id] = r
	}

	a.Position = to
	a.UpdatedAt = now
	s.records[recordIDA] = a
	return nil
}

// IncrementComparisonCounts bumps the comparison counter and
// last-compared timestamp for the user's listed courses.
func (s *MemStore) IncrementComparisonCounts(ctx context.Context, userID string, courseIDs []string) error {
	start := time.Now()
	defer func() { metrics.RecordStoreOpLatency("increment_counts", elapsedMs(start)) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	wanted := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	for id, r := range s.records {
		if r.UserID != userID || !wanted[r.CourseID] {
			continue
		}
		r.ComparisonCount++
		ts := now
		r.LastComparedAt = &ts
		r.UpdatedAt = now
		s.records[id] = r
	}
	return nil
}

// Count returns the total number of stored records.
func (s *MemStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// lookupLocked finds a stored record by ID, falling back to the natural
// (user, course, tier) key. Caller holds the lock.
func (s *MemStore) lookupLocked(r model.RankingRecord) (model.RankingRecord, bool) {
	if r.ID != "" {
		if existing, ok := s.records[r.ID]; ok {
			return existing, true
		}
	}
	for _, existing := range s.records {
		if existing.UserID == r.UserID && existing.CourseID == r.CourseID && existing.Tier == r.Tier {
			return existing, true
		}
	}
	return model.RankingRecord{}, false
}

func validate(r model.RankingRecord) error {
	if r.UserID == "" || r.CourseID == "" {
		return fmt.Errorf("%w: missing user or course id", ErrInvalidRecord)
	}
	if _, err := tier.Of(r.Tier); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if r.Position < 1 {
		return fmt.Errorf("%w: position %d", ErrInvalidRecord, r.Position)
	}
	return nil
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}
