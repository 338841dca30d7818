// Package cache holds short-lived per-(user, tier) copies of ranking
// lists so reads between mutations avoid a store round-trip.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fairwaylabs/fairway/internal/domain/model"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
	"github.com/fairwaylabs/fairway/pkg/metrics"
)

// Default TTL configuration constants.
const (
	defaultTTL         = 30 * time.Second
	defaultVerifiedTTL = 5 * time.Minute
)

type entry struct {
	records   []model.RankingRecord
	expiresAt time.Time
}

// RankingCache is a TTL cache of ranking lists. It stores independent
// copies in and out, and treats a hit with a detectable corruption
// signature (duplicate positions) as a miss, evicting the entry rather
// than handing back broken data.
type RankingCache struct {
	mu          sync.RWMutex
	entries     map[string]entry
	ttl         time.Duration
	verifiedTTL time.Duration
	now         func() time.Time
}

// New creates a ranking cache with configuration options.
func New(opts ...Option) *RankingCache {
	c := &RankingCache{
		entries:     make(map[string]entry),
		ttl:         defaultTTL,
		verifiedTTL: defaultVerifiedTTL,
		now:         time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns a copy of the cached list for (userID, t), if present,
// unexpired and not visibly corrupt.
func (c *RankingCache) Get(ctx context.Context, userID string, t tier.Name) ([]model.RankingRecord, bool) {
	key := cacheKey(userID, t)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(e.expiresAt) {
		metrics.RecordCacheMiss()
		return nil, false
	}

	if hasDuplicatePositions(e.records) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		metrics.RecordCacheEviction()
		metrics.RecordCacheMiss()
		return nil, false
	}

	metrics.RecordCacheHit()
	return copyRecords(e.records), true
}

// Set caches a copy of records under the baseline TTL.
func (c *RankingCache) Set(ctx context.Context, userID string, t tier.Name, records []model.RankingRecord) {
	c.store(userID, t, records, c.ttl)
}

// SetVerified caches a copy of records under the longer TTL reserved for
// lists that just passed a full integrity verification.
func (c *RankingCache) SetVerified(ctx context.Context, userID string, t tier.Name, records []model.RankingRecord) {
	c.store(userID, t, records, c.verifiedTTL)
}

// Invalidate drops the cached lists for userID. With no tiers given it
// clears every tier for that user.
func (c *RankingCache) Invalidate(ctx context.Context, userID string, tiers ...tier.Name) {
	if len(tiers) == 0 {
		for _, t := range tier.All() {
			tiers = append(tiers, t.Name)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tiers {
		delete(c.entries, cacheKey(userID, t))
	}
}

// Clear drops every cached list.
func (c *RankingCache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of live entries (expired ones included until
// their next Get).
func (c *RankingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *RankingCache) store(userID string, t tier.Name, records []model.RankingRecord, ttl time.Duration) {
	e := entry{
		records:   copyRecords(records),
		expiresAt: c.now().Add(ttl),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(userID, t)] = e
}

func cacheKey(userID string, t tier.Name) string {
	return userID + "/" + string(t)
}

func copyRecords(records []model.RankingRecord) []model.RankingRecord {
	out := make([]model.RankingRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].LastComparedAt != nil {
			ts := *out[i].LastComparedAt
			out[i].LastComparedAt = &ts
		}
	}
	return out
}

func hasDuplicatePositions(records []model.RankingRecord) bool {
	seen := make(map[int]bool, len(records))
	for _, r := range records {
		if seen[r.Position] {
			return true
		}
		seen[r.Position] = true
	}
	return false
}
