// Package reviews provides the engine's view of which courses a user has
// reviewed per tier. The real application sources this from its review
// table; MemReviews is the in-process implementation used by the service
// binary, the seed tool and tests.
package reviews

import (
	"context"
	"sync"

	"github.com/fairwaylabs/fairway/internal/domain/tier"
)

// MemReviews is an in-memory reviews source.
type MemReviews struct {
	mu      sync.RWMutex
	entries map[string][]string // userID/tier -> course ids, insertion order
}

// NewMemReviews creates an empty in-memory reviews source.
func NewMemReviews() *MemReviews {
	return &MemReviews{
		entries: make(map[string][]string),
	}
}

// Add records that userID reviewed courseID under t.
func (m *MemReviews) Add(userID string, t tier.Name, courseID string) {
	key := userID + "/" + string(t)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.entries[key] {
		if id == courseID {
			return
		}
	}
	m.entries[key] = append(m.entries[key], courseID)
}

// ReviewedCourseIDs returns the courses userID has reviewed under t.
func (m *MemReviews) ReviewedCourseIDs(ctx context.Context, userID string, t tier.Name) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.entries[userID+"/"+string(t)]
	out := make([]string, len(stored))
	copy(out, stored)
	return out, nil
}
