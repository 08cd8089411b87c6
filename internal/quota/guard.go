// Package quota enforces the anonymous-tier bookmark cap.
package quota

import (
	"github.com/sohee-an/smart-bookmark-app/internal/bookmark"
	"github.com/sohee-an/smart-bookmark-app/internal/metrics"
)

// DefaultFreeTierLimit is the anonymous bookmark cap.
const DefaultFreeTierLimit = 5

// Guard rejects saves once a partition's count reaches the cap. The
// check runs before any record is written, so a rejection leaves the
// stored sequence untouched.
type Guard struct {
	limit int
}

// NewGuard builds a Guard.
func NewGuard(limit int) *Guard {
	if limit <= 0 {
		limit = DefaultFreeTierLimit
	}
	return &Guard{limit: limit}
}

// Check returns ErrQuotaExceeded when count has reached the cap.
func (g *Guard) Check(count int) error {
	if count >= g.limit {
		metrics.ObserveQuotaRejection()
		return bookmark.ErrQuotaExceeded
	}
	return nil
}

// Limit returns the configured cap.
func (g *Guard) Limit() int {
	return g.limit
}
