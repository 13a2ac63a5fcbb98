// Package ratelimit caps how many upstream requests each source may make per
// day, so a tight cron schedule cannot hammer the APIs and feeds.
package ratelimit

import (
	"sync"
	"time"

	"github.com/alaamer12/DevCurator/internal/logger"
)

// SourceBudget tracks per-source and total request counts against daily
// limits. Zero limits mean unlimited.
type SourceBudget struct {
	mu        sync.Mutex
	counts    map[string]int
	total     int
	perSource int
	maxTotal  int
	resetTime time.Time
}

// NewSourceBudget creates a budget with the given per-source and total daily
// limits.
func NewSourceBudget(perSource, maxTotal int) *SourceBudget {
	return &SourceBudget{
		counts:    make(map[string]int),
		perSource: perSource,
		maxTotal:  maxTotal,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// Allow reports whether the source may make another request today.
func (b *SourceBudget) Allow(source string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()

	if b.perSource > 0 && b.counts[source] >= b.perSource {
		logger.Warn("daily request budget reached for source", "source", source, "limit", b.perSource)
		return false
	}
	if b.maxTotal > 0 && b.total >= b.maxTotal {
		logger.Warn("total daily request budget reached", "limit", b.maxTotal)
		return false
	}
	return true
}

// Record counts one request against the source's budget.
func (b *SourceBudget) Record(source string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	b.counts[source]++
	b.total++
}

// Stats returns the current per-source counts and the total.
func (b *SourceBudget) Stats() (map[string]int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	counts := make(map[string]int, len(b.counts))
	for source, n := range b.counts {
		counts[source] = n
	}
	return counts, b.total
}

// checkReset clears the counters once the daily window rolls over. Caller
// must hold the mutex.
func (b *SourceBudget) checkReset() {
	if time.Now().Before(b.resetTime) {
		return
	}
	b.counts = make(map[string]int)
	b.total = 0
	b.resetTime = time.Now().Add(24 * time.Hour)
}
