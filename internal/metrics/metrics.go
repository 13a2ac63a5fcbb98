package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	TotalPostsFetched   int64
	TotalPostsProcessed int64
	DuplicatesFiltered  int64
	PostsAdmitted       int64
	FetchErrors         int64

	// Upstream request counts against the daily budget
	SourceRequests      map[string]int
	TotalSourceRequests int

	// Timings
	LastCycleTime    time.Duration
	AverageCycleTime time.Duration
	TotalCycleTime   time.Duration
	CycleCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddPostsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalPostsFetched += int64(n)
}

func (m *Metrics) IncrementPostsProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalPostsProcessed++
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementPostsAdmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsAdmitted++
}

func (m *Metrics) IncrementFetchErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchErrors++
}

// SetSourceRequests replaces the per-source upstream request counts with a
// fresh snapshot from the budget.
func (m *Metrics) SetSourceRequests(counts map[string]int, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceRequests = counts
	m.TotalSourceRequests = total
}

func (m *Metrics) RecordCycleTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastCycleTime = duration
	m.TotalCycleTime += duration
	m.CycleCount++

	if m.CycleCount > 0 {
		m.AverageCycleTime = m.TotalCycleTime / time.Duration(m.CycleCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_posts_fetched":   m.TotalPostsFetched,
		"total_posts_processed": m.TotalPostsProcessed,
		"duplicates_filtered":   m.DuplicatesFiltered,
		"posts_admitted":        m.PostsAdmitted,
		"fetch_errors":          m.FetchErrors,
		"source_requests":       m.SourceRequests,
		"total_source_requests": m.TotalSourceRequests,
		"last_cycle_time_ms":    m.LastCycleTime.Milliseconds(),
		"average_cycle_time_ms": m.AverageCycleTime.Milliseconds(),
		"last_run_time":         m.LastRunTime.Format(time.RFC3339),
		"last_error_time":       m.LastErrorTime.Format(time.RFC3339),
		"last_error":            m.LastError,
		"is_healthy":            m.IsHealthy,
	}
}
