package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	RequestCount int64
	ErrorCount   int64
	CacheHits    int64
	CacheMisses  int64
	StatsRuns    int64
	DiffRuns     int64
	StartTime    time.Time

	responseTimes  []time.Duration
	responseMutex  sync.RWMutex
	requestsByCode map[int]int64
	statusMutex    sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:      time.Now(),
		responseTimes:  make([]time.Duration, 0, 1000),
		requestsByCode: make(map[int]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// IncrementStatsRun counts one rubric analytics computation
func (m *Metrics) IncrementStatsRun() {
	atomic.AddInt64(&m.StatsRuns, 1)
}

// IncrementDiffRun counts one diff computation
func (m *Metrics) IncrementDiffRun() {
	atomic.AddInt64(&m.DiffRuns, 1)
}

// RecordResponseTime records a request duration for percentile reporting.
// The window is bounded to the most recent thousand requests.
func (m *Metrics) RecordResponseTime(d time.Duration) {
	m.responseMutex.Lock()
	defer m.responseMutex.Unlock()

	m.responseTimes = append(m.responseTimes, d)
	if len(m.responseTimes) > 1000 {
		m.responseTimes = m.responseTimes[len(m.responseTimes)-1000:]
	}
}

// RecordRequestByStatus tracks response status code distribution
func (m *Metrics) RecordRequestByStatus(code int) {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()

	m.requestsByCode[code]++
}

// percentile returns the p-th percentile of the recorded response times.
func (m *Metrics) percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// GetStats returns a snapshot of all metrics as a JSON-friendly map
func (m *Metrics) GetStats() map[string]interface{} {
	m.responseMutex.RLock()
	sorted := append([]time.Duration(nil), m.responseTimes...)
	m.responseMutex.RUnlock()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	m.statusMutex.RLock()
	byCode := make(map[int]int64, len(m.requestsByCode))
	for code, n := range m.requestsByCode {
		byCode[code] = n
	}
	m.statusMutex.RUnlock()

	return map[string]interface{}{
		"request_count":      atomic.LoadInt64(&m.RequestCount),
		"error_count":        atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":         atomic.LoadInt64(&m.CacheHits),
		"cache_misses":       atomic.LoadInt64(&m.CacheMisses),
		"stats_runs":         atomic.LoadInt64(&m.StatsRuns),
		"diff_runs":          atomic.LoadInt64(&m.DiffRuns),
		"requests_by_status": byCode,
		"response_time_p50":  m.percentile(sorted, 0.50).Milliseconds(),
		"response_time_p95":  m.percentile(sorted, 0.95).Milliseconds(),
		"response_time_p99":  m.percentile(sorted, 0.99).Milliseconds(),
		"uptime_seconds":     time.Since(m.StartTime).Seconds(),
	}
}
