package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched    int64
	DuplicatesFiltered int64
	ArticlesEnriched   int64
	EnrichmentErrors   int64
	SummariesGenerated int64
	MessagesSent       int64
	DeliveryFailures   int64

	// Timings
	LastRunDuration  time.Duration
	TotalRunDuration time.Duration
	RunCount         int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) AddArticlesEnriched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesEnriched += int64(n)
}

func (m *Metrics) AddEnrichmentErrors(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnrichmentErrors += int64(n)
}

func (m *Metrics) AddSummariesGenerated(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated += int64(n)
}

func (m *Metrics) IncrementMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSent++
}

func (m *Metrics) IncrementDeliveryFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeliveryFailures++
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++
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

	var averageMs int64
	if m.RunCount > 0 {
		averageMs = (m.TotalRunDuration / time.Duration(m.RunCount)).Milliseconds()
	}

	return map[string]interface{}{
		"articles_fetched":     m.ArticlesFetched,
		"duplicates_filtered":  m.DuplicatesFiltered,
		"articles_enriched":    m.ArticlesEnriched,
		"enrichment_errors":    m.EnrichmentErrors,
		"summaries_generated":  m.SummariesGenerated,
		"messages_sent":        m.MessagesSent,
		"delivery_failures":    m.DeliveryFailures,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"avg_run_duration_ms":  averageMs,
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
