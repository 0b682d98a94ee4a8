package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates upstream provider call counters. Counters are
// process-local; a restart resets them.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	providerMetrics map[string]*ProviderMetrics
}

// ProviderMetrics tracks calls against one upstream provider.
type ProviderMetrics struct {
	callCount     atomic.Int64
	errorCount    atomic.Int64
	totalDuration atomic.Int64 // milliseconds
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		providerMetrics: make(map[string]*ProviderMetrics),
	}
}

var globalMetrics = NewMetrics()

// GlobalMetrics returns the process-wide metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordCall records one provider call and its duration.
func (m *Metrics) RecordCall(provider string, duration time.Duration) {
	m.requestTotal.Add(1)
	pm := m.getProviderMetrics(provider)
	pm.callCount.Add(1)
	pm.totalDuration.Add(duration.Milliseconds())
}

// RecordFailure records one failed provider call and its duration.
func (m *Metrics) RecordFailure(provider string, duration time.Duration) {
	m.requestTotal.Add(1)
	m.requestFailed.Add(1)
	pm := m.getProviderMetrics(provider)
	pm.callCount.Add(1)
	pm.errorCount.Add(1)
	pm.totalDuration.Add(duration.Milliseconds())
}

func (m *Metrics) getProviderMetrics(provider string) *ProviderMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	pm, ok := m.providerMetrics[provider]
	if !ok {
		pm = &ProviderMetrics{}
		m.providerMetrics[provider] = pm
	}
	return pm
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.providerMetrics = make(map[string]*ProviderMetrics)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	providers := make(map[string]*ProviderMetricsSnapshot, len(m.providerMetrics))
	for name, pm := range m.providerMetrics {
		count := pm.callCount.Load()
		snapshot := &ProviderMetricsSnapshot{
			CallCount:  count,
			ErrorCount: pm.errorCount.Load(),
		}
		if count > 0 {
			snapshot.AverageDurationMs = pm.totalDuration.Load() / count
		}
		providers[name] = snapshot
	}

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Providers:     providers,
	}
}

// MetricsSnapshot is a point-in-time view of the collected counters.
type MetricsSnapshot struct {
	RequestTotal  int64                               `json:"requestTotal"`
	RequestFailed int64                               `json:"requestFailed"`
	Providers     map[string]*ProviderMetricsSnapshot `json:"providers"`
}

// ProviderMetricsSnapshot is the per-provider slice of a snapshot.
type ProviderMetricsSnapshot struct {
	CallCount         int64 `json:"callCount"`
	ErrorCount        int64 `json:"errorCount"`
	AverageDurationMs int64 `json:"averageDurationMs"`
}

// SuccessRate returns the success rate as a percentage.
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
