package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates counters for the conversation engine: how many
// messages each handler answered, how many failed, and how long they took.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	handlerMetrics map[string]*HandlerMetrics
}

// HandlerMetrics tracks one dispatch handler.
type HandlerMetrics struct {
	handledCount  atomic.Int64
	errorCount    atomic.Int64
	totalDuration atomic.Int64 // milliseconds
}

// NewMetrics creates a metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		handlerMetrics: make(map[string]*HandlerMetrics),
	}
}

var globalMetrics = NewMetrics()

// GlobalMetrics returns the process-wide metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records a message answered by the named handler.
func (m *Metrics) RecordRequest(handler string, duration time.Duration) {
	m.requestTotal.Add(1)
	hm := m.getHandlerMetrics(handler)
	hm.handledCount.Add(1)
	hm.totalDuration.Add(duration.Milliseconds())
}

// RecordFailure records a handler-level failure. For the generative handler
// this means a provider error, not a refusal.
func (m *Metrics) RecordFailure(handler string) {
	m.requestFailed.Add(1)
	m.getHandlerMetrics(handler).errorCount.Add(1)
}

func (m *Metrics) getHandlerMetrics(handler string) *HandlerMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	hm, ok := m.handlerMetrics[handler]
	if !ok {
		hm = &HandlerMetrics{}
		m.handlerMetrics[handler] = hm
	}
	return hm
}

// HandlerSnapshot is a point-in-time view of one handler's counters.
type HandlerSnapshot struct {
	Handler       string `json:"handler"`
	Handled       int64  `json:"handled"`
	Errors        int64  `json:"errors"`
	AvgDurationMs int64  `json:"avgDurationMs"`
}

// Snapshot is a point-in-time view of all counters.
type Snapshot struct {
	RequestTotal  int64             `json:"requestTotal"`
	RequestFailed int64             `json:"requestFailed"`
	Handlers      []HandlerSnapshot `json:"handlers"`
}

// GetSnapshot renders the current counters, handlers sorted by name.
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
	}
	for name, hm := range m.handlerMetrics {
		count := hm.handledCount.Load()
		var avg int64
		if count > 0 {
			avg = hm.totalDuration.Load() / count
		}
		snap.Handlers = append(snap.Handlers, HandlerSnapshot{
			Handler:       name,
			Handled:       count,
			Errors:        hm.errorCount.Load(),
			AvgDurationMs: avg,
		})
	}
	sort.Slice(snap.Handlers, func(i, j int) bool {
		return snap.Handlers[i].Handler < snap.Handlers[j].Handler
	})
	return snap
}

// Reset clears all counters. Test helper.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)
	m.handlerMetrics = make(map[string]*HandlerMetrics)
}
