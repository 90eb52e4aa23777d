package utils

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Metrics collects execution counters for a batch run.
type Metrics struct {
	startTime time.Time
	endTime   time.Time

	StatementCount int64
	SuccessCount   int64
	FailureCount   int64
	TotalDuration  int64 // nanoseconds
}

// NewMetrics creates a collector with the clock started.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// Start resets the wall clock.
func (m *Metrics) Start() {
	m.startTime = time.Now()
}

// End stops the wall clock.
func (m *Metrics) End() {
	m.endTime = time.Now()
}

// AddStatement records one statement execution.
func (m *Metrics) AddStatement(duration time.Duration, success bool) {
	atomic.AddInt64(&m.StatementCount, 1)
	atomic.AddInt64(&m.TotalDuration, int64(duration))
	if success {
		atomic.AddInt64(&m.SuccessCount, 1)
	} else {
		atomic.AddInt64(&m.FailureCount, 1)
	}
}

// Duration returns the elapsed wall-clock time.
func (m *Metrics) Duration() time.Duration {
	if m.endTime.IsZero() {
		return time.Since(m.startTime)
	}
	return m.endTime.Sub(m.startTime)
}

// AverageDuration returns the mean per-statement duration.
func (m *Metrics) AverageDuration() time.Duration {
	count := atomic.LoadInt64(&m.StatementCount)
	if count == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&m.TotalDuration) / count)
}

func (m *Metrics) String() string {
	return fmt.Sprintf("statements=%d success=%d failed=%d elapsed=%s avg=%s",
		atomic.LoadInt64(&m.StatementCount),
		atomic.LoadInt64(&m.SuccessCount),
		atomic.LoadInt64(&m.FailureCount),
		FormatDuration(m.Duration()),
		m.AverageDuration(),
	)
}
