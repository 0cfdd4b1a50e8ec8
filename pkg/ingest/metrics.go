// pkg/ingest/metrics.go
package ingest

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smartwage/hr-ingress/pkg/model"
)

// RunMetrics collects counters for one ingestion run. Batch results may
// arrive from concurrent groups, so updates are mutex guarded.
type RunMetrics struct {
	mu sync.Mutex

	StartTime time.Time
	EndTime   time.Time

	TotalRows   int
	ValidRows   int
	InvalidRows int
	Persisted   int
	Failed      int

	BatchCount     int
	BatchDurations []time.Duration

	// ErrorCounts buckets everything that went wrong by class.
	ErrorCounts map[ErrorClass]int

	logger *zap.Logger
}

// NewRunMetrics creates metrics for a run starting now
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	if logger == nil {
		logger = zap.L()
	}
	return &RunMetrics{
		StartTime:   time.Now(),
		ErrorCounts: make(map[ErrorClass]int),
		logger:      logger.Named("metrics"),
	}
}

// RecordErrors accumulates n errors of the given class
func (m *RunMetrics) RecordErrors(class ErrorClass, n int) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCounts[class] += n
}

// RecordRows sets the row totals after parsing
func (m *RunMetrics) RecordRows(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalRows = total
}

// RecordValidation sets the validation split
func (m *RunMetrics) RecordValidation(valid, invalid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidRows = valid
	m.InvalidRows = invalid
}

// RecordBatch accumulates one batch result
func (m *RunMetrics) RecordBatch(result model.BatchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchCount++
	m.Persisted += result.Succeeded
	m.Failed += result.Failed
	m.BatchDurations = append(m.BatchDurations, result.Duration)
}

// Complete marks the run as finished and logs a final line
func (m *RunMetrics) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EndTime = time.Now()

	m.logger.Info("Run complete",
		zap.Int("total_rows", m.TotalRows),
		zap.Int("valid_rows", m.ValidRows),
		zap.Int("invalid_rows", m.InvalidRows),
		zap.Int("persisted", m.Persisted),
		zap.Int("failed", m.Failed),
		zap.Int("field_errors", m.ErrorCounts[ClassField]),
		zap.Int("record_errors", m.ErrorCounts[ClassRecord]),
		zap.Int("persistence_errors", m.ErrorCounts[ClassPersistence]),
		zap.Duration("elapsed", m.EndTime.Sub(m.StartTime)),
		zap.Float64("rows_per_second", m.throughputLocked()))
}

// Throughput returns persisted rows per second of wall-clock time
func (m *RunMetrics) Throughput() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.throughputLocked()
}

func (m *RunMetrics) throughputLocked() float64 {
	end := m.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	elapsed := end.Sub(m.StartTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(m.Persisted) / elapsed
}

// AverageBatchDuration returns the mean time spent per batch
func (m *RunMetrics) AverageBatchDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.BatchDurations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range m.BatchDurations {
		total += d
	}
	return total / time.Duration(len(m.BatchDurations))
}
