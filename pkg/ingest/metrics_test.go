// pkg/ingest/metrics_test.go
package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/smartwage/hr-ingress/pkg/model"
)

func TestRunMetricsAccumulatesBatches(t *testing.T) {
	m := NewRunMetrics(zap.NewNop())
	m.RecordRows(5)
	m.RecordValidation(4, 1)
	m.RecordBatch(model.BatchResult{Index: 0, Attempted: 2, Succeeded: 2, Duration: 20 * time.Millisecond})
	m.RecordBatch(model.BatchResult{Index: 1, Attempted: 2, Succeeded: 1, Failed: 1, Duration: 60 * time.Millisecond})

	assert.Equal(t, 5, m.TotalRows)
	assert.Equal(t, 4, m.ValidRows)
	assert.Equal(t, 1, m.InvalidRows)
	assert.Equal(t, 2, m.BatchCount)
	assert.Equal(t, 3, m.Persisted)
	assert.Equal(t, 1, m.Failed)
	assert.Equal(t, 40*time.Millisecond, m.AverageBatchDuration())
}

func TestRunMetricsErrorCounts(t *testing.T) {
	m := NewRunMetrics(zap.NewNop())
	m.RecordErrors(ClassField, 3)
	m.RecordErrors(ClassRecord, 2)
	m.RecordErrors(ClassField, 1)
	m.RecordErrors(ClassPersistence, 0)

	assert.Equal(t, 4, m.ErrorCounts[ClassField])
	assert.Equal(t, 2, m.ErrorCounts[ClassRecord])
	assert.Zero(t, m.ErrorCounts[ClassPersistence])
}

func TestRunMetricsThroughput(t *testing.T) {
	m := NewRunMetrics(zap.NewNop())
	m.StartTime = time.Now().Add(-2 * time.Second)
	m.RecordBatch(model.BatchResult{Attempted: 100, Succeeded: 100})
	m.Complete()

	// 100 rows over roughly two seconds of wall clock.
	assert.InDelta(t, 50, m.Throughput(), 15)
}

func TestRunMetricsEmpty(t *testing.T) {
	m := NewRunMetrics(zap.NewNop())
	assert.Zero(t, m.AverageBatchDuration())
	assert.Zero(t, m.Throughput())
}
