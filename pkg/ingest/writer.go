// pkg/ingest/writer.go
package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smartwage/hr-ingress/pkg/model"
	"github.com/smartwage/hr-ingress/pkg/store"
)

const cancelledReason = "run cancelled"

// PersistFunc persists one valid record and returns its store identifier.
type PersistFunc func(ctx context.Context, rec model.CleanedRecord) (string, error)

// BatchWriter persists valid records in fixed-size groups. Persistence
// is not atomic: a failed record never rolls back its neighbours, and
// every record ends up with exactly one write outcome.
type BatchWriter struct {
	logger      *zap.Logger
	batchSize   int
	retries     int
	backoff     time.Duration
	timeout     time.Duration
	parallelism int
}

// NewBatchWriter creates a batch writer with default settings
func NewBatchWriter(logger *zap.Logger) (*BatchWriter, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &BatchWriter{
		logger:      logger.Named("writer"),
		batchSize:   100,
		retries:     1,
		backoff:     2 * time.Second,
		timeout:     30 * time.Second,
		parallelism: 1,
	}, nil
}

// WithBatchSize sets the number of records per group
func (w *BatchWriter) WithBatchSize(size int) *BatchWriter {
	if size > 0 {
		w.batchSize = size
	}
	return w
}

// WithRetries sets how many times an unreachable group is retried
func (w *BatchWriter) WithRetries(retries int) *BatchWriter {
	if retries >= 0 {
		w.retries = retries
	}
	return w
}

// WithBackoff sets the fixed delay between group retries
func (w *BatchWriter) WithBackoff(backoff time.Duration) *BatchWriter {
	if backoff > 0 {
		w.backoff = backoff
	}
	return w
}

// WithTimeout sets the per-attempt deadline for one group
func (w *BatchWriter) WithTimeout(timeout time.Duration) *BatchWriter {
	if timeout > 0 {
		w.timeout = timeout
	}
	return w
}

// WithParallelism sets how many groups are persisted concurrently
func (w *BatchWriter) WithParallelism(n int) *BatchWriter {
	if n > 0 {
		w.parallelism = n
	}
	return w
}

// WriteAll persists records in groups and returns one batch result per
// group plus one write outcome per record, both in input order
// regardless of how many groups ran concurrently.
//
// Cancelling the context stops the run between groups: the in-flight
// group finishes, and every record of the remaining groups is reported
// as failed without being attempted.
func (w *BatchWriter) WriteAll(
	ctx context.Context,
	records []model.CleanedRecord,
	persist PersistFunc,
) ([]model.BatchResult, []model.WriteOutcome) {
	groups := w.split(records)
	results := make([]model.BatchResult, len(groups))
	outcomes := make([][]model.WriteOutcome, len(groups))

	if w.parallelism <= 1 {
		for gi, grp := range groups {
			if ctx.Err() != nil {
				results[gi], outcomes[gi] = cancelledGroup(gi, grp)
				continue
			}
			results[gi], outcomes[gi] = w.writeGroup(ctx, gi, grp, persist)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(w.parallelism)
		for gi, grp := range groups {
			gi, grp := gi, grp
			g.Go(func() error {
				if gctx.Err() != nil {
					results[gi], outcomes[gi] = cancelledGroup(gi, grp)
					return nil
				}
				results[gi], outcomes[gi] = w.writeGroup(gctx, gi, grp, persist)
				return nil
			})
		}
		_ = g.Wait()
	}

	flat := make([]model.WriteOutcome, 0, len(records))
	for _, group := range outcomes {
		flat = append(flat, group...)
	}
	return results, flat
}

// split chunks records into groups of at most batchSize, in order.
func (w *BatchWriter) split(records []model.CleanedRecord) [][]model.CleanedRecord {
	var groups [][]model.CleanedRecord
	for start := 0; start < len(records); start += w.batchSize {
		end := start + w.batchSize
		if end > len(records) {
			end = len(records)
		}
		groups = append(groups, records[start:end])
	}
	return groups
}

// writeGroup attempts every record of one group. A connectivity failure
// pauses the group and retries from the first unpersisted record, so
// records that already succeeded are never written twice. When retries
// run out, every remaining record of the group fails as unavailable.
func (w *BatchWriter) writeGroup(
	ctx context.Context,
	index int,
	recs []model.CleanedRecord,
	persist PersistFunc,
) (model.BatchResult, []model.WriteOutcome) {
	start := time.Now()
	outcomes := make([]model.WriteOutcome, len(recs))
	attemptsLeft := w.retries

	i := 0
	for i < len(recs) {
		// In-flight groups run to completion even if the run is
		// cancelled; cancellation takes effect between groups.
		attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)

		unavailable := false
		for i < len(recs) {
			rec := recs[i]
			id, err := persist(attemptCtx, rec)
			if err == nil {
				outcomes[i] = model.WriteOutcome{Line: rec.Line, ID: id}
				i++
				continue
			}
			if store.IsUnavailable(err) {
				unavailable = true
				break
			}
			outcomes[i] = model.WriteOutcome{Line: rec.Line, Failed: true, Reason: err.Error()}
			i++
		}
		cancel()

		if !unavailable {
			break
		}

		if attemptsLeft <= 0 || ctx.Err() != nil {
			w.logger.Error("Store unreachable, failing remainder of group",
				zap.Int("group", index),
				zap.Int("remaining", len(recs)-i))
			for ; i < len(recs); i++ {
				outcomes[i] = model.WriteOutcome{
					Line:   recs[i].Line,
					Failed: true,
					Reason: "store unavailable",
				}
			}
			break
		}

		attemptsLeft--
		w.logger.Warn("Store unreachable, retrying group",
			zap.Int("group", index),
			zap.Duration("backoff", w.backoff))
		select {
		case <-time.After(w.backoff):
		case <-ctx.Done():
		}
	}

	return buildResult(index, outcomes, time.Since(start)), outcomes
}

// cancelledGroup reports a group that was never attempted.
func cancelledGroup(index int, recs []model.CleanedRecord) (model.BatchResult, []model.WriteOutcome) {
	outcomes := make([]model.WriteOutcome, len(recs))
	for i, rec := range recs {
		outcomes[i] = model.WriteOutcome{Line: rec.Line, Failed: true, Reason: cancelledReason}
	}
	return buildResult(index, outcomes, 0), outcomes
}

func buildResult(index int, outcomes []model.WriteOutcome, dur time.Duration) model.BatchResult {
	result := model.BatchResult{
		Index:     index,
		Attempted: len(outcomes),
		Duration:  dur,
	}
	for _, o := range outcomes {
		if o.Failed {
			result.Failed++
			result.Failures = append(result.Failures, model.RecordFailure{
				Line:   o.Line,
				Reason: o.Reason,
			})
		} else {
			result.Succeeded++
		}
	}
	return result
}
