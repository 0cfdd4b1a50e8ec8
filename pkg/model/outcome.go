// pkg/model/outcome.go
package model

import (
	"fmt"
	"strings"
	"time"
)

// Validation rule identifiers, in the order rules are applied.
const (
	RuleRequired  = "required"
	RuleFormat    = "format"
	RuleDuplicate = "duplicate"
	RuleExistence = "existence"
)

// Reason is a single human-readable validation failure.
type Reason struct {
	Field   string
	Rule    string
	Message string
}

func (r Reason) String() string {
	if r.Field == "" {
		return r.Message
	}
	return fmt.Sprintf("%s: %s", r.Field, r.Message)
}

// ValidationOutcome is the verdict for one record. Reasons accumulate
// across all rules so a rejected row reports everything wrong with it.
type ValidationOutcome struct {
	Line    int
	Valid   bool
	Reasons []Reason
}

// ReasonText joins all failure reasons into one artifact-friendly string.
func (o ValidationOutcome) ReasonText() string {
	parts := make([]string, 0, len(o.Reasons))
	for _, r := range o.Reasons {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, "; ")
}

// RecordFailure is a persistence failure for one record.
type RecordFailure struct {
	Line   int
	Reason string
}

// BatchResult reports one persistence group.
type BatchResult struct {
	Index     int
	Attempted int
	Succeeded int
	Failed    int
	Failures  []RecordFailure
	Duration  time.Duration
}

// WriteOutcome is the per-record persistence result, in input order.
type WriteOutcome struct {
	Line   int
	ID     string
	Failed bool
	Reason string
}

// ArtifactPaths holds the three output files of a run.
type ArtifactPaths struct {
	SuccessCSV string
	ErrorsCSV  string
	Summary    string
}

// RunSummary is the final accounting of one ingestion run.
//
// TotalRows == ValidRows + InvalidRows and PersistedRows never exceeds
// ValidRows; the pipeline refuses to emit a summary that breaks either.
type RunSummary struct {
	OperationID   string
	Operation     Operation
	TenantID      string
	ActorID       string
	SourceFile    string
	StartedAt     time.Time
	FinishedAt    time.Time
	TotalRows     int
	ValidRows     int
	InvalidRows   int
	PersistedRows int
	FailedRows    int
	ColumnsMapped int
	Batches       []BatchResult
	Mapped        []string
	Unmapped      []string
	Shadowed      []string
	Artifacts     ArtifactPaths
	// StructuralError is set when the run aborted before persistence.
	StructuralError string
	Cancelled       bool
}

// Duration returns the wall-clock time of the run.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// SuccessRate returns persisted rows as a percentage of total rows.
func (s RunSummary) SuccessRate() float64 {
	if s.TotalRows == 0 {
		return 0
	}
	return float64(s.PersistedRows) / float64(s.TotalRows) * 100
}
