// pkg/ingest/error.go
package ingest

import (
	"errors"
	"fmt"
)

// ErrorClass buckets everything that can go wrong in a run.
type ErrorClass int

const (
	// ClassStructural covers whole-file failures: unreadable input,
	// missing required columns, row ceiling exceeded. The run aborts.
	ClassStructural ErrorClass = iota
	// ClassField covers per-field cleaning rejections.
	ClassField
	// ClassRecord covers per-record validation failures.
	ClassRecord
	// ClassPersistence covers store failures while writing batches.
	ClassPersistence
)

// String returns the string representation of an error class
func (c ErrorClass) String() string {
	switch c {
	case ClassStructural:
		return "structural"
	case ClassField:
		return "field"
	case ClassRecord:
		return "record"
	case ClassPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// PipelineError is an error tagged with its class and pipeline stage.
type PipelineError struct {
	Class ErrorClass
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s error in %s: %v", e.Class, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func newStructuralError(stage string, err error) *PipelineError {
	return &PipelineError{Class: ClassStructural, Stage: stage, Err: err}
}

// IsStructural reports whether an error aborted the run before any
// record was persisted.
func IsStructural(err error) bool {
	var pe *PipelineError
	return errors.As(err, &pe) && pe.Class == ClassStructural
}
