package suite

import (
	"errors"
	"fmt"
)

// Phase names the stage of an op-suite run that failed.
type Phase string

const (
	PhaseConfig   Phase = "config"
	PhaseService  Phase = "service"
	PhaseActivate Phase = "activate"
	PhaseRun      Phase = "run"
)

// RuntimeError is a failure of op-suite itself rather than of a test: bad
// configuration, a suite that cannot be activated, a runner that cannot
// start. It maps to exit code 2.
type RuntimeError struct {
	Phase Phase
	Suite string // Display name of the suite involved, if any
	Err   error
}

func (e *RuntimeError) Error() string {
	if e.Suite != "" {
		return fmt.Sprintf("%s failed for suite %s: %v", e.Phase, e.Suite, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError wraps err as a failure of the given phase.
func NewRuntimeError(phase Phase, err error) *RuntimeError {
	return &RuntimeError{Phase: phase, Err: err}
}

// WithSuite records the suite the failure belongs to.
func (e *RuntimeError) WithSuite(name string) *RuntimeError {
	e.Suite = name
	return e
}

// AsRuntimeError returns the RuntimeError in err's chain, if any.
func AsRuntimeError(err error) (*RuntimeError, bool) {
	var runtimeErr *RuntimeError
	if err == nil || !errors.As(err, &runtimeErr) {
		return nil, false
	}
	return runtimeErr, true
}

// IsRuntimeError reports whether err is or wraps a RuntimeError.
func IsRuntimeError(err error) bool {
	_, ok := AsRuntimeError(err)
	return ok
}

// TestFailureError reports a completed run in which units failed. It maps to
// exit code 1.
type TestFailureError struct {
	RunID  string
	Failed int
	Total  int
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("%d of %d units failed in run %s", e.Failed, e.Total, e.RunID)
}

// NewTestFailureError creates a TestFailureError for a run.
func NewTestFailureError(runID string, failed, total int) *TestFailureError {
	return &TestFailureError{RunID: runID, Failed: failed, Total: total}
}

// AsTestFailureError returns the TestFailureError in err's chain, if any.
func AsTestFailureError(err error) (*TestFailureError, bool) {
	var testErr *TestFailureError
	if err == nil || !errors.As(err, &testErr) {
		return nil, false
	}
	return testErr, true
}

// IsTestFailureError reports whether err is or wraps a TestFailureError.
func IsTestFailureError(err error) bool {
	_, ok := AsTestFailureError(err)
	return ok
}
