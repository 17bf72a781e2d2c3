// Package types contains shared types used across the op-suite runner
package types

import (
	"strings"
	"time"
)

// TestStatus represents the possible states of a unit execution
type TestStatus string

const (
	TestStatusPass  TestStatus = "pass"
	TestStatusFail  TestStatus = "fail"
	TestStatusSkip  TestStatus = "skip"
	TestStatusError TestStatus = "error"
)

// UnitMetadata describes a registered unit
type UnitMetadata struct {
	ID     string
	Name   string
	Suite  string
	Gate   string
	Ignore bool
	Only   bool
}

// TestResult captures the outcome of a single unit run
type TestResult struct {
	Metadata   UnitMetadata
	Status     TestStatus
	Error      error
	Duration   time.Duration
	TimedOut   bool
	SkipReason string
}

// GetTestDisplayName returns the unit name without its suite prefix, falling
// back to the full name when the unit does not carry the prefix.
func GetTestDisplayName(metadata UnitMetadata) string {
	if metadata.Suite != "" {
		if name, ok := strings.CutPrefix(metadata.Name, metadata.Suite+" "); ok && name != "" {
			return name
		}
	}
	return metadata.Name
}
