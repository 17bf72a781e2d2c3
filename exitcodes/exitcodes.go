// Package exitcodes defines the exit codes used by op-suite.
package exitcodes

// Exit codes returned by op-suite:
//
// * Success (0): every executed test passed
// * TestFailure (1): one or more tests failed
// * RuntimeErr (2): configuration errors, panics outside tests or other failures
const (
	Success     = 0
	TestFailure = 1
	RuntimeErr  = 2
)
