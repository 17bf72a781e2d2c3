package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v2"

	suite "github.com/ethereum-optimism/infra/op-suite"
	"github.com/ethereum-optimism/infra/op-suite/exitcodes"
)

func TestExitError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"runtime error", suite.NewRuntimeError(suite.PhaseConfig, errors.New("bad config")), exitcodes.RuntimeErr, "config failed: bad config"},
		{"wrapped runtime error", fmt.Errorf("start: %w", suite.NewRuntimeError(suite.PhaseService, errors.New("port in use"))), exitcodes.RuntimeErr, "start: service failed: port in use"},
		{"activation error", suite.NewRuntimeError(suite.PhaseActivate, errors.New("no body")).WithSuite("custom name"), exitcodes.RuntimeErr, "activate failed for suite custom name: no body"},
		{"test failure", suite.NewTestFailureError("run-1", 2, 6), exitcodes.TestFailure, "2 of 6 units failed in run run-1"},
		{"plain error", errors.New("boom"), exitcodes.TestFailure, "boom"},
		{"exit coder", cli.Exit("custom", 3), 3, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitErr := exitError(tt.err)
			assert.Equal(t, tt.code, exitErr.ExitCode())
			assert.Equal(t, tt.message, exitErr.Error())
		})
	}
}

func TestNewCLI(t *testing.T) {
	app := NewCLI("op-suite", "v0.0.1")
	assert.Equal(t, "op-suite", app.Name)
	assert.Equal(t, "v0.0.1", app.Version)
	assert.NotEmpty(t, app.Flags)
	assert.NotNil(t, app.ExitErrHandler)
}
