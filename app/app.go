// Package app wires registered suites, the runner and the service endpoints
// into the op-suite command.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"

	suite "github.com/ethereum-optimism/infra/op-suite"
	"github.com/ethereum-optimism/infra/op-suite/metrics"
	"github.com/ethereum-optimism/infra/op-suite/registry"
	"github.com/ethereum-optimism/infra/op-suite/reporting"
	"github.com/ethereum-optimism/infra/op-suite/runner"
	"github.com/ethereum-optimism/infra/op-suite/service"
	"github.com/ethereum-optimism/infra/op-suite/types"
)

var _ cliapp.Lifecycle = (*App)(nil)

// App activates the configured suites and runs them once or on an interval.
// Every run activates the suites against a fresh runner, so each run gets new
// suite instances and its own setup count.
type App struct {
	config     *Config
	version    string
	activators []suite.Activator
	gate       *types.GateConfig
	service    *service.Service
	scheduler  *Scheduler
	formatter  reporting.ResultFormatter
	newRunner  func() (runner.TestRunner, error)

	result  atomic.Pointer[runner.RunnerResult]
	running atomic.Bool

	shutdownCallback func(error)
}

// New creates an App for the given suites.
func New(config *Config, version string, activators []suite.Activator, shutdownCallback func(error)) (*App, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating app with config",
		"gatesFile", config.GatesFile,
		"gate", config.TargetGate,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"concurrency", config.Concurrency)

	var gate *types.GateConfig
	if config.GatesFile != "" {
		reg, err := registry.NewRegistry(registry.Config{
			Log:      config.Log,
			GateFile: config.GatesFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create registry: %w", err)
		}
		if config.TargetGate != "" {
			gate = reg.GetGate(config.TargetGate)
			if gate == nil {
				return nil, fmt.Errorf("gate %q not found in %s", config.TargetGate, config.GatesFile)
			}
		}
	}

	a := &App{
		config:     config,
		version:    version,
		activators: activators,
		gate:       gate,
		service: service.New(service.Config{
			HealthzAddr:    config.HealthzAddr,
			MetricsEnabled: config.MetricsEnabled,
			MetricsAddr:    config.MetricsAddr,
		}),
		scheduler:        NewScheduler(config.RunInterval, config.Log),
		formatter:        reporting.NewConsoleResultFormatter(config.Log, nil),
		shutdownCallback: shutdownCallback,
	}
	a.newRunner = func() (runner.TestRunner, error) {
		return runner.NewTestRunner(runner.Config{
			Log:            config.Log,
			Gate:           a.gate,
			Filter:         config.Filter,
			Concurrency:    config.Concurrency,
			DefaultTimeout: config.DefaultTimeout,
		})
	}
	a.scheduler.RegisterCallback(a.runTests)
	return a, nil
}

// Start implements cliapp.Lifecycle.
func (a *App) Start(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.config.Log.Error("Runtime error occurred", "error", r)
			err = suite.NewRuntimeError(suite.PhaseRun, fmt.Errorf("panic: %v", r))
		}
	}()

	a.config.Log.Info("Starting op-suite", "version", a.version, "suites", len(a.activators))
	a.running.Store(true)
	if err := a.service.Start(ctx); err != nil {
		return suite.NewRuntimeError(suite.PhaseService, err)
	}

	if err := a.scheduler.Start(ctx); err != nil {
		a.config.Log.Error("Runtime error running tests", "error", err)
		return err
	}

	if !a.config.RunOnce {
		a.config.Log.Debug("op-suite started in continuous mode", "interval", a.config.RunInterval)
		return nil
	}

	a.config.Log.Info("Tests completed, exiting (run-once mode)")
	if result := a.result.Load(); result != nil && result.Status == types.TestStatusFail {
		a.config.Log.Warn("Run-once test run completed with failures, returning exit code 1",
			"failed", result.Stats.Failed, "total", result.Stats.Total)
		return suite.NewTestFailureError(result.RunID, result.Stats.Failed, result.Stats.Total)
	}
	go a.shutdownCallback(nil)
	return nil
}

// runTests activates every suite against a new runner and runs it
func (a *App) runTests(ctx context.Context) error {
	a.config.Log.Info("Running all tests...")

	r, err := a.newRunner()
	if err != nil {
		return suite.NewRuntimeError(suite.PhaseRun, fmt.Errorf("failed to create test runner: %w", err))
	}
	for _, act := range a.activators {
		if err := act.Activate(r); err != nil {
			metrics.RecordErrorDetails("activate", err)
			return suite.NewRuntimeError(suite.PhaseActivate, err).WithSuite(activatorName(act))
		}
	}

	result, err := r.RunAllTests(ctx)
	if err != nil {
		a.config.Log.Error("Runtime error running tests", "error", err)
		return suite.NewRuntimeError(suite.PhaseRun, err)
	}
	a.result.Store(result)

	if err := a.formatter.FormatResults(result); err != nil {
		a.config.Log.Error("Failed to print results", "error", err)
	}
	if a.config.ResultsFile != "" {
		if err := reporting.WriteResultsFile(a.config.ResultsFile, result); err != nil {
			a.config.Log.Error("Failed to write results file", "error", err)
			metrics.RecordErrorDetails("results_file", err)
		}
	}
	a.config.Log.Info("Test run completed", "run_id", result.RunID, "status", result.Status)
	return nil
}

// activatorName returns the suite display name when the activator exposes one
func activatorName(act suite.Activator) string {
	if named, ok := act.(interface{ Name() string }); ok {
		return named.Name()
	}
	return ""
}

// Result returns the result of the latest completed run, or nil.
func (a *App) Result() *runner.RunnerResult {
	return a.result.Load()
}

// Stop implements cliapp.Lifecycle.
func (a *App) Stop(ctx context.Context) error {
	a.config.Log.Info("Stopping op-suite")
	if !a.running.Swap(false) {
		a.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	var errs error
	if err := a.scheduler.Stop(); err != nil {
		errs = errors.Join(errs, err)
	}
	if err := a.scheduler.WaitForShutdown(ctx); err != nil {
		errs = errors.Join(errs, err)
	}
	if err := a.service.Shutdown(ctx); err != nil {
		errs = errors.Join(errs, err)
	}
	a.config.Log.Info("op-suite stopped")
	return errs
}

// Stopped implements cliapp.Lifecycle.
func (a *App) Stopped() bool {
	return !a.running.Load()
}
