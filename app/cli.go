package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"

	suite "github.com/ethereum-optimism/infra/op-suite"
	"github.com/ethereum-optimism/infra/op-suite/exitcodes"
	"github.com/ethereum-optimism/infra/op-suite/flags"
)

// NewCLI returns the op-suite command running the given suites.
func NewCLI(name string, version string, activators ...suite.Activator) *cli.App {
	app := cli.NewApp()
	app.Name = name
	app.Version = version
	app.Usage = "Runs registered test suites with lifecycle hooks"
	app.Description = "op-suite activates test suites and runs every test once or on an interval"
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(func(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
		return run(ctx, closeApp, version, activators)
	})
	app.ExitErrHandler = ExitErrHandler
	return app
}

// ExitErrHandler maps runtime errors to exit code 2 and test failures, like
// any other error, to exit code 1.
func ExitErrHandler(c *cli.Context, err error) {
	if err == nil {
		return
	}
	cli.HandleExitCoder(exitError(err))
}

func exitError(err error) cli.ExitCoder {
	var exitErr cli.ExitCoder
	switch {
	case errors.As(err, &exitErr):
		return exitErr
	case suite.IsRuntimeError(err):
		return cli.Exit(err.Error(), exitcodes.RuntimeErr)
	default:
		return cli.Exit(err.Error(), exitcodes.TestFailure)
	}
}

func run(ctx *cli.Context, closeApp context.CancelCauseFunc, version string, activators []suite.Activator) (cliapp.Lifecycle, error) {
	logCfg := oplog.ReadCLIConfig(ctx)
	log := oplog.NewLogger(oplog.AppOut(ctx), logCfg)
	oplog.SetGlobalLogHandler(log.Handler())
	oplog.SetupDefaults()

	cfg, err := NewConfig(ctx, log)
	if err != nil {
		return nil, suite.NewRuntimeError(suite.PhaseConfig, err)
	}
	cfg.Log.Debug("Config", "config", cfg)

	a, err := New(cfg, version, activators, closeApp)
	if err != nil {
		return nil, suite.NewRuntimeError(suite.PhaseConfig, fmt.Errorf("failed to create app: %w", err))
	}
	return a, nil
}
