package flags

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "OP_SUITE"

var (
	GatesFile = &cli.StringFlag{
		Name:    "gates",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "GATES"),
		Usage:   "Path to gate config file (eg. 'gates.yaml' or 'gates.toml')",
	}
	Gate = &cli.StringFlag{
		Name:    "gate",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "GATE"),
		Usage:   "Gate to run (eg. 'smoke'). Runs every suite when omitted.",
	}
	Run = &cli.StringFlag{
		Name:    "run",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RUN"),
		Usage:   "Only run tests whose name matches this regular expression",
		Action: func(ctx *cli.Context, v string) error {
			_, err := regexp.Compile(v)
			return err
		},
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RUN_INTERVAL"),
		Usage:   "Interval between test runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	Concurrency = &cli.IntFlag{
		Name:    "concurrency",
		Value:   1,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CONCURRENCY"),
		Usage:   "Number of suites run at the same time. Tests of one suite always run in order.",
		Action: func(ctx *cli.Context, v int) error {
			return validateConcurrency(v)
		},
	}
	DefaultTimeout = &cli.DurationFlag{
		Name:    "default-timeout",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "DEFAULT_TIMEOUT"),
		Usage:   "Timeout applied to each test (e.g. '30s'). Set to 0 to disable.",
	}
	ResultsFile = &cli.StringFlag{
		Name:    "results-file",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RESULTS_FILE"),
		Usage:   "Path the plain-text results table is written to after each run",
	}
	HealthzAddr = &cli.StringFlag{
		Name:    "healthz.addr",
		Value:   "0.0.0.0:8080",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HEALTHZ_ADDR"),
		Usage:   "Address of the health check server. Empty disables it.",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	GatesFile,
	Gate,
	Run,
	RunInterval,
	Concurrency,
	DefaultTimeout,
	ResultsFile,
	HealthzAddr,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func validateConcurrency(v int) error {
	if v < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", v)
	}
	return nil
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	if ctx.IsSet(Gate.Name) && ctx.String(GatesFile.Name) == "" {
		return errors.New("flag gate requires flag gates")
	}
	return nil
}
