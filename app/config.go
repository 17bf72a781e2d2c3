package app

import (
	"fmt"
	"net"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"

	"github.com/ethereum-optimism/infra/op-suite/flags"
)

// Config holds the application configuration
type Config struct {
	GatesFile      string         // Absolute path of the gate config, empty when no gates are used
	TargetGate     string         // Gate to run, empty runs every suite
	Filter         *regexp.Regexp // Only run units whose name matches
	RunInterval    time.Duration  // Interval between runs
	RunOnce        bool           // Exit after one run
	Concurrency    int
	DefaultTimeout time.Duration
	ResultsFile    string
	HealthzAddr    string
	MetricsEnabled bool
	MetricsAddr    string
	Log            log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	var gatesFile string
	if f := ctx.String(flags.GatesFile.Name); f != "" {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for gates file '%s': %w", f, err)
		}
		gatesFile = abs
	}

	var filter *regexp.Regexp
	if expr := ctx.String(flags.Run.Name); expr != "" {
		var err error
		filter, err = regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid run filter '%s': %w", expr, err)
		}
	}

	metricsCfg := opmetrics.ReadCLIConfig(ctx)
	if err := metricsCfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid metrics config: %w", err)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	return &Config{
		GatesFile:      gatesFile,
		TargetGate:     ctx.String(flags.Gate.Name),
		Filter:         filter,
		RunInterval:    runInterval,
		RunOnce:        runInterval == 0,
		Concurrency:    ctx.Int(flags.Concurrency.Name),
		DefaultTimeout: ctx.Duration(flags.DefaultTimeout.Name),
		ResultsFile:    ctx.String(flags.ResultsFile.Name),
		HealthzAddr:    ctx.String(flags.HealthzAddr.Name),
		MetricsEnabled: metricsCfg.Enabled,
		MetricsAddr:    net.JoinHostPort(metricsCfg.ListenAddr, strconv.Itoa(metricsCfg.ListenPort)),
		Log:            log,
	}, nil
}
