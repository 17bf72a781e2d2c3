package runner

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	suite "github.com/ethereum-optimism/infra/op-suite"
	"github.com/ethereum-optimism/infra/op-suite/metrics"
	"github.com/ethereum-optimism/infra/op-suite/types"
)

// Skip reasons reported for units that were registered but not executed
const (
	SkipReasonIgnored  = "ignored"
	SkipReasonNotOnly  = "filtered by only"
	SkipReasonGateSkip = "skipped by gate"
)

// SuiteResult captures aggregated results for a suite
type SuiteResult struct {
	ID       string
	Tests    map[string]*types.TestResult
	Order    []string // Unit names in registration order
	Status   types.TestStatus
	Duration time.Duration
	Stats    ResultStats
}

// RunnerResult captures the complete run results
type RunnerResult struct {
	Gate     string
	Suites   map[string]*SuiteResult
	Order    []string // Suite names in registration order
	Status   types.TestStatus
	Duration time.Duration
	Stats    ResultStats
	RunID    string
	OnlyUsed bool // At least one executed unit was marked only
}

// ResultStats tracks unit statistics at each level
type ResultStats struct {
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	StartTime time.Time
	EndTime   time.Time
}

// TestRunner defines the interface for running registered units
type TestRunner interface {
	suite.Registrar
	RunAllTests(ctx context.Context) (*RunnerResult, error)
}

// Config holds configuration for creating a new runner
type Config struct {
	Log            log.Logger
	Gate           *types.GateConfig // Restricts the run to the gate's suites when set
	Filter         *regexp.Regexp    // Restricts the run to units whose name matches
	Concurrency    int               // Number of suites run at once; 0 or 1 runs serially
	DefaultTimeout time.Duration     // Per-unit timeout, 0 disables it
}

var _ TestRunner = (*runner)(nil)

// runner collects units through Register and executes them on RunAllTests
type runner struct {
	log            log.Logger
	gate           *types.GateConfig
	filter         *regexp.Regexp
	concurrency    int
	defaultTimeout time.Duration
	tracer         trace.Tracer

	mu    sync.Mutex
	units []suite.Unit
}

// NewTestRunner creates a new runner instance
func NewTestRunner(cfg Config) (TestRunner, error) {
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}
	if cfg.DefaultTimeout < 0 {
		return nil, fmt.Errorf("default timeout must not be negative, got %s", cfg.DefaultTimeout)
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	concurrency := cfg.Concurrency
	if concurrency == 0 {
		concurrency = 1
	}

	cfg.Log.Debug("NewTestRunner()", "gate", gateID(cfg.Gate), "concurrency", concurrency,
		"defaultTimeout", cfg.DefaultTimeout)

	return &runner{
		log:            cfg.Log,
		gate:           cfg.Gate,
		filter:         cfg.Filter,
		concurrency:    concurrency,
		defaultTimeout: cfg.DefaultTimeout,
		tracer:         otel.Tracer("op-suite runner"),
	}, nil
}

// Register implements suite.Registrar. Units are only executed by RunAllTests.
func (r *runner) Register(u suite.Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units = append(r.units, u)
}

// RunAllTests executes the selected units and aggregates their results
func (r *runner) RunAllTests(ctx context.Context) (*RunnerResult, error) {
	runID := uuid.New().String()
	start := time.Now()
	r.log.Debug("Running all tests", "run_id", runID)

	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("run %s", runID))
	defer span.End()

	units := r.selectUnits()
	onlyUsed := slices.ContainsFunc(units, func(u suite.Unit) bool { return u.Only && !u.Ignore })

	// Units of one suite share an activation and run one after another, so
	// each suite is a single pool task. A unit's timeout starts when the
	// unit itself starts.
	results := make([]*types.TestResult, len(units))
	metas := make([]types.UnitMetadata, len(units))
	var suiteOrder []string
	bySuite := make(map[string][]int)
	for i, u := range units {
		meta := types.UnitMetadata{
			ID:     fmt.Sprintf("%s#%d", runID, i),
			Name:   u.Name,
			Suite:  u.Suite,
			Gate:   gateID(r.gate),
			Ignore: u.Ignore,
			Only:   u.Only,
		}
		if reason := r.skipReason(u, onlyUsed); reason != "" {
			results[i] = &types.TestResult{Metadata: meta, Status: types.TestStatusSkip, SkipReason: reason}
			continue
		}
		metas[i] = meta
		if _, ok := bySuite[u.Suite]; !ok {
			suiteOrder = append(suiteOrder, u.Suite)
		}
		bySuite[u.Suite] = append(bySuite[u.Suite], i)
	}

	p := pool.New().WithMaxGoroutines(r.concurrency)
	for _, name := range suiteOrder {
		indices := bySuite[name]
		p.Go(func() {
			for _, i := range indices {
				results[i] = r.runUnit(ctx, units[i], metas[i])
			}
		})
	}
	p.Wait()

	result := &RunnerResult{
		Gate:     gateID(r.gate),
		Suites:   make(map[string]*SuiteResult),
		Stats:    ResultStats{StartTime: start},
		RunID:    runID,
		OnlyUsed: onlyUsed,
	}
	for _, res := range results {
		addResult(result, res)
		metrics.RecordUnit(result.Gate, res.Metadata.Suite, res.Status, res.Duration)
	}
	for _, s := range result.Suites {
		s.Status = determineStatus(s.Stats)
	}

	result.Duration = time.Since(start)
	result.Status = determineStatus(result.Stats)
	result.Stats.EndTime = time.Now()

	if result.Status == types.TestStatusFail {
		span.SetStatus(codes.Error, "run failed")
	}
	span.SetAttributes(
		attribute.Int("units.total", result.Stats.Total),
		attribute.Int("units.failed", result.Stats.Failed),
	)
	metrics.RecordRun(result.Gate, runID, result.Status, result.Stats.Total, result.Stats.Passed,
		result.Stats.Failed, result.Stats.Skipped, result.Duration)

	r.log.Debug("Run finished", "run_id", runID, "status", result.Status, "duration", result.Duration)
	return result, nil
}

// selectUnits returns the registered units that belong to the gate and match
// the filter, in registration order.
func (r *runner) selectUnits() []suite.Unit {
	r.mu.Lock()
	defer r.mu.Unlock()

	selected := make([]suite.Unit, 0, len(r.units))
	for _, u := range r.units {
		if r.gate != nil {
			if _, ok := r.gate.Suite(u.Suite); !ok {
				continue
			}
		}
		if r.filter != nil && !r.filter.MatchString(u.Name) {
			continue
		}
		selected = append(selected, u)
	}
	return selected
}

// skipReason explains why a unit is reported as skipped without running it
func (r *runner) skipReason(u suite.Unit, onlyUsed bool) string {
	if u.Ignore {
		return SkipReasonIgnored
	}
	if onlyUsed && !u.Only {
		return SkipReasonNotOnly
	}
	if r.gate != nil {
		if cfg, ok := r.gate.Suite(u.Suite); ok {
			desc := types.GetTestDisplayName(types.UnitMetadata{Name: u.Name, Suite: u.Suite})
			if slices.Contains(cfg.Skip, u.Name) || slices.Contains(cfg.Skip, desc) {
				return SkipReasonGateSkip
			}
		}
	}
	return ""
}

// runUnit executes a single unit, turning panics and timeouts into failures
func (r *runner) runUnit(ctx context.Context, u suite.Unit, meta types.UnitMetadata) (res *types.TestResult) {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("test %s", u.Name))
	defer span.End()
	span.SetAttributes(attribute.String("suite", u.Suite))

	if r.defaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.defaultTimeout)
		defer cancel()
	}

	start := time.Now()
	res = &types.TestResult{Metadata: meta}
	defer func() {
		if p := recover(); p != nil {
			res.Error = fmt.Errorf("panic: %v", p)
		}
		res.Duration = time.Since(start)
		if res.Error != nil {
			res.Status = types.TestStatusFail
			res.TimedOut = errors.Is(res.Error, context.DeadlineExceeded)
			span.RecordError(res.Error)
			span.SetStatus(codes.Error, res.Error.Error())
			r.log.Warn("Unit failed", "name", u.Name, "error", res.Error, "duration", res.Duration)
		} else {
			res.Status = types.TestStatusPass
			r.log.Info("Unit passed", "name", u.Name, "duration", res.Duration)
		}
	}()

	r.log.Debug("Running unit", "name", u.Name, "suite", u.Suite)
	res.Error = u.Fn(ctx)
	return res
}

// addResult places a unit result into its suite and updates the stats
func addResult(result *RunnerResult, res *types.TestResult) {
	s, ok := result.Suites[res.Metadata.Suite]
	if !ok {
		s = &SuiteResult{
			ID:    res.Metadata.Suite,
			Tests: make(map[string]*types.TestResult),
			Stats: ResultStats{StartTime: result.Stats.StartTime},
		}
		result.Suites[res.Metadata.Suite] = s
		result.Order = append(result.Order, res.Metadata.Suite)
	}
	s.Tests[res.Metadata.Name] = res
	s.Order = append(s.Order, res.Metadata.Name)
	s.Duration += res.Duration
	updateStats(&s.Stats, res.Status)
	updateStats(&result.Stats, res.Status)
}

func updateStats(stats *ResultStats, status types.TestStatus) {
	stats.Total++
	switch status {
	case types.TestStatusPass:
		stats.Passed++
	case types.TestStatusSkip:
		stats.Skipped++
	default:
		stats.Failed++
	}
}

// determineStatus fails on any failure and skips when nothing ran
func determineStatus(stats ResultStats) types.TestStatus {
	if stats.Failed > 0 {
		return types.TestStatusFail
	}
	if stats.Total > 0 && stats.Skipped == stats.Total {
		return types.TestStatusSkip
	}
	return types.TestStatusPass
}

func gateID(gate *types.GateConfig) string {
	if gate == nil {
		return ""
	}
	return gate.ID
}

// String returns a one-line summary of the run
func (r *RunnerResult) String() string {
	return fmt.Sprintf("RunnerResult{Status: %s, Total: %d, Passed: %d, Failed: %d, Skipped: %d, Duration: %s}",
		r.Status, r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Stats.Skipped, r.Duration)
}
