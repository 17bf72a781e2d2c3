package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ethereum-optimism/infra/op-suite/types"
)

const (
	MetricsNamespace = "op_suite"
)

var (
	Debug                bool = true
	validResults              = []types.TestStatus{types.TestStatusPass, types.TestStatusFail, types.TestStatusSkip}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	unitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "units_total",
		Help:      "Count of executed units",
	}, []string{
		"gate",
		"suite",
		"result",
	})

	unitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Name:      "unit_duration_seconds",
		Help:      "Duration of unit executions",
		Buckets:   prometheus.DefBuckets,
	}, []string{
		"gate",
		"suite",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of the latest run",
	}, []string{
		"gate",
		"run_id",
		"result",
	})

	runUnitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_units_total",
		Help:      "Total number of units seen by runs",
	}, []string{
		"gate",
	})

	runUnitsPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_units_passed",
		Help:      "Number of passed units",
	}, []string{
		"gate",
	})

	runUnitsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_units_failed",
		Help:      "Number of failed units",
	}, []string{
		"gate",
	})

	runUnitsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_units_skipped",
		Help:      "Number of skipped units",
	}, []string{
		"gate",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of the latest run",
	}, []string{
		"gate",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordUnit records the outcome of a single unit execution
func RecordUnit(gate string, suite string, result types.TestStatus, duration time.Duration) {
	if !isValidResult(result) {
		log.Error("RecordUnit - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "units_total",
			"gate", gate,
			"suite", suite,
			"result", result)
	}
	unitsTotal.WithLabelValues(gate, suite, string(result)).Inc()
	unitDuration.WithLabelValues(gate, suite).Observe(duration.Seconds())
}

// RecordRun records the summary of a complete run
func RecordRun(
	gate string,
	runID string,
	result types.TestStatus,
	total int,
	passed int,
	failed int,
	skipped int,
	duration time.Duration,
) {
	runResults.WithLabelValues(gate, runID, string(result)).Set(1)
	runUnitsTotal.WithLabelValues(gate).Add(float64(total))
	runUnitsPassed.WithLabelValues(gate).Add(float64(passed))
	runUnitsFailed.WithLabelValues(gate).Add(float64(failed))
	runUnitsSkipped.WithLabelValues(gate).Add(float64(skipped))
	runDuration.WithLabelValues(gate).Set(duration.Seconds())
}

func isValidResult(result types.TestStatus) bool {
	return slices.Contains(validResults, result)
}
