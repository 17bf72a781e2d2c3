package metrics

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ethereum-optimism/infra/op-suite/types"
)

func TestErrToLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "nil error",
			err:  nil,
		},
		{
			name: "simple error",
			err:  errors.New("test error"),
		},
		{
			name: "error with special chars",
			err:  errors.New("test@error#123"),
		},
		{
			name: "error with multiple spaces",
			err:  errors.New("test   error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := errToLabel(tt.err)
			validLabelRegex := regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)
			if !validLabelRegex.MatchString(result) {
				t.Errorf("errLabel() = %v, is not a valid Prometheus label", result)
			}
		})
	}
}

func TestRecordErrorDetails(t *testing.T) {
	before := testutil.ToFloat64(errorsTotal.WithLabelValues("details.sample_error"))

	RecordErrorDetails("details", nil)
	RecordErrorDetails("details", errors.New("sample error"))

	assert.Equal(t, before+1, testutil.ToFloat64(errorsTotal.WithLabelValues("details.sample_error")))
}

func TestRecordUnit(t *testing.T) {
	pass := unitsTotal.WithLabelValues("gate1", "[Suite]", string(types.TestStatusPass))
	before := testutil.ToFloat64(pass)

	RecordUnit("gate1", "[Suite]", types.TestStatusPass, time.Second)
	RecordUnit("gate1", "[Suite]", types.TestStatusFail, 500*time.Millisecond)
	RecordUnit("gate1", "[Suite]", types.TestStatusSkip, 0)

	assert.Equal(t, before+1, testutil.ToFloat64(pass))

	// Invalid results are dropped.
	RecordUnit("gate1", "[Suite]", types.TestStatus("bogus"), 0)
	assert.Equal(t, float64(0), testutil.ToFloat64(unitsTotal.WithLabelValues("gate1", "[Suite]", "bogus")))
}

func TestRecordRun(t *testing.T) {
	RecordRun("gate-run", "run1", types.TestStatusFail, 3, 1, 1, 1, 2*time.Second)

	assert.Equal(t, float64(1), testutil.ToFloat64(runResults.WithLabelValues("gate-run", "run1", "fail")))
	assert.Equal(t, float64(3), testutil.ToFloat64(runUnitsTotal.WithLabelValues("gate-run")))
	assert.Equal(t, float64(1), testutil.ToFloat64(runUnitsSkipped.WithLabelValues("gate-run")))
	assert.Equal(t, float64(2), testutil.ToFloat64(runDuration.WithLabelValues("gate-run")))
}
