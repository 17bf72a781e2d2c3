// Package reporting renders runner results as tables.
package reporting

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-suite/runner"
	"github.com/ethereum-optimism/infra/op-suite/types"
)

// ResultFormatter is responsible for formatting and displaying test results.
type ResultFormatter interface {
	FormatResults(result *runner.RunnerResult) error
}

// ConsoleResultFormatter renders results as a colored table.
type ConsoleResultFormatter struct {
	logger log.Logger
	out    io.Writer
}

var _ ResultFormatter = (*ConsoleResultFormatter)(nil)

// NewConsoleResultFormatter creates a formatter writing to out, or to stdout
// when out is nil.
func NewConsoleResultFormatter(logger log.Logger, out io.Writer) *ConsoleResultFormatter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleResultFormatter{
		logger: logger,
		out:    out,
	}
}

// FormatResults formats and displays the test results.
func (f *ConsoleResultFormatter) FormatResults(result *runner.RunnerResult) error {
	f.logger.Info("Printing results...")
	if _, err := fmt.Fprintln(f.out, renderTable(result)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(f.out, result.String())
	return err
}

// WriteResultsFile writes the results table to path without color codes.
func WriteResultsFile(path string, result *runner.RunnerResult) error {
	var buf bytes.Buffer
	buf.WriteString(stripansi.Strip(renderTable(result)))
	buf.WriteString("\n")
	buf.WriteString(result.String())
	buf.WriteString("\n")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}

func renderTable(result *runner.RunnerResult) string {
	t := table.NewWriter()
	title := "Suite Results"
	if result.Gate != "" {
		title = fmt.Sprintf("Suite Results: %s", result.Gate)
	}
	t.SetTitle(fmt.Sprintf("%s (%s)", title, formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"Type", "ID", "Duration", "Tests", "Passed", "Failed", "Skipped", "Status", "Error",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "ID", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Error", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, suiteName := range result.Order {
		s := result.Suites[suiteName]
		t.AppendRow(table.Row{
			"Suite",
			suiteName,
			formatDuration(s.Duration),
			"-",
			s.Stats.Passed,
			s.Stats.Failed,
			s.Stats.Skipped,
			getResultString(s.Status),
			"",
		})

		for j, testName := range s.Order {
			prefix := "├─"
			if j == len(s.Order)-1 {
				prefix = "└─"
			}
			test := s.Tests[testName]
			t.AppendRow(table.Row{
				"",
				fmt.Sprintf("%s %s", prefix, types.GetTestDisplayName(test.Metadata)),
				formatDuration(test.Duration),
				"1",
				boolToInt(test.Status == types.TestStatusPass),
				boolToInt(test.Status == types.TestStatusFail),
				boolToInt(test.Status == types.TestStatusSkip),
				getResultString(test.Status),
				detail(test),
			})
		}
		t.AppendSeparator()
	}

	switch result.Status {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(result.Duration),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.Skipped,
		getResultString(result.Status),
		"",
	})

	return t.Render()
}

// detail is the error of a failed test or the reason a test was skipped
func detail(test *types.TestResult) string {
	switch {
	case test.Error != nil && test.TimedOut:
		return fmt.Sprintf("timed out: %v", test.Error)
	case test.Error != nil:
		return test.Error.Error()
	default:
		return test.SkipReason
	}
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func getResultString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "pass"
	case types.TestStatusSkip:
		return "skip"
	case types.TestStatusError:
		return "error"
	default:
		return "fail"
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
