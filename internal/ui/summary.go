package ui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rmercier/bluescan/internal/scan"
)

// Summary represents the closing box printed after a scan.
type Summary struct {
	Result *scan.Result
	Err    error
	Width  int
}

// NewSummary creates a summary box for a finished scan.
func NewSummary(result *scan.Result, err error) *Summary {
	return &Summary{
		Result: result,
		Err:    err,
		Width:  GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (s *Summary) SetWidth(width int) *Summary {
	s.Width = width
	return s
}

// Render returns the styled summary box as a string
func (s *Summary) Render() string {
	if s.Err != nil {
		return s.renderFailure()
	}
	return s.renderSuccess()
}

func (s *Summary) renderSuccess() string {
	width := s.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var lines []string
	lines = append(lines, "")
	lines = append(lines, SuccessTitleStyle.Render(
		fmt.Sprintf("   %s  SCAN COMPLETE", SuccessMarker)))
	lines = append(lines, "")

	matched := len(s.Result.Devices)
	detail := fmt.Sprintf("%d", matched)
	if s.Result.TotalDiscovered != matched {
		detail = fmt.Sprintf("%d (of %d discovered)", matched, s.Result.TotalDiscovered)
	}
	lines = append(lines, renderSummaryDetail("Devices", detail))

	// Failed sources are a warning, not a failure: the catalog above is
	// still valid.
	if len(s.Result.SourceErrors) > 0 {
		lines = append(lines, "")
		lines = append(lines, SourceErrStyle.Render(
			fmt.Sprintf("   %s  Some sources failed:", WarningMarker)))
		for _, id := range sortedKeys(s.Result.SourceErrors) {
			lines = append(lines, SourceErrStyle.Render(
				fmt.Sprintf("      %s: %s", id, s.Result.SourceErrors[id])))
		}
	}
	lines = append(lines, "")

	color := SuccessColor
	if len(s.Result.SourceErrors) > 0 {
		color = WarningColor
	}
	return SummaryBoxStyle(width, color).Render(strings.Join(lines, "\n"))
}

func (s *Summary) renderFailure() string {
	width := s.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var lines []string
	lines = append(lines, "")
	lines = append(lines, ErrorTitleStyle.Render(
		fmt.Sprintf("   %s  SCAN FAILED", FailureMarker)))
	lines = append(lines, "")
	lines = append(lines, ErrorMessageStyle.Render("   Error: "+s.Err.Error()))

	var totalFailure *scan.TotalFailureError
	if errors.As(s.Err, &totalFailure) {
		lines = append(lines, "")
		for _, id := range sortedErrKeys(totalFailure.PerSource) {
			lines = append(lines, SourceErrStyle.Render(
				fmt.Sprintf("      %s: %v", id, totalFailure.PerSource[id])))
		}
	}
	lines = append(lines, "")

	return SummaryBoxStyle(width, ErrorColor).Render(strings.Join(lines, "\n"))
}

func renderSummaryDetail(key, value string) string {
	return SummaryKeyStyle.Render("   "+key+":") + " " + SummaryValueStyle.Render(value)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedErrKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
