package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for scan output
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - success, strong signal
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, failed sources
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings, weak signal
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Shared styles for scan output
var (
	// TitleStyle is for section titles (e.g., "DISCOVERED DEVICES")
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// HeaderRowStyle is for table header rows
	HeaderRowStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	// DeviceNameStyle is for primary device names
	DeviceNameStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// AddressStyle is for device addresses
	AddressStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// CompanyStyle is for resolved vendor names
	CompanyStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// SourceTagStyle is for detection source tags
	SourceTagStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// SuccessTitleStyle is for the scan summary title
	SuccessTitleStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	// ErrorTitleStyle is for the failure summary title
	ErrorTitleStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// ErrorMessageStyle is for error message text
	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	// SourceErrStyle is for per-source error lines
	SourceErrStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// SummaryKeyStyle is for summary detail keys
	SummaryKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(15)

	// SummaryValueStyle is for summary detail values
	SummaryValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	WarningMarker = "⚠"
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// GetTerminalSize returns the current terminal width and height
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24 // Default fallback
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if width > MaxContentWidth {
		width = MaxContentWidth
	}
	return width, height
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// SummaryBoxStyle returns the border style for scan summary boxes
func SummaryBoxStyle(width int, color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(color).
		Width(width - 2).
		Padding(0, 2)
}

// SignalStyle picks a color for a signal reading. Thresholds follow the
// usual RSSI quality bands.
func SignalStyle(rssi int) lipgloss.Style {
	switch {
	case rssi >= -60:
		return lipgloss.NewStyle().Foreground(SuccessColor)
	case rssi >= -80:
		return lipgloss.NewStyle().Foreground(WarningColor)
	default:
		return lipgloss.NewStyle().Foreground(ErrorColor)
	}
}
