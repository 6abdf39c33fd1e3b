package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rmercier/bluescan/internal/scan"
	"github.com/rmercier/bluescan/internal/ui"
)

// Messages for async operations
type progressMsg scan.ProgressEvent

type scanDoneMsg struct {
	result *scan.Result
	err    error
}

// sourceState tracks one source's lifecycle on screen
type sourceState int

const (
	sourcePending sourceState = iota
	sourceRunning
	sourceSettled
	sourceFailed
)

type sourceStatus struct {
	id           string
	state        sourceState
	observations int
	err          error
}

// Model is the live scan screen. It shows per-source progress while the
// scan runs, then the merged device table and summary.
type Model struct {
	aggregator *scan.Aggregator
	cfg        scan.Config

	scanning  bool
	startTime time.Time
	sources   []*sourceStatus
	result    *scan.Result
	err       error

	width   int
	height  int
	spinner spinner.Model
	program *tea.Program
}

// New creates a live scan model. The aggregator must not have a progress
// handler installed; the model installs its own.
func New(aggregator *scan.Aggregator, cfg scan.Config) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.PrimaryColor)

	sources := make([]*sourceStatus, 0, len(aggregator.SourceIDs()))
	wanted := cfg.Sources
	for _, id := range aggregator.SourceIDs() {
		if len(wanted) > 0 && !containsString(wanted, id) {
			continue
		}
		sources = append(sources, &sourceStatus{id: id})
	}

	return &Model{
		aggregator: aggregator,
		cfg:        cfg,
		sources:    sources,
		spinner:    s,
		width:      ui.MinTerminalWidth,
	}
}

// Run executes the scan under the TUI and returns the final result once
// the program exits.
func Run(ctx context.Context, aggregator *scan.Aggregator, cfg scan.Config) (*scan.Result, error) {
	m := New(aggregator, cfg)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	m.program = p

	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	done, ok := final.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected final model type %T", final)
	}
	return done.result, done.err
}

// Init starts the scan immediately
func (m *Model) Init() tea.Cmd {
	m.scanning = true
	m.startTime = time.Now()

	return tea.Batch(
		m.startScan,
		m.spinner.Tick,
	)
}

// startScan runs the aggregation in the background. Progress events are
// forwarded into the update loop with program.Send, so the model never
// shares state with the orchestrator goroutine.
func (m *Model) startScan() tea.Msg {
	aggregator := m.aggregator.WithProgress(func(ev scan.ProgressEvent) {
		if m.program != nil {
			m.program.Send(progressMsg(ev))
		}
	})

	result, err := aggregator.Aggregate(context.Background(), m.cfg)
	return scanDoneMsg{result: result, err: err}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case progressMsg:
		m.applyProgress(scan.ProgressEvent(msg))

	case scanDoneMsg:
		m.scanning = false
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) applyProgress(ev scan.ProgressEvent) {
	switch ev.Stage {
	case scan.StageSourceStarted:
		if st := m.sourceByID(ev.SourceID); st != nil {
			st.state = sourceRunning
		}
	case scan.StageSourceSettled:
		if st := m.sourceByID(ev.SourceID); st != nil {
			st.observations = ev.Observations
			if ev.Err != nil {
				st.state = sourceFailed
				st.err = ev.Err
			} else {
				st.state = sourceSettled
			}
		}
	}
}

func (m *Model) sourceByID(id string) *sourceStatus {
	for _, st := range m.sources {
		if st.id == id {
			return st
		}
	}
	return nil
}

// View renders the live scan screen
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(ui.TitleStyle.Render("  BLUETOOTH SCAN"))
	b.WriteString("\n")
	b.WriteString(ui.AddressStyle.Render(fmt.Sprintf("  window: %s", m.cfg.Duration)))
	b.WriteString("\n\n")

	for _, st := range m.sources {
		b.WriteString(m.renderSourceLine(st))
		b.WriteString("\n")
	}

	if m.scanning {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s scanning... %s",
			m.spinner.View(),
			ui.AddressStyle.Render(time.Since(m.startTime).Round(time.Second).String()),
		))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) renderSourceLine(st *sourceStatus) string {
	switch st.state {
	case sourceRunning:
		return fmt.Sprintf("  %s %s", m.spinner.View(), st.id)
	case sourceSettled:
		return fmt.Sprintf("  %s %s %s",
			lipgloss.NewStyle().Foreground(ui.SuccessColor).Render(ui.SuccessMarker),
			st.id,
			ui.AddressStyle.Render(fmt.Sprintf("(%d observations)", st.observations)),
		)
	case sourceFailed:
		return fmt.Sprintf("  %s %s %s",
			lipgloss.NewStyle().Foreground(ui.ErrorColor).Render(ui.FailureMarker),
			st.id,
			ui.ErrorMessageStyle.Render(st.err.Error()),
		)
	default:
		return ui.AddressStyle.Render("  · " + st.id)
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
