// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-15

// Package tui renders pipeline progress for interactive runs of the process command.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/similigh/rulebot/internal/core/pipeline"
)

var (
	primaryColor = lipgloss.Color("#5f87ff")
	subtleColor  = lipgloss.Color("#626262")
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF0000")
	dryRunColor  = lipgloss.Color("#d7af00")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	activeStepStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	doneStepStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStepStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	dryRunStyle = lipgloss.NewStyle().
			Foreground(dryRunColor).
			Bold(true)
)

// Step statuses.
const (
	StatusStarted = "started"
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// PipelineStatusMsg indicates a status update from the pipeline.
type PipelineStatusMsg struct {
	Step    string
	Status  string
	Message string
}

// ResultMsg carries the final result.
type ResultMsg struct {
	Result *pipeline.Result
	Err    error
}

// Model for the TUI.
type Model struct {
	spinner    spinner.Model
	title      string
	steps      []string
	current    int
	status     map[string]string // step -> status
	logs       []string
	result     *pipeline.Result
	err        error
	done       bool
	statusChan <-chan PipelineStatusMsg
}

// NewModel creates a new TUI model for the given item and preset steps.
func NewModel(title string, steps []string, statusChan <-chan PipelineStatusMsg) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		spinner:    s,
		title:      title,
		steps:      steps,
		status:     make(map[string]string),
		statusChan: statusChan,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForActivity(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case PipelineStatusMsg:
		m.status[msg.Step] = msg.Status
		if msg.Message != "" {
			m.logs = append(m.logs, fmt.Sprintf("[%s] %s: %s", time.Now().Format("15:04:05"), msg.Step, msg.Message))
		}
		for i, s := range m.steps {
			if s == msg.Step {
				m.current = i
				break
			}
		}
		if msg.Status == StatusError {
			m.err = fmt.Errorf("step %s failed: %s", msg.Step, msg.Message)
		}
		return m, m.waitForActivity()

	case ResultMsg:
		m.result = msg.Result
		if msg.Err != nil {
			m.err = msg.Err
		}
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg, ok := <-m.statusChan:
			if !ok {
				return nil
			}
			return msg
		case <-time.After(30 * time.Second):
			return ResultMsg{Err: fmt.Errorf("pipeline timed out waiting for activity")}
		}
	}
}

// Result returns the pipeline result once the run has finished.
func (m Model) Result() (*pipeline.Result, error) {
	return m.result, m.err
}

// View renders the TUI.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(m.title))
	s.WriteString("\n\n")

	for i, step := range m.steps {
		prefix := "  "
		style := stepStyle

		if i == m.current && !m.done {
			prefix = m.spinner.View() + " "
			style = activeStepStyle
		}

		switch m.status[step] {
		case StatusSuccess:
			prefix = "✓ "
			style = doneStepStyle
		case StatusError:
			prefix = "✗ "
			style = errorStepStyle
		case StatusSkipped:
			prefix = "○ "
			style = stepStyle.Faint(true)
		}

		s.WriteString(style.Render(fmt.Sprintf("%s%s\n", prefix, step)))
	}

	if m.done && m.result != nil {
		s.WriteString("\n" + Summary(m.result))
	}

	if !m.done {
		s.WriteString("\nLogs:\n")
		start := 0
		if len(m.logs) > 5 {
			start = len(m.logs) - 5
		}
		for _, log := range m.logs[start:] {
			s.WriteString(lipgloss.NewStyle().Foreground(subtleColor).Render(log) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + errorStepStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}

	if !m.done {
		s.WriteString(lipgloss.NewStyle().Foreground(subtleColor).Render("\nPress q to quit\n"))
	}

	return s.String()
}

// Summary renders the decided actions of a run.
func Summary(r *pipeline.Result) string {
	var s strings.Builder
	if r.Skipped {
		s.WriteString(stepStyle.Faint(true).Render("skipped: "+r.SkipReason) + "\n")
		return s.String()
	}
	if len(r.Plan) == 0 {
		s.WriteString(doneStepStyle.Render("nothing to do") + "\n")
		return s.String()
	}
	if r.DryRun {
		s.WriteString(dryRunStyle.Render("dry run, nothing was changed") + "\n")
	}
	for _, a := range r.Plan {
		s.WriteString("• " + a.String() + "\n")
	}
	return s.String()
}
