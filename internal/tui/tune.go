// Package tui renders a live terminal view of a running gain search:
// iteration counter, best cost, a convergence sparkline, and the current
// best gain vector.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"dipctl/internal/pso"
)

const (
	graphWidth    = 64
	graphHeight   = 10
	historyWindow = 400
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	bestStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).MarginTop(1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// IterationMsg carries one optimizer iteration into the view.
type IterationMsg struct {
	Iteration int
	BestCost  float64
	Best      []float64
}

// DoneMsg ends the session; the view stays up until the user quits.
type DoneMsg struct {
	Outcome *pso.Outcome
	Err     error
}

// Model is the bubbletea state of the tuning view. Events arrive on a
// channel so the optimizer can run on its own goroutine.
type Model struct {
	variant string
	events  <-chan tea.Msg
	cancel  func()

	iteration int
	bestCost  float64
	best      []float64
	history   []float64
	started   time.Time

	outcome *pso.Outcome
	err     error
	done    bool
}

func NewModel(variant string, events <-chan tea.Msg, cancel func()) Model {
	return Model{
		variant: variant,
		events:  events,
		cancel:  cancel,
		history: make([]float64, 0, historyWindow),
		started: time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "enter":
			if m.done {
				return m, tea.Quit
			}
		}
	case IterationMsg:
		m.iteration = msg.Iteration
		m.bestCost = msg.BestCost
		m.best = msg.Best
		m.history = append(m.history, msg.BestCost)
		if len(m.history) > historyWindow {
			m.history = m.history[1:]
		}
		return m, m.waitForEvent()
	case DoneMsg:
		m.done = true
		m.outcome = msg.Outcome
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render(fmt.Sprintf("gain search: %s", m.variant)))
	sb.WriteString("\n")

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(valueStyle.Render(value))
		sb.WriteString("\n")
	}
	row("iteration", fmt.Sprintf("%d", m.iteration))
	row("best cost", fmt.Sprintf("%.6g", m.bestCost))
	row("elapsed", time.Since(m.started).Truncate(time.Second).String())

	if len(m.best) > 0 {
		sb.WriteString(labelStyle.Render("best gains"))
		sb.WriteString(bestStyle.Render(formatGains(m.best)))
		sb.WriteString("\n")
	}

	if len(m.history) > 1 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("best cost per iteration"),
		)
		sb.WriteString(graphStyle.Render(graph))
		sb.WriteString("\n")
	}

	if m.done {
		switch {
		case m.err != nil:
			sb.WriteString(doneStyle.Render(fmt.Sprintf("stopped: %v", m.err)))
		case m.outcome != nil:
			sb.WriteString(doneStyle.Render(fmt.Sprintf(
				"finished: %s after %d iterations, cost %.6g",
				m.outcome.Termination, m.outcome.Iterations, m.outcome.Cost)))
		}
		sb.WriteString(helpStyle.Render("enter/q: quit"))
	} else {
		sb.WriteString(helpStyle.Render("q: cancel"))
	}
	sb.WriteString("\n")
	return sb.String()
}

func formatGains(gains []float64) string {
	parts := make([]string, len(gains))
	for i, g := range gains {
		parts[i] = fmt.Sprintf("%.3f", g)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Attach returns an OnIteration hook that forwards optimizer progress into
// the view's event channel without blocking the search.
func Attach(events chan<- tea.Msg) func(iter int, bestCost float64, best []float64) {
	return func(iter int, bestCost float64, best []float64) {
		snapshot := make([]float64, len(best))
		copy(snapshot, best)
		select {
		case events <- IterationMsg{Iteration: iter, BestCost: bestCost, Best: snapshot}:
		default:
		}
	}
}
