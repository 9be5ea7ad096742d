// internal/tui/progress.go
// Package tui renders a live progress view while a benchmark run executes.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	bench "github.com/mwiater/syncbench/benchmark"
	"github.com/mwiater/syncbench/internal/benchmark"
)

// ErrInterrupted is returned when the user quits the view before the run ends.
var ErrInterrupted = errors.New("benchmark interrupted")

const recentLines = 6

type runStartedMsg struct {
	label  string
	rounds int
	cases  int
}

type warmupMsg struct{ outcome bench.Outcome }

type roundMsg struct{ round, rounds int }

type caseMsg struct{ outcome bench.Outcome }

type doneMsg struct{ err error }

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	statusStyle = lipgloss.NewStyle().MarginLeft(1)
)

type model struct {
	spinner     spinner.Model
	bar         progress.Model
	label       string
	round       int
	rounds      int
	total       int
	done        int
	failures    int
	warmingUp   bool
	lines       []string
	finished    bool
	interrupted bool
}

func newModel() model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return model{
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.interrupted = true
			return m, tea.Quit
		}
	case runStartedMsg:
		m.label = msg.label
		m.rounds = msg.rounds
		m.total = msg.rounds * msg.cases
		m.warmingUp = true
	case warmupMsg:
		m.warmingUp = false
		m.addLine(mutedStyle.Render("warm-up: " + benchmark.FormatOutcome(msg.outcome)))
	case roundMsg:
		m.warmingUp = false
		m.round = msg.round
		m.rounds = msg.rounds
	case caseMsg:
		m.done++
		line := benchmark.FormatOutcome(msg.outcome)
		if msg.outcome.OK() {
			m.addLine(okStyle.Render(line))
		} else {
			m.failures++
			m.addLine(errorStyle.Render(line))
		}
	case doneMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) addLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > recentLines {
		m.lines = m.lines[len(m.lines)-recentLines:]
	}
}

func (m model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("syncbench "+m.label) + "\n\n")

	status := fmt.Sprintf("round %d/%d  calls %d/%d  failures %d", m.round, m.rounds, m.done, m.total, m.failures)
	if m.warmingUp {
		status = "warming up (not recorded)"
	}
	if m.finished {
		status = "done"
	}
	b.WriteString(m.spinner.View() + statusStyle.Render(status) + "\n")
	b.WriteString(m.bar.ViewAs(m.percent()) + "\n\n")
	for _, line := range m.lines {
		b.WriteString(line + "\n")
	}
	b.WriteString(mutedStyle.Render("\n(q to quit)") + "\n")
	return b.String()
}

// Observer forwards run events into the view.
type Observer struct {
	send func(tea.Msg)
}

func (o *Observer) RunStarted(label string, rounds, cases int) {
	o.send(runStartedMsg{label: label, rounds: rounds, cases: cases})
}

func (o *Observer) WarmupFinished(out bench.Outcome) { o.send(warmupMsg{outcome: out}) }

func (o *Observer) RoundStarted(round, rounds int) { o.send(roundMsg{round: round, rounds: rounds}) }

func (o *Observer) CaseFinished(out bench.Outcome) { o.send(caseMsg{outcome: out}) }

var newProgram = func(m tea.Model) *tea.Program { return tea.NewProgram(m) }

// Run shows the view while work executes with an observer feeding it. It
// returns work's error after the run finishes. If the user quits first, cancel
// is called so work stops issuing calls, and Run returns ErrInterrupted once
// work has returned.
func Run(cancel context.CancelFunc, work func(obs benchmark.Observer) error) error {
	p := newProgram(newModel())
	errCh := make(chan error, 1)

	go func() {
		err := work(&Observer{send: p.Send})
		errCh <- err
		p.Send(doneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-errCh
		return fmt.Errorf("progress view: %w", err)
	}
	if m, ok := final.(model); ok && m.interrupted {
		cancel()
		<-errCh
		return ErrInterrupted
	}
	return <-errCh
}
