package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/refkit/stress"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	gaugeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	statePickScenario modelState = iota
	stateEditParams
	stateRunning
	stateShowResult
)

type interactiveModel struct {
	err       error
	scenarios []stress.Scenario
	selected  int
	scenario  stress.Scenario
	inputs    []textinput.Model
	focusIdx  int
	runner    *stress.Runner
	snap      stress.Snapshot
	state     modelState
}

type tickMsg time.Time

type runDoneMsg struct {
	snap stress.Snapshot
	err  error
}

func newInteractiveModel(initial stress.Scenario) *interactiveModel {
	scenarios := []stress.Scenario{initial}
	for _, name := range stress.PresetNames() {
		if name == initial.Name {
			continue
		}
		s, _ := stress.Preset(name)
		scenarios = append(scenarios, s)
	}
	return &interactiveModel{
		scenarios: scenarios,
		state:     statePickScenario,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

// editFields pairs input labels with scenario accessors.
var editFields = []string{"duration", "cloners", "lockers", "churners", "entries"}

func (m *interactiveModel) prepareInputs() {
	s := m.scenario
	values := []string{
		time.Duration(s.Duration).String(),
		strconv.Itoa(s.Cloners),
		strconv.Itoa(s.Lockers),
		strconv.Itoa(s.Churners),
		strconv.Itoa(s.Entries),
	}
	m.inputs = make([]textinput.Model, len(editFields))
	for i, name := range editFields {
		ti := textinput.New()
		ti.Prompt = name + ": "
		ti.SetValue(values[i])
		ti.Width = 20
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

// applyInputs parses the edit fields back into the scenario.
func (m *interactiveModel) applyInputs() error {
	d, err := time.ParseDuration(m.inputs[0].Value())
	if err != nil {
		return fmt.Errorf("bad duration: %w", err)
	}
	nums := make([]int, 4)
	for i := 1; i < len(m.inputs); i++ {
		n, err := strconv.Atoi(strings.TrimSpace(m.inputs[i].Value()))
		if err != nil {
			return fmt.Errorf("bad %s: %w", editFields[i], err)
		}
		nums[i-1] = n
	}
	m.scenario.Duration = stress.Duration(d)
	m.scenario.Cloners = nums[0]
	m.scenario.Lockers = nums[1]
	m.scenario.Churners = nums[2]
	m.scenario.Entries = nums[3]
	return m.scenario.Validate()
}

func (m *interactiveModel) startRun() tea.Cmd {
	r, err := stress.NewRunner(m.scenario)
	if err != nil {
		m.err = err
		m.state = stateShowResult
		return nil
	}
	m.runner = r
	m.err = nil
	m.state = stateRunning

	runCmd := func() tea.Msg {
		snap, err := r.Run(context.Background())
		return runDoneMsg{snap: snap, err: err}
	}
	return tea.Batch(runCmd, tick())
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			// Let the run finish; quitting mid-run would leak workers.
			if m.state != stateRunning && m.state != stateEditParams {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == statePickScenario && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == statePickScenario && m.selected < len(m.scenarios)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case statePickScenario:
				m.scenario = m.scenarios[m.selected]
				m.prepareInputs()
				m.state = stateEditParams

			case stateEditParams:
				if err := m.applyInputs(); err != nil {
					m.err = err
					return m, nil
				}
				m.err = nil
				return m, m.startRun()

			case stateShowResult:
				m.state = statePickScenario
				m.runner = nil
				m.snap = stress.Snapshot{}
				m.err = nil
			}

		case "tab":
			if m.state == stateEditParams {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateEditParams:
				m.state = statePickScenario
				m.inputs = nil
				m.err = nil
			case stateShowResult:
				m.state = statePickScenario
				m.err = nil
			}
		}

	case tickMsg:
		if m.state == stateRunning {
			m.snap = m.runner.Snapshot()
			return m, tick()
		}

	case runDoneMsg:
		m.snap = msg.snap
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateEditParams {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("arc stress"))
	b.WriteString("\n\n")

	switch m.state {
	case statePickScenario:
		b.WriteString("Select a scenario:\n\n")
		for i, s := range m.scenarios {
			line := m.formatScenario(s)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • q quit"))

	case stateEditParams:
		b.WriteString(fmt.Sprintf("Scenario %s (%s payload)\n\n",
			labelStyle.Render(m.scenario.Name), m.scenario.Payload))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter run • esc back"))

	case stateRunning:
		b.WriteString(fmt.Sprintf("Running %s...\n\n", labelStyle.Render(m.scenario.Name)))
		b.WriteString(m.renderProgress())
		b.WriteString("\n")
		b.WriteString(m.renderGauges())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("runs to completion"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Run failed: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(fmt.Sprintf("Scenario %s completed", m.scenario.Name)))
			b.WriteString("\n\n")
			b.WriteString(formatSnapshot(m.snap))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter again • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatScenario(s stress.Scenario) string {
	extra := ""
	if s.Payload != stress.PayloadObject {
		extra = fmt.Sprintf(", %d elems", s.SliceLen)
	}
	if s.UsePool {
		extra += ", pooled"
	}
	return fmt.Sprintf("%s (%s%s) %dc/%dl/%dch over %d entries",
		labelStyle.Render(s.Name), s.Payload, extra,
		s.Cloners, s.Lockers, s.Churners, s.Entries)
}

func (m *interactiveModel) renderProgress() string {
	total := time.Duration(m.scenario.Duration)
	if total <= 0 {
		return ""
	}
	frac := float64(m.snap.Elapsed) / float64(total)
	if frac > 1 {
		frac = 1
	}
	const width = 40
	filled := int(frac * width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %v / %v\n",
		gaugeStyle.Render(bar), m.snap.Elapsed.Round(time.Millisecond), total)
}

func (m *interactiveModel) renderGauges() string {
	rows := []struct {
		label string
		value uint64
	}{
		{"clones", m.snap.Clones},
		{"locks ok", m.snap.LocksOK},
		{"locks gone", m.snap.LocksGone},
		{"inserts", m.snap.Inserts},
		{"drops", m.snap.Drops},
	}
	var max uint64 = 1
	for _, r := range rows {
		if r.value > max {
			max = r.value
		}
	}
	var b strings.Builder
	const width = 30
	for _, r := range rows {
		filled := int(float64(r.value) / float64(max) * width)
		bar := strings.Repeat("▇", filled)
		fmt.Fprintf(&b, "%-11s %s %d\n", labelStyle.Render(r.label), gaugeStyle.Render(bar), r.value)
	}
	if m.snap.CanaryBad > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("canary faults: %d\n", m.snap.CanaryBad)))
	}
	return b.String()
}

func runInteractive(initial stress.Scenario) error {
	p := tea.NewProgram(newInteractiveModel(initial), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
