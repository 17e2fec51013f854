package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-capabilities/capability"
	"github.com/wippyai/wasm-capabilities/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	nsStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type funcInfo struct {
	name   string
	params int
}

type interactiveModel struct {
	err       error
	session   *session
	module    *runtime.Module
	instances []*runtime.Instance
	current   int // index of the active instance
	filename  string
	result    string
	funcs     []funcInfo
	inputs    []textinput.Model
	selected  int
	focusIdx  int
	seed      int64
	state     modelState
}

func newInteractiveModel(filename string, seed int64) *interactiveModel {
	return &interactiveModel{filename: filename, seed: seed, state: stateSelectFunc}
}

type loadedMsg struct {
	err     error
	session *session
	mod     *runtime.Module
	funcs   []funcInfo
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *interactiveModel) loadModule() tea.Msg {
	ctx := context.Background()

	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	s, err := newSession(ctx, m.seed)
	if err != nil {
		return loadedMsg{err: err}
	}

	mod, err := s.rt.Load(ctx, data)
	if err != nil {
		s.rt.Close(ctx)
		return loadedMsg{err: err}
	}

	var funcs []funcInfo
	for name, def := range mod.FunctionDefinitions() {
		funcs = append(funcs, funcInfo{name: name, params: len(def.ParamTypes())})
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].name < funcs[j].name })

	return loadedMsg{funcs: funcs, session: s, mod: mod}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			ctx := context.Background()
			for _, inst := range m.instances {
				inst.Close(ctx)
			}
			if m.session != nil {
				m.session.rt.Close(ctx)
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "n":
			if m.state == stateSelectFunc && m.module != nil {
				if inst, err := m.module.Instantiate(context.Background()); err == nil {
					m.instances = append(m.instances, inst)
					m.current = len(m.instances) - 1
				} else {
					m.err = err
				}
			}

		case "left", "h":
			if m.state == stateSelectFunc && m.current > 0 {
				m.current--
			}

		case "right", "l":
			if m.state == stateSelectFunc && m.current < len(m.instances)-1 {
				m.current++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					break
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.funcs = msg.funcs
		m.session = msg.session
		m.module = msg.mod

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
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

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, f.params)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = "u64"
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 24
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callFunction() tea.Msg {
	ctx := context.Background()

	if len(m.instances) == 0 {
		if m.module == nil {
			return callResultMsg{err: fmt.Errorf("module not loaded")}
		}
		inst, err := m.module.Instantiate(ctx)
		if err != nil {
			return callResultMsg{err: err}
		}
		m.instances = append(m.instances, inst)
		m.current = 0
	}

	f := m.funcs[m.selected]
	args := make([]uint64, len(m.inputs))
	for i, input := range m.inputs {
		v, err := strconv.ParseUint(strings.TrimSpace(input.Value()), 10, 64)
		if err != nil && input.Value() != "" {
			return callResultMsg{err: fmt.Errorf("arg%d: %w", i, err)}
		}
		args[i] = v
	}

	results, err := m.instances[m.current].Call(ctx, f.name, args...)
	if err != nil {
		return callResultMsg{err: err}
	}

	return callResultMsg{result: fmt.Sprintf("%v", results)}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.module == nil {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Capability Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString(m.viewInstances())

		b.WriteString("Exported functions:\n\n")
		if len(m.funcs) == 0 {
			b.WriteString(helpStyle.Render("  (none)"))
			b.WriteString("\n")
		}
		for i, f := range m.funcs {
			line := fmt.Sprintf("%s/%d", funcStyle.Render(f.name), f.params)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.viewCapabilities())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • n new instance • ←/→ switch instance • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s on instance %d\n\n", funcStyle.Render(f.name), m.current))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s on instance %d:\n\n", funcStyle.Render(f.name), m.current))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(m.viewInstanceState())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) viewInstances() string {
	var b strings.Builder
	b.WriteString("Instances: ")
	if len(m.instances) == 0 {
		b.WriteString(helpStyle.Render("(none yet; first call creates one)"))
	}
	for i := range m.instances {
		label := fmt.Sprintf("[%d]", i)
		if i == m.current {
			b.WriteString(selectedStyle.Render(label))
		} else {
			b.WriteString(label)
		}
		b.WriteString(" ")
	}
	b.WriteString("\n\n")
	return b.String()
}

func (m *interactiveModel) viewCapabilities() string {
	var b strings.Builder
	b.WriteString("Capabilities:\n")
	for _, ns := range m.session.rt.Linker().Namespaces() {
		b.WriteString("  ")
		b.WriteString(nsStyle.Render(ns.FullPath()))
		b.WriteString(" (")
		b.WriteString(strings.Join(ns.FuncNames(), ", "))
		b.WriteString(")\n")
	}
	return b.String()
}

func (m *interactiveModel) viewInstanceState() string {
	if len(m.instances) == 0 {
		return ""
	}
	inst := m.instances[m.current]

	var b strings.Builder
	kvState := capability.GetOrInsert(inst.Store(), m.session.kvHandle)
	b.WriteString(fmt.Sprintf("Instance %d state: kv entries=%d", m.current, kvState.Len()))

	keys := kvState.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		v, _ := kvState.Get(k)
		b.WriteString(fmt.Sprintf("\n  %s = %s", k, v))
	}

	logState := capability.GetOrInsert(inst.Store(), m.session.logH)
	b.WriteString(fmt.Sprintf("\nguest log records: %d\n", len(logState.Entries())))
	return b.String()
}

func runInteractive(filename string, seed int64) error {
	p := tea.NewProgram(newInteractiveModel(filename, seed), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
