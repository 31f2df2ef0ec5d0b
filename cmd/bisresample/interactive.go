package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bioimagesuiteweb/bisresample/module"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type formState int

const (
	stateEdit formState = iota
	stateDone
	stateCancelled
)

// formModel edits the parameters of a module description.
type formModel struct {
	err      error
	desc     *module.Description
	params   []module.Param
	inputs   []textinput.Model
	focusIdx int
	state    formState
}

func newFormModel(desc *module.Description, vals map[string]string) *formModel {
	m := &formModel{desc: desc, params: desc.Params}
	m.inputs = make([]textinput.Model, len(m.params))
	for i, p := range m.params {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%-18s", p.Name+": ")
		ti.Placeholder = fmt.Sprint(p.Default)
		ti.Width = 24
		if v, ok := vals[p.VarName]; ok {
			ti.SetValue(v)
		} else {
			ti.SetValue(fmt.Sprint(p.Default))
		}
		ti.CursorEnd()
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	return m
}

func (m *formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.state = stateCancelled
			return m, tea.Quit

		case "tab", "down":
			m.move(1)
			return m, nil

		case "shift+tab", "up":
			m.move(-1)
			return m, nil

		case "enter":
			if m.focusIdx < len(m.inputs)-1 {
				m.move(1)
				return m, nil
			}
			if _, err := module.ParseValues(m.desc, m.values()); err != nil {
				m.err = err
				return m, nil
			}
			m.state = stateDone
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
	return m, cmd
}

func (m *formModel) move(delta int) {
	if len(m.inputs) == 0 {
		return
	}
	m.inputs[m.focusIdx].Blur()
	m.focusIdx = (m.focusIdx + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focusIdx].Focus()
}

// values returns the edited parameters keyed by varname.
func (m *formModel) values() map[string]string {
	vals := make(map[string]string, len(m.inputs))
	for i, p := range m.params {
		vals[p.VarName] = strings.TrimSpace(m.inputs[i].Value())
	}
	return vals
}

func (m *formModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.desc.Name))
	b.WriteString(" ")
	b.WriteString(m.desc.Description)
	b.WriteString("\n\n")

	for i, p := range m.params {
		b.WriteString(m.inputs[i].View())
		b.WriteString(" ")
		hint := p.Type
		if len(p.RestrictAnswer) > 0 {
			hint = fmt.Sprintf("%s %v", p.Type, p.RestrictAnswer)
		}
		b.WriteString(typeStyle.Render(hint))
		if i == m.focusIdx {
			b.WriteString("  ")
			b.WriteString(nameStyle.Render(p.Description))
		}
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab/↓ next field • enter on last field run • esc cancel"))
	return b.String()
}

// runForm shows the parameter form. ok is false when the user cancelled.
func runForm(desc *module.Description, vals map[string]string) (map[string]string, bool, error) {
	final, err := tea.NewProgram(newFormModel(desc, vals)).Run()
	if err != nil {
		return nil, false, err
	}
	m := final.(*formModel)
	if m.state != stateDone {
		return nil, false, nil
	}
	return m.values(), true, nil
}
