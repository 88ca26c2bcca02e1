package wizard

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pipewright/internal/config"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle   = lipgloss.NewStyle().Faint(true)
)

// Model is the terminal shell around the wizard state machine.
type Model struct {
	state *State
	input textinput.Model
}

// NewModel builds the wizard UI.
func NewModel() Model {
	ti := textinput.New()
	ti.Placeholder = "Enter to skip"
	ti.Focus()
	ti.CharLimit = 200
	return Model{state: NewState(), input: ti}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.state.Cancelled = true
			m.state.Step = StepDone
			return m, tea.Quit
		case tea.KeyEnter:
			m.state.Apply(m.input.Value())
			m.input.SetValue("")
			if m.state.Done() {
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.state.Done() {
		return ""
	}
	view := titleStyle.Render("pipewright setup") + "\n\n" +
		promptStyle.Render(m.state.Prompt()) + "\n" +
		m.input.View() + "\n"
	if m.state.Err != "" {
		view += errStyle.Render(m.state.Err) + "\n"
	}
	view += hintStyle.Render("Esc to cancel") + "\n"
	return view
}

// Run drives the wizard to completion and returns the collected
// configuration, or nil when the user cancelled.
func Run() (*config.File, error) {
	final, err := tea.NewProgram(NewModel()).Run()
	if err != nil {
		return nil, fmt.Errorf("running wizard: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected wizard model %T", final)
	}
	return m.state.Result(), nil
}
