// Package tui is a terminal front end that converts Singlish while it is
// being typed.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/samber/lo"
)

const maxHistory = 20

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	unresolvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

type entry struct {
	input  string
	output string
}

type Model struct {
	engine    *transliteration.Engine
	textInput textinput.Model
	result    transliteration.Result
	history   []entry
	width     int
}

func New(engine *transliteration.Engine) Model {
	ti := textinput.New()
	ti.Placeholder = "mama gedhara yanavaa"
	ti.Prompt = "› "
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 60

	return Model{engine: engine, textInput: ti}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.textInput.Value() == "" {
				return m, nil
			}
			m.history = append(m.history, entry{input: m.textInput.Value(), output: m.result.Output})
			if len(m.history) > maxHistory {
				m.history = m.history[len(m.history)-maxHistory:]
			}
			m.textInput.Reset()
			m.result = transliteration.Result{}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.textInput.Width = max(msg.Width-8, 10)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.result = m.engine.ConvertDetailed(m.textInput.Value())
	return m, cmd
}

// Output is the conversion of the text currently being typed.
func (m Model) Output() string {
	return m.result.Output
}

// History returns the submitted conversions, oldest first.
func (m Model) History() []string {
	return lo.Map(m.history, func(e entry, _ int) string { return e.output })
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Singlish → සිංහල"))
	s.WriteString("\n")

	for _, e := range m.history {
		s.WriteString(subtleStyle.Render(e.input))
		s.WriteString("\n")
		s.WriteString(outputStyle.Render(e.output))
		s.WriteString("\n\n")
	}

	s.WriteString(m.textInput.View())
	s.WriteString("\n")
	s.WriteString(boxStyle.Render(outputStyle.Render(m.result.Output)))
	s.WriteString("\n")

	if len(m.result.Unresolved) > 0 {
		words := lo.Uniq(lo.Map(m.result.Unresolved, func(sp transliteration.Span, _ int) string { return sp.Text }))
		s.WriteString(unresolvedStyle.Render("not converted: " + strings.Join(words, ", ")))
		s.WriteString("\n")
	}

	s.WriteString(subtleStyle.Render("enter: keep line • esc: quit"))
	s.WriteString("\n")
	return s.String()
}

// Run starts the interactive converter and blocks until the user quits.
func Run(engine *transliteration.Engine) error {
	_, err := tea.NewProgram(New(engine)).Run()
	return err
}
