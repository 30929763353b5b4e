// envsetup provides a lightweight .env configuration wizard.
// It runs on first bot startup when no .env file exists and collects the
// Discord credentials and the database the bot shares with the web service.
package envsetup

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultDatabaseURL = "sqlite://singlish.db"

type step int

const (
	stepWelcome step = iota
	stepDiscord
	stepGuild
	stepDatabase
	stepConfirm
	stepDone
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type model struct {
	path         string
	step         step
	discordToken string
	guildID      string
	databaseURL  string
	input        textinput.Model
	err          error
}

func newModel(path string) model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60
	return model{path: path, step: stepWelcome, input: ti}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleEnter()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	m.err = nil
	value := strings.TrimSpace(m.input.Value())

	switch m.step {
	case stepWelcome:
		m.next(stepDiscord, true)

	case stepDiscord:
		if value == "" {
			m.err = errors.New("Discord token is required")
			return m, nil
		}
		m.discordToken = value
		m.next(stepGuild, false)

	case stepGuild:
		m.guildID = value
		m.next(stepDatabase, false)

	case stepDatabase:
		if value == "" {
			value = defaultDatabaseURL
		}
		if !strings.HasPrefix(value, "sqlite://") && !strings.HasPrefix(value, "postgres://") && !strings.HasPrefix(value, "postgresql://") {
			m.err = errors.New("database URL must start with sqlite:// or postgres://")
			return m, nil
		}
		m.databaseURL = value
		m.next(stepConfirm, false)

	case stepConfirm:
		switch strings.ToLower(value) {
		case "", "y", "yes":
			if err := m.writeEnvFile(); err != nil {
				m.err = err
				return m, nil
			}
			m.step = stepDone
			return m, tea.Quit
		case "n", "no":
			m = newModel(m.path)
		}
	}

	return m, nil
}

func (m *model) next(s step, masked bool) {
	m.step = s
	m.input.Reset()
	if masked {
		m.input.EchoMode = textinput.EchoPassword
	} else {
		m.input.EchoMode = textinput.EchoNormal
	}
}

func (m model) writeEnvFile() error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DISCORD_TOKEN=%s\n", m.discordToken)
	if m.guildID != "" {
		fmt.Fprintf(&sb, "GUILD_ID=%s\n", m.guildID)
	}
	fmt.Fprintf(&sb, "DATABASE_URL=%s\n", m.databaseURL)
	return os.WriteFile(m.path, []byte(sb.String()), 0600)
}

func (m model) View() string {
	var s strings.Builder

	switch m.step {
	case stepWelcome:
		s.WriteString(titleStyle.Render("Singlish Bot - Env Setup"))
		s.WriteString("\n\n")
		s.WriteString("This wizard will help you configure the bot.\n")
		s.WriteString("You'll need a Discord bot token.\n\n")
		s.WriteString(dimStyle.Render("Press Enter to continue, Esc to exit"))

	case stepDiscord:
		s.WriteString(titleStyle.Render("Step 1: Discord Bot Token"))
		s.WriteString("\n\n")
		s.WriteString("  1. Go to " + linkStyle.Render("https://discord.com/developers/applications") + "\n")
		s.WriteString("  2. Create a new application (or select existing)\n")
		s.WriteString("  3. In the Bot section click 'Reset Token'\n\n")
		s.WriteString(labelStyle.Render("Paste your Discord token here:"))
		s.WriteString("\n" + m.input.View())

	case stepGuild:
		s.WriteString(titleStyle.Render("Step 2: Guild ID (optional)"))
		s.WriteString("\n\n")
		s.WriteString("Commands registered to one guild show up instantly.\n")
		s.WriteString("Leave empty to register /sinhala globally.\n\n")
		s.WriteString(labelStyle.Render("Guild ID:"))
		s.WriteString("\n" + m.input.View())

	case stepDatabase:
		s.WriteString(titleStyle.Render("Step 3: Database"))
		s.WriteString("\n\n")
		s.WriteString("Passthrough words added through the web service are loaded from here.\n\n")
		s.WriteString(labelStyle.Render("Database URL [" + defaultDatabaseURL + "]:"))
		s.WriteString("\n" + m.input.View())

	case stepConfirm, stepDone:
		s.WriteString(titleStyle.Render("Configuration Complete"))
		s.WriteString("\n\n")
		s.WriteString("  Discord:  " + successStyle.Render(maskToken(m.discordToken)) + "\n")
		s.WriteString("  Guild:    " + successStyle.Render(orDefault(m.guildID, "global")) + "\n")
		s.WriteString("  Database: " + successStyle.Render(m.databaseURL) + "\n\n")
		s.WriteString(labelStyle.Render("Save this configuration? [Y/n]:"))
		s.WriteString("\n" + m.input.View())
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	s.WriteString("\n")
	return s.String()
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// Run starts the setup wizard writing to path and returns true if the file
// was written.
func Run(path string) (bool, error) {
	finalModel, err := tea.NewProgram(newModel(path)).Run()
	if err != nil {
		return false, err
	}
	return finalModel.(model).step == stepDone, nil
}

// NeedsSetup reports whether path does not exist yet.
func NeedsSetup(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, os.ErrNotExist)
}
