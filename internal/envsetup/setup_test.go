package envsetup

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(m model, msgs ...tea.Msg) (model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(model)
	}
	return m, cmd
}

func typed(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func TestWizardWritesEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.True(t, NeedsSetup(path))

	m, cmd := send(newModel(path),
		enter,
		typed("token-abcdefgh-1234"), enter,
		typed("guild-1"), enter,
		enter,
		enter,
	)
	require.NotNil(t, cmd)
	assert.Equal(t, stepDone, m.step)
	assert.False(t, NeedsSetup(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "DISCORD_TOKEN=token-abcdefgh-1234\nGUILD_ID=guild-1\nDATABASE_URL=sqlite://singlish.db\n", string(data))
}

func TestWizardValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	m, _ := send(newModel(path), enter, enter)
	assert.Equal(t, stepDiscord, m.step)
	assert.EqualError(t, m.err, "Discord token is required")

	m, _ = send(m, typed("tok"), enter, enter, typed("mysql://x"), enter)
	assert.Equal(t, stepDatabase, m.step)
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "sqlite://")
}

func TestWizardRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	m, _ := send(newModel(path), enter, typed("tok"), enter, enter, enter, typed("n"), enter)
	assert.Equal(t, stepWelcome, m.step)
	assert.Empty(t, m.discordToken)
	assert.True(t, NeedsSetup(path))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("abcd"))
	assert.Equal(t, "abcd****mnop", maskToken("abcdefghmnop"))
}
