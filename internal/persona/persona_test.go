package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbient/internal/config"
)

func TestLoadInlinePersonality(t *testing.T) {
	p, err := Load(&config.Config{
		BotName:      "Splash",
		NameVariants: []string{" splashy ", "", "paintbot"},
		Skills:       []string{"art"},
		Personality:  "  a painter  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Splash", p.Name)
	assert.Equal(t, []string{"splashy", "paintbot"}, p.Variants)
	assert.Equal(t, "a painter", p.Personality)
}

func TestLoadPersonalityFileWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file\n"), 0o644))

	p, err := Load(&config.Config{
		BotName:         "Splash",
		Personality:     "inline",
		PersonalityFile: path,
	})
	require.NoError(t, err)
	assert.Equal(t, "from file", p.Personality)
}

func TestLoadMissingPersonalityFileErrors(t *testing.T) {
	_, err := Load(&config.Config{
		BotName:         "Splash",
		PersonalityFile: filepath.Join(t.TempDir(), "nope.txt"),
	})
	assert.Error(t, err)
}

func TestLoadDefaultPersonalityByName(t *testing.T) {
	p, err := Load(&config.Config{BotName: "DataDog"})
	require.NoError(t, err)
	assert.Contains(t, p.Personality, "data analyst")

	p, err = Load(&config.Config{BotName: "Splash"})
	require.NoError(t, err)
	assert.Contains(t, p.Personality, "artist")

	p, err = Load(&config.Config{BotName: "Whiskers"})
	require.NoError(t, err)
	assert.Contains(t, p.Personality, "cat")
}

func TestNameMatches(t *testing.T) {
	p := &Persona{Name: "Splash", Variants: []string{"splashy", "bot"}}

	assert.True(t, p.NameMatches("hey SPLASH, what's up"))
	assert.True(t, p.NameMatches("ask the bot"))
	assert.False(t, p.NameMatches("nice weather today"))
}

func TestPromptHeader(t *testing.T) {
	p := &Persona{Name: "Splash", Personality: "a painter", Skills: []string{"art", "color theory"}}

	h := p.PromptHeader()
	assert.Contains(t, h, "You are Splash in a group chat conversation.")
	assert.Contains(t, h, "PERSONALITY: a painter")
	assert.Contains(t, h, "SKILLS: art, color theory")

	bare := &Persona{Name: "Splash", Personality: "a painter"}
	assert.Contains(t, bare.PromptHeader(), "SKILLS: General conversation")
}
