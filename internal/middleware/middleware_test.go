package middleware

import (
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbient/internal/command"
	"symbient/internal/storage"
)

type noopCommand struct {
	ran bool
}

func (c *noopCommand) Name() string           { return "noop" }
func (c *noopCommand) Description() string    { return "does nothing" }
func (c *noopCommand) Category() string       { return "Test" }
func (c *noopCommand) RequireAdmin() bool     { return false }
func (c *noopCommand) Run(ctx interface{}) error {
	c.ran = true
	return nil
}

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestApplyWrapsLeftInnermost(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(cmd command.Command) command.Command {
			return &wrappedCommand{Command: cmd, wrap: func(ctx interface{}) error {
				order = append(order, name)
				return cmd.Run(ctx)
			}}
		}
	}

	cmd := &noopCommand{}
	wrapped := Apply(cmd, tag("inner"), tag("outer"))
	require.NoError(t, wrapped.Run(nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.True(t, cmd.ran)
}

func TestCommandLoggerSkippedWhenOuterRejects(t *testing.T) {
	store := newTestStorage(t)

	// Stand-in for a gate like guild-only that swallows the invocation.
	reject := Middleware(func(cmd command.Command) command.Command {
		return &wrappedCommand{Command: cmd, wrap: func(ctx interface{}) error {
			return nil
		}}
	})

	cmd := &noopCommand{}
	wrapped := Apply(cmd, WithCommandLogger(), reject)

	sc := &command.SlashContext{
		Storage: store,
		Event:   &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}},
	}
	require.NoError(t, wrapped.Run(sc))

	assert.False(t, cmd.ran)
	history, err := store.FetchCommandHistory()
	require.NoError(t, err)
	assert.Empty(t, history, "rejected invocations must not reach the audit trail")
}

func TestCommandLoggerRecordsExecutedCommand(t *testing.T) {
	store := newTestStorage(t)

	cmd := &noopCommand{}
	wrapped := Apply(cmd, WithCommandLogger())

	sc := &command.SlashContext{
		Storage: store,
		Event: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			GuildID:   "g",
			ChannelID: "c",
			Member:    &discordgo.Member{User: &discordgo.User{ID: "u", Username: "alice"}},
		}},
	}
	require.NoError(t, wrapped.Run(sc))

	assert.True(t, cmd.ran)
	history, err := store.FetchCommandHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "noop", history[0].Command)
	assert.Equal(t, "alice", history[0].Username)
}
