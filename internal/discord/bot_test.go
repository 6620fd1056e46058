package discord

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbient/internal/engine"
)

func TestSplitMessageShort(t *testing.T) {
	chunks := splitMessage("hello", 2000)
	assert.Equal(t, []string{"hello"}, chunks)
}

func TestSplitMessagePrefersNewlines(t *testing.T) {
	text := strings.Repeat("line one\n", 300)
	chunks := splitMessage(text, 2000)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 2000)
	}
	// Nothing lost apart from the boundary newlines.
	joined := strings.Join(chunks, "\n")
	assert.Equal(t, strings.TrimRight(text, "\n"), strings.TrimRight(joined, "\n"))
}

func TestSplitMessageHardCutWithoutNewlines(t *testing.T) {
	text := strings.Repeat("a", 4100)
	chunks := splitMessage(text, 2000)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2000)
	assert.Len(t, chunks[1], 2000)
	assert.Len(t, chunks[2], 100)
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, engine.StatusOnline, mapStatus(discordgo.StatusOnline))
	assert.Equal(t, engine.StatusIdle, mapStatus(discordgo.StatusIdle))
	assert.Equal(t, engine.StatusDND, mapStatus(discordgo.StatusDoNotDisturb))
	assert.Equal(t, engine.StatusOffline, mapStatus(discordgo.StatusOffline))
	assert.Equal(t, engine.StatusOffline, mapStatus(discordgo.StatusInvisible))
	assert.Equal(t, engine.StatusUnknown, mapStatus(discordgo.Status("weird")))
}

func TestToEngineMessage(t *testing.T) {
	m := &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   "hey there",
		Author:    &discordgo.User{ID: "u1", Username: "alice", Bot: false},
		Mentions:  []*discordgo.User{{ID: "self"}},
	}

	msg := toEngineMessage(m, "self")
	assert.True(t, msg.MentionsSelf)
	assert.False(t, msg.SelfAuthored)
	assert.False(t, msg.DM)
	assert.Equal(t, "alice", msg.Author)

	own := toEngineMessage(&discordgo.Message{
		ID: "m2", ChannelID: "c1",
		Author: &discordgo.User{ID: "self", Username: "me", Bot: true},
	}, "self")
	assert.True(t, own.SelfAuthored)
	assert.False(t, own.MentionsSelf)
	assert.True(t, own.DM, "no guild id means direct message")
}
