package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbient/internal/engine"
)

func TestContextEmbedRendersSnapshotAndPeers(t *testing.T) {
	snap := engine.ConversationSnapshot{
		ChannelID: "c",
		Messages: []engine.SnapshotMessage{
			{AuthorID: "u1", Author: "alice", Content: "anyone around?"},
			{AuthorID: "b1", Author: "datadog", AuthorIsBot: true, Content: "beep"},
			{AuthorID: "u1", Author: "alice", Content: "hello?"},
		},
	}
	triggers := engine.TriggerSet{engine.TriggerNameVariant: true, engine.TriggerTopicKeyword: true}
	peers := []engine.AgentPresence{
		{PeerID: "b1", Status: engine.StatusOnline, RefreshedAt: time.Now()},
	}

	embed := contextEmbed(engine.Message{Content: "splash, python question"}, snap, triggers, peers, "1 available, 0 busy (b1:online)")

	byName := map[string]string{}
	for _, f := range embed.Fields {
		byName[f.Name] = f.Value
	}

	assert.Equal(t, "3 messages", byName["Snapshot"])
	// Duplicate authors collapse; agents are tagged.
	assert.Equal(t, "alice, datadog (agent)", byName["Participants"])
	assert.Equal(t, "name_variant, topic_keyword", byName["Triggers"])
	require.Contains(t, byName, "Peer agents")
	assert.Contains(t, byName["Peer agents"], "b1: online")
	assert.Equal(t, "1 available, 0 busy (b1:online)", byName["Availability"])
}

func TestContextEmbedEmptySnapshot(t *testing.T) {
	embed := contextEmbed(engine.Message{Content: "hi"}, engine.ConversationSnapshot{}, engine.TriggerSet{}, nil, "")

	byName := map[string]string{}
	for _, f := range embed.Fields {
		byName[f.Name] = f.Value
	}

	assert.Equal(t, "0 messages", byName["Snapshot"])
	assert.Equal(t, "none", byName["Participants"])
	assert.Equal(t, "none", byName["Triggers"])
	assert.NotContains(t, byName, "Peer agents")
	assert.NotContains(t, byName, "Availability")
}
