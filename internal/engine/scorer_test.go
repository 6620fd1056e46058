package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbient/internal/ai"
)

// stubProvider returns a canned reply or error and counts calls.
type stubProvider struct {
	reply string
	err   error
	calls atomic.Int64
}

func (s *stubProvider) Generate(ctx context.Context, messages []ai.Message) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestScorer(p ai.Provider) *Scorer {
	return NewScorer(p, testPersona(), time.Second, 4)
}

func TestScoreParsesStructuredReply(t *testing.T) {
	provider := &stubProvider{reply: "REASONING: directly asked about python\nSCORE: 7\nACTIVITIES: chess, karaoke"}
	s := newTestScorer(provider)

	res := s.Score(context.Background(), ConversationSnapshot{ChannelID: "c"}, Message{Content: "python?"}, TriggerSet{TriggerTopicKeyword: true}, "")

	assert.Equal(t, 7, res.Score)
	assert.Equal(t, "directly asked about python", res.Reasoning)
	assert.False(t, res.Fallback)
	// Activities only survive a boredom trigger.
	assert.Nil(t, res.Activities)
}

func TestScoreKeepsActivitiesOnBoredomTrigger(t *testing.T) {
	provider := &stubProvider{reply: "REASONING: chat is stale\nSCORE: 6\nACTIVITIES: bake bread, stargaze, invent a holiday, argue with a mirror, extra one"}
	s := newTestScorer(provider)

	res := s.Score(context.Background(), ConversationSnapshot{}, Message{}, TriggerSet{TriggerBoredomKeyword: true}, "")

	require.Len(t, res.Activities, 4)
	assert.Equal(t, "bake bread", res.Activities[0])
}

func TestScoreFallbackOnProviderError(t *testing.T) {
	s := newTestScorer(&stubProvider{err: errors.New("connection refused")})

	res := s.Score(context.Background(), ConversationSnapshot{}, Message{}, TriggerSet{TriggerTopicKeyword: true}, "")
	assert.True(t, res.Fallback)
	assert.Equal(t, fallbackScoreOther, res.Score)

	res = s.Score(context.Background(), ConversationSnapshot{}, Message{}, TriggerSet{TriggerMention: true}, "")
	assert.True(t, res.Fallback)
	assert.Equal(t, fallbackScoreMention, res.Score)
	assert.NotZero(t, res.Score, "fallback must never silence a triggered message with a zero")
}

func TestScoreFallbackOnUnparseableReply(t *testing.T) {
	s := newTestScorer(&stubProvider{reply: "sure, happy to help!"})

	res := s.Score(context.Background(), ConversationSnapshot{}, Message{}, TriggerSet{TriggerNameVariant: true}, "")

	assert.True(t, res.Fallback)
	assert.Equal(t, fallbackScoreOther, res.Score)
}

func TestParseScoreVariants(t *testing.T) {
	s := newTestScorer(&stubProvider{})

	res, err := s.parse("SCORE: 9")
	require.NoError(t, err)
	assert.Equal(t, 9, res.Score)

	res, err = s.parse("REASONING: meh\nSCORE: [3]\n")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Score)

	_, err = s.parse("REASONING: no score here")
	assert.Error(t, err)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-2))
	assert.Equal(t, 9, clampScore(12))
	assert.Equal(t, 5, clampScore(5))
}

func TestBuildPromptIncludesPeersAndFactors(t *testing.T) {
	s := newTestScorer(&stubProvider{})

	snap := ConversationSnapshot{
		ChannelID: "c",
		Messages: []SnapshotMessage{
			{Author: "alice", Content: "anyone around?"},
			{Author: "datadog", AuthorIsBot: true, Content: "beep"},
		},
	}
	prompt := s.buildPrompt(snap, Message{Author: "alice", Content: "splash?"}, TriggerSet{TriggerNameVariant: true}, "1 available, 0 busy (datadog:online)")

	assert.Contains(t, prompt, "PEER AGENTS: 1 available")
	assert.Contains(t, prompt, "datadog (agent): beep")
	assert.Contains(t, prompt, "CURRENT: alice: splash?")
	assert.Contains(t, prompt, "My name or alias used: true")
	assert.Contains(t, prompt, "Direct mention of me: false")
}
