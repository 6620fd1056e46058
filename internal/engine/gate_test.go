package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecideThreshold(t *testing.T) {
	g := NewResponseGate(5, 0)
	now := time.Now()

	dec := g.Decide("c", TriggerSet{TriggerTopicKeyword: true}, EnthusiasmResult{Score: 4}, now)
	assert.False(t, dec.Respond)

	dec = g.Decide("c", TriggerSet{TriggerTopicKeyword: true}, EnthusiasmResult{Score: 5}, now)
	assert.True(t, dec.Respond)

	dec = g.Decide("c", TriggerSet{TriggerTopicKeyword: true}, EnthusiasmResult{Score: 9}, now)
	assert.True(t, dec.Respond)
}

func TestDecideMentionBelowThresholdStillResponds(t *testing.T) {
	g := NewResponseGate(5, 0)

	dec := g.Decide("c", TriggerSet{TriggerMention: true}, EnthusiasmResult{Score: 1}, time.Now())

	assert.True(t, dec.Respond)
	assert.Equal(t, TriggerMention, dec.WinningTrigger)
}

func TestDecideCooldownBlocksNonMention(t *testing.T) {
	g := NewResponseGate(5, 30*time.Second)
	now := time.Now()

	g.RecordResponse("c", now)

	dec := g.Decide("c", TriggerSet{TriggerTopicKeyword: true}, EnthusiasmResult{Score: 8}, now.Add(10*time.Second))
	assert.False(t, dec.Respond)
	assert.True(t, dec.CooldownBlocked)

	dec = g.Decide("c", TriggerSet{TriggerTopicKeyword: true}, EnthusiasmResult{Score: 8}, now.Add(31*time.Second))
	assert.True(t, dec.Respond)
	assert.False(t, dec.CooldownBlocked)
}

func TestDecideMentionOverridesCooldown(t *testing.T) {
	g := NewResponseGate(5, 30*time.Second)
	now := time.Now()

	g.RecordResponse("c", now)

	dec := g.Decide("c", TriggerSet{TriggerMention: true}, EnthusiasmResult{Score: 9}, now.Add(time.Second))
	assert.True(t, dec.Respond)
	assert.False(t, dec.CooldownBlocked)
}

func TestDecideCooldownPerChannel(t *testing.T) {
	g := NewResponseGate(5, 30*time.Second)
	now := time.Now()

	g.RecordResponse("a", now)

	dec := g.Decide("b", TriggerSet{TriggerTopicKeyword: true}, EnthusiasmResult{Score: 8}, now.Add(time.Second))
	assert.True(t, dec.Respond)
}

func TestDecideActivitiesOnlyWithRespondingBoredom(t *testing.T) {
	g := NewResponseGate(5, 0)
	now := time.Now()
	activities := []string{"bake bread", "stargaze"}

	dec := g.Decide("c", TriggerSet{TriggerBoredomKeyword: true}, EnthusiasmResult{Score: 7, Activities: activities}, now)
	assert.Equal(t, activities, dec.Activities)

	// Below threshold: no respond, no pivot.
	dec = g.Decide("c", TriggerSet{TriggerBoredomKeyword: true}, EnthusiasmResult{Score: 3, Activities: activities}, now)
	assert.False(t, dec.Respond)
	assert.Nil(t, dec.Activities)

	// Responding but no boredom trigger: activities dropped.
	dec = g.Decide("c", TriggerSet{TriggerTopicKeyword: true}, EnthusiasmResult{Score: 7, Activities: activities}, now)
	assert.True(t, dec.Respond)
	assert.Nil(t, dec.Activities)
}

func TestLastResponseRecorded(t *testing.T) {
	g := NewResponseGate(5, time.Minute)
	now := time.Now()

	_, ok := g.LastResponse("c")
	assert.False(t, ok)

	g.RecordResponse("c", now)
	got, ok := g.LastResponse("c")
	assert.True(t, ok)
	assert.Equal(t, now, got)
}

func TestDecideZeroCooldownNeverBlocks(t *testing.T) {
	g := NewResponseGate(5, 0)
	now := time.Now()

	g.RecordResponse("c", now)

	dec := g.Decide("c", TriggerSet{TriggerTopicKeyword: true}, EnthusiasmResult{Score: 8}, now)
	assert.True(t, dec.Respond)
}
