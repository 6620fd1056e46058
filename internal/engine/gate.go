package engine

import (
	"sync"
	"time"
)

// ResponseGate combines trigger, score, threshold and cooldown into the final
// respond/no-respond verdict. It owns the per-channel last-response
// timestamps; nothing else may touch them.
type ResponseGate struct {
	threshold int
	cooldown  time.Duration

	mu           sync.Mutex
	lastResponse map[string]time.Time
}

// NewResponseGate creates a gate. cooldown <= 0 disables cooldown entirely.
func NewResponseGate(threshold int, cooldown time.Duration) *ResponseGate {
	return &ResponseGate{
		threshold:    threshold,
		cooldown:     cooldown,
		lastResponse: make(map[string]time.Time),
	}
}

// Threshold returns the configured minimum score.
func (g *ResponseGate) Threshold() int { return g.threshold }

// Cooldown returns the configured per-channel minimum response interval.
func (g *ResponseGate) Cooldown() time.Duration { return g.cooldown }

// Decide evaluates the verdict for channelID at now. respond = mention OR
// score >= threshold, after cooldown: a channel that responded too recently
// is forced silent, except an explicit mention must never be dropped. Pivot
// activities ride along only on a responding boredom trigger; the gate never
// generates text itself.
func (g *ResponseGate) Decide(channelID string, triggers TriggerSet, result EnthusiasmResult, now time.Time) ResponseDecision {
	dec := ResponseDecision{
		Score:          result.Score,
		Threshold:      g.threshold,
		WinningTrigger: triggers.Winning(),
	}

	mention := triggers.Has(TriggerMention)
	dec.Respond = mention || result.Score >= g.threshold

	if dec.Respond && !mention && g.inCooldown(channelID, now) {
		dec.Respond = false
		dec.CooldownBlocked = true
	}

	if dec.Respond && triggers.Has(TriggerBoredomKeyword) && len(result.Activities) > 0 {
		dec.Activities = append([]string(nil), result.Activities...)
	}

	return dec
}

// RecordResponse marks a successful response in channelID. Call only after
// delivery succeeded; an aborted generation must not start a cooldown.
func (g *ResponseGate) RecordResponse(channelID string, at time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastResponse[channelID] = at
}

// LastResponse returns the last successful response time for a channel.
func (g *ResponseGate) LastResponse(channelID string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.lastResponse[channelID]
	return t, ok
}

func (g *ResponseGate) inCooldown(channelID string, now time.Time) bool {
	if g.cooldown <= 0 {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	last, ok := g.lastResponse[channelID]
	return ok && now.Sub(last) < g.cooldown
}
