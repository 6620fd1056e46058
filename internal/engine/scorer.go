package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"symbient/internal/ai"
	"symbient/internal/persona"
)

const (
	// Fallback scores keep a directly-addressed message from being silently
	// ignored during an external outage. Never 0.
	fallbackScoreMention = 5
	fallbackScoreOther   = 2

	promptHistoryDepth = 5
)

// Scorer issues at most one external scoring call per eligible message and
// parses the structured score/reasoning/activities result. Timeout, error or
// an unparseable reply all degrade to the deterministic fallback; nothing is
// retried, keeping worst-case latency bounded.
type Scorer struct {
	provider      ai.Provider
	persona       *persona.Persona
	timeout       time.Duration
	activityCount int
}

// NewScorer wires the external provider, the prompt persona, the call timeout
// and how many pivot activities to keep.
func NewScorer(provider ai.Provider, p *persona.Persona, timeout time.Duration, activityCount int) *Scorer {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	if activityCount < 1 {
		activityCount = 4
	}
	return &Scorer{provider: provider, persona: p, timeout: timeout, activityCount: activityCount}
}

// Score runs the single external evaluation. Callers must only invoke it for
// messages with a non-empty trigger set; the pipeline enforces that.
// peerSummary is the presence line from the StatusCoordinator, may be empty.
func (s *Scorer) Score(ctx context.Context, snap ConversationSnapshot, current Message, triggers TriggerSet, peerSummary string) EnthusiasmResult {
	prompt := s.buildPrompt(snap, current, triggers, peerSummary)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.provider.Generate(callCtx, []ai.Message{{Role: "user", Content: prompt}})
	if err != nil {
		log.Warn().Err(err).Str("channel", snap.ChannelID).Msg("scoring call failed, using fallback")
		return s.fallback(triggers)
	}

	res, err := s.parse(raw)
	if err != nil {
		log.Warn().Err(err).Str("channel", snap.ChannelID).Msg("scoring reply unparseable, using fallback")
		return s.fallback(triggers)
	}

	if !triggers.Has(TriggerBoredomKeyword) {
		res.Activities = nil
	}
	return res
}

// fallback is the deterministic degraded result used on any external failure.
func (s *Scorer) fallback(triggers TriggerSet) EnthusiasmResult {
	score := fallbackScoreOther
	if triggers.Has(TriggerMention) {
		score = fallbackScoreMention
	}
	return EnthusiasmResult{Score: score, Fallback: true}
}

func (s *Scorer) buildPrompt(snap ConversationSnapshot, current Message, triggers TriggerSet, peerSummary string) string {
	var b strings.Builder

	b.WriteString(s.persona.PromptHeader())
	b.WriteString("\n")

	if peerSummary != "" {
		b.WriteString("PEER AGENTS: ")
		b.WriteString(peerSummary)
		b.WriteString("\n")
	}

	b.WriteString("\nRECENT MESSAGES:\n")
	msgs := snap.Messages
	if len(msgs) > promptHistoryDepth {
		msgs = msgs[len(msgs)-promptHistoryDepth:]
	}
	for _, m := range msgs {
		who := m.Author
		if m.AuthorIsBot {
			who += " (agent)"
		}
		fmt.Fprintf(&b, "%s: %s\n", who, m.Content)
	}
	fmt.Fprintf(&b, "CURRENT: %s: %s\n", current.Author, current.Content)

	b.WriteString("\nKEY FACTORS:\n")
	fmt.Fprintf(&b, "- Direct mention of me: %v\n", triggers.Has(TriggerMention))
	fmt.Fprintf(&b, "- My name or alias used: %v\n", triggers.Has(TriggerNameVariant))
	fmt.Fprintf(&b, "- Topic matches my skills: %v\n", triggers.Has(TriggerTopicKeyword))
	fmt.Fprintf(&b, "- Conversation called boring: %v\n", triggers.Has(TriggerBoredomKeyword))

	b.WriteString(`
SCORING (0-9):
9: Direct @mention of me
7-8: Topic matches my skills, I haven't responded recently
4-6: Relevant but not urgent
1-3: Low relevance or I just responded
0: Someone else was addressed, or I'm irrelevant

Respond exactly as:
REASONING: [Brief analysis]
SCORE: [0-9]
ACTIVITIES: [4 activities, mundane to surreal]`)

	return b.String()
}

var scoreDigitRe = regexp.MustCompile(`(\d)`)

// parse extracts score, reasoning and activities from the structured textual
// reply. A reply without a SCORE line is malformed.
func (s *Scorer) parse(raw string) (EnthusiasmResult, error) {
	var res EnthusiasmResult
	scoreSeen := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "REASONING:"):
			res.Reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))
		case strings.HasPrefix(line, "SCORE:"):
			m := scoreDigitRe.FindString(strings.TrimPrefix(line, "SCORE:"))
			if m == "" {
				continue
			}
			res.Score = clampScore(int(m[0] - '0'))
			scoreSeen = true
		case strings.HasPrefix(line, "ACTIVITIES:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "ACTIVITIES:"))
			for _, a := range strings.Split(raw, ",") {
				if a = strings.TrimSpace(a); a != "" {
					res.Activities = append(res.Activities, a)
				}
			}
			if len(res.Activities) > s.activityCount {
				res.Activities = res.Activities[:s.activityCount]
			}
		}
	}

	if !scoreSeen {
		return EnthusiasmResult{}, fmt.Errorf("no score line in reply: %q", truncateForLog(raw, 120))
	}
	return res, nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 9 {
		return 9
	}
	return v
}

func truncateForLog(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
