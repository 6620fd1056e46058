package engine

import (
	"strings"

	"symbient/internal/persona"
)

// ContextAssembler builds the bounded conversation snapshot and the
// deterministic trigger signals for one message. Pure, no I/O.
type ContextAssembler struct {
	persona         *persona.Persona
	topics          []string
	boredomKeywords []string
	historyDepth    int
}

// NewContextAssembler wires trigger vocabulary and snapshot depth.
func NewContextAssembler(p *persona.Persona, topics, boredomKeywords []string, historyDepth int) *ContextAssembler {
	if historyDepth < 1 {
		historyDepth = 10
	}
	return &ContextAssembler{
		persona:         p,
		topics:          lowerAll(topics),
		boredomKeywords: lowerAll(boredomKeywords),
		historyDepth:    historyDepth,
	}
}

// Assemble returns the snapshot of the last K history messages and the
// trigger set for msg. Self-authored and DM messages are excluded from
// scoring entirely: they get an empty TriggerSet, which short-circuits the
// pipeline to no-respond before any external call.
func (a *ContextAssembler) Assemble(msg Message, history []Message) (ConversationSnapshot, TriggerSet) {
	snap := a.snapshot(msg, history)

	if msg.SelfAuthored || msg.DM {
		return snap, TriggerSet{}
	}

	triggers := TriggerSet{}

	// A platform-native mention is the distinguished trigger and bypasses
	// keyword matching entirely.
	if msg.MentionsSelf {
		triggers[TriggerMention] = true
		return snap, triggers
	}

	lower := strings.ToLower(msg.Content)

	if a.persona != nil && a.persona.NameMatches(lower) {
		triggers[TriggerNameVariant] = true
	}
	for _, topic := range a.topics {
		if strings.Contains(lower, topic) {
			triggers[TriggerTopicKeyword] = true
			break
		}
	}
	for _, kw := range a.boredomKeywords {
		if strings.Contains(lower, kw) {
			triggers[TriggerBoredomKeyword] = true
			break
		}
	}

	return snap, triggers
}

// snapshot keeps the most recent historyDepth messages up to and excluding
// the current one, oldest first.
func (a *ContextAssembler) snapshot(msg Message, history []Message) ConversationSnapshot {
	var kept []SnapshotMessage
	for _, h := range history {
		if h.ID != "" && h.ID == msg.ID {
			continue
		}
		kept = append(kept, SnapshotMessage{
			AuthorID:    h.AuthorID,
			Author:      h.Author,
			AuthorIsBot: h.AuthorIsBot,
			Content:     h.Content,
			At:          h.At,
		})
	}
	if len(kept) > a.historyDepth {
		kept = kept[len(kept)-a.historyDepth:]
	}
	return ConversationSnapshot{ChannelID: msg.ChannelID, Messages: kept}
}

func lowerAll(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
