package engine

import "time"

// Trigger is a deterministic signal derived from message text that makes a
// message eligible for scoring.
type Trigger string

const (
	TriggerMention        Trigger = "mention"
	TriggerNameVariant    Trigger = "name_variant"
	TriggerTopicKeyword   Trigger = "topic_keyword"
	TriggerBoredomKeyword Trigger = "boredom_keyword"
)

// triggerPrecedence orders triggers most-specific first, for reporting only.
var triggerPrecedence = []Trigger{
	TriggerMention,
	TriggerNameVariant,
	TriggerTopicKeyword,
	TriggerBoredomKeyword,
}

// TriggerSet is the subset of triggers a message fired.
type TriggerSet map[Trigger]bool

func (ts TriggerSet) Has(t Trigger) bool { return ts[t] }

func (ts TriggerSet) Empty() bool { return len(ts) == 0 }

// Winning returns the most specific fired trigger, or "" for an empty set.
// It never changes the respond outcome.
func (ts TriggerSet) Winning() Trigger {
	for _, t := range triggerPrecedence {
		if ts[t] {
			return t
		}
	}
	return ""
}

// Message is one chat-platform message as seen by the pipeline.
type Message struct {
	ID           string
	ChannelID    string
	AuthorID     string
	Author       string
	AuthorIsBot  bool
	Content      string
	At           time.Time
	MentionsSelf bool // platform-native mention of this agent
	SelfAuthored bool
	DM           bool
}

// SnapshotMessage is one history entry inside a ConversationSnapshot.
type SnapshotMessage struct {
	AuthorID    string
	Author      string
	AuthorIsBot bool // author is a known peer agent
	Content     string
	At          time.Time
}

// ConversationSnapshot is a bounded, read-only view of the last K messages
// for a channel, oldest first, excluding the current message. Rebuilt per
// decision, never mutated after construction.
type ConversationSnapshot struct {
	ChannelID string
	Messages  []SnapshotMessage
}

// PeerIDs returns author IDs of peer agents present in the snapshot, deduped.
func (s ConversationSnapshot) PeerIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range s.Messages {
		if m.AuthorIsBot && m.AuthorID != "" && !seen[m.AuthorID] {
			seen[m.AuthorID] = true
			ids = append(ids, m.AuthorID)
		}
	}
	return ids
}

// EnthusiasmResult is the outcome of the single external scoring call, or its
// deterministic fallback. Produced at most once per message.
type EnthusiasmResult struct {
	Score      int    // always in [0,9]
	Reasoning  string
	Activities []string // pivot suggestions, only with a boredom trigger
	Fallback   bool
}

// PresenceStatus is a peer agent's externally observable availability.
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusIdle    PresenceStatus = "idle"
	StatusDND     PresenceStatus = "dnd"
	StatusOffline PresenceStatus = "offline"
	StatusUnknown PresenceStatus = "unknown"
)

// AgentPresence is one cached peer presence entry.
type AgentPresence struct {
	PeerID      string
	Status      PresenceStatus
	RefreshedAt time.Time
	TTL         time.Duration
}

// Stale reports whether the entry must be refreshed before use.
func (p AgentPresence) Stale(now time.Time) bool {
	return now.Sub(p.RefreshedAt) >= p.TTL
}

// ResponseDecision is the final respond/no-respond verdict. Fully determined
// by trigger set, score, threshold and cooldown state.
type ResponseDecision struct {
	Respond         bool
	Score           int
	Threshold       int
	WinningTrigger  Trigger
	Activities      []string // attached for the downstream generator on topic pivot
	CooldownBlocked bool
}

// Outcome is everything one pipeline pass produced, for delivery and for the
// diagnostic probe command.
type Outcome struct {
	TraceID  string
	Admitted bool
	Snapshot ConversationSnapshot
	Triggers TriggerSet
	Result   *EnthusiasmResult // nil when scoring never ran
	Decision ResponseDecision
}
