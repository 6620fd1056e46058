package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"symbient/internal/command"
	"symbient/internal/engine"
)

func init() {
	command.Register(&ContextCommand{})
}

// ContextCommand shows what the assembler would hand to the scorer for the
// most recent message: snapshot participants, triggers and peer-agent
// presence. No scoring call is made.
type ContextCommand struct{}

func (c *ContextCommand) Name() string        { return "context" }
func (c *ContextCommand) Description() string { return "Show the assembled context for the last message" }
func (c *ContextCommand) Category() string    { return "Diagnostics" }
func (c *ContextCommand) RequireAdmin() bool  { return false }

func (c *ContextCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *ContextCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	msgs, err := sc.Session.ChannelMessages(sc.Event.ChannelID, sc.Config.HistoryDepth+1, "", "", "")
	if err != nil {
		return fmt.Errorf("fetch channel history: %w", err)
	}
	if len(msgs) == 0 {
		return command.RespondEphemeral(sc.Session, sc.Event, "No recent message found.")
	}

	selfID := sc.Session.State.User.ID
	target := toEngineMessage(msgs[0], selfID)
	var history []engine.Message
	for i := len(msgs) - 1; i >= 1; i-- {
		history = append(history, toEngineMessage(msgs[i], selfID))
	}

	snap, triggers := sc.Pipeline.Assembler.Assemble(target, history)

	runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var peers []engine.AgentPresence
	for _, id := range snap.PeerIDs() {
		peers = append(peers, sc.Pipeline.Status.PeerPresence(runCtx, id))
	}
	summary := sc.Pipeline.Status.Summary(runCtx, snap.PeerIDs())

	return command.RespondEmbedEphemeral(sc.Session, sc.Event, contextEmbed(target, snap, triggers, peers, summary))
}

func contextEmbed(target engine.Message, snap engine.ConversationSnapshot, triggers engine.TriggerSet, peers []engine.AgentPresence, summary string) *discordgo.MessageEmbed {
	participants := map[string]bool{}
	var names []string
	for _, m := range snap.Messages {
		name := m.Author
		if m.AuthorIsBot {
			name += " (agent)"
		}
		if !participants[name] {
			participants[name] = true
			names = append(names, name)
		}
	}
	participantLine := "none"
	if len(names) > 0 {
		participantLine = strings.Join(names, ", ")
	}

	triggerLine := "none"
	if !triggers.Empty() {
		var fired []string
		for _, tr := range []engine.Trigger{engine.TriggerMention, engine.TriggerNameVariant, engine.TriggerTopicKeyword, engine.TriggerBoredomKeyword} {
			if triggers.Has(tr) {
				fired = append(fired, string(tr))
			}
		}
		triggerLine = strings.Join(fired, ", ")
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Message", Value: truncate(target.Content, 180)},
		{Name: "Snapshot", Value: fmt.Sprintf("%d messages", len(snap.Messages)), Inline: true},
		{Name: "Participants", Value: participantLine, Inline: true},
		{Name: "Triggers", Value: triggerLine, Inline: true},
	}

	if len(peers) > 0 {
		var lines []string
		for _, p := range peers {
			lines = append(lines, fmt.Sprintf("%s: %s (refreshed %s ago)", p.PeerID, p.Status, time.Since(p.RefreshedAt).Round(time.Second)))
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Peer agents", Value: strings.Join(lines, "\n")})
	}
	if summary != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Availability", Value: summary})
	}

	return &discordgo.MessageEmbed{
		Title:  "Assembled context",
		Fields: fields,
	}
}
