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
	command.Register(&ProbeCommand{})
}

// ProbeCommand runs the decision pipeline against the most recent channel
// message without generating or delivering anything.
type ProbeCommand struct{}

func (c *ProbeCommand) Name() string        { return "probe" }
func (c *ProbeCommand) Description() string { return "Dry-run the response decision on the last message" }
func (c *ProbeCommand) Category() string    { return "Diagnostics" }
func (c *ProbeCommand) RequireAdmin() bool  { return false }

func (c *ProbeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *ProbeCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	// The scoring call can exceed the interaction deadline, so ack first.
	if err := command.DeferEphemeral(sc.Session, sc.Event); err != nil {
		return fmt.Errorf("ack interaction: %w", err)
	}

	msgs, err := sc.Session.ChannelMessages(sc.Event.ChannelID, sc.Config.HistoryDepth+1, "", "", "")
	if err != nil {
		return command.FollowupEphemeral(sc.Session, sc.Event, fmt.Sprintf("Failed to fetch channel history: %v", err))
	}
	if len(msgs) == 0 {
		return command.FollowupEphemeral(sc.Session, sc.Event, "No recent message found to probe.")
	}

	selfID := sc.Session.State.User.ID
	// msgs arrive newest first; first entry is the probe target.
	target := toEngineMessage(msgs[0], selfID)
	var history []engine.Message
	for i := len(msgs) - 1; i >= 1; i-- {
		history = append(history, toEngineMessage(msgs[i], selfID))
	}

	runCtx, cancel := context.WithTimeout(context.Background(), sc.Config.AITimeout()+5*time.Second)
	defer cancel()
	out := sc.Pipeline.Probe(runCtx, target, history)

	return command.FollowupEmbedEphemeral(sc.Session, sc.Event, probeEmbed(target, out))
}

func toEngineMessage(m *discordgo.Message, selfID string) engine.Message {
	mentioned := false
	for _, u := range m.Mentions {
		if u.ID == selfID {
			mentioned = true
			break
		}
	}
	return engine.Message{
		ID:           m.ID,
		ChannelID:    m.ChannelID,
		AuthorID:     m.Author.ID,
		Author:       m.Author.Username,
		AuthorIsBot:  m.Author.Bot,
		Content:      m.Content,
		At:           m.Timestamp,
		MentionsSelf: mentioned,
		SelfAuthored: m.Author.ID == selfID,
		DM:           m.GuildID == "",
	}
}

func probeEmbed(msg engine.Message, out engine.Outcome) *discordgo.MessageEmbed {
	var triggers []string
	for _, t := range []engine.Trigger{engine.TriggerMention, engine.TriggerNameVariant, engine.TriggerTopicKeyword, engine.TriggerBoredomKeyword} {
		if out.Triggers.Has(t) {
			triggers = append(triggers, string(t))
		}
	}
	triggerLine := "none"
	if len(triggers) > 0 {
		triggerLine = strings.Join(triggers, ", ")
	}

	scoreLine := "not scored (no trigger)"
	reasoning := ""
	if out.Result != nil {
		scoreLine = fmt.Sprintf("%d/9 (threshold %d)", out.Result.Score, out.Decision.Threshold)
		if out.Result.Fallback {
			scoreLine += " [fallback]"
		}
		reasoning = out.Result.Reasoning
	}

	verdict := "NO RESPONSE"
	if out.Decision.Respond {
		verdict = "RESPOND"
	}
	if out.Decision.CooldownBlocked {
		verdict += " (blocked by cooldown)"
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Message", Value: truncate(msg.Content, 180), Inline: false},
		{Name: "Triggers", Value: triggerLine, Inline: true},
		{Name: "Score", Value: scoreLine, Inline: true},
		{Name: "Verdict", Value: verdict, Inline: true},
	}
	if reasoning != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Reasoning", Value: truncate(reasoning, 500)})
	}
	if len(out.Decision.Activities) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Pivot activities", Value: strings.Join(out.Decision.Activities, ", ")})
	}

	return &discordgo.MessageEmbed{
		Title:  "Pipeline probe",
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{Text: "trace " + out.TraceID},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
