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
	command.Register(&BoringCommand{})
}

// BoringCommand forces the boredom branch with a synthetic complaint, so
// operators can verify topic-pivot detection end to end.
type BoringCommand struct{}

func (c *BoringCommand) Name() string        { return "boring" }
func (c *BoringCommand) Description() string { return "Trigger the topic-pivot branch with a synthetic boredom complaint" }
func (c *BoringCommand) Category() string    { return "Diagnostics" }
func (c *BoringCommand) RequireAdmin() bool  { return false }

func (c *BoringCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *BoringCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	// The scoring call can exceed the interaction deadline, so ack first.
	if err := command.DeferEphemeral(sc.Session, sc.Event); err != nil {
		return fmt.Errorf("ack interaction: %w", err)
	}

	user := sc.Event.Member.User
	fake := engine.Message{
		ID:        sc.Event.ID,
		ChannelID: sc.Event.ChannelID,
		AuthorID:  user.ID,
		Author:    user.Username,
		Content:   "this conversation is boring",
		At:        time.Now(),
	}

	runCtx, cancel := context.WithTimeout(context.Background(), sc.Config.AITimeout()+5*time.Second)
	defer cancel()
	out := sc.Pipeline.Probe(runCtx, fake, nil)

	if !out.Triggers.Has(engine.TriggerBoredomKeyword) {
		return command.FollowupEphemeral(sc.Session, sc.Event,
			"Boredom trigger did not fire. Check BOREDOM_KEYWORDS.")
	}

	var b strings.Builder
	b.WriteString("**Topic pivot probe**\n")
	if out.Result != nil {
		fmt.Fprintf(&b, "Score: %d/9", out.Result.Score)
		if out.Result.Fallback {
			b.WriteString(" [fallback]")
		}
		b.WriteString("\n")
		if len(out.Result.Activities) > 0 {
			fmt.Fprintf(&b, "Activities: %s\n", strings.Join(out.Result.Activities, ", "))
		} else {
			b.WriteString("No activities returned by the scorer.\n")
		}
		if out.Result.Reasoning != "" {
			fmt.Fprintf(&b, "Reasoning: %s\n", truncate(out.Result.Reasoning, 400))
		}
	}
	return command.FollowupEphemeral(sc.Session, sc.Event, b.String())
}
