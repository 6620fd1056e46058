package ops

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"symbient/internal/command"
)

func init() {
	command.Register(&StatusCommand{})
}

// StatusCommand exposes the current gating configuration.
type StatusCommand struct{}

func (c *StatusCommand) Name() string        { return "pipeline-status" }
func (c *StatusCommand) Description() string { return "Show threshold, limits and cooldown configuration" }
func (c *StatusCommand) Category() string    { return "Operations" }
func (c *StatusCommand) RequireAdmin() bool  { return false }

func (c *StatusCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *StatusCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	pipe := sc.Pipeline
	cfg := sc.Config

	var b strings.Builder
	b.WriteString("**Pipeline configuration**\n")
	fmt.Fprintf(&b, "Enthusiasm threshold: %d/9\n", pipe.Gate.Threshold())
	fmt.Fprintf(&b, "Rate limit (default): %d per 60s\n", cfg.RateLimitPerMinute)
	fmt.Fprintf(&b, "This channel's limit: %d per 60s\n", pipe.Limiter.Limit(sc.Event.ChannelID))
	fmt.Fprintf(&b, "Cooldown: %s\n", pipe.Gate.Cooldown())
	fmt.Fprintf(&b, "History depth: %d\n", cfg.HistoryDepth)
	fmt.Fprintf(&b, "Boredom keywords: %s\n", strings.Join(cfg.BoredomKeywords, ", "))
	fmt.Fprintf(&b, "Status coordination: %v (TTL %s)\n", cfg.StatusCoordination, cfg.StatusCacheTTL())
	fmt.Fprintf(&b, "Scorer: %s (timeout %s)\n", cfg.AIProvider, cfg.AITimeout())

	if overrides := pipe.Limiter.Overrides(); len(overrides) > 0 {
		ids := make([]string, 0, len(overrides))
		for id := range overrides {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		b.WriteString("Per-channel overrides:\n")
		for _, id := range ids {
			fmt.Fprintf(&b, "- <#%s>: %d per 60s\n", id, overrides[id])
		}
	}

	return command.RespondEphemeral(sc.Session, sc.Event, b.String())
}
