package ops

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"symbient/internal/command"
)

func init() {
	command.Register(&LimitCommand{})
}

// LimitCommand sets or clears this channel's admission limit override,
// persisted across restarts.
type LimitCommand struct{}

func (c *LimitCommand) Name() string        { return "set-limit" }
func (c *LimitCommand) Description() string { return "Set or clear this channel's rate-limit override" }
func (c *LimitCommand) Category() string    { return "Operations" }
func (c *LimitCommand) RequireAdmin() bool  { return true }

func (c *LimitCommand) SlashDefinition() *discordgo.ApplicationCommand {
	minLimit := float64(0)
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "limit",
				Description: "Admissions per 60s for this channel; 0 clears the override",
				Required:    true,
				MinValue:    &minLimit,
				MaxValue:    120,
			},
		},
	}
}

func (c *LimitCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	channelID := sc.Event.ChannelID
	limit := int(sc.IntOption("limit"))

	if limit == 0 {
		if err := sc.Storage.ClearChannelLimit(channelID); err != nil {
			return err
		}
		sc.Pipeline.Limiter.SetOverride(channelID, 0)
		return command.RespondEphemeral(sc.Session, sc.Event,
			fmt.Sprintf("Override cleared; channel falls back to the default of %d per 60s.", sc.Config.RateLimitPerMinute))
	}

	if err := sc.Storage.SetChannelLimit(channelID, limit); err != nil {
		return err
	}
	sc.Pipeline.Limiter.SetOverride(channelID, limit)
	return command.RespondEphemeral(sc.Session, sc.Event,
		fmt.Sprintf("Channel limit set to %d per 60s.", limit))
}
