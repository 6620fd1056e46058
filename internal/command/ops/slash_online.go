package ops

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"symbient/internal/command"
	"symbient/internal/engine"
)

func init() {
	command.Register(&OnlineCommand{})
}

// OnlineCommand forces own presence back to online, for when the agent is
// stuck showing dnd after a drained rate-limit window.
type OnlineCommand struct{}

func (c *OnlineCommand) Name() string        { return "force-online" }
func (c *OnlineCommand) Description() string { return "Force presence back to online" }
func (c *OnlineCommand) Category() string    { return "Operations" }
func (c *OnlineCommand) RequireAdmin() bool  { return true }

func (c *OnlineCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *OnlineCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	was := sc.Pipeline.Status.SelfStatus()
	if err := sc.Pipeline.Status.ForceSelfPresence(engine.StatusOnline, ""); err != nil {
		return command.RespondEphemeral(sc.Session, sc.Event,
			fmt.Sprintf("Failed to update presence: %v", err))
	}
	return command.RespondEphemeral(sc.Session, sc.Event,
		fmt.Sprintf("Presence forced online (was %s).", was))
}
