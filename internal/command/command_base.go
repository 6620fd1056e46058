package command

import (
	"github.com/bwmarrin/discordgo"

	"symbient/internal/config"
	"symbient/internal/engine"
	"symbient/internal/storage"
)

type Command interface {
	Name() string
	Description() string
	Category() string
	RequireAdmin() bool
	Run(ctx interface{}) error
}

type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// SlashContext is handed to every slash command invocation.
type SlashContext struct {
	Session  *discordgo.Session
	Event    *discordgo.InteractionCreate
	Storage  *storage.Storage
	Pipeline *engine.Pipeline
	Config   *config.Config
}

// Option reads a named string option from the interaction, "" when absent.
func (c *SlashContext) Option(name string) string {
	for _, opt := range c.Event.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// IntOption reads a named integer option, 0 when absent.
func (c *SlashContext) IntOption(name string) int64 {
	for _, opt := range c.Event.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return 0
}
