package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"symbient/internal/command"
	"symbient/internal/version"
)

func init() {
	command.Register(&AboutCommand{})
}

type AboutCommand struct{}

func (c *AboutCommand) Name() string        { return "about" }
func (c *AboutCommand) Description() string { return "Shows info about the bot" }
func (c *AboutCommand) Category() string    { return "Information" }
func (c *AboutCommand) RequireAdmin() bool  { return false }

func (c *AboutCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *AboutCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	buildDate := "unknown"
	if version.BuildDate != "" {
		if t, err := time.Parse(time.RFC3339, version.BuildDate); err == nil {
			buildDate = t.Format("2006-01-02")
		}
	}

	embed := &discordgo.MessageEmbed{
		Title: version.AppName,
		Description: fmt.Sprintf("A group-chat agent that decides when it is worth speaking.\n\nVersion %s, built %s (Go %s)",
			version.Version, buildDate, strings.TrimPrefix(version.GoVersion, "go")),
	}
	return command.RespondEmbedEphemeral(sc.Session, sc.Event, embed)
}
