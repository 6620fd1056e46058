package middleware

import (
	"github.com/bwmarrin/discordgo"

	"symbient/internal/command"
)

// WithGuildOnly rejects slash invocations outside a guild. The decision
// pipeline never evaluates DMs either; this keeps the command surface
// consistent with that policy.
func WithGuildOnly() Middleware {
	return func(cmd command.Command) command.Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*command.SlashContext); ok && v.Event.GuildID == "" {
					_ = v.Session.InteractionRespond(v.Event.Interaction, &discordgo.InteractionResponse{
						Type: discordgo.InteractionResponseChannelMessageWithSource,
						Data: &discordgo.InteractionResponseData{
							Content: "You must be in a server to use this command.",
							Flags:   discordgo.MessageFlagsEphemeral,
						},
					})
					return nil
				}
				return cmd.Run(ctx)
			},
		}
	}
}
