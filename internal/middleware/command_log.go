package middleware

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"symbient/internal/command"
	"symbient/internal/storage"
)

// WithCommandLogger records every slash invocation into the audit trail.
func WithCommandLogger() Middleware {
	return func(cmd command.Command) command.Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				err := cmd.Run(ctx)
				if v, ok := ctx.(*command.SlashContext); ok && v.Storage != nil {
					user := resolveUser(v.Event)
					rec := storage.CommandHistoryRecord{
						GuildID:   v.Event.GuildID,
						ChannelID: v.Event.ChannelID,
						UserID:    user.ID,
						Username:  user.Username,
						Command:   cmd.Name(),
						Datetime:  time.Now(),
					}
					if logErr := v.Storage.AppendCommandToHistory(rec); logErr != nil {
						log.Warn().Err(logErr).Str("command", cmd.Name()).Msg("failed to log command")
					}
				}
				return err
			},
		}
	}
}

func resolveUser(e *discordgo.InteractionCreate) *discordgo.User {
	if e.Member != nil && e.Member.User != nil {
		return e.Member.User
	}
	if e.User != nil {
		return e.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}
