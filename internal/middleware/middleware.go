package middleware

import (
	"github.com/bwmarrin/discordgo"

	"symbient/internal/command"
)

type Middleware func(command.Command) command.Command

type wrappedCommand struct {
	command.Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(command.SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func Apply(cmd command.Command, mws ...Middleware) command.Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
