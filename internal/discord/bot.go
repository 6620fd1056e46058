// /internal/discord/bot.go
package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"symbient/internal/command"
	"symbient/internal/config"
	"symbient/internal/engine"
	"symbient/internal/middleware"
	"symbient/internal/storage"
)

const maxMessageLen = 2000

// Bot owns the Discord session and feeds every observed message into the
// decision pipeline. Generation and delivery happen here, after the
// pipeline's verdict.
type Bot struct {
	dg        *discordgo.Session
	cfg       *config.Config
	store     *storage.Storage
	pipeline  *engine.Pipeline
	responder *Responder
	presence  *PresenceClient

	mu         sync.Mutex
	registered map[string]bool
}

// StartBot runs the bot until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage, pipeline *engine.Pipeline, responder *Responder, presence *PresenceClient) error {
	b := &Bot{
		cfg:        cfg,
		store:      store,
		pipeline:   pipeline,
		responder:  responder,
		presence:   presence,
		registered: make(map[string]bool),
	}
	if err := b.run(ctx); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg
	b.presence.bind(dg)

	dg.Identify.Intents = discordgo.IntentsAll
	// Handlers run on the gateway reader so messages reach their lane in
	// arrival order. Every handler that blocks must hand off itself.
	dg.SyncEvents = true
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	go b.runMonitor(ctx)

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("connected to Discord")
	go b.pipeline.Status.SetSelfPresence(engine.StatusOnline, "")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	go func() {
		b.registerCommands(g.ID)
		b.surveyPeers(g.Guild)
	}()
}

func (b *Bot) registerCommands(guildID string) {
	b.mu.Lock()
	if b.registered[guildID] {
		b.mu.Unlock()
		return
	}
	b.registered[guildID] = true
	b.mu.Unlock()

	for _, cmd := range command.All() {
		sp, ok := cmd.(command.SlashProvider)
		if !ok {
			continue
		}
		def := sp.SlashDefinition()
		if def == nil {
			continue
		}
		if _, err := b.dg.ApplicationCommandCreate(b.dg.State.User.ID, guildID, def); err != nil {
			log.Error().Err(err).
				Str("command", cmd.Name()).
				Str("guild", guildID).
				Msg("failed to register slash command")
		}
	}
	log.Info().Str("guild", guildID).Msg("slash commands registered")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	// Enqueue only; the history fetch is a REST round-trip and runs on the
	// lane worker, so two quick messages cannot overtake each other here.
	msg := toEngineMessage(m.Message, s.State.User.ID)
	b.pipeline.Submit(msg, func() []engine.Message {
		return b.fetchHistory(msg.ChannelID, msg.ID)
	}, func(out engine.Outcome) {
		if out.Decision.Respond {
			b.deliver(msg, out)
		}
	})
}

func (b *Bot) fetchHistory(channelID, beforeID string) []engine.Message {
	msgs, err := b.dg.ChannelMessages(channelID, b.cfg.HistoryDepth, beforeID, "", "")
	if err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("failed to fetch channel history")
		return nil
	}
	// Discord returns newest first.
	history := make([]engine.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		history = append(history, toEngineMessage(msgs[i], b.dg.State.User.ID))
	}
	return history
}

// deliver generates and sends the reply. Runs on the channel lane, so
// replies within one channel stay in decision order.
func (b *Bot) deliver(msg engine.Message, out engine.Outcome) {
	_ = b.dg.ChannelTyping(msg.ChannelID)

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.AITimeout()+5*time.Second)
	defer cancel()
	reply, err := b.responder.Reply(ctx, out, msg)
	if err != nil {
		log.Error().Err(err).Str("trace", out.TraceID).Msg("reply generation failed")
		b.pipeline.Status.SetSelfPresence(engine.StatusOnline, "")
		return
	}

	delivered := false
	for _, chunk := range splitMessage(reply, maxMessageLen) {
		if _, err := b.dg.ChannelMessageSend(msg.ChannelID, chunk); err != nil {
			log.Error().Err(err).Str("trace", out.TraceID).Msg("failed to send reply")
			break
		}
		delivered = true
	}
	if delivered {
		// Cooldown starts at delivery, not at decision time.
		b.pipeline.Gate.RecordResponse(msg.ChannelID, time.Now())
	}
	b.pipeline.Status.SetSelfPresence(engine.StatusOnline, "")
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, e *discordgo.InteractionCreate) {
	if e.Type != discordgo.InteractionApplicationCommand {
		return
	}
	go b.dispatchCommand(s, e)
}

func (b *Bot) dispatchCommand(s *discordgo.Session, e *discordgo.InteractionCreate) {
	name := e.ApplicationCommandData().Name
	cmd, ok := command.Get(name)
	if !ok {
		return
	}
	if cmd.RequireAdmin() && !isAdmin(e) {
		_ = command.RespondEphemeral(s, e, "This command requires administrator permissions.")
		return
	}

	// Logger innermost: a guild-only rejection never reaches the audit trail.
	wrapped := middleware.Apply(cmd,
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
	)
	sc := &command.SlashContext{
		Session:  s,
		Event:    e,
		Storage:  b.store,
		Pipeline: b.pipeline,
		Config:   b.cfg,
	}
	if err := wrapped.Run(sc); err != nil {
		log.Error().Err(err).Str("command", name).Msg("command failed")
		_ = command.RespondEphemeral(s, e, fmt.Sprintf("Command failed: %v", err))
	}
}

func isAdmin(e *discordgo.InteractionCreate) bool {
	return e.Member != nil && e.Member.Permissions&discordgo.PermissionAdministrator != 0
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

func splitMessage(s string, limit int) []string {
	if len(s) <= limit {
		return []string{s}
	}
	var chunks []string
	for len(s) > limit {
		cut := strings.LastIndex(s[:limit], "\n")
		if cut < limit/2 {
			cut = limit
		}
		chunks = append(chunks, s[:cut])
		s = strings.TrimLeft(s[cut:], "\n")
	}
	if s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}
