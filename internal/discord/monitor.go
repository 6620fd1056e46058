// /internal/discord/monitor.go
package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"symbient/internal/engine"
)

const monitorInterval = 30 * time.Second

// runMonitor keeps the visible presence honest: dnd while any channel's
// admission window is saturated, back to online once traffic drains. Also
// prunes drained admission deques so idle channels cost nothing.
func (b *Bot) runMonitor(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			if b.pipeline.Limiter.AnyLimited(now) {
				b.pipeline.Status.SetSelfPresence(engine.StatusDND, "cooldown")
			} else if b.pipeline.Status.SelfStatus() == engine.StatusDND {
				b.pipeline.Status.SetSelfPresence(engine.StatusOnline, "")
			}
			b.pipeline.Limiter.Prune(now)
		}
	}
}

// surveyPeers warms the presence cache with every bot member visible in the
// guild, so the first scored message does not pay a cold lookup per peer.
func (b *Bot) surveyPeers(g *discordgo.Guild) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	peers := 0
	for _, m := range g.Members {
		if m.User == nil || !m.User.Bot || m.User.ID == b.dg.State.User.ID {
			continue
		}
		b.pipeline.Status.PeerPresence(ctx, m.User.ID)
		peers++
	}
	if peers > 0 {
		log.Info().Str("guild", g.Name).Int("peers", peers).Msg("surveyed peer agent presence")
	}
}
