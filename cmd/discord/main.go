// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	_ "symbient/internal/command/core"
	_ "symbient/internal/command/ops"
	_ "symbient/internal/command/probe"

	"symbient/internal/ai"
	"symbient/internal/config"
	"symbient/internal/discord"
	"symbient/internal/engine"
	"symbient/internal/logging"
	"symbient/internal/persona"
	"symbient/internal/storage"
	v "symbient/internal/version"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("version", v.Version).Msgf("starting %s", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open datastore")
	}
	defer store.Close()

	overrides, err := store.ChannelLimits()
	if err != nil {
		log.Fatal().Err(err).Msg("malformed channel limit overrides in datastore")
	}

	provider, err := ai.New(ai.Options{
		Provider: cfg.AIProvider,
		URL:      cfg.AIURL,
		Model:    cfg.AIModel,
		Timeout:  cfg.AITimeout(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build AI provider")
	}

	p, err := persona.Load(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load persona")
	}

	presence := discord.NewPresenceClient()
	pipeline := engine.NewPipeline(ctx,
		engine.NewRateLimiter(cfg.RateLimitPerMinute, overrides),
		engine.NewContextAssembler(p, cfg.Topics, cfg.BoredomKeywords, cfg.HistoryDepth),
		engine.NewScorer(provider, p, cfg.AITimeout(), cfg.PivotActivities),
		engine.NewStatusCoordinator(presence, engine.StatusCoordinatorOptions{
			Enabled:        cfg.StatusCoordination,
			TTL:            cfg.StatusCacheTTL(),
			MentionDND:     cfg.MentionDNDBots,
			MentionOffline: cfg.MentionOfflineBots,
		}),
		engine.NewResponseGate(cfg.Threshold, cfg.Cooldown()),
	)
	responder := discord.NewResponder(provider, p, cfg.AITimeout())

	errCh := make(chan error, 1)
	go func() {
		errCh <- discord.StartBot(ctx, cfg, store, pipeline, responder, presence)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("discord bot error")
		}
		cancel()
	}

	pipeline.Wait()
	log.Info().Msg("exited cleanly")
}
