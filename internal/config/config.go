// /internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, falling back to system environment variables")
	}
}

// Config is the full configuration surface. Parsed from environment once at
// startup; any violation here is fatal before message processing begins.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN" validate:"required"`

	// Identity used for trigger detection and scoring prompts.
	BotName         string   `env:"BOT_NAME" envDefault:"Assistant"`
	NameVariants    []string `env:"BOT_NAME_VARIANTS" envSeparator:","`
	Topics          []string `env:"BOT_TOPICS" envSeparator:","`
	Skills          []string `env:"BOT_SKILLS" envSeparator:","`
	Personality     string   `env:"BOT_PERSONALITY"`
	PersonalityFile string   `env:"PERSONALITY_FILE"`

	// Admission and gating.
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10" validate:"min=1"`
	Threshold          int      `env:"ENTHUSIASM_THRESHOLD" envDefault:"5" validate:"min=0,max=9"`
	CooldownSeconds    int      `env:"RESPONSE_COOLDOWN_SECONDS" envDefault:"0" validate:"min=0"`
	HistoryDepth       int      `env:"HISTORY_DEPTH" envDefault:"10" validate:"min=1,max=50"`
	BoredomKeywords    []string `env:"BOREDOM_KEYWORDS" envSeparator:"," envDefault:"bored,boring,stale"`
	PivotActivities    int      `env:"PIVOT_ACTIVITY_COUNT" envDefault:"4" validate:"min=1,max=8"`

	// Peer status coordination.
	StatusCoordination bool `env:"BOT_STATUS_COORDINATION" envDefault:"true"`
	StatusCacheSeconds int  `env:"STATUS_CHECK_CACHE_SECONDS" envDefault:"30" validate:"min=1"`
	MentionDNDBots     bool `env:"MENTION_DO_NOT_DISTURB_BOTS" envDefault:"false"`
	MentionOfflineBots bool `env:"MENTION_OFFLINE_BOTS" envDefault:"false"`

	// External scoring call.
	AIProvider       string `env:"AI_PROVIDER" envDefault:"pollinations"`
	AIURL            string `env:"AI_URL"`
	AIModel          string `env:"AI_MODEL" envDefault:"openai"`
	AITimeoutSeconds int    `env:"AI_TIMEOUT_SECONDS" envDefault:"25" validate:"min=1,max=120"`

	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`
}

// New parses and validates configuration from the environment.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}
	return cfg, nil
}

// Cooldown returns the per-channel minimum interval between responses.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// StatusCacheTTL returns how long a cached peer presence stays fresh.
func (c *Config) StatusCacheTTL() time.Duration {
	return time.Duration(c.StatusCacheSeconds) * time.Second
}

// AITimeout bounds the single external scoring call.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}
