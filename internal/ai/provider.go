package ai

import (
	"context"
	"fmt"
	"time"
)

const defaultTimeout = 25 * time.Second

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider issues a single completion call. Implementations must honor ctx
// cancellation and carry their own bounded timeout; callers never retry.
type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// Options selects and tunes a provider.
type Options struct {
	Provider string // "pollinations" | "openai"
	URL      string // endpoint for "openai"
	Model    string
	Timeout  time.Duration
}

// New builds a provider from options.
func New(opts Options) (Provider, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	switch opts.Provider {
	case "pollinations", "":
		return NewPollinationsProvider(opts.Model, timeout), nil
	case "openai":
		if opts.URL == "" {
			return nil, fmt.Errorf("ai: provider %q requires AI_URL", opts.Provider)
		}
		return NewOpenAIProvider(opts.URL, opts.Model, timeout), nil
	default:
		return nil, fmt.Errorf("ai: unsupported provider %q", opts.Provider)
	}
}
