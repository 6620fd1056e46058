// /internal/discord/responder.go
package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"symbient/internal/ai"
	"symbient/internal/engine"
	"symbient/internal/persona"
)

const replyHistoryDepth = 8

// Responder turns a positive verdict into actual reply text. This is the
// generation stage the decision pipeline deliberately stops short of.
type Responder struct {
	provider ai.Provider
	persona  *persona.Persona
	timeout  time.Duration
}

func NewResponder(provider ai.Provider, p *persona.Persona, timeout time.Duration) *Responder {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &Responder{provider: provider, persona: p, timeout: timeout}
}

func (r *Responder) Reply(ctx context.Context, out engine.Outcome, current engine.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msgs := out.Snapshot.Messages
	if len(msgs) > replyHistoryDepth {
		msgs = msgs[len(msgs)-replyHistoryDepth:]
	}
	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", m.Author, m.Content)
	}
	fmt.Fprintf(&b, "%s: %s", current.Author, current.Content)

	messages := []ai.Message{
		{Role: "system", Content: r.systemPrompt(out)},
		{Role: "user", Content: b.String()},
	}
	reply, err := r.provider.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", errors.New("empty reply from provider")
	}
	return reply, nil
}

func (r *Responder) systemPrompt(out engine.Outcome) string {
	var b strings.Builder
	b.WriteString(r.persona.PromptHeader())
	b.WriteString("\nYou decided this message is worth replying to. Write the reply itself: conversational, in character, no meta commentary about scores or decisions.\n")
	if len(out.Decision.Activities) > 0 {
		fmt.Fprintf(&b, "The conversation has gone stale. Steer it toward one of these: %s.\n", strings.Join(out.Decision.Activities, "; "))
	}
	b.WriteString("Keep it to a few sentences unless the question demands more.")
	return b.String()
}
