package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type PollinationsProvider struct {
	model  string
	client *http.Client
}

func NewPollinationsProvider(model string, timeout time.Duration) *PollinationsProvider {
	if model == "" {
		model = "openai"
	}
	return &PollinationsProvider{
		model: model,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *PollinationsProvider) Generate(ctx context.Context, messages []Message) (string, error) {
	payload := map[string]interface{}{
		"model":       p.model,
		"messages":    messages,
		"temperature": 0.7,
		"private":     true,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		"https://text.pollinations.ai/openai",
		bytes.NewReader(data),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("pollinations http %d: %s", resp.StatusCode, snippet(body))
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", fmt.Errorf("pollinations returned html")
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("pollinations empty choices")
	}

	reply := sanitizeReply(parsed.Choices[0].Message.Content)
	if unusableReply(reply) {
		return "", fmt.Errorf("pollinations returned garbage")
	}

	return reply, nil
}
