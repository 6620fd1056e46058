// openai.go
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

// OpenAIProvider talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAIProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenAIProvider(baseURL, model string, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, messages []Message) (string, error) {
	payload := map[string]interface{}{
		"model":    p.model,
		"messages": messages,
	}
	bodyBytes, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status=%d body=%s", resp.StatusCode, snippet(respBody))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal: %w body=%s", err, snippet(respBody))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}

	reply := sanitizeReply(parsed.Choices[0].Message.Content)
	if unusableReply(reply) {
		return "", fmt.Errorf("garbage response")
	}
	return reply, nil
}
