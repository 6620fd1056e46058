package ai

import (
	"regexp"
	"strings"
)

// maxReplyLen bounds runaway generations. It sits well above the platform
// message limit; the transport layer does its own per-message splitting.
const maxReplyLen = 4000

var thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// unusableReply reports whether a reply is an error page in disguise or too
// short to carry either a scored verdict or a chat reply.
func unusableReply(s string) bool {
	if strings.Contains(strings.ToLower(s), "<html") {
		return true
	}
	return len(strings.TrimSpace(s)) < 5
}

// sanitizeReply strips reasoning blocks and wrapping quotes, then bounds the
// length. Scoring replies pass through untouched; their REASONING/SCORE
// lines are never quoted or oversized.
func sanitizeReply(reply string) string {
	reply = strings.TrimSpace(thinkBlockRe.ReplaceAllString(strings.TrimSpace(reply), ""))

	if len(reply) >= 2 {
		pairs := []struct{ open, close string }{
			{`"`, `"`}, {`'`, `'`}, {"“", "”"}, {"‘", "’"},
		}
		for _, q := range pairs {
			if strings.HasPrefix(reply, q.open) && strings.HasSuffix(reply, q.close) {
				reply = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(reply, q.open), q.close))
				break
			}
		}
	}

	if len(reply) > maxReplyLen {
		reply = reply[:maxReplyLen] + "\n\n[truncated]"
	}
	return reply
}

// snippet shortens a raw response body for error messages.
func snippet(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
