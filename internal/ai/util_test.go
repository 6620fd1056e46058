package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeReplyStripsThinkBlocks(t *testing.T) {
	in := "<think>should I answer?\nyes</think>\nREASONING: asked directly\nSCORE: 7"
	out := sanitizeReply(in)

	assert.Equal(t, "REASONING: asked directly\nSCORE: 7", out)
}

func TestSanitizeReplyUnwrapsQuotes(t *testing.T) {
	assert.Equal(t, "hello there", sanitizeReply(`"hello there"`))
	assert.Equal(t, "hello there", sanitizeReply("“hello there”"))
	// Mismatched pairs stay as-is.
	assert.Equal(t, `"hello there'`, sanitizeReply(`"hello there'`))
}

func TestSanitizeReplyBoundsLength(t *testing.T) {
	out := sanitizeReply(strings.Repeat("a", maxReplyLen+500))

	assert.Len(t, out, maxReplyLen+len("\n\n[truncated]"))
	assert.True(t, strings.HasSuffix(out, "[truncated]"))
}

func TestUnusableReply(t *testing.T) {
	assert.True(t, unusableReply("<HTML><body>502 Bad Gateway</body>"))
	assert.True(t, unusableReply("   ok  "))
	assert.False(t, unusableReply("SCORE: 5"))
	assert.False(t, unusableReply("a perfectly fine reply"))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet([]byte("short")))

	long := snippet([]byte(strings.Repeat("x", 300)))
	assert.Len(t, long, 203)
	assert.True(t, strings.HasSuffix(long, "..."))
}
