package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestChannelLimitsEmpty(t *testing.T) {
	s := newTestStorage(t)

	limits, err := s.ChannelLimits()
	require.NoError(t, err)
	assert.Empty(t, limits)
}

func TestSetAndClearChannelLimit(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SetChannelLimit("chan1", 3))
	require.NoError(t, s.SetChannelLimit("chan2", 7))

	limits, err := s.ChannelLimits()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"chan1": 3, "chan2": 7}, limits)

	require.NoError(t, s.ClearChannelLimit("chan1"))
	limits, err = s.ChannelLimits()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"chan2": 7}, limits)
}

func TestSetChannelLimitRejectsNonPositive(t *testing.T) {
	s := newTestStorage(t)

	assert.Error(t, s.SetChannelLimit("chan", 0))
	assert.Error(t, s.SetChannelLimit("chan", -5))
}

func TestCommandHistoryBounded(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < commandHistoryKeep+10; i++ {
		require.NoError(t, s.AppendCommandToHistory(CommandHistoryRecord{
			ChannelID: "c",
			UserID:    "u",
			Username:  "operator",
			Command:   "set-limit",
			Datetime:  time.Now(),
		}))
	}

	history, err := s.FetchCommandHistory()
	require.NoError(t, err)
	assert.Len(t, history, commandHistoryKeep)
	assert.Equal(t, "set-limit", history[0].Command)
}
