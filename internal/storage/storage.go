// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/datastore"
)

const (
	rateLimitsKey      = "channel_rate_limits"
	commandHistoryKey  = "command_history"
	commandHistoryKeep = 50
)

// Storage persists the small operator-facing state: the channel-id to
// admission-limit mapping and a bounded command audit trail.
type Storage struct {
	ds *datastore.DataStore
}

// CommandHistoryRecord is one operator command invocation.
type CommandHistoryRecord struct {
	GuildID   string    `json:"guild_id"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Datetime  time.Time `json:"datetime"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// ChannelLimits loads the persisted per-channel admission limit overrides.
// A malformed mapping is a configuration error: callers treat it as fatal at
// startup, before any message processing begins.
func (s *Storage) ChannelLimits() (map[string]int, error) {
	data, exists := s.ds.Get(rateLimitsKey)
	if !exists {
		return map[string]int{}, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling rate limits: %w", err)
	}

	var limits map[string]int
	if err := json.Unmarshal(jsonData, &limits); err != nil {
		return nil, fmt.Errorf("malformed channel rate limit mapping: %w", err)
	}

	for channelID, limit := range limits {
		if limit < 1 {
			return nil, fmt.Errorf("malformed channel rate limit mapping: channel %s has limit %d", channelID, limit)
		}
	}
	return limits, nil
}

// SetChannelLimit persists an override for one channel.
func (s *Storage) SetChannelLimit(channelID string, limit int) error {
	if limit < 1 {
		return fmt.Errorf("limit must be at least 1, got %d", limit)
	}
	limits, err := s.ChannelLimits()
	if err != nil {
		return err
	}
	limits[channelID] = limit
	s.ds.Add(rateLimitsKey, limits)
	return nil
}

// ClearChannelLimit removes a channel's override so it falls back to the
// global default.
func (s *Storage) ClearChannelLimit(channelID string) error {
	limits, err := s.ChannelLimits()
	if err != nil {
		return err
	}
	delete(limits, channelID)
	s.ds.Add(rateLimitsKey, limits)
	return nil
}

// AppendCommandToHistory records an operator command invocation, keeping the
// trail bounded.
func (s *Storage) AppendCommandToHistory(rec CommandHistoryRecord) error {
	history, err := s.FetchCommandHistory()
	if err != nil {
		return err
	}
	history = append(history, rec)
	if len(history) > commandHistoryKeep {
		history = history[len(history)-commandHistoryKeep:]
	}
	s.ds.Add(commandHistoryKey, history)
	return nil
}

// FetchCommandHistory returns the recorded command audit trail.
func (s *Storage) FetchCommandHistory() ([]CommandHistoryRecord, error) {
	data, exists := s.ds.Get(commandHistoryKey)
	if !exists {
		return []CommandHistoryRecord{}, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling command history: %w", err)
	}

	var history []CommandHistoryRecord
	if err := json.Unmarshal(jsonData, &history); err != nil {
		return nil, fmt.Errorf("error unmarshalling command history: %w", err)
	}
	return history, nil
}
