package engine

import (
	"sync"
	"time"
)

// AdmissionWindow is the trailing interval the rate limiter counts against.
const AdmissionWindow = 60 * time.Second

// RateLimiter is per-channel rolling-window admission control. It is the sole
// gate in front of all downstream cost: O(window) per call, never any I/O.
type RateLimiter struct {
	mu           sync.Mutex
	defaultLimit int
	overrides    map[string]int
	admitted     map[string][]time.Time
}

// NewRateLimiter creates a limiter with a global default and optional
// per-channel overrides.
func NewRateLimiter(defaultLimit int, overrides map[string]int) *RateLimiter {
	if defaultLimit < 1 {
		defaultLimit = 1
	}
	ov := make(map[string]int, len(overrides))
	for k, v := range overrides {
		ov[k] = v
	}
	return &RateLimiter{
		defaultLimit: defaultLimit,
		overrides:    ov,
		admitted:     make(map[string][]time.Time),
	}
}

// Admit decides whether channelID may consume a window slot at now. A refusal
// records nothing: rejected traffic must not extend the blocked window, so
// the window drains purely on previously admitted messages.
func (l *RateLimiter) Admit(channelID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := l.pruneLocked(channelID, now)
	if len(stamps) >= l.limitLocked(channelID) {
		return false
	}
	l.admitted[channelID] = append(stamps, now)
	return true
}

// Limit returns the effective limit for a channel.
func (l *RateLimiter) Limit(channelID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limitLocked(channelID)
}

// SetOverride sets or clears (limit <= 0) a per-channel limit override.
func (l *RateLimiter) SetOverride(channelID string, limit int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit <= 0 {
		delete(l.overrides, channelID)
		return
	}
	l.overrides[channelID] = limit
}

// Overrides returns a copy of the current per-channel overrides.
func (l *RateLimiter) Overrides() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.overrides))
	for k, v := range l.overrides {
		out[k] = v
	}
	return out
}

// Limited reports whether channelID is at capacity at now, without consuming
// a slot.
func (l *RateLimiter) Limited(channelID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pruneLocked(channelID, now)) >= l.limitLocked(channelID)
}

// AnyLimited reports whether any known channel is currently at capacity.
// Used by the background presence monitor.
func (l *RateLimiter) AnyLimited(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id := range l.admitted {
		if len(l.pruneLocked(id, now)) >= l.limitLocked(id) {
			return true
		}
	}
	return false
}

// BlockedUntil returns when the oldest admission in channelID's window
// expires. Zero when the channel is not at capacity.
func (l *RateLimiter) BlockedUntil(channelID string, now time.Time) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	stamps := l.pruneLocked(channelID, now)
	if len(stamps) < l.limitLocked(channelID) {
		return time.Time{}
	}
	return stamps[0].Add(AdmissionWindow)
}

// Prune drops fully drained channel deques to bound memory over the set of
// channels seen so far.
func (l *RateLimiter) Prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id := range l.admitted {
		if len(l.pruneLocked(id, now)) == 0 {
			delete(l.admitted, id)
		}
	}
}

func (l *RateLimiter) limitLocked(channelID string) int {
	if v, ok := l.overrides[channelID]; ok && v > 0 {
		return v
	}
	return l.defaultLimit
}

// pruneLocked drops timestamps older than the admission window and returns
// the surviving slice, already stored back.
func (l *RateLimiter) pruneLocked(channelID string, now time.Time) []time.Time {
	stamps := l.admitted[channelID]
	cutoff := now.Add(-AdmissionWindow)
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		stamps = stamps[i:]
		l.admitted[channelID] = stamps
	}
	return stamps
}
