package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// PresenceClient is the external platform surface the coordinator talks to.
type PresenceClient interface {
	// PeerStatus fetches a peer agent's current status.
	PeerStatus(ctx context.Context, peerID string) (PresenceStatus, error)
	// SetStatus publishes this agent's own status with an optional activity note.
	SetStatus(ctx context.Context, status PresenceStatus, note string) error
}

// StatusCoordinatorOptions tunes the coordinator.
type StatusCoordinatorOptions struct {
	Enabled        bool
	TTL            time.Duration
	MentionDND     bool // dnd peers still count as addressable
	MentionOffline bool // offline peers still count as addressable
}

// StatusCoordinator maintains the TTL cache of peer-agent presence and this
// agent's own presence signal. Entries are never evicted, only degraded:
// a failed refresh marks the peer unknown and bumps the refresh timestamp so
// the next attempt waits out a full TTL (no refresh storms).
type StatusCoordinator struct {
	client PresenceClient
	opts   StatusCoordinatorOptions

	cache *gocache.Cache
	group singleflight.Group

	// Own presence is advisory; throttle outgoing updates so a burst of
	// rejections does not hammer the platform.
	selfLimiter *rate.Limiter
	selfMu      sync.Mutex
	selfStatus  PresenceStatus
}

// NewStatusCoordinator builds a coordinator. With Enabled false every method
// is a cheap no-op returning unknown presence.
func NewStatusCoordinator(client PresenceClient, opts StatusCoordinatorOptions) *StatusCoordinator {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Second
	}
	return &StatusCoordinator{
		client:      client,
		opts:        opts,
		cache:       gocache.New(gocache.NoExpiration, 10*time.Minute),
		selfLimiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
		selfStatus:  StatusUnknown,
	}
}

// PeerPresence returns the cached entry when fresh, otherwise issues exactly
// one external refresh (concurrent callers for the same peer share it).
func (c *StatusCoordinator) PeerPresence(ctx context.Context, peerID string) AgentPresence {
	if !c.opts.Enabled {
		return AgentPresence{PeerID: peerID, Status: StatusUnknown, TTL: c.opts.TTL}
	}

	now := time.Now()
	if v, ok := c.cache.Get(peerID); ok {
		entry := v.(AgentPresence)
		if !entry.Stale(now) {
			return entry
		}
	}

	v, _, _ := c.group.Do(peerID, func() (interface{}, error) {
		// Re-check under the flight: a racer may have refreshed already.
		if v, ok := c.cache.Get(peerID); ok {
			entry := v.(AgentPresence)
			if !entry.Stale(time.Now()) {
				return entry, nil
			}
		}
		return c.refresh(ctx, peerID), nil
	})
	return v.(AgentPresence)
}

func (c *StatusCoordinator) refresh(ctx context.Context, peerID string) AgentPresence {
	status, err := c.client.PeerStatus(ctx, peerID)
	entry := AgentPresence{PeerID: peerID, RefreshedAt: time.Now(), TTL: c.opts.TTL}
	if err != nil {
		// Degrade, don't drop: the stamped entry backs off retries for one TTL.
		log.Warn().Err(err).Str("peer", peerID).Msg("presence refresh failed")
		entry.Status = StatusUnknown
	} else {
		entry.Status = status
	}
	c.cache.Set(peerID, entry, gocache.NoExpiration)
	return entry
}

// Invalidate drops the freshness of a peer entry so the next lookup refreshes.
func (c *StatusCoordinator) Invalidate(peerID string) {
	if v, ok := c.cache.Get(peerID); ok {
		entry := v.(AgentPresence)
		entry.RefreshedAt = time.Time{}
		c.cache.Set(peerID, entry, gocache.NoExpiration)
	}
}

// Addressable reports whether a peer in this state should still be treated
// as eligible to be addressed.
func (c *StatusCoordinator) Addressable(p AgentPresence) bool {
	switch p.Status {
	case StatusOnline, StatusIdle:
		return true
	case StatusDND:
		return c.opts.MentionDND
	case StatusOffline:
		return c.opts.MentionOffline
	default:
		return false
	}
}

// Summary renders a one-line peer availability summary for the scoring
// prompt, e.g. "2 available, 1 busy (peerA:online peerB:idle peerC:dnd)".
func (c *StatusCoordinator) Summary(ctx context.Context, peerIDs []string) string {
	if !c.opts.Enabled || len(peerIDs) == 0 {
		return ""
	}
	var available, busy int
	var parts []string
	for _, id := range peerIDs {
		p := c.PeerPresence(ctx, id)
		if c.Addressable(p) {
			available++
		} else {
			busy++
		}
		parts = append(parts, fmt.Sprintf("%s:%s", id, p.Status))
	}
	return fmt.Sprintf("%d available, %d busy (%s)", available, busy, strings.Join(parts, " "))
}

// SetSelfPresence publishes this agent's own status. Fire-and-forget:
// presence is an advisory signal, so failures are logged, never returned.
func (c *StatusCoordinator) SetSelfPresence(status PresenceStatus, note string) {
	if !c.opts.Enabled {
		return
	}
	c.selfMu.Lock()
	if c.selfStatus == status {
		c.selfMu.Unlock()
		return
	}
	if !c.selfLimiter.Allow() {
		// Dropped transition: keep the old status so the next call retries
		// instead of seeing a phantom "unchanged".
		c.selfMu.Unlock()
		return
	}
	c.selfStatus = status
	c.selfMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.client.SetStatus(ctx, status, note); err != nil {
		log.Warn().Err(err).Str("status", string(status)).Msg("failed to set self presence")
	}
}

// ForceSelfPresence publishes own status unconditionally, bypassing the
// change check and the throttle. Operator escape hatch for a stuck dnd.
func (c *StatusCoordinator) ForceSelfPresence(status PresenceStatus, note string) error {
	c.selfMu.Lock()
	c.selfStatus = status
	c.selfMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.SetStatus(ctx, status, note)
}

// SelfStatus returns the last status this agent asked the platform to show.
func (c *StatusCoordinator) SelfStatus() PresenceStatus {
	c.selfMu.Lock()
	defer c.selfMu.Unlock()
	return c.selfStatus
}
