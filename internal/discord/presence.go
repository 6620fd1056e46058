// /internal/discord/presence.go
package discord

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"

	"symbient/internal/engine"
)

var errNotConnected = errors.New("discord session not connected")

// PresenceClient reads peer presence from gateway state and publishes this
// agent's own presence. Safe to construct before the session exists; calls
// fail soft until bind.
type PresenceClient struct {
	mu sync.RWMutex
	dg *discordgo.Session
}

func NewPresenceClient() *PresenceClient { return &PresenceClient{} }

func (p *PresenceClient) bind(dg *discordgo.Session) {
	p.mu.Lock()
	p.dg = dg
	p.mu.Unlock()
}

func (p *PresenceClient) session() *discordgo.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dg
}

// PeerStatus looks the peer up across all known guilds. A member with no
// presence entry counts as offline per gateway semantics.
func (p *PresenceClient) PeerStatus(ctx context.Context, peerID string) (engine.PresenceStatus, error) {
	dg := p.session()
	if dg == nil {
		return engine.StatusUnknown, errNotConnected
	}
	for _, g := range dg.State.Guilds {
		if pr, err := dg.State.Presence(g.ID, peerID); err == nil && pr != nil {
			return mapStatus(pr.Status), nil
		}
		if _, err := dg.State.Member(g.ID, peerID); err == nil {
			return engine.StatusOffline, nil
		}
	}
	return engine.StatusUnknown, errors.New("peer not found in any guild")
}

// SetStatus publishes own presence, with an optional watching-style note.
func (p *PresenceClient) SetStatus(ctx context.Context, status engine.PresenceStatus, note string) error {
	dg := p.session()
	if dg == nil {
		return errNotConnected
	}
	data := discordgo.UpdateStatusData{Status: string(status)}
	if note != "" {
		data.Activities = []*discordgo.Activity{{
			Name: note,
			Type: discordgo.ActivityTypeWatching,
		}}
	}
	return dg.UpdateStatusComplex(data)
}

func mapStatus(s discordgo.Status) engine.PresenceStatus {
	switch s {
	case discordgo.StatusOnline:
		return engine.StatusOnline
	case discordgo.StatusIdle:
		return engine.StatusIdle
	case discordgo.StatusDoNotDisturb:
		return engine.StatusDND
	case discordgo.StatusOffline, discordgo.StatusInvisible:
		return engine.StatusOffline
	default:
		return engine.StatusUnknown
	}
}
