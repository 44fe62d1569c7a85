// Package app wires the room engine to the transport: the registry owns
// the process-wide room table and the orchestrator routes inbound
// messages to it.
package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"spyfall/internal/core"
	"spyfall/internal/domain"
)

// Registry is the explicitly owned room table, injected into the
// connection-handling layer. Lifecycle is process start to shutdown;
// everything is in memory.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]*core.Room
	cfg   core.Config
}

func NewRegistry(cfg core.Config) *Registry {
	return &Registry{
		rooms: make(map[domain.RoomCode]*core.Room),
		cfg:   cfg,
	}
}

// CreateRoom makes an empty room under a code unique among live rooms,
// retrying the generator on collision. No player is added here.
func (g *Registry) CreateRoom() domain.RoomCode {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		code := newRoomCode()
		if _, taken := g.rooms[code]; taken {
			continue
		}
		g.rooms[code] = core.NewRoom(code, g.cfg)
		log.Info().Str("module", "app.registry").Str("room", string(code)).Int("rooms", len(g.rooms)).Msg("room created")
		return code
	}
}

// Get looks a room up by code. A miss is a normal result, surfaced to
// the caller as a user-facing error payload, never a fault.
func (g *Registry) Get(code domain.RoomCode) (*core.Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[code]
	return room, ok
}

// RoomCount reports the number of live rooms.
func (g *Registry) RoomCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// DropConnection purges the departing connection from every room that
// holds it and reclaims rooms left empty. Safe to call redundantly.
func (g *Registry) DropConnection(conn core.Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for code, room := range g.rooms {
		if !room.RemovePlayer(conn) {
			continue
		}
		if room.MemberCount() == 0 {
			delete(g.rooms, code)
			log.Info().Str("module", "app.registry").Str("room", string(code)).Msg("empty room reclaimed")
		}
	}
}
