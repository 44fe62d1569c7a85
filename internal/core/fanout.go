package core

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Broadcast sends a payload to every member connection.
func (r *Room) Broadcast(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fanout(v)
}

// BroadcastExcept sends a payload to every member except the sender.
// This is the primitive the signaling relay runs on.
func (r *Room) BroadcastExcept(sender Conn, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.marshal(v)
	if !ok {
		return
	}
	for _, m := range r.members {
		if m.conn == sender {
			continue
		}
		r.trySend(m, data)
	}
}

// fanout marshals once and delivers to all members. Callers hold the
// room lock.
func (r *Room) fanout(v any) {
	data, ok := r.marshal(v)
	if !ok {
		return
	}
	for _, m := range r.members {
		r.trySend(m, data)
	}
}

func (r *Room) sendTo(m *member, v any) {
	data, ok := r.marshal(v)
	if !ok {
		return
	}
	r.trySend(m, data)
}

func (r *Room) marshal(v any) ([]byte, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("room", string(r.code)).Msg("marshal outbound")
		return nil, false
	}
	return data, true
}

func (r *Room) trySend(m *member, data []byte) {
	if err := m.conn.TrySend(data); err != nil {
		log.Warn().Err(err).Str("module", "core.room").Str("room", string(r.code)).Str("player", m.meta.Name).Msg("dropped frame for slow consumer")
	}
}
