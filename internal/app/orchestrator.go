package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"spyfall/internal/core"
	"spyfall/internal/domain"
	"spyfall/internal/protocol"
)

// Orchestrator is the single dispatch point for inbound frames: registry
// operations, room operations, and the pass-through signaling and chat
// relays.
type Orchestrator struct {
	Registry *Registry
}

func NewOrchestrator(reg *Registry) *Orchestrator {
	return &Orchestrator{Registry: reg}
}

// HandleMessage classifies one frame and routes it. Malformed or unknown
// frames are logged and dropped; guarded operations answer the offending
// connection with an error payload and leave room state alone.
func (o *Orchestrator) HandleMessage(conn core.Conn, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.orchestrator").Msg("dropping inbound frame")
		return
	}

	switch m := msg.(type) {
	case protocol.CreateRoom:
		code := o.Registry.CreateRoom()
		o.send(conn, protocol.RoomCreated{Type: protocol.TypeRoomCreated, RoomCode: string(code)})

	case protocol.JoinRoom:
		room, ok := o.Registry.Get(domain.RoomCode(m.RoomCode))
		if !ok {
			o.sendError(conn, "Room not found")
			return
		}
		if err := room.AddPlayer(conn, m.PlayerName); err != nil {
			o.sendError(conn, err.Error())
		}

	case protocol.StartGame:
		room, ok := o.Registry.Get(domain.RoomCode(m.RoomCode))
		if !ok {
			log.Warn().Str("module", "app.orchestrator").Str("room", m.RoomCode).Msg("start-game for unknown room")
			return
		}
		if err := room.StartGame(); err != nil {
			o.sendError(conn, err.Error())
		}

	case protocol.Offer:
		o.relayExcept(conn, m.RoomCode, protocol.ForwardedOffer{Type: protocol.TypeOffer, Offer: m.Offer, From: m.From})

	case protocol.Answer:
		o.relayExcept(conn, m.RoomCode, protocol.ForwardedAnswer{Type: protocol.TypeAnswer, Answer: m.Answer, From: m.From})

	case protocol.ICECandidate:
		o.relayExcept(conn, m.RoomCode, protocol.ForwardedCandidate{Type: protocol.TypeICECandidate, Candidate: m.Candidate, From: m.From})

	case protocol.SendMessage:
		if room, ok := o.Registry.Get(domain.RoomCode(m.RoomCode)); ok {
			room.Broadcast(protocol.NewMessage{Type: protocol.TypeNewMessage, Message: m.Message, PlayerName: m.PlayerName})
		}

	case protocol.FinishIntroduction:
		if room, ok := o.Registry.Get(domain.RoomCode(m.RoomCode)); ok {
			room.FinishIntroduction(m.PlayerName)
		}

	case protocol.StartDiscussion:
		if room, ok := o.Registry.Get(domain.RoomCode(m.RoomCode)); ok {
			room.StartDiscussion()
		}

	case protocol.CastVote:
		if room, ok := o.Registry.Get(domain.RoomCode(m.RoomCode)); ok {
			room.RegisterVote(m.PlayerName, m.Vote)
		}

	case protocol.SpyGuess:
		if room, ok := o.Registry.Get(domain.RoomCode(m.RoomCode)); ok {
			room.SpyGuess(m.Guess)
		}

	case protocol.Ping:
		o.send(conn, protocol.Pong{Type: protocol.TypePong})

	default:
		log.Warn().Str("module", "app.orchestrator").Msg("decoded message with no handler")
	}
}

// OnDisconnect routes a transport-level close to the registry.
func (o *Orchestrator) OnDisconnect(conn core.Conn) {
	o.Registry.DropConnection(conn)
}

func (o *Orchestrator) relayExcept(sender core.Conn, roomCode string, v any) {
	room, ok := o.Registry.Get(domain.RoomCode(roomCode))
	if !ok {
		log.Debug().Str("module", "app.orchestrator").Str("room", roomCode).Msg("relay for unknown room")
		return
	}
	room.BroadcastExcept(sender, v)
}

func (o *Orchestrator) send(conn core.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orchestrator").Msg("marshal reply")
		return
	}
	if err := conn.TrySend(data); err != nil {
		log.Warn().Err(err).Str("module", "app.orchestrator").Msg("reply dropped")
	}
}

func (o *Orchestrator) sendError(conn core.Conn, msg string) {
	o.send(conn, protocol.ErrorMessage{Type: protocol.TypeError, Message: msg})
}
