// Package protocol defines the wire schema: a tagged JSON envelope with
// a "type" discriminator and type-specific fields. The inbound side is a
// closed set; Decode is the single place a raw frame becomes a typed
// message.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// Type is the envelope discriminator.
type Type string

const (
	TypeCreateRoom         Type = "create-room"
	TypeJoinRoom           Type = "join-room"
	TypeStartGame          Type = "start-game"
	TypeOffer              Type = "offer"
	TypeAnswer             Type = "answer"
	TypeICECandidate       Type = "ice-candidate"
	TypeSendMessage        Type = "send-message"
	TypeFinishIntroduction Type = "finish-introduction"
	TypeStartDiscussion    Type = "start-discussion"
	TypeCastVote           Type = "cast-vote"
	TypeSpyGuess           Type = "spy-guess"
	TypePing               Type = "ping"
)

var ErrUnknownType = errors.New("unknown message type")

// Inbound is the closed set of client messages. Decode returns exactly
// one of the structs below; dispatch is a type switch over them.
type Inbound interface{ inbound() }

type CreateRoom struct{}

type JoinRoom struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type StartGame struct {
	RoomCode string `json:"roomCode"`
}

// Offer, Answer and ICECandidate are relayed verbatim between room
// members. The payloads are typed with pion structs but never
// processed here; no PeerConnection exists on the server.
type Offer struct {
	RoomCode string                    `json:"roomCode"`
	Offer    webrtc.SessionDescription `json:"offer"`
	From     string                    `json:"from"`
}

type Answer struct {
	RoomCode string                    `json:"roomCode"`
	Answer   webrtc.SessionDescription `json:"answer"`
	From     string                    `json:"from"`
}

type ICECandidate struct {
	RoomCode  string                  `json:"roomCode"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
	From      string                  `json:"from"`
}

type SendMessage struct {
	RoomCode   string `json:"roomCode"`
	Message    string `json:"message"`
	PlayerName string `json:"playerName"`
}

type FinishIntroduction struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type StartDiscussion struct {
	RoomCode string `json:"roomCode"`
}

type CastVote struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
	Vote       string `json:"vote"`
}

type SpyGuess struct {
	RoomCode string `json:"roomCode"`
	Guess    string `json:"guess"`
}

type Ping struct{}

func (CreateRoom) inbound()         {}
func (JoinRoom) inbound()           {}
func (StartGame) inbound()          {}
func (Offer) inbound()              {}
func (Answer) inbound()             {}
func (ICECandidate) inbound()       {}
func (SendMessage) inbound()        {}
func (FinishIntroduction) inbound() {}
func (StartDiscussion) inbound()    {}
func (CastVote) inbound()           {}
func (SpyGuess) inbound()           {}
func (Ping) inbound()               {}

// Decode classifies a raw frame by its type tag and unmarshals the
// matching payload struct.
func Decode(data []byte) (Inbound, error) {
	var env struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var (
		msg Inbound
		err error
	)
	switch env.Type {
	case TypeCreateRoom:
		msg = CreateRoom{}
	case TypeJoinRoom:
		var p JoinRoom
		err = json.Unmarshal(data, &p)
		msg = p
	case TypeStartGame:
		var p StartGame
		err = json.Unmarshal(data, &p)
		msg = p
	case TypeOffer:
		var p Offer
		err = json.Unmarshal(data, &p)
		msg = p
	case TypeAnswer:
		var p Answer
		err = json.Unmarshal(data, &p)
		msg = p
	case TypeICECandidate:
		var p ICECandidate
		err = json.Unmarshal(data, &p)
		msg = p
	case TypeSendMessage:
		var p SendMessage
		err = json.Unmarshal(data, &p)
		msg = p
	case TypeFinishIntroduction:
		var p FinishIntroduction
		err = json.Unmarshal(data, &p)
		msg = p
	case TypeStartDiscussion:
		var p StartDiscussion
		err = json.Unmarshal(data, &p)
		msg = p
	case TypeCastVote:
		var p CastVote
		err = json.Unmarshal(data, &p)
		msg = p
	case TypeSpyGuess:
		var p SpyGuess
		err = json.Unmarshal(data, &p)
		msg = p
	case TypePing:
		msg = Ping{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return msg, nil
}
