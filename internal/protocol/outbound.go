package protocol

import "github.com/pion/webrtc/v4"

const (
	TypeRoomCreated       Type = "room-created"
	TypePlayersUpdated    Type = "players-updated"
	TypePlayerLeft        Type = "player-left"
	TypeShowStartButton   Type = "show-start-button"
	TypeStatus            Type = "status"
	TypeRole              Type = "role"
	TypeGameStarted       Type = "game-started"
	TypeStartIntroduction Type = "start-introduction"
	TypeNextIntroducer    Type = "next-introducer"
	TypeIntroductionEnded Type = "introduction-ended"
	TypeNextRound         Type = "next-round"
	TypeDiscussionStarted Type = "discussion-started"
	TypeDiscussionEnded   Type = "discussion-ended"
	TypeStartVoting       Type = "start-voting"
	TypeVoteResult        Type = "vote-result"
	TypeTie               Type = "tie"
	TypeCiviliansWon      Type = "civilians-won"
	TypeSpyWon            Type = "spy-won"
	TypeGameEnded         Type = "game-ended"
	TypeNewMessage        Type = "new-message"
	TypeError             Type = "error"
	TypePong              Type = "pong"
)

// Outbound payloads carry their own type tag so a message can be
// marshaled once and fanned out to every member connection.

type RoomCreated struct {
	Type     Type   `json:"type"`
	RoomCode string `json:"roomCode"`
}

type PlayersUpdated struct {
	Type    Type     `json:"type"`
	Players []string `json:"players"`
}

type PlayerLeft struct {
	Type       Type   `json:"type"`
	PlayerName string `json:"playerName"`
}

type ShowStartButton struct {
	Type Type `json:"type"`
}

type Status struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

// Role is the only private outbound message; the spy variant omits the
// location.
type Role struct {
	Type     Type   `json:"type"`
	Role     string `json:"role"`
	Topic    string `json:"topic"`
	Location string `json:"location,omitempty"`
}

type GameStarted struct {
	Type  Type `json:"type"`
	Round int  `json:"round"`
}

type StartIntroduction struct {
	Type          Type     `json:"type"`
	Players       []string `json:"players"`
	CurrentPlayer string   `json:"currentPlayer"`
	NextPlayer    string   `json:"nextPlayer,omitempty"`
}

type NextIntroducer struct {
	Type          Type   `json:"type"`
	CurrentPlayer string `json:"currentPlayer"`
	NextPlayer    string `json:"nextPlayer,omitempty"`
}

type IntroductionEnded struct {
	Type Type `json:"type"`
}

type NextRound struct {
	Type  Type `json:"type"`
	Round int  `json:"round"`
}

type DiscussionStarted struct {
	Type Type `json:"type"`
}

type DiscussionEnded struct {
	Type Type `json:"type"`
}

type StartVoting struct {
	Type Type `json:"type"`
}

type VoteResult struct {
	Type    Type   `json:"type"`
	Suspect string `json:"suspect"`
}

type Tie struct {
	Type     Type     `json:"type"`
	Suspects []string `json:"suspects"`
}

type CiviliansWon struct {
	Type Type `json:"type"`
}

type SpyWon struct {
	Type    Type   `json:"type"`
	SpyName string `json:"spyName"`
}

type GameEnded struct {
	Type Type `json:"type"`
}

type NewMessage struct {
	Type       Type   `json:"type"`
	Message    string `json:"message"`
	PlayerName string `json:"playerName"`
}

type ErrorMessage struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

type Pong struct {
	Type Type `json:"type"`
}

// Forwarded* are the relayed signaling payloads, re-addressed without
// the room code.

type ForwardedOffer struct {
	Type  Type                      `json:"type"`
	Offer webrtc.SessionDescription `json:"offer"`
	From  string                    `json:"from"`
}

type ForwardedAnswer struct {
	Type   Type                      `json:"type"`
	Answer webrtc.SessionDescription `json:"answer"`
	From   string                    `json:"from"`
}

type ForwardedCandidate struct {
	Type      Type                    `json:"type"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
	From      string                  `json:"from"`
}
