package core

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"spyfall/internal/domain"
	"spyfall/internal/protocol"
)

var (
	ErrNameTaken        = errors.New("a player with that name is already in the room")
	ErrNotEnoughPlayers = errors.New("not enough players to start the game")
)

// Config carries the tunables a room needs. Values come from process
// config; tests shrink the durations.
type Config struct {
	MinPlayers         int
	MaxRounds          int
	IntroTurnDuration  time.Duration
	DiscussionDuration time.Duration
	Locations          []string
	Topic              string
}

// member binds a player's game state to its transport capability.
// The room is the sole mutator of both.
type member struct {
	meta *domain.Player
	conn Conn
}

// Room owns one game's full lifecycle. Every exported method serializes
// on the room mutex; timer callbacks re-enter through the same lock, so
// no two mutations ever interleave.
type Room struct {
	code domain.RoomCode
	cfg  Config

	mu          sync.Mutex
	members     []*member // join order, drives turn rotation
	phase       domain.Phase
	gameStarted bool
	round       int

	secretLocation string
	topic          string
	spy            *member

	introducing    bool
	introQueue     []*member
	currentSpeaker *member

	speakerTimer    phaseTimer
	discussionTimer phaseTimer

	votes     map[string]string // voter name -> suspect name
	tallyDone bool
}

func NewRoom(code domain.RoomCode, cfg Config) *Room {
	return &Room{
		code:  code,
		cfg:   cfg,
		phase: domain.PhaseLobby,
		votes: make(map[string]string),
	}
}

func (r *Room) Code() domain.RoomCode { return r.code }

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) Phase() domain.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *Room) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

// PlayerNames returns the roster in join order.
func (r *Room) PlayerNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.namesLocked()
}

func (r *Room) namesLocked() []string {
	names := make([]string, 0, len(r.members))
	for _, m := range r.members {
		names = append(names, m.meta.Name)
	}
	return names
}

// AddPlayer appends a new member and announces the updated roster.
// Name collisions are rejected without mutating membership.
func (r *Room) AddPlayer(conn Conn, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if m.meta.Name == name {
			return ErrNameTaken
		}
	}
	p, err := domain.NewPlayer(name)
	if err != nil {
		return err
	}
	r.members = append(r.members, &member{meta: p, conn: conn})
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("player", name).Int("members", len(r.members)).Msg("player joined")

	r.fanout(protocol.PlayersUpdated{Type: protocol.TypePlayersUpdated, Players: r.namesLocked()})
	if len(r.members) == r.cfg.MinPlayers {
		r.fanout(protocol.ShowStartButton{Type: protocol.TypeShowStartButton})
	}
	if len(r.members) < r.cfg.MinPlayers {
		r.fanout(protocol.Status{Type: protocol.TypeStatus, Message: "Waiting for more players..."})
	} else {
		r.fanout(protocol.Status{Type: protocol.TypeStatus, Message: "Enough players, the game can start!"})
	}
	return nil
}

// RemovePlayer drops the member holding conn, if any, and performs the
// compensating transitions: queue removal, speaker advancement, vote
// ledger adjustment. Reports whether anything was removed.
func (r *Room) RemovePlayer(conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, m := range r.members {
		if m.conn == conn {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	leaving := r.members[idx]
	r.members = append(r.members[:idx], r.members[idx+1:]...)

	for i, q := range r.introQueue {
		if q == leaving {
			r.introQueue = append(r.introQueue[:i], r.introQueue[i+1:]...)
			break
		}
	}
	delete(r.votes, leaving.meta.Name)

	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("player", leaving.meta.Name).Int("members", len(r.members)).Msg("player left")
	r.fanout(protocol.PlayerLeft{Type: protocol.TypePlayerLeft, PlayerName: leaving.meta.Name})
	r.fanout(protocol.PlayersUpdated{Type: protocol.TypePlayersUpdated, Players: r.namesLocked()})

	if r.introducing && r.currentSpeaker == leaving {
		r.finishCurrentSpeakerLocked()
	}

	// A departure can complete an otherwise stuck ledger.
	if r.gameStarted && !r.tallyDone {
		r.tallyLocked()
	}
	return true
}

// StartGame assigns roles and kicks off the introduction phase. Guarded:
// nothing changes with fewer than the configured minimum of players.
func (r *Room) StartGame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.members) < r.cfg.MinPlayers {
		return ErrNotEnoughPlayers
	}

	r.gameStarted = true
	r.phase = domain.PhaseRoleAssignment
	r.round = 1
	r.tallyDone = false
	r.votes = make(map[string]string)

	r.secretLocation = r.cfg.Locations[rand.IntN(len(r.cfg.Locations))]
	r.topic = r.cfg.Topic

	spyIdx := rand.IntN(len(r.members))
	r.spy = r.members[spyIdx]
	for i, m := range r.members {
		if i == spyIdx {
			m.meta.Role = domain.RoleSpy
			r.sendTo(m, protocol.Role{Type: protocol.TypeRole, Role: string(domain.RoleSpy), Topic: r.topic})
		} else {
			m.meta.Role = domain.RoleCivilian
			r.sendTo(m, protocol.Role{Type: protocol.TypeRole, Role: string(domain.RoleCivilian), Topic: r.topic, Location: r.secretLocation})
		}
	}

	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("location", r.secretLocation).Msg("game started")
	r.fanout(protocol.GameStarted{Type: protocol.TypeGameStarted, Round: r.round})
	r.startIntroductionLocked()
	return nil
}

func (r *Room) startIntroductionLocked() {
	r.phase = domain.PhaseIntroduction
	r.introducing = true
	for _, m := range r.members {
		m.meta.FinishedIntro = false
	}
	r.introQueue = append([]*member(nil), r.members...)

	first := r.popQueueLocked()
	r.currentSpeaker = first
	r.fanout(protocol.StartIntroduction{
		Type:          protocol.TypeStartIntroduction,
		Players:       r.namesLocked(),
		CurrentPlayer: first.meta.Name,
		NextPlayer:    r.peekQueueLocked(),
	})
	r.armSpeakerTimerLocked(first)
}

// FinishIntroduction ends the current speaker's turn on their explicit
// signal. Out-of-turn signals are dropped.
func (r *Room) FinishIntroduction(playerName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.introducing || r.currentSpeaker == nil {
		log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("player", playerName).Msg("finish-introduction outside introduction phase")
		return
	}
	if r.currentSpeaker.meta.Name != playerName {
		log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("player", playerName).Str("speaker", r.currentSpeaker.meta.Name).Msg("finish-introduction from non-speaker")
		return
	}
	r.finishCurrentSpeakerLocked()
}

func (r *Room) finishCurrentSpeakerLocked() {
	r.speakerTimer.Cancel()
	if r.currentSpeaker != nil {
		r.currentSpeaker.meta.FinishedIntro = true
	}

	if len(r.introQueue) > 0 {
		next := r.popQueueLocked()
		r.currentSpeaker = next
		r.fanout(protocol.NextIntroducer{
			Type:          protocol.TypeNextIntroducer,
			CurrentPlayer: next.meta.Name,
			NextPlayer:    r.peekQueueLocked(),
		})
		r.armSpeakerTimerLocked(next)
		return
	}

	r.currentSpeaker = nil
	r.introducing = false
	r.fanout(protocol.IntroductionEnded{Type: protocol.TypeIntroductionEnded})
	r.nextRoundLocked()
}

func (r *Room) armSpeakerTimerLocked(speaker *member) {
	name := speaker.meta.Name
	r.speakerTimer.Arm(r.cfg.IntroTurnDuration, func() {
		r.onSpeakerTimeout(name)
	})
}

func (r *Room) onSpeakerTimeout(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.introducing || r.currentSpeaker == nil || r.currentSpeaker.meta.Name != name {
		return
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("speaker", name).Msg("introduction turn timed out")
	r.finishCurrentSpeakerLocked()
}

// StartDiscussion opens the timed open-discussion window. Voting starts
// automatically when the timer elapses.
func (r *Room) StartDiscussion() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.gameStarted {
		log.Debug().Str("module", "core.room").Str("room", string(r.code)).Msg("start-discussion before game start")
		return
	}
	r.phase = domain.PhaseDiscussion
	r.fanout(protocol.DiscussionStarted{Type: protocol.TypeDiscussionStarted})
	r.discussionTimer.Arm(r.cfg.DiscussionDuration, r.onDiscussionTimeout)
}

func (r *Room) onDiscussionTimeout() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseDiscussion {
		return
	}
	r.phase = domain.PhaseVoting
	r.tallyDone = false
	r.fanout(protocol.DiscussionEnded{Type: protocol.TypeDiscussionEnded})
	r.fanout(protocol.StartVoting{Type: protocol.TypeStartVoting})
}

// RegisterVote records one vote per voter per round; a repeat vote
// overwrites the earlier one. Votes after the round's tally resolved
// are dropped. The tally fires once the ledger covers every member.
func (r *Room) RegisterVote(voter, suspect string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.gameStarted || r.round > r.cfg.MaxRounds || r.tallyDone {
		log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("voter", voter).Msg("vote dropped")
		return
	}
	r.votes[voter] = suspect
	r.tallyLocked()
}

// SpyGuess resolves the spy's location guess: a match wins the game for
// the spy, a miss hands it to the civilians. Either way the game ends.
func (r *Room) SpyGuess(guess string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.gameStarted || r.spy == nil {
		log.Debug().Str("module", "core.room").Str("room", string(r.code)).Msg("spy-guess outside a running game")
		return
	}
	if guess == r.secretLocation {
		r.fanout(protocol.SpyWon{Type: protocol.TypeSpyWon, SpyName: r.spy.meta.Name})
	} else {
		r.fanout(protocol.CiviliansWon{Type: protocol.TypeCiviliansWon})
	}
	r.endGameLocked()
}

func (r *Room) nextRoundLocked() {
	r.round++
	if r.round > r.cfg.MaxRounds {
		r.endGameLocked()
		return
	}
	// Voting reopens on the next start-voting broadcast; until then a
	// late vote for the resolved round is dropped.
	r.phase = domain.PhaseResolution
	r.fanout(protocol.NextRound{Type: protocol.TypeNextRound, Round: r.round})
}

func (r *Room) endGameLocked() {
	r.speakerTimer.Cancel()
	r.discussionTimer.Cancel()

	r.fanout(protocol.GameEnded{Type: protocol.TypeGameEnded})
	r.gameStarted = false
	r.phase = domain.PhaseEnded
	r.introducing = false
	r.currentSpeaker = nil
	r.introQueue = nil
	r.spy = nil
	r.secretLocation = ""
	r.topic = ""
	r.votes = make(map[string]string)
	for _, m := range r.members {
		m.meta.Role = domain.RoleNone
		m.meta.FinishedIntro = false
	}
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Msg("game ended")
}

func (r *Room) popQueueLocked() *member {
	m := r.introQueue[0]
	r.introQueue = r.introQueue[1:]
	return m
}

func (r *Room) peekQueueLocked() string {
	if len(r.introQueue) == 0 {
		return ""
	}
	return r.introQueue[0].meta.Name
}
