package core

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spyfall/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (c *fakeConn) TrySend(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	c.frames = append(c.frames, cp)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) typesSeen(t *testing.T) []string {
	t.Helper()
	msgs := c.messages(t)
	types := make([]string, 0, len(msgs))
	for _, m := range msgs {
		types = append(types, m["type"].(string))
	}
	return types
}

func (c *fakeConn) countOfType(t *testing.T, typ string) int {
	t.Helper()
	n := 0
	for _, m := range c.messages(t) {
		if m["type"] == typ {
			n++
		}
	}
	return n
}

func (c *fakeConn) lastOfType(t *testing.T, typ string) (map[string]any, bool) {
	t.Helper()
	var found map[string]any
	ok := false
	for _, m := range c.messages(t) {
		if m["type"] == typ {
			found = m
			ok = true
		}
	}
	return found, ok
}

func testConfig() Config {
	return Config{
		MinPlayers:         3,
		MaxRounds:          3,
		IntroTurnDuration:  time.Hour,
		DiscussionDuration: time.Hour,
		Locations:          []string{"Airport", "Restaurant", "School", "Museum"},
		Topic:              "Travel",
	}
}

func setupRoom(t *testing.T, cfg Config, names ...string) (*Room, map[string]*fakeConn) {
	t.Helper()
	r := NewRoom("TEST01", cfg)
	conns := make(map[string]*fakeConn, len(names))
	for _, name := range names {
		conn := &fakeConn{}
		require.NoError(t, r.AddPlayer(conn, name))
		conns[name] = conn
	}
	return r, conns
}

func startedRoom(t *testing.T, cfg Config) (*Room, map[string]*fakeConn) {
	t.Helper()
	r, conns := setupRoom(t, cfg, "Ann", "Bo", "Cy")
	require.NoError(t, r.StartGame())
	return r, conns
}

// drainIntroductions walks the speaker queue to its end via explicit
// finish signals, landing the room in round 2.
func drainIntroductions(t *testing.T, r *Room) {
	t.Helper()
	for _, name := range []string{"Ann", "Bo", "Cy"} {
		r.FinishIntroduction(name)
	}
	require.Equal(t, 2, r.Round())
}

func spyAndCivilians(r *Room) (spy string, civilians []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.meta.Role == domain.RoleSpy {
			spy = m.meta.Name
		} else {
			civilians = append(civilians, m.meta.Name)
		}
	}
	return spy, civilians
}

func TestAddPlayerDuplicateNameRejected(t *testing.T) {
	r, _ := setupRoom(t, testConfig(), "Ann")
	dup := &fakeConn{}

	err := r.AddPlayer(dup, "Ann")

	assert.ErrorIs(t, err, ErrNameTaken)
	assert.Equal(t, 1, r.MemberCount())
	assert.Empty(t, dup.frames)
}

func TestAddPlayerBroadcastsRoster(t *testing.T) {
	r, conns := setupRoom(t, testConfig(), "Ann", "Bo", "Cy")

	ann := conns["Ann"]
	assert.Equal(t, 3, ann.countOfType(t, "players-updated"))

	roster, ok := ann.lastOfType(t, "players-updated")
	require.True(t, ok)
	assert.Equal(t, []any{"Ann", "Bo", "Cy"}, roster["players"])
	assert.Equal(t, []string{"Ann", "Bo", "Cy"}, r.PlayerNames())

	// The ready signal fires exactly once, when the threshold is hit.
	assert.Equal(t, 1, ann.countOfType(t, "show-start-button"))
	assert.Equal(t, 1, conns["Cy"].countOfType(t, "show-start-button"))
}

func TestStartGameRequiresMinPlayers(t *testing.T) {
	r, conns := setupRoom(t, testConfig(), "Ann", "Bo")

	err := r.StartGame()

	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Equal(t, domain.PhaseLobby, r.Phase())
	assert.Equal(t, 0, conns["Ann"].countOfType(t, "game-started"))
}

func TestStartGameAssignsExactlyOneSpy(t *testing.T) {
	_, conns := startedRoom(t, testConfig())

	spies := 0
	locations := map[string]bool{}
	for name, conn := range conns {
		role, ok := conn.lastOfType(t, "role")
		require.True(t, ok, "player %s got no role", name)
		assert.Equal(t, "Travel", role["topic"])
		switch role["role"] {
		case "spy":
			spies++
			_, hasLocation := role["location"]
			assert.False(t, hasLocation, "spy must not learn the location")
		case "civilian":
			locations[role["location"].(string)] = true
		default:
			t.Fatalf("unexpected role payload: %v", role)
		}
		started, ok := conn.lastOfType(t, "game-started")
		require.True(t, ok)
		assert.Equal(t, float64(1), started["round"])
	}
	assert.Equal(t, 1, spies)
	assert.Len(t, locations, 1, "civilians must share one location")
}

func TestStartGameOpensIntroductions(t *testing.T) {
	r, conns := startedRoom(t, testConfig())

	assert.Equal(t, domain.PhaseIntroduction, r.Phase())
	intro, ok := conns["Cy"].lastOfType(t, "start-introduction")
	require.True(t, ok)
	assert.Equal(t, []any{"Ann", "Bo", "Cy"}, intro["players"])
	assert.Equal(t, "Ann", intro["currentPlayer"])
	assert.Equal(t, "Bo", intro["nextPlayer"])
}

func TestIntroductionQueueDrainsInJoinOrder(t *testing.T) {
	r, conns := startedRoom(t, testConfig())
	bo := conns["Bo"]

	r.FinishIntroduction("Ann")
	next, ok := bo.lastOfType(t, "next-introducer")
	require.True(t, ok)
	assert.Equal(t, "Bo", next["currentPlayer"])
	assert.Equal(t, "Cy", next["nextPlayer"])

	r.FinishIntroduction("Bo")
	next, ok = bo.lastOfType(t, "next-introducer")
	require.True(t, ok)
	assert.Equal(t, "Cy", next["currentPlayer"])
	_, hasNext := next["nextPlayer"]
	assert.False(t, hasNext)

	r.FinishIntroduction("Cy")
	assert.Equal(t, 1, bo.countOfType(t, "introduction-ended"))
	assert.Equal(t, 2, bo.countOfType(t, "next-introducer"), "no speaker repeated or skipped")

	round, ok := bo.lastOfType(t, "next-round")
	require.True(t, ok)
	assert.Equal(t, float64(2), round["round"])
	assert.Equal(t, 2, r.Round())
}

func TestFinishIntroductionFromNonSpeakerIgnored(t *testing.T) {
	r, conns := startedRoom(t, testConfig())

	r.FinishIntroduction("Bo") // Ann is speaking

	assert.Equal(t, 0, conns["Ann"].countOfType(t, "next-introducer"))
}

func TestRemovingActiveSpeakerAdvancesTurn(t *testing.T) {
	r, conns := startedRoom(t, testConfig())

	removed := r.RemovePlayer(conns["Ann"])

	require.True(t, removed)
	bo := conns["Bo"]
	left, ok := bo.lastOfType(t, "player-left")
	require.True(t, ok)
	assert.Equal(t, "Ann", left["playerName"])
	next, ok := bo.lastOfType(t, "next-introducer")
	require.True(t, ok, "turn must advance without waiting for the timer")
	assert.Equal(t, "Bo", next["currentPlayer"])
}

func TestSpeakerTimerExpiryAdvancesTurn(t *testing.T) {
	cfg := testConfig()
	cfg.IntroTurnDuration = 20 * time.Millisecond
	_, conns := startedRoom(t, cfg)

	require.Eventually(t, func() bool {
		for _, m := range conns["Cy"].messages(t) {
			if m["type"] == "next-introducer" && m["currentPlayer"] == "Bo" {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func TestDiscussionTimerTriggersVoting(t *testing.T) {
	cfg := testConfig()
	cfg.DiscussionDuration = 20 * time.Millisecond
	r, conns := startedRoom(t, cfg)
	drainIntroductions(t, r)

	r.StartDiscussion()

	ann := conns["Ann"]
	assert.Equal(t, 1, ann.countOfType(t, "discussion-started"))
	require.Eventually(t, func() bool {
		return ann.countOfType(t, "start-voting") == 1
	}, 2*time.Second, 5*time.Millisecond)

	// discussion-ended fires before start-voting, from the same expiry.
	types := ann.typesSeen(t)
	endedIdx, votingIdx := -1, -1
	for i, typ := range types {
		if typ == "discussion-ended" {
			endedIdx = i
		}
		if typ == "start-voting" {
			votingIdx = i
		}
	}
	require.GreaterOrEqual(t, endedIdx, 0)
	assert.Equal(t, endedIdx+1, votingIdx)
}

func TestVoteTallyUniqueMaxAdvancesRound(t *testing.T) {
	r, conns := startedRoom(t, testConfig())
	drainIntroductions(t, r)

	_, civilians := spyAndCivilians(r)
	target := civilians[0]
	for _, voter := range []string{"Ann", "Bo", "Cy"} {
		r.RegisterVote(voter, target)
	}

	ann := conns["Ann"]
	result, ok := ann.lastOfType(t, "vote-result")
	require.True(t, ok)
	assert.Equal(t, target, result["suspect"])
	assert.Equal(t, 1, ann.countOfType(t, "vote-result"), "exactly one tally per full ledger")
	assert.Equal(t, 0, ann.countOfType(t, "civilians-won"))
	assert.Equal(t, 3, r.Round())
}

func TestVoteTallySpyAccusedEndsGame(t *testing.T) {
	r, conns := startedRoom(t, testConfig())
	drainIntroductions(t, r)

	spy, _ := spyAndCivilians(r)
	for _, voter := range []string{"Ann", "Bo", "Cy"} {
		r.RegisterVote(voter, spy)
	}

	ann := conns["Ann"]
	assert.Equal(t, 1, ann.countOfType(t, "civilians-won"))
	assert.Equal(t, 1, ann.countOfType(t, "game-ended"))
	assert.Equal(t, domain.PhaseEnded, r.Phase())

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.False(t, r.gameStarted)
	for _, m := range r.members {
		assert.Equal(t, domain.RoleNone, m.meta.Role)
	}
}

func TestVoteTallyTieBurnsRound(t *testing.T) {
	r, conns := startedRoom(t, testConfig())
	drainIntroductions(t, r)

	r.RegisterVote("Ann", "Bo")
	r.RegisterVote("Bo", "Cy")
	r.RegisterVote("Cy", "Ann")

	ann := conns["Ann"]
	tie, ok := ann.lastOfType(t, "tie")
	require.True(t, ok)
	assert.Equal(t, []any{"Ann", "Bo", "Cy"}, tie["suspects"])
	assert.Equal(t, 0, ann.countOfType(t, "vote-result"))
	assert.Equal(t, 3, r.Round())
}

func TestRepeatVoteOverwrites(t *testing.T) {
	r, conns := startedRoom(t, testConfig())
	drainIntroductions(t, r)

	r.RegisterVote("Ann", "Bo")
	r.RegisterVote("Ann", "Cy")

	assert.Equal(t, 0, conns["Ann"].countOfType(t, "vote-result"), "ledger must not fill from one voter")
	r.mu.Lock()
	assert.Equal(t, "Cy", r.votes["Ann"])
	assert.Len(t, r.votes, 1)
	r.mu.Unlock()
}

func TestVoteAfterTallyDropped(t *testing.T) {
	r, _ := startedRoom(t, testConfig())
	drainIntroductions(t, r)

	r.RegisterVote("Ann", "Bo")
	r.RegisterVote("Bo", "Cy")
	r.RegisterVote("Cy", "Ann") // tie resolves the round

	r.RegisterVote("Ann", "Bo")

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Empty(t, r.votes, "votes after the tally are dropped until voting reopens")
}

func TestMaxRoundsForcesGameEnd(t *testing.T) {
	cfg := testConfig()
	cfg.DiscussionDuration = 10 * time.Millisecond
	r, conns := startedRoom(t, cfg)
	drainIntroductions(t, r) // round 2

	r.RegisterVote("Ann", "Bo")
	r.RegisterVote("Bo", "Cy")
	r.RegisterVote("Cy", "Ann") // tie, round 3
	require.Equal(t, 3, r.Round())

	r.StartDiscussion()
	require.Eventually(t, func() bool {
		return conns["Ann"].countOfType(t, "start-voting") == 1
	}, 2*time.Second, 5*time.Millisecond)

	r.RegisterVote("Ann", "Bo")
	r.RegisterVote("Bo", "Cy")
	r.RegisterVote("Cy", "Ann") // tie again, round would be 4

	ann := conns["Ann"]
	assert.Equal(t, 1, ann.countOfType(t, "game-ended"))
	assert.Equal(t, domain.PhaseEnded, r.Phase())
}

func TestSpyGuessCorrectWinsForSpy(t *testing.T) {
	r, conns := startedRoom(t, testConfig())
	spy, _ := spyAndCivilians(r)

	r.mu.Lock()
	location := r.secretLocation
	r.mu.Unlock()
	r.SpyGuess(location)

	ann := conns["Ann"]
	won, ok := ann.lastOfType(t, "spy-won")
	require.True(t, ok)
	assert.Equal(t, spy, won["spyName"])
	assert.Equal(t, 1, ann.countOfType(t, "game-ended"))
	assert.Equal(t, domain.PhaseEnded, r.Phase())
}

func TestSpyGuessIncorrectWinsForCivilians(t *testing.T) {
	r, conns := startedRoom(t, testConfig())

	r.SpyGuess("Nowhere")

	ann := conns["Ann"]
	assert.Equal(t, 1, ann.countOfType(t, "civilians-won"))
	assert.Equal(t, 0, ann.countOfType(t, "spy-won"))
	assert.Equal(t, 1, ann.countOfType(t, "game-ended"))

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.False(t, r.gameStarted)
	for _, m := range r.members {
		assert.Equal(t, domain.RoleNone, m.meta.Role)
	}
}

func TestMidVoteDepartureResolvesTally(t *testing.T) {
	r, conns := startedRoom(t, testConfig())
	drainIntroductions(t, r)

	r.RegisterVote("Ann", "Bo")
	r.RegisterVote("Bo", "Ann")
	require.Equal(t, 0, conns["Ann"].countOfType(t, "tie"))

	r.RemovePlayer(conns["Cy"])

	tie, ok := conns["Ann"].lastOfType(t, "tie")
	require.True(t, ok, "departure must complete the stuck ledger")
	assert.Equal(t, []any{"Ann", "Bo"}, tie["suspects"])
}

func TestRemovePlayerUnknownConnNoop(t *testing.T) {
	r, _ := setupRoom(t, testConfig(), "Ann")

	assert.False(t, r.RemovePlayer(&fakeConn{}))
	assert.Equal(t, 1, r.MemberCount())
}

func TestEndGameKeepsMembershipForRematch(t *testing.T) {
	r, conns := startedRoom(t, testConfig())

	r.SpyGuess("Nowhere")
	require.Equal(t, domain.PhaseEnded, r.Phase())
	assert.Equal(t, 3, r.MemberCount())

	require.NoError(t, r.StartGame())
	started, ok := conns["Bo"].lastOfType(t, "game-started")
	require.True(t, ok)
	assert.Equal(t, float64(1), started["round"])
}
