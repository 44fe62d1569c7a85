package core

import (
	"sort"

	"github.com/rs/zerolog/log"

	"spyfall/internal/protocol"
)

// tallyLocked evaluates the vote ledger once it covers every current
// member. A unique top suspect is accused; accusing the spy ends the
// game for the civilians, anyone else burns the round. A tie burns the
// round with no elimination. The ledger is cleared either way.
func (r *Room) tallyLocked() {
	if len(r.votes) == 0 || len(r.votes) < len(r.members) {
		return
	}

	counts := make(map[string]int)
	for _, suspect := range r.votes {
		counts[suspect]++
	}
	maxVotes := 0
	for _, n := range counts {
		if n > maxVotes {
			maxVotes = n
		}
	}
	top := make([]string, 0, 1)
	for suspect, n := range counts {
		if n == maxVotes {
			top = append(top, suspect)
		}
	}
	sort.Strings(top)

	r.votes = make(map[string]string)
	r.tallyDone = true

	if len(top) == 1 {
		accused := top[0]
		log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("accused", accused).Int("votes", maxVotes).Msg("tally resolved")
		r.fanout(protocol.VoteResult{Type: protocol.TypeVoteResult, Suspect: accused})
		if r.spy != nil && accused == r.spy.meta.Name {
			r.fanout(protocol.CiviliansWon{Type: protocol.TypeCiviliansWon})
			r.endGameLocked()
			return
		}
		r.nextRoundLocked()
		return
	}

	log.Info().Str("module", "core.room").Str("room", string(r.code)).Strs("suspects", top).Msg("tally tied")
	r.fanout(protocol.Tie{Type: protocol.TypeTie, Suspects: top})
	r.nextRoundLocked()
}
