package app

import (
	crand "crypto/rand"
	"math/big"
	"math/rand/v2"

	"spyfall/internal/domain"
)

const (
	roomCodeLength = 6
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// newRoomCode returns a short code players can read out loud. Collisions
// with live rooms are the registry's problem, not the generator's.
func newRoomCode() domain.RoomCode {
	code := make([]byte, roomCodeLength)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(roomCodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
			continue
		}
		code[i] = roomCodeChars[n.Int64()]
	}
	return domain.RoomCode(code)
}
