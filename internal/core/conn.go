// Package core owns the room engine: membership, the game-phase state
// machine, timers, vote tallying and broadcast fan-out. It never touches
// transport resources beyond the Conn capability.
package core

// Conn is the transport capability a room holds for one player.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend([]byte) error
	Close()
}
