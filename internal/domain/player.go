// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const MaxPlayerNameLen = 36

var (
	ErrNameEmpty   = errors.New("player name empty")
	ErrNameTooLong = errors.New("player name too long")
)

// Role is what a player knows about the game. The spy gets the topic
// but not the location.
type Role string

const (
	RoleNone     Role = ""
	RoleCivilian Role = "civilian"
	RoleSpy      Role = "spy"
)

// Player is a room member's game-facing state. Transport handles live
// in core, never here.
type Player struct {
	Name          string
	Role          Role
	FinishedIntro bool
}

// NewPlayer avoids ad-hoc struct literals in adapters and validates
// the only piece of identity the server accepts.
func NewPlayer(name string) (*Player, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxPlayerNameLen {
		return nil, ErrNameTooLong
	}
	return &Player{Name: name}, nil
}
