package domain

// RoomCode addresses one game session. Generated once, immutable.
type RoomCode string

// Phase is where a room's game currently stands.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseRoleAssignment
	PhaseIntroduction
	PhaseDiscussion
	PhaseVoting
	PhaseResolution
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseRoleAssignment:
		return "role-assignment"
	case PhaseIntroduction:
		return "introduction"
	case PhaseDiscussion:
		return "discussion"
	case PhaseVoting:
		return "voting"
	case PhaseResolution:
		return "resolution"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}
