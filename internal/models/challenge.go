package models

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

const (
	ChallengePending  ChallengeStatus = "pending"
	ChallengeAccepted ChallengeStatus = "accepted"
	ChallengeDeclined ChallengeStatus = "declined"
)

// Challenge is an invitation from one user to another for a specific game.
type Challenge struct {
	ID           string          `json:"id"`
	Inviter      User            `json:"inviter"`
	InviteeEmail string          `json:"inviteeEmail"`
	GameID       GameID          `json:"gameId"`
	Status       ChallengeStatus `json:"status"`
}

// IncomingFor reports whether the challenge shows up in email's lobby.
func (c Challenge) IncomingFor(email string) bool {
	return c.InviteeEmail == email && c.Status == ChallengePending
}
