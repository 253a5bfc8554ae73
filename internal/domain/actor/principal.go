package actor

import "slices"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDirector Role = "director"
	RoleViewer   Role = "viewer"
)

// Principal is the authenticated caller as resolved by the identity provider.
type Principal struct {
	UserID        string
	Email         string
	Role          Role
	TournamentIDs []string
}

func (p Principal) CanCreateTournament() bool {
	return p.Role == RoleAdmin || p.Role == RoleDirector
}

func (p Principal) CanManageSeasons() bool {
	return p.Role == RoleAdmin
}

// CanDirect reports whether the principal owns or is assigned to the tournament.
func (p Principal) CanDirect(tournamentID, ownerID string) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleDirector:
		return p.UserID == ownerID || slices.Contains(p.TournamentIDs, tournamentID)
	default:
		return false
	}
}
