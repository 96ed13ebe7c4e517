package domain

import (
	"slices"
	"time"
)

// Role codes carried in access tokens.
const (
	RoleAttendee  = "attendee"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// Principal is the authenticated caller, resolved from the access token by the HTTP layer
// and passed explicitly into services.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}

// HasRole reports whether the principal holds any of the given roles.
func (p Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// CanManage reports whether the principal owns the event or is an admin.
func (p Principal) CanManage(e *Event) bool {
	return p.IsAdmin() || e.OwnerID == p.UserID
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the principal it was issued for.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}
