package domain

import "strings"

// Role is the closed set of console roles issued by the asset API.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// ParseRole normalises a role string. Anything outside the closed set is a
// regular user.
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleManager:
		return RoleManager
	default:
		return RoleUser
	}
}

// User is the profile returned by the asset API on login or registration.
type User struct {
	ID        int64  `json:"id,omitempty"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role,omitempty"`
}

func (u User) IsAdmin() bool {
	return ParseRole(u.Role) == RoleAdmin
}

func (u User) IsManagerOrAdmin() bool {
	r := ParseRole(u.Role)
	return r == RoleAdmin || r == RoleManager
}
