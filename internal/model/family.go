package model

import "time"

type Family struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Role values for family members.
const (
	RoleParent = "parent"
	RoleAdmin  = "admin"
	RoleChild  = "child"
)

// IsGuardianRole reports whether the role may assign, verify, and manage
// chores and rewards for other members.
func IsGuardianRole(role string) bool {
	return role == RoleParent || role == RoleAdmin
}
