package model

import "time"

type User struct {
	ID                  int64     `json:"id"`
	FamilyID            int64     `json:"family_id"`
	Email               string    `json:"email"`
	Name                string    `json:"name"`
	Role                string    `json:"role"`
	Color               string    `json:"color"`
	AvatarEmoji         string    `json:"avatar_emoji"`
	PointsBalance       int       `json:"points_balance"`
	GamificationEnabled bool      `json:"gamification_enabled"`
	HasPIN              bool      `json:"has_pin"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// IsGuardian reports whether the user holds an elevated family role.
func (u *User) IsGuardian() bool {
	return IsGuardianRole(u.Role)
}
