package model

import "time"

// Achievement is a catalog entry. Condition is a "type:threshold" pair, e.g.
// "chores_completed:10"; unrecognized condition types never unlock.
type Achievement struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	BonusPoints int       `json:"bonus_points"`
	Rarity      string    `json:"rarity"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserAchievement records an unlock. At most one row per (user, achievement).
type UserAchievement struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	AchievementID int64     `json:"achievement_id"`
	Progress      int       `json:"progress"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
