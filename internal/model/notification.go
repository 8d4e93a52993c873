package model

import "time"

// Notification type constants.
const (
	NotifChoreAssigned       = "chore_assigned"
	NotifChoreCompleted      = "chore_completed"
	NotifChoreVerified       = "chore_verified"
	NotifChoreRejected       = "chore_rejected"
	NotifAchievementUnlocked = "achievement_unlocked"
	NotifRewardRedeemed      = "reward_redeemed"
	NotifGroceryAdded        = "grocery_added"
	NotifCalendarReminder    = "calendar_reminder"
)

// Notification is a fire-and-forget in-app record delivered to a user within
// a family context.
type Notification struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
