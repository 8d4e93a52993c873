package model

import "time"

// Point transaction type tags.
const (
	PointsChorePending        = "chore_pending"
	PointsChoreCompleted      = "chore_completed"
	PointsAchievementUnlocked = "achievement_unlocked"
	PointsRewardRedeemed      = "reward_redeemed"
)

// PointTransaction is an append-only ledger entry. The ledger is a history,
// not the source of truth for a member's current balance; the cached
// users.points_balance column is.
type PointTransaction struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	FamilyID     int64     `json:"family_id"`
	Amount       int       `json:"amount"`
	Type         string    `json:"type"`
	Description  string    `json:"description"`
	AssignmentID *int64    `json:"assignment_id"`
	CreatedBy    *int64    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStreak tracks consecutive calendar days with at least one verified
// completion. One row per user, created lazily on first verification.
type UserStreak struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	StreakType       string    `json:"streak_type"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	LastActivityDate time.Time `json:"last_activity_date"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Allowance payment statuses.
const (
	AllowancePending = "pending"
	AllowancePaid    = "paid"
)

// AllowancePayment records a monetary allowance owed for a verified
// assignment, distinct from the points ledger. Fulfillment is a separate
// workflow; settlement only creates the pending liability.
type AllowancePayment struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	FamilyID     int64      `json:"family_id"`
	AssignmentID int64      `json:"assignment_id"`
	AmountCents  int        `json:"amount_cents"`
	Status       string     `json:"status"`
	PaidAt       *time.Time `json:"paid_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

type LeaderboardEntry struct {
	UserID        int64  `json:"user_id"`
	Name          string `json:"name"`
	AvatarEmoji   string `json:"avatar_emoji"`
	PointsBalance int    `json:"points_balance"`
	CurrentStreak int    `json:"current_streak"`
}
