package model

import "time"

type Chore struct {
	ID             int64     `json:"id"`
	FamilyID       int64     `json:"family_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Points         int       `json:"points"`
	AllowanceCents int       `json:"allowance_cents"`
	Category       string    `json:"category"`
	Difficulty     string    `json:"difficulty"`
	RecurrenceRule string    `json:"recurrence_rule"`
	CreatedBy      *int64    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Assignment status lifecycle: pending -> completed -> verified | rejected.
// Verified and rejected are terminal.
const (
	AssignmentPending   = "pending"
	AssignmentCompleted = "completed"
	AssignmentVerified  = "verified"
	AssignmentRejected  = "rejected"
)

// ChoreAssignment is one instance of a chore given to one family member.
// Points and allowance are snapshotted from the chore at assignment time so
// settlement is unaffected by later edits or deletion of the chore template.
type ChoreAssignment struct {
	ID             int64      `json:"id"`
	ChoreID        int64      `json:"chore_id"`
	FamilyID       int64      `json:"family_id"`
	Title          string     `json:"title"`
	Points         int        `json:"points"`
	AllowanceCents int        `json:"allowance_cents"`
	AssignedTo     int64      `json:"assigned_to"`
	AssignedBy     int64      `json:"assigned_by"`
	Status         string     `json:"status"`
	DueDate        *time.Time `json:"due_date"`
	Notes          string     `json:"notes"`
	CompletedAt    *time.Time `json:"completed_at"`
	VerifiedAt     *time.Time `json:"verified_at"`
	VerifiedBy     *int64     `json:"verified_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
