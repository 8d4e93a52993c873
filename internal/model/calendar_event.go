package model

import "time"

type CalendarEvent struct {
	ID             int64     `json:"id"`
	FamilyID       int64     `json:"family_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	AllDay         bool      `json:"all_day"`
	MemberID       *int64    `json:"member_id"`
	Location       string    `json:"location"`
	RecurrenceRule string    `json:"recurrence_rule"`
	// ReminderMinutes is the push reminder lead time; nil disables reminders.
	ReminderMinutes *int      `json:"reminder_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
