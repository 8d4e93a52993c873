// Package chore computes due dates for recurring chore templates. One-off
// chores are assigned manually; recurring ones get their schedule from an
// RRULE on the template.
package chore

import (
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/recurrence"
)

// DueOn reports whether a recurring chore has an occurrence on the given
// calendar day. One-off chores and chores with unparseable rules are never
// due by schedule.
func DueOn(c model.Chore, day time.Time) bool {
	if c.RecurrenceRule == "" {
		return false
	}
	rule, err := recurrence.Parse(c.RecurrenceRule)
	if err != nil {
		return false
	}

	dayStart := startOfDay(day)
	occs := recurrence.Expand(rule, c.CreatedAt, c.CreatedAt.Add(time.Hour), dayStart, dayStart.AddDate(0, 0, 1))
	return len(occs) > 0
}

// NextDue returns the first scheduled occurrence strictly after t, or nil
// for one-off chores and exhausted or invalid rules.
func NextDue(c model.Chore, t time.Time) *time.Time {
	if c.RecurrenceRule == "" {
		return nil
	}
	rule, err := recurrence.Parse(c.RecurrenceRule)
	if err != nil {
		return nil
	}
	return recurrence.NextAfter(rule, c.CreatedAt, t)
}

// DescribeSchedule returns a human-readable schedule, empty for one-off
// chores.
func DescribeSchedule(c model.Chore) string {
	if c.RecurrenceRule == "" {
		return ""
	}
	rule, err := recurrence.Parse(c.RecurrenceRule)
	if err != nil {
		return ""
	}
	return rule.Describe()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
