package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.CalendarEvent, error) {
	var e model.CalendarEvent
	var allDay int
	var memberID sql.NullInt64
	var reminder sql.NullInt64

	err := scanner.Scan(
		&e.ID, &e.FamilyID, &e.Title, &e.Description, &e.StartTime, &e.EndTime,
		&allDay, &memberID, &e.Location, &e.RecurrenceRule, &reminder, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.AllDay = allDay != 0
	if memberID.Valid {
		e.MemberID = &memberID.Int64
	}
	if reminder.Valid {
		m := int(reminder.Int64)
		e.ReminderMinutes = &m
	}
	return &e, nil
}

const eventCols = `id, family_id, title, description, start_time, end_time, all_day, member_id, location, recurrence_rule, reminder_minutes, created_at, updated_at`

func (s *EventStore) Create(familyID int64, title, description string, start, end time.Time, allDay bool, memberID *int64, location, recurrenceRule string, reminderMinutes *int) (*model.CalendarEvent, error) {
	var ad int
	if allDay {
		ad = 1
	}
	var mID sql.NullInt64
	if memberID != nil {
		mID = sql.NullInt64{Int64: *memberID, Valid: true}
	}
	var rem sql.NullInt64
	if reminderMinutes != nil {
		rem = sql.NullInt64{Int64: int64(*reminderMinutes), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO calendar_events (family_id, title, description, start_time, end_time, all_day, member_id, location, recurrence_rule, reminder_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		familyID, title, description, start.UTC(), end.UTC(), ad, mID, location, recurrenceRule, rem,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.CalendarEvent, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM calendar_events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListByRange returns the family's events overlapping [start, end), plus all
// recurring events (the caller expands those against the range).
func (s *EventStore) ListByRange(familyID int64, start, end time.Time) ([]model.CalendarEvent, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM calendar_events
		 WHERE family_id = ? AND (recurrence_rule != '' OR (start_time < ? AND end_time >= ?))
		 ORDER BY start_time ASC`,
		familyID, end.UTC(), start.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list events by range: %w", err)
	}
	defer rows.Close()

	var events []model.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) Update(id int64, title, description string, start, end time.Time, allDay bool, memberID *int64, location, recurrenceRule string, reminderMinutes *int) (*model.CalendarEvent, error) {
	var ad int
	if allDay {
		ad = 1
	}
	var mID sql.NullInt64
	if memberID != nil {
		mID = sql.NullInt64{Int64: *memberID, Valid: true}
	}
	var rem sql.NullInt64
	if reminderMinutes != nil {
		rem = sql.NullInt64{Int64: int64(*reminderMinutes), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE calendar_events SET title = ?, description = ?, start_time = ?, end_time = ?, all_day = ?, member_id = ?, location = ?, recurrence_rule = ?, reminder_minutes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, description, start.UTC(), end.UTC(), ad, mID, location, recurrenceRule, rem, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM calendar_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ListUpcomingReminders returns events across all families whose reminder
// window falls inside [start, end). Feeds the push reminder loop.
func (s *EventStore) ListUpcomingReminders(start, end time.Time) ([]model.CalendarEvent, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM calendar_events
		 WHERE reminder_minutes IS NOT NULL
		   AND datetime(start_time, '-' || reminder_minutes || ' minutes') >= ?
		   AND datetime(start_time, '-' || reminder_minutes || ' minutes') < ?
		 ORDER BY start_time ASC`,
		start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming reminders: %w", err)
	}
	defer rows.Close()

	var events []model.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
