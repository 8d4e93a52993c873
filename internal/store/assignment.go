package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.ChoreAssignment, error) {
	var a model.ChoreAssignment
	var dueDate, completedAt, verifiedAt sql.NullTime
	var verifiedBy sql.NullInt64

	err := scanner.Scan(
		&a.ID, &a.ChoreID, &a.FamilyID, &a.Title, &a.Points, &a.AllowanceCents,
		&a.AssignedTo, &a.AssignedBy, &a.Status, &dueDate, &a.Notes,
		&completedAt, &verifiedAt, &verifiedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		a.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	if verifiedAt.Valid {
		a.VerifiedAt = &verifiedAt.Time
	}
	if verifiedBy.Valid {
		a.VerifiedBy = &verifiedBy.Int64
	}
	return &a, nil
}

const assignmentCols = `id, chore_id, family_id, title, points, allowance_cents, assigned_to, assigned_by, status, due_date, notes, completed_at, verified_at, verified_by, created_at, updated_at`

// Create inserts a pending assignment, snapshotting the chore's title,
// points, and allowance.
func (s *AssignmentStore) Create(chore *model.Chore, assignedTo, assignedBy int64, dueDate *time.Time, notes string) (*model.ChoreAssignment, error) {
	var due sql.NullTime
	if dueDate != nil {
		due = sql.NullTime{Time: dueDate.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO chore_assignments (chore_id, family_id, title, points, allowance_cents, assigned_to, assigned_by, status, due_date, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chore.ID, chore.FamilyID, chore.Title, chore.Points, chore.AllowanceCents,
		assignedTo, assignedBy, model.AssignmentPending, due, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AssignmentStore) GetByID(id int64) (*model.ChoreAssignment, error) {
	row := s.db.QueryRow(`SELECT `+assignmentCols+` FROM chore_assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// ListByFamily returns assignments for a family, optionally filtered by
// status. An empty status returns all.
func (s *AssignmentStore) ListByFamily(familyID int64, status string) ([]model.ChoreAssignment, error) {
	query := `SELECT ` + assignmentCols + ` FROM chore_assignments WHERE family_id = ?`
	args := []any{familyID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (s *AssignmentStore) ListByAssignee(userID int64, status string) ([]model.ChoreAssignment, error) {
	query := `SELECT ` + assignmentCols + ` FROM chore_assignments WHERE assigned_to = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments by assignee: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func collectAssignments(rows *sql.Rows) ([]model.ChoreAssignment, error) {
	var assignments []model.ChoreAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// CountVerifiedByUser returns how many of a user's assignments reached the
// verified state. Feeds the chores_completed achievement condition.
func (s *AssignmentStore) CountVerifiedByUser(userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM chore_assignments WHERE assigned_to = ? AND status = ?`,
		userID, model.AssignmentVerified,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count verified assignments: %w", err)
	}
	return count, nil
}

// ListPendingDueBetween returns pending assignments across all families with
// a due date inside [start, end). Feeds the daily reminder digest.
func (s *AssignmentStore) ListPendingDueBetween(start, end time.Time) ([]model.ChoreAssignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM chore_assignments
		 WHERE status = ? AND due_date IS NOT NULL AND due_date >= ? AND due_date < ?
		 ORDER BY assigned_to, due_date ASC`,
		model.AssignmentPending, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list pending due assignments: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}
