package store

import (
	"database/sql"
	"fmt"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var createdBy sql.NullInt64

	err := scanner.Scan(
		&c.ID, &c.FamilyID, &c.Title, &c.Description, &c.Points, &c.AllowanceCents,
		&c.Category, &c.Difficulty, &c.RecurrenceRule, &createdBy,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if createdBy.Valid {
		c.CreatedBy = &createdBy.Int64
	}
	return &c, nil
}

const choreCols = `id, family_id, title, description, points, allowance_cents, category, difficulty, recurrence_rule, created_by, created_at, updated_at`

func (s *ChoreStore) Create(familyID int64, title, description string, points, allowanceCents int, category, difficulty, recurrenceRule string, createdBy *int64) (*model.Chore, error) {
	var cBy sql.NullInt64
	if createdBy != nil {
		cBy = sql.NullInt64{Int64: *createdBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO chores (family_id, title, description, points, allowance_cents, category, difficulty, recurrence_rule, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		familyID, title, description, points, allowanceCents, category, difficulty, recurrenceRule, cBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) GetByID(id int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

func (s *ChoreStore) ListByFamily(familyID int64) ([]model.Chore, error) {
	rows, err := s.db.Query(
		`SELECT `+choreCols+` FROM chores WHERE family_id = ? ORDER BY title ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

func (s *ChoreStore) Update(id int64, title, description string, points, allowanceCents int, category, difficulty, recurrenceRule string) (*model.Chore, error) {
	_, err := s.db.Exec(
		`UPDATE chores SET title = ?, description = ?, points = ?, allowance_cents = ?, category = ?, difficulty = ?, recurrence_rule = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, description, points, allowanceCents, category, difficulty, recurrenceRule, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes a chore template. Assignments referencing it keep their
// snapshotted title, points, and allowance.
func (s *ChoreStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}
