package store

import (
	"database/sql"
	"fmt"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	var encrypted, pinned int
	var authorID sql.NullInt64
	var expiresAt sql.NullTime

	err := scanner.Scan(
		&n.ID, &n.FamilyID, &n.Title, &n.Body, &encrypted, &n.Nonce, &n.WrappedKey,
		&authorID, &pinned, &n.Priority, &expiresAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Encrypted = encrypted != 0
	n.Pinned = pinned != 0
	if authorID.Valid {
		n.AuthorID = &authorID.Int64
	}
	if expiresAt.Valid {
		n.ExpiresAt = &expiresAt.Time
	}
	return &n, nil
}

const noteCols = `id, family_id, title, body, encrypted, nonce, wrapped_key, author_id, pinned, priority, expires_at, created_at, updated_at`

func (s *NoteStore) Create(familyID int64, title, body string, encrypted bool, nonce, wrappedKey string, authorID *int64, priority string) (*model.Note, error) {
	var enc int
	if encrypted {
		enc = 1
	}
	var aID sql.NullInt64
	if authorID != nil {
		aID = sql.NullInt64{Int64: *authorID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO notes (family_id, title, body, encrypted, nonce, wrapped_key, author_id, priority)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		familyID, title, body, enc, nonce, wrappedKey, aID, priority,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) GetByID(id int64) (*model.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteCols+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// ListByFamily returns the family's notes, pinned first, newest first within
// each group. Expired notes are excluded.
func (s *NoteStore) ListByFamily(familyID int64) ([]model.Note, error) {
	rows, err := s.db.Query(
		`SELECT `+noteCols+` FROM notes
		 WHERE family_id = ? AND (expires_at IS NULL OR expires_at > CURRENT_TIMESTAMP)
		 ORDER BY pinned DESC, created_at DESC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *NoteStore) Update(id int64, title, body string, encrypted bool, nonce, wrappedKey, priority string) (*model.Note, error) {
	var enc int
	if encrypted {
		enc = 1
	}

	_, err := s.db.Exec(
		`UPDATE notes SET title = ?, body = ?, encrypted = ?, nonce = ?, wrapped_key = ?, priority = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, body, enc, nonce, wrappedKey, priority, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) TogglePinned(id int64) (*model.Note, error) {
	_, err := s.db.Exec(`UPDATE notes SET pinned = 1 - pinned, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("toggle pinned: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
