package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

const magicLinkTTL = 15 * time.Minute

type MagicLinkStore struct {
	db *sql.DB
}

func NewMagicLinkStore(db *sql.DB) *MagicLinkStore {
	return &MagicLinkStore{db: db}
}

func scanMagicLink(scanner interface{ Scan(...any) error }) (*model.MagicLink, error) {
	var m model.MagicLink
	var familyID sql.NullInt64
	var usedAt sql.NullTime

	err := scanner.Scan(&m.ID, &m.Token, &m.Email, &m.Purpose, &familyID, &m.ExpiresAt, &usedAt, &m.Attempts, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	if familyID.Valid {
		m.FamilyID = &familyID.Int64
	}
	if usedAt.Valid {
		m.UsedAt = &usedAt.Time
	}
	return &m, nil
}

const magicLinkCols = `id, token, email, purpose, family_id, expires_at, used_at, attempts, created_at`

func (s *MagicLinkStore) Create(email, purpose string, familyID *int64) (*model.MagicLink, error) {
	var fID sql.NullInt64
	if familyID != nil {
		fID = sql.NullInt64{Int64: *familyID, Valid: true}
	}

	token := uuid.NewString()
	result, err := s.db.Exec(
		`INSERT INTO magic_links (token, email, purpose, family_id, expires_at) VALUES (?, ?, ?, ?, ?)`,
		token, email, purpose, fID, time.Now().UTC().Add(magicLinkTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("insert magic link: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_links WHERE id = ?`, id)
	return scanMagicLink(row)
}

// GetValidByToken returns an unused, unexpired link for the token.
func (s *MagicLinkStore) GetValidByToken(token string) (*model.MagicLink, error) {
	row := s.db.QueryRow(
		`SELECT `+magicLinkCols+` FROM magic_links WHERE token = ? AND used_at IS NULL AND expires_at > ?`,
		token, time.Now().UTC(),
	)
	m, err := scanMagicLink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get magic link: %w", err)
	}
	return m, nil
}

func (s *MagicLinkStore) IncrementAttempts(id int64) (int, error) {
	var attempts int
	err := s.db.QueryRow(
		`UPDATE magic_links SET attempts = attempts + 1 WHERE id = ? RETURNING attempts`, id,
	).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("increment attempts: %w", err)
	}
	return attempts, nil
}

func (s *MagicLinkStore) MarkUsed(id int64) error {
	_, err := s.db.Exec(`UPDATE magic_links SET used_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark magic link used: %w", err)
	}
	return nil
}

func (s *MagicLinkStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM magic_links WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired magic links: %w", err)
	}
	return result.RowsAffected()
}
