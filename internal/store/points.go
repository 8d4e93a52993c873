package store

import (
	"database/sql"
	"fmt"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

type PointsStore struct {
	db *sql.DB
}

func NewPointsStore(db *sql.DB) *PointsStore {
	return &PointsStore{db: db}
}

func scanPointTransaction(scanner interface{ Scan(...any) error }) (*model.PointTransaction, error) {
	var t model.PointTransaction
	var assignmentID, createdBy sql.NullInt64

	err := scanner.Scan(
		&t.ID, &t.UserID, &t.FamilyID, &t.Amount, &t.Type, &t.Description,
		&assignmentID, &createdBy, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignmentID.Valid {
		t.AssignmentID = &assignmentID.Int64
	}
	if createdBy.Valid {
		t.CreatedBy = &createdBy.Int64
	}
	return &t, nil
}

const pointTransactionCols = `id, user_id, family_id, amount, type, description, assignment_id, created_by, created_at`

// Insert appends a ledger entry. The ledger is append-only; entries are never
// updated or deleted.
func (s *PointsStore) Insert(userID, familyID int64, amount int, typ, description string, assignmentID, createdBy *int64) (*model.PointTransaction, error) {
	var aID, cBy sql.NullInt64
	if assignmentID != nil {
		aID = sql.NullInt64{Int64: *assignmentID, Valid: true}
	}
	if createdBy != nil {
		cBy = sql.NullInt64{Int64: *createdBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO point_transactions (user_id, family_id, amount, type, description, assignment_id, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, familyID, amount, typ, description, aID, cBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert point transaction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+pointTransactionCols+` FROM point_transactions WHERE id = ?`, id)
	return scanPointTransaction(row)
}

func (s *PointsStore) ListByUser(userID int64, limit int) ([]model.PointTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT `+pointTransactionCols+` FROM point_transactions WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list point transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.PointTransaction
	for rows.Next() {
		t, err := scanPointTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan point transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (s *PointsStore) ListByType(userID int64, typ string) ([]model.PointTransaction, error) {
	rows, err := s.db.Query(
		`SELECT `+pointTransactionCols+` FROM point_transactions WHERE user_id = ? AND type = ? ORDER BY created_at DESC, id DESC`,
		userID, typ,
	)
	if err != nil {
		return nil, fmt.Errorf("list point transactions by type: %w", err)
	}
	defer rows.Close()

	var txns []model.PointTransaction
	for rows.Next() {
		t, err := scanPointTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan point transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

// Balance returns the cached balance column, the single source of truth for
// "current points". It deliberately does not sum the ledger.
func (s *PointsStore) Balance(userID int64) (int, error) {
	var balance int
	err := s.db.QueryRow(`SELECT points_balance FROM users WHERE id = ?`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// EarnedTotal returns the lifetime points a user has earned. Provisional
// entries and spends are excluded, so redeeming a reward never shrinks it.
func (s *PointsStore) EarnedTotal(userID int64) (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM point_transactions WHERE user_id = ? AND amount > 0 AND type != ?`,
		userID, model.PointsChorePending,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("earned total: %w", err)
	}
	return total, nil
}

// Leaderboard returns family members ordered by balance, highest first.
func (s *PointsStore) Leaderboard(familyID int64) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.Query(
		`SELECT u.id, u.name, u.avatar_emoji, u.points_balance, COALESCE(st.current_streak, 0)
		 FROM users u
		 LEFT JOIN user_streaks st ON st.user_id = u.id AND st.streak_type = 'daily'
		 WHERE u.family_id = ? AND u.gamification_enabled = 1
		 ORDER BY u.points_balance DESC, u.name ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.AvatarEmoji, &e.PointsBalance, &e.CurrentStreak); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
