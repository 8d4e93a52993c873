package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

type AllowanceStore struct {
	db *sql.DB
}

func NewAllowanceStore(db *sql.DB) *AllowanceStore {
	return &AllowanceStore{db: db}
}

func scanAllowancePayment(scanner interface{ Scan(...any) error }) (*model.AllowancePayment, error) {
	var p model.AllowancePayment
	var paidAt sql.NullTime

	err := scanner.Scan(&p.ID, &p.UserID, &p.FamilyID, &p.AssignmentID, &p.AmountCents, &p.Status, &paidAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	return &p, nil
}

const allowanceCols = `id, user_id, family_id, assignment_id, amount_cents, status, paid_at, created_at`

func (s *AllowanceStore) GetByID(id int64) (*model.AllowancePayment, error) {
	row := s.db.QueryRow(`SELECT `+allowanceCols+` FROM allowance_payments WHERE id = ?`, id)
	p, err := scanAllowancePayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get allowance payment: %w", err)
	}
	return p, nil
}

func (s *AllowanceStore) ListByUser(userID int64, status string) ([]model.AllowancePayment, error) {
	query := `SELECT ` + allowanceCols + ` FROM allowance_payments WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list allowance payments: %w", err)
	}
	defer rows.Close()
	return collectAllowancePayments(rows)
}

func (s *AllowanceStore) ListByFamily(familyID int64, status string) ([]model.AllowancePayment, error) {
	query := `SELECT ` + allowanceCols + ` FROM allowance_payments WHERE family_id = ?`
	args := []any{familyID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list allowance payments by family: %w", err)
	}
	defer rows.Close()
	return collectAllowancePayments(rows)
}

func collectAllowancePayments(rows *sql.Rows) ([]model.AllowancePayment, error) {
	var payments []model.AllowancePayment
	for rows.Next() {
		p, err := scanAllowancePayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan allowance payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

// MarkPaid settles a pending payment. Returns the updated record, or nil if
// the payment does not exist or was already paid.
func (s *AllowanceStore) MarkPaid(id int64) (*model.AllowancePayment, error) {
	result, err := s.db.Exec(
		`UPDATE allowance_payments SET status = ?, paid_at = ? WHERE id = ? AND status = ?`,
		model.AllowancePaid, time.Now().UTC(), id, model.AllowancePending,
	)
	if err != nil {
		return nil, fmt.Errorf("mark allowance paid: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

// PendingTotalCents sums the family's outstanding allowance liability.
func (s *AllowanceStore) PendingTotalCents(familyID int64) (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(amount_cents), 0) FROM allowance_payments WHERE family_id = ? AND status = ?`,
		familyID, model.AllowancePending,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("pending allowance total: %w", err)
	}
	return int(total.Int64), nil
}
