package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

type BudgetStore struct {
	db *sql.DB
}

func NewBudgetStore(db *sql.DB) *BudgetStore {
	return &BudgetStore{db: db}
}

// --- Category methods ---

func scanBudgetCategory(scanner interface{ Scan(...any) error }) (*model.BudgetCategory, error) {
	var c model.BudgetCategory
	err := scanner.Scan(&c.ID, &c.FamilyID, &c.Name, &c.MonthlyLimitCents, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const budgetCategoryCols = `id, family_id, name, monthly_limit_cents, created_at`

func (s *BudgetStore) CreateCategory(familyID int64, name string, monthlyLimitCents int) (*model.BudgetCategory, error) {
	result, err := s.db.Exec(
		`INSERT INTO budget_categories (family_id, name, monthly_limit_cents) VALUES (?, ?, ?)`,
		familyID, name, monthlyLimitCents,
	)
	if err != nil {
		return nil, fmt.Errorf("insert budget category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetCategoryByID(id)
}

func (s *BudgetStore) GetCategoryByID(id int64) (*model.BudgetCategory, error) {
	row := s.db.QueryRow(`SELECT `+budgetCategoryCols+` FROM budget_categories WHERE id = ?`, id)
	c, err := scanBudgetCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget category: %w", err)
	}
	return c, nil
}

func (s *BudgetStore) ListCategories(familyID int64) ([]model.BudgetCategory, error) {
	rows, err := s.db.Query(
		`SELECT `+budgetCategoryCols+` FROM budget_categories WHERE family_id = ? ORDER BY name ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list budget categories: %w", err)
	}
	defer rows.Close()

	var categories []model.BudgetCategory
	for rows.Next() {
		c, err := scanBudgetCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *BudgetStore) UpdateCategory(id int64, name string, monthlyLimitCents int) (*model.BudgetCategory, error) {
	_, err := s.db.Exec(
		`UPDATE budget_categories SET name = ?, monthly_limit_cents = ? WHERE id = ?`,
		name, monthlyLimitCents, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update budget category: %w", err)
	}
	return s.GetCategoryByID(id)
}

func (s *BudgetStore) DeleteCategory(id int64) error {
	_, err := s.db.Exec(`DELETE FROM budget_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget category: %w", err)
	}
	return nil
}

// --- Expense methods ---

func scanExpense(scanner interface{ Scan(...any) error }) (*model.Expense, error) {
	var e model.Expense
	var categoryID, spentBy sql.NullInt64

	err := scanner.Scan(&e.ID, &e.FamilyID, &categoryID, &e.Description, &e.AmountCents, &spentBy, &e.SpentAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		e.CategoryID = &categoryID.Int64
	}
	if spentBy.Valid {
		e.SpentBy = &spentBy.Int64
	}
	return &e, nil
}

const expenseCols = `id, family_id, category_id, description, amount_cents, spent_by, spent_at, created_at`

func (s *BudgetStore) CreateExpense(familyID int64, categoryID *int64, description string, amountCents int, spentBy *int64, spentAt time.Time) (*model.Expense, error) {
	var cID, sBy sql.NullInt64
	if categoryID != nil {
		cID = sql.NullInt64{Int64: *categoryID, Valid: true}
	}
	if spentBy != nil {
		sBy = sql.NullInt64{Int64: *spentBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO expenses (family_id, category_id, description, amount_cents, spent_by, spent_at) VALUES (?, ?, ?, ?, ?, ?)`,
		familyID, cID, description, amountCents, sBy, spentAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetExpenseByID(id)
}

func (s *BudgetStore) GetExpenseByID(id int64) (*model.Expense, error) {
	row := s.db.QueryRow(`SELECT `+expenseCols+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns a family's expenses within [start, end).
func (s *BudgetStore) ListExpenses(familyID int64, start, end time.Time) ([]model.Expense, error) {
	rows, err := s.db.Query(
		`SELECT `+expenseCols+` FROM expenses WHERE family_id = ? AND spent_at >= ? AND spent_at < ? ORDER BY spent_at DESC`,
		familyID, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func (s *BudgetStore) DeleteExpense(id int64) error {
	_, err := s.db.Exec(`DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// MonthlySummary aggregates per-category spending for the month containing
// the given time.
func (s *BudgetStore) MonthlySummary(familyID int64, month time.Time) ([]model.BudgetSummary, error) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := s.db.Query(
		`SELECT c.id, c.name, c.monthly_limit_cents, COALESCE(SUM(e.amount_cents), 0)
		 FROM budget_categories c
		 LEFT JOIN expenses e ON e.category_id = c.id AND e.spent_at >= ? AND e.spent_at < ?
		 WHERE c.family_id = ?
		 GROUP BY c.id, c.name, c.monthly_limit_cents
		 ORDER BY c.name ASC`,
		start, end, familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("monthly summary: %w", err)
	}
	defer rows.Close()

	var summaries []model.BudgetSummary
	for rows.Next() {
		var b model.BudgetSummary
		if err := rows.Scan(&b.CategoryID, &b.CategoryName, &b.MonthlyLimitCents, &b.SpentCents); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		b.RemainingCents = b.MonthlyLimitCents - b.SpentCents
		summaries = append(summaries, b)
	}
	return summaries, rows.Err()
}
