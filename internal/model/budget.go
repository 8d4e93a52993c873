package model

import "time"

type BudgetCategory struct {
	ID                int64     `json:"id"`
	FamilyID          int64     `json:"family_id"`
	Name              string    `json:"name"`
	MonthlyLimitCents int       `json:"monthly_limit_cents"`
	CreatedAt         time.Time `json:"created_at"`
}

type Expense struct {
	ID          int64     `json:"id"`
	FamilyID    int64     `json:"family_id"`
	CategoryID  *int64    `json:"category_id"`
	Description string    `json:"description"`
	AmountCents int       `json:"amount_cents"`
	SpentBy     *int64    `json:"spent_by"`
	SpentAt     time.Time `json:"spent_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// BudgetSummary aggregates one category's spending for a month.
type BudgetSummary struct {
	CategoryID        int64  `json:"category_id"`
	CategoryName      string `json:"category_name"`
	MonthlyLimitCents int    `json:"monthly_limit_cents"`
	SpentCents        int    `json:"spent_cents"`
	RemainingCents    int    `json:"remaining_cents"`
}
