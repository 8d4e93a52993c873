package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

type BudgetHandler struct {
	budgets *store.BudgetStore
	logger  *slog.Logger
}

func NewBudgetHandler(bs *store.BudgetStore, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{budgets: bs, logger: logger}
}

func (h *BudgetHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		Name              string `json:"name"`
		MonthlyLimitCents int    `json:"monthly_limit_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errorJSON(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.MonthlyLimitCents < 0 {
		errorJSON(w, http.StatusBadRequest, "monthly_limit_cents must not be negative")
		return
	}

	category, err := h.budgets.CreateCategory(ac.FamilyID, req.Name, req.MonthlyLimitCents)
	if err != nil {
		h.logger.Error("create budget category", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *BudgetHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	categories, err := h.budgets.ListCategories(ac.FamilyID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.BudgetCategory{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *BudgetHandler) categoryInFamily(w http.ResponseWriter, r *http.Request) (*model.BudgetCategory, bool) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	category, err := h.budgets.GetCategoryByID(id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load category")
		return nil, false
	}
	if category == nil || category.FamilyID != ac.FamilyID {
		errorJSON(w, http.StatusNotFound, "category not found")
		return nil, false
	}
	return category, true
}

func (h *BudgetHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.categoryInFamily(w, r)
	if !ok {
		return
	}

	var req struct {
		Name              string `json:"name"`
		MonthlyLimitCents int    `json:"monthly_limit_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errorJSON(w, http.StatusBadRequest, "name is required")
		return
	}

	category, err := h.budgets.UpdateCategory(existing.ID, req.Name, req.MonthlyLimitCents)
	if err != nil {
		h.logger.Error("update budget category", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update category")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *BudgetHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.categoryInFamily(w, r)
	if !ok {
		return
	}

	if err := h.budgets.DeleteCategory(existing.ID); err != nil {
		h.logger.Error("delete budget category", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateExpense records a spend, optionally against a category.
func (h *BudgetHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		CategoryID  *int64     `json:"category_id"`
		Description string     `json:"description"`
		AmountCents int        `json:"amount_cents"`
		SpentAt     *time.Time `json:"spent_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		errorJSON(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.AmountCents <= 0 {
		errorJSON(w, http.StatusBadRequest, "amount_cents must be positive")
		return
	}

	if req.CategoryID != nil {
		category, err := h.budgets.GetCategoryByID(*req.CategoryID)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "failed to load category")
			return
		}
		if category == nil || category.FamilyID != ac.FamilyID {
			errorJSON(w, http.StatusBadRequest, "category not found")
			return
		}
	}

	spentAt := time.Now().UTC()
	if req.SpentAt != nil {
		spentAt = *req.SpentAt
	}

	expense, err := h.budgets.CreateExpense(ac.FamilyID, req.CategoryID, req.Description, req.AmountCents, &ac.UserID, spentAt)
	if err != nil {
		h.logger.Error("create expense", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create expense")
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// Expenses lists the family's expenses in a date range, defaulting to the
// current month.
func (h *BudgetHandler) Expenses(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start, err := parseDateParam(r, "start", monthStart)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid start")
		return
	}
	end, err := parseDateParam(r, "end", monthStart.AddDate(0, 1, 0))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid end")
		return
	}

	expenses, err := h.budgets.ListExpenses(ac.FamilyID, start, end)
	if err != nil {
		h.logger.Error("list expenses", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *BudgetHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	expense, err := h.budgets.GetExpenseByID(id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load expense")
		return
	}
	if expense == nil || expense.FamilyID != ac.FamilyID {
		errorJSON(w, http.StatusNotFound, "expense not found")
		return
	}

	if err := h.budgets.DeleteExpense(id); err != nil {
		h.logger.Error("delete expense", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary returns per-category totals for a month given as ?month=YYYY-MM,
// defaulting to the current month.
func (h *BudgetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	month := time.Now().UTC()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
			return
		}
		month = parsed
	}

	summary, err := h.budgets.MonthlySummary(ac.FamilyID, month)
	if err != nil {
		h.logger.Error("load budget summary", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to load summary")
		return
	}
	if summary == nil {
		summary = []model.BudgetSummary{}
	}
	writeJSON(w, http.StatusOK, summary)
}
