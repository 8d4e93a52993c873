package handler

import (
	"log/slog"
	"net/http"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

type AllowanceHandler struct {
	allowances *store.AllowanceStore
	logger     *slog.Logger
}

func NewAllowanceHandler(as *store.AllowanceStore, logger *slog.Logger) *AllowanceHandler {
	return &AllowanceHandler{allowances: as, logger: logger}
}

// List returns the family's allowance payments, optionally filtered by
// ?status=pending or ?status=paid. Non-guardians see only their own.
func (h *AllowanceHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	status := r.URL.Query().Get("status")
	switch status {
	case "", model.AllowancePending, model.AllowancePaid:
	default:
		errorJSON(w, http.StatusBadRequest, "invalid status")
		return
	}

	var payments []model.AllowancePayment
	var err error
	if ac.Guardian() {
		payments, err = h.allowances.ListByFamily(ac.FamilyID, status)
	} else {
		payments, err = h.allowances.ListByUser(ac.UserID, status)
	}
	if err != nil {
		h.logger.Error("list allowances", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to list allowances")
		return
	}
	if payments == nil {
		payments = []model.AllowancePayment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

// MarkPaid settles a pending allowance payment. Guardians only.
func (h *AllowanceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	payment, err := h.allowances.GetByID(id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load payment")
		return
	}
	if payment == nil || payment.FamilyID != ac.FamilyID {
		errorJSON(w, http.StatusNotFound, "payment not found")
		return
	}
	if payment.Status == model.AllowancePaid {
		errorJSON(w, http.StatusConflict, "payment is already paid")
		return
	}

	updated, err := h.allowances.MarkPaid(id)
	if err != nil {
		h.logger.Error("mark allowance paid", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update payment")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// PendingTotal returns the family's outstanding allowance liability.
func (h *AllowanceHandler) PendingTotal(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	total, err := h.allowances.PendingTotalCents(ac.FamilyID)
	if err != nil {
		h.logger.Error("load pending total", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to load total")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"pending_total_cents": total})
}
