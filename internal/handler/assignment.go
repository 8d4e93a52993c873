package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/gamification"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

type AssignmentHandler struct {
	engine      *gamification.Engine
	assignments *store.AssignmentStore
	logger      *slog.Logger
}

func NewAssignmentHandler(engine *gamification.Engine, as *store.AssignmentStore, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{engine: engine, assignments: as, logger: logger}
}

func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		ChoreID    int64      `json:"chore_id"`
		AssignedTo int64      `json:"assigned_to"`
		DueDate    *time.Time `json:"due_date"`
		Notes      string     `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	a, err := h.engine.Assign(ac, req.ChoreID, req.AssignedTo, req.DueDate, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Complete marks the caller's assignment done and awaits verification.
func (h *AssignmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	a, err := h.engine.Complete(ac, id, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Verify settles or rejects a completed assignment. Guardians only.
func (h *AssignmentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	// Omitting approved (or the whole body) means approval; rejection is
	// always explicit.
	var req struct {
		Approved *bool  `json:"approved"`
		Notes    string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	approved := req.Approved == nil || *req.Approved

	a, err := h.engine.Verify(ac, id, approved, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// List returns the family's assignments, optionally filtered by ?status=.
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	status := r.URL.Query().Get("status")
	if status != "" && !validStatus(status) {
		errorJSON(w, http.StatusBadRequest, "invalid status")
		return
	}

	assignments, err := h.assignments.ListByFamily(ac.FamilyID, status)
	if err != nil {
		h.logger.Error("list assignments", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}
	if assignments == nil {
		assignments = []model.ChoreAssignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

// Mine returns the caller's own assignments.
func (h *AssignmentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	status := r.URL.Query().Get("status")
	if status != "" && !validStatus(status) {
		errorJSON(w, http.StatusBadRequest, "invalid status")
		return
	}

	assignments, err := h.assignments.ListByAssignee(ac.UserID, status)
	if err != nil {
		h.logger.Error("list own assignments", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}
	if assignments == nil {
		assignments = []model.ChoreAssignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	a, err := h.assignments.GetByID(id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load assignment")
		return
	}
	if a == nil || a.FamilyID != ac.FamilyID {
		errorJSON(w, http.StatusNotFound, "assignment not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func validStatus(s string) bool {
	switch s {
	case model.AssignmentPending, model.AssignmentCompleted, model.AssignmentVerified, model.AssignmentRejected:
		return true
	}
	return false
}
