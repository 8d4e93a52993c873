package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/chore"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/websocket"
)

type ChoreHandler struct {
	chores *store.ChoreStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{chores: cs, hub: hub, logger: logger}
}

func (h *ChoreHandler) broadcast(familyID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.BroadcastToFamily(familyID, msg)
	}
}

type choreRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Points         int    `json:"points"`
	AllowanceCents int    `json:"allowance_cents"`
	Category       string `json:"category"`
	Difficulty     string `json:"difficulty"`
	RecurrenceRule string `json:"recurrence_rule"`
}

func (r *choreRequest) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return "title is required"
	}
	if r.Points < 0 {
		return "points must not be negative"
	}
	if r.AllowanceCents < 0 {
		return "allowance_cents must not be negative"
	}
	return ""
}

// choreView decorates a chore with its human-readable schedule.
type choreView struct {
	model.Chore
	Schedule string `json:"schedule"`
	DueToday bool   `json:"due_today"`
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		errorJSON(w, http.StatusBadRequest, msg)
		return
	}

	c, err := h.chores.Create(ac.FamilyID, req.Title, req.Description, req.Points, req.AllowanceCents, req.Category, req.Difficulty, req.RecurrenceRule, &ac.UserID)
	if err != nil {
		h.logger.Error("create chore", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create chore")
		return
	}

	h.broadcast(ac.FamilyID, websocket.NewMessage("chore", "created", c.ID, nil))
	writeJSON(w, http.StatusCreated, c)
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	chores, err := h.chores.ListByFamily(ac.FamilyID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to list chores")
		return
	}

	today := time.Now().UTC()
	views := make([]choreView, 0, len(chores))
	for _, c := range chores {
		views = append(views, choreView{
			Chore:    c,
			Schedule: chore.DescribeSchedule(c),
			DueToday: chore.DueOn(c, today),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// choreInFamily loads a chore and verifies family ownership.
func (h *ChoreHandler) choreInFamily(w http.ResponseWriter, r *http.Request) (*model.Chore, bool) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	c, err := h.chores.GetByID(id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load chore")
		return nil, false
	}
	if c == nil || c.FamilyID != ac.FamilyID {
		errorJSON(w, http.StatusNotFound, "chore not found")
		return nil, false
	}
	return c, true
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.choreInFamily(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, choreView{
		Chore:    *c,
		Schedule: chore.DescribeSchedule(*c),
		DueToday: chore.DueOn(*c, time.Now().UTC()),
	})
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.choreInFamily(w, r)
	if !ok {
		return
	}

	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		errorJSON(w, http.StatusBadRequest, msg)
		return
	}

	c, err := h.chores.Update(existing.ID, req.Title, req.Description, req.Points, req.AllowanceCents, req.Category, req.Difficulty, req.RecurrenceRule)
	if err != nil {
		h.logger.Error("update chore", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update chore")
		return
	}

	h.broadcast(existing.FamilyID, websocket.NewMessage("chore", "updated", existing.ID, nil))
	writeJSON(w, http.StatusOK, c)
}

// Delete removes a chore template. Existing assignments keep their
// snapshotted title, points, and allowance.
func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.choreInFamily(w, r)
	if !ok {
		return
	}

	if err := h.chores.Delete(existing.ID); err != nil {
		h.logger.Error("delete chore", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete chore")
		return
	}

	h.broadcast(existing.FamilyID, websocket.NewMessage("chore", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}
