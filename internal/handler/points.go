package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

type PointsHandler struct {
	points  *store.PointsStore
	streaks *store.StreakStore
	users   *store.UserStore
	logger  *slog.Logger
}

func NewPointsHandler(ps *store.PointsStore, ss *store.StreakStore, us *store.UserStore, logger *slog.Logger) *PointsHandler {
	return &PointsHandler{points: ps, streaks: ss, users: us, logger: logger}
}

// memberID resolves the {id} path parameter, restricted to the caller's
// family. Children may only read their own records.
func (h *PointsHandler) memberID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	if id != ac.UserID && !ac.Guardian() {
		errorJSON(w, http.StatusForbidden, "forbidden")
		return 0, false
	}
	member, err := h.users.GetByID(id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load member")
		return 0, false
	}
	if member == nil || member.FamilyID != ac.FamilyID {
		errorJSON(w, http.StatusNotFound, "member not found")
		return 0, false
	}
	return id, true
}

// Summary returns a member's balance, lifetime earnings, and streak.
func (h *PointsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.memberID(w, r)
	if !ok {
		return
	}

	balance, err := h.points.Balance(id)
	if err != nil {
		h.logger.Error("load balance", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to load balance")
		return
	}
	earned, err := h.points.EarnedTotal(id)
	if err != nil {
		h.logger.Error("load earned total", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to load balance")
		return
	}

	var current, longest int
	if streak, err := h.streaks.GetDaily(id); err == nil && streak != nil {
		current = streak.CurrentStreak
		longest = streak.LongestStreak
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":        id,
		"balance":        balance,
		"earned_total":   earned,
		"current_streak": current,
		"longest_streak": longest,
	})
}

// History returns a member's ledger entries, newest first. ?limit= caps the
// page, defaulting to 50.
func (h *PointsHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.memberID(w, r)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			errorJSON(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.points.ListByUser(id, limit)
	if err != nil {
		h.logger.Error("load ledger", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if entries == nil {
		entries = []model.PointTransaction{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Leaderboard ranks the family's gamified members by balance.
func (h *PointsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	entries, err := h.points.Leaderboard(ac.FamilyID)
	if err != nil {
		h.logger.Error("load leaderboard", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
