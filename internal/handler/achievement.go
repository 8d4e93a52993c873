package handler

import (
	"log/slog"
	"net/http"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/gamification"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

type AchievementHandler struct {
	engine       *gamification.Engine
	achievements *store.AchievementStore
	logger       *slog.Logger
}

func NewAchievementHandler(engine *gamification.Engine, as *store.AchievementStore, logger *slog.Logger) *AchievementHandler {
	return &AchievementHandler{engine: engine, achievements: as, logger: logger}
}

// achievementView is a catalog entry with the caller's unlock state.
type achievementView struct {
	model.Achievement
	Unlocked bool `json:"unlocked"`
}

// Catalog returns active achievements with the caller's unlock flags.
func (h *AchievementHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	catalog, err := h.achievements.ListActive()
	if err != nil {
		h.logger.Error("list achievements", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to list achievements")
		return
	}
	unlocked, err := h.achievements.UnlockedIDs(ac.UserID)
	if err != nil {
		h.logger.Error("load unlocks", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to load unlocks")
		return
	}

	views := make([]achievementView, 0, len(catalog))
	for _, a := range catalog {
		views = append(views, achievementView{Achievement: a, Unlocked: unlocked[a.ID]})
	}
	writeJSON(w, http.StatusOK, views)
}

// Unlocked returns the caller's unlock history, newest first.
func (h *AchievementHandler) Unlocked(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	unlocks, err := h.achievements.ListUnlockedByUser(ac.UserID)
	if err != nil {
		h.logger.Error("list unlocks", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to list unlocks")
		return
	}
	if unlocks == nil {
		unlocks = []model.UserAchievement{}
	}
	writeJSON(w, http.StatusOK, unlocks)
}

// Check re-evaluates the caller's achievements and returns any new unlocks.
// Safe to call repeatedly; unlocks are idempotent.
func (h *AchievementHandler) Check(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	newUnlocks, err := h.engine.CheckAchievements(ac.UserID, ac.FamilyID)
	if err != nil {
		h.logger.Error("check achievements", "error", err)
		writeDomainError(w, err)
		return
	}
	if newUnlocks == nil {
		newUnlocks = []model.Achievement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"unlocked": newUnlocks})
}
