package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/notify"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/websocket"
)

type RewardHandler struct {
	rewards  *store.RewardStore
	users    *store.UserStore
	notifier *notify.Service
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewRewardHandler(rs *store.RewardStore, us *store.UserStore, notifier *notify.Service, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{rewards: rs, users: us, notifier: notifier, hub: hub, logger: logger}
}

func (h *RewardHandler) broadcast(familyID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.BroadcastToFamily(familyID, msg)
	}
}

type rewardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PointCost   int    `json:"point_cost"`
	Active      *bool  `json:"active"`
}

func (r *rewardRequest) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return "title is required"
	}
	if r.PointCost < 1 {
		return "point_cost must be positive"
	}
	return ""
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		errorJSON(w, http.StatusBadRequest, msg)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	reward, err := h.rewards.Create(ac.FamilyID, req.Title, req.Description, req.PointCost, active)
	if err != nil {
		h.logger.Error("create reward", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create reward")
		return
	}

	h.broadcast(ac.FamilyID, websocket.NewMessage("reward", "created", reward.ID, nil))
	writeJSON(w, http.StatusCreated, reward)
}

func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	rewards, err := h.rewards.ListByFamily(ac.FamilyID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to list rewards")
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (h *RewardHandler) rewardInFamily(w http.ResponseWriter, r *http.Request) (*model.Reward, bool) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	reward, err := h.rewards.GetByID(id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load reward")
		return nil, false
	}
	if reward == nil || reward.FamilyID != ac.FamilyID {
		errorJSON(w, http.StatusNotFound, "reward not found")
		return nil, false
	}
	return reward, true
}

func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.rewardInFamily(w, r)
	if !ok {
		return
	}

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		errorJSON(w, http.StatusBadRequest, msg)
		return
	}
	active := existing.Active
	if req.Active != nil {
		active = *req.Active
	}

	reward, err := h.rewards.Update(existing.ID, req.Title, req.Description, req.PointCost, active)
	if err != nil {
		h.logger.Error("update reward", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update reward")
		return
	}

	h.broadcast(existing.FamilyID, websocket.NewMessage("reward", "updated", existing.ID, nil))
	writeJSON(w, http.StatusOK, reward)
}

func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.rewardInFamily(w, r)
	if !ok {
		return
	}

	if err := h.rewards.Delete(existing.ID); err != nil {
		h.logger.Error("delete reward", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete reward")
		return
	}

	h.broadcast(existing.FamilyID, websocket.NewMessage("reward", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Redeem spends the caller's points on a reward. The balance check and
// deduction are atomic; an insufficient balance reads back as a conflict.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	reward, ok := h.rewardInFamily(w, r)
	if !ok {
		return
	}
	if !reward.Active {
		errorJSON(w, http.StatusConflict, "reward is not active")
		return
	}

	redemption, err := h.rewards.Redeem(reward, ac.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if h.notifier != nil {
		user, _ := h.users.GetByID(ac.UserID)
		name := "A member"
		if user != nil {
			name = user.Name
		}
		h.notifier.NotifyFamily(ac.FamilyID, ac.UserID, model.NotifRewardRedeemed,
			"Reward redeemed",
			fmt.Sprintf("%s redeemed %q for %d points", name, reward.Title, reward.PointCost))
	}

	h.broadcast(ac.FamilyID, websocket.NewMessage("reward", "redeemed", reward.ID, map[string]any{
		"redeemed_by": ac.UserID,
	}))
	writeJSON(w, http.StatusCreated, redemption)
}

// Redemptions returns the caller's redemption history.
func (h *RewardHandler) Redemptions(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	redemptions, err := h.rewards.ListRedemptionsByUser(ac.UserID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to list redemptions")
		return
	}
	if redemptions == nil {
		redemptions = []model.RewardRedemption{}
	}
	writeJSON(w, http.StatusOK, redemptions)
}
