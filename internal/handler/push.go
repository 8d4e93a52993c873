package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/push"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

type PushHandler struct {
	subscriptions *store.PushStore
	service       *push.Service
	logger        *slog.Logger
}

func NewPushHandler(ps *store.PushStore, service *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{subscriptions: ps, service: service, logger: logger}
}

// Subscribe registers a browser push subscription for the caller. Endpoints
// are upserted so re-subscribing the same browser is safe.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		Endpoint   string `json:"endpoint"`
		Keys       struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
		DeviceName string `json:"device_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		errorJSON(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	sub, err := h.subscriptions.CreateSubscription(ac.UserID, ac.FamilyID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth, strings.TrimSpace(req.DeviceName))
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	sub, err := h.subscriptions.GetByID(id, ac.FamilyID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load subscription")
		return
	}
	if sub == nil || sub.UserID != ac.UserID {
		errorJSON(w, http.StatusNotFound, "subscription not found")
		return
	}

	if err := h.subscriptions.DeleteSubscription(id, ac.FamilyID); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to unsubscribe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	subs, err := h.subscriptions.ListByUser(ac.UserID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// VAPIDKey returns the server's public VAPID key for the browser's
// PushManager.subscribe call.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}

func (h *PushHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	prefs, err := h.subscriptions.ListPreferences(ac.UserID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to list preferences")
		return
	}
	if prefs == nil {
		prefs = []model.NotificationPreference{}
	}
	writeJSON(w, http.StatusOK, prefs)
}

// UpdatePreference enables or disables push delivery for one notification
// type. Types without a stored preference default to enabled.
func (h *PushHandler) UpdatePreference(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		NotificationType string `json:"notification_type"`
		Enabled          bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.NotificationType == "" {
		errorJSON(w, http.StatusBadRequest, "notification_type is required")
		return
	}

	if err := h.subscriptions.SetPreference(ac.UserID, ac.FamilyID, req.NotificationType, req.Enabled); err != nil {
		h.logger.Error("set push preference", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update preference")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notification_type": req.NotificationType,
		"enabled":           req.Enabled,
	})
}

// Test sends a push notification to all of the caller's devices.
func (h *PushHandler) Test(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	subs, err := h.subscriptions.ListByUser(ac.UserID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if len(subs) == 0 {
		errorJSON(w, http.StatusBadRequest, "no subscriptions to test")
		return
	}

	sent := 0
	for i := range subs {
		err := h.service.Send(&subs[i], push.Payload{
			Title: "Test notification",
			Body:  "Push notifications are working.",
		})
		if err != nil {
			h.logger.Warn("test push failed", "subscription_id", subs[i].ID, "error", err)
			continue
		}
		sent++
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
