package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/email"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/websocket"
)

type FamilyHandler struct {
	families   *store.FamilyStore
	users      *store.UserStore
	sessions   *store.SessionStore
	magicLinks *store.MagicLinkStore
	email      *email.Client
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewFamilyHandler(
	fs *store.FamilyStore,
	us *store.UserStore,
	ss *store.SessionStore,
	mls *store.MagicLinkStore,
	ec *email.Client,
	hub *websocket.Hub,
	logger *slog.Logger,
) *FamilyHandler {
	return &FamilyHandler{
		families:   fs,
		users:      us,
		sessions:   ss,
		magicLinks: mls,
		email:      ec,
		hub:        hub,
		logger:     logger,
	}
}

func (h *FamilyHandler) broadcast(familyID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.BroadcastToFamily(familyID, msg)
	}
}

func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	family, err := h.families.GetByID(ac.FamilyID)
	if err != nil || family == nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load family")
		return
	}
	writeJSON(w, http.StatusOK, family)
}

func (h *FamilyHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		Name     string `json:"name"`
		Timezone string `json:"timezone"`
		Currency string `json:"currency"`
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

	family, err := h.families.Update(ac.FamilyID, req.Name, req.Timezone, req.Currency)
	if err != nil {
		h.logger.Error("update family", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update family")
		return
	}
	writeJSON(w, http.StatusOK, family)
}

func (h *FamilyHandler) Members(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	members, err := h.users.ListByFamily(ac.FamilyID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.User{}
	}
	writeJSON(w, http.StatusOK, members)
}

// memberInFamily loads a member and verifies it belongs to the caller's
// family. Cross-family IDs read as not found.
func (h *FamilyHandler) memberInFamily(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	ac, _ := auth.FromContext(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	member, err := h.users.GetByID(id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load member")
		return nil, false
	}
	if member == nil || member.FamilyID != ac.FamilyID {
		errorJSON(w, http.StatusNotFound, "member not found")
		return nil, false
	}
	return member, true
}

func (h *FamilyHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	member, ok := h.memberInFamily(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Role        string `json:"role"`
		Color       string `json:"color"`
		AvatarEmoji string `json:"avatar_emoji"`
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
	switch req.Role {
	case model.RoleParent, model.RoleAdmin, model.RoleChild:
	default:
		errorJSON(w, http.StatusBadRequest, "invalid role")
		return
	}

	updated, err := h.users.Update(member.ID, req.Name, req.Role, req.Color, req.AvatarEmoji)
	if err != nil {
		h.logger.Error("update member", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update member")
		return
	}

	h.broadcast(member.FamilyID, websocket.NewMessage("member", "updated", member.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *FamilyHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	member, ok := h.memberInFamily(w, r)
	if !ok {
		return
	}
	if member.ID == ac.UserID {
		errorJSON(w, http.StatusBadRequest, "cannot remove yourself")
		return
	}

	if err := h.sessions.DeleteByUser(member.ID); err != nil {
		h.logger.Error("delete member sessions", "error", err)
	}
	if err := h.users.Delete(member.ID); err != nil {
		h.logger.Error("delete member", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete member")
		return
	}

	h.broadcast(member.FamilyID, websocket.NewMessage("member", "deleted", member.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Invite creates a member account in the caller's family and emails a
// sign-in link.
func (h *FamilyHandler) Invite(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if emailAddr == "" {
		errorJSON(w, http.StatusBadRequest, "email is required")
		return
	}
	role := req.Role
	if role == "" {
		role = model.RoleChild
	}
	switch role {
	case model.RoleParent, model.RoleAdmin, model.RoleChild:
	default:
		errorJSON(w, http.StatusBadRequest, "invalid role")
		return
	}

	existing, err := h.users.GetByEmail(emailAddr)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		errorJSON(w, http.StatusConflict, "that email already has an account")
		return
	}

	family, err := h.families.GetByID(ac.FamilyID)
	if err != nil || family == nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load family")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = emailAddr
	}
	member, err := h.users.Create(ac.FamilyID, emailAddr, name, role)
	if err != nil {
		h.logger.Error("create invited member", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create member")
		return
	}

	ml, err := h.magicLinks.Create(emailAddr, "invite", &ac.FamilyID)
	if err != nil {
		h.logger.Error("create invite link", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.email.SendMagicLink(emailAddr, ml.Token, "invite", family.Name); err != nil {
		h.logger.Error("send invite email", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to send invitation")
		return
	}

	h.broadcast(ac.FamilyID, websocket.NewMessage("member", "invited", member.ID, nil))
	writeJSON(w, http.StatusCreated, member)
}

func (h *FamilyHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	member, ok := h.memberInFamily(w, r)
	if !ok {
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.PIN) != 4 || !isDigits(req.PIN) {
		errorJSON(w, http.StatusBadRequest, "PIN must be exactly 4 digits")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to hash PIN")
		return
	}
	if err := h.users.SetPINHash(member.ID, string(hash)); err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"has_pin": true})
}

func (h *FamilyHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	member, ok := h.memberInFamily(w, r)
	if !ok {
		return
	}
	if err := h.users.ClearPIN(member.ID); err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to clear PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"has_pin": false})
}

func (h *FamilyHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	member, ok := h.memberInFamily(w, r)
	if !ok {
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	hash, err := h.users.GetPINHash(member.ID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load PIN")
		return
	}
	if hash == "" {
		errorJSON(w, http.StatusBadRequest, "member has no PIN")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) != nil {
		writeJSON(w, http.StatusOK, map[string]bool{"valid": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// SetGamification toggles points, streaks, and achievements for a member.
func (h *FamilyHandler) SetGamification(w http.ResponseWriter, r *http.Request) {
	member, ok := h.memberInFamily(w, r)
	if !ok {
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.users.SetGamificationEnabled(member.ID, req.Enabled); err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to update member")
		return
	}

	h.broadcast(member.FamilyID, websocket.NewMessage("member", "updated", member.ID, nil))
	writeJSON(w, http.StatusOK, map[string]bool{"gamification_enabled": req.Enabled})
}
