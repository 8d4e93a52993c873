package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/email"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/middleware"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

const sessionTTL = 90 * 24 * time.Hour

type AuthHandler struct {
	users      *store.UserStore
	families   *store.FamilyStore
	sessions   *store.SessionStore
	magicLinks *store.MagicLinkStore
	email      *email.Client
	tokens     *auth.TokenIssuer
	logger     *slog.Logger
}

func NewAuthHandler(
	us *store.UserStore,
	fs *store.FamilyStore,
	ss *store.SessionStore,
	mls *store.MagicLinkStore,
	ec *email.Client,
	tokens *auth.TokenIssuer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:      us,
		families:   fs,
		sessions:   ss,
		magicLinks: mls,
		email:      ec,
		tokens:     tokens,
		logger:     logger,
	}
}

// Login requests a magic sign-in link. The response is identical whether or
// not the email belongs to a user, to prevent enumeration.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
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

	defer writeJSON(w, http.StatusOK, map[string]string{"status": "check your email"})

	user, err := h.users.GetByEmail(emailAddr)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		return
	}
	if user == nil {
		return
	}

	ml, err := h.magicLinks.Create(emailAddr, "login", &user.FamilyID)
	if err != nil {
		h.logger.Error("create magic link", "error", err)
		return
	}
	if err := h.email.SendMagicLink(emailAddr, ml.Token, "login", ""); err != nil {
		h.logger.Error("send magic link", "error", err)
	}
}

// Register creates a family with its first parent account and sends the
// sign-in link.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Name       string `json:"name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	familyName := strings.TrimSpace(req.FamilyName)
	if emailAddr == "" || familyName == "" {
		errorJSON(w, http.StatusBadRequest, "email and family_name are required")
		return
	}

	existing, err := h.users.GetByEmail(emailAddr)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		// Same response as success, to prevent enumeration.
		writeJSON(w, http.StatusOK, map[string]string{"status": "check your email"})
		return
	}

	family, err := h.families.Create(familyName)
	if err != nil {
		h.logger.Error("create family", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = emailAddr
	}
	if _, err := h.users.Create(family.ID, emailAddr, name, model.RoleParent); err != nil {
		h.logger.Error("create user", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	ml, err := h.magicLinks.Create(emailAddr, "register", &family.ID)
	if err != nil {
		h.logger.Error("create magic link", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.email.SendMagicLink(emailAddr, ml.Token, "register", familyName); err != nil {
		h.logger.Error("send magic link", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "check your email"})
}

// Verify consumes a magic link token and establishes a session.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		errorJSON(w, http.StatusBadRequest, "token is required")
		return
	}

	ml, err := h.magicLinks.GetValidByToken(token)
	if err != nil {
		h.logger.Error("verify lookup", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	if ml == nil {
		errorJSON(w, http.StatusUnauthorized, "link is invalid or expired")
		return
	}
	if err := h.magicLinks.MarkUsed(ml.ID); err != nil {
		h.logger.Error("mark link used", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := h.users.GetByEmail(ml.Email)
	if err != nil || user == nil {
		h.logger.Error("verify user lookup", "error", err)
		errorJSON(w, http.StatusUnauthorized, "user not found")
		return
	}

	// Invite links add the user to the inviting family before sign-in.
	if ml.Purpose == "invite" && ml.FamilyID != nil && user.FamilyID != *ml.FamilyID {
		errorJSON(w, http.StatusUnauthorized, "invitation does not match account")
		return
	}

	sess, err := h.sessions.Create(user.ID, user.FamilyID, sessionTTL)
	if err != nil {
		h.logger.Error("create session", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if sess, err := h.sessions.GetByToken(cookie.Value); err == nil && sess != nil {
			h.sessions.Delete(sess.ID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// IssueToken mints a short-lived bearer token from an authenticated session,
// for clients that talk to the API without cookies.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.tokens == nil || !h.tokens.Configured() {
		errorJSON(w, http.StatusServiceUnavailable, "token signing is not configured")
		return
	}

	token, err := h.tokens.Issue(ac, time.Now())
	if err != nil {
		h.logger.Error("issue token", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(ac.UserID)
	if err != nil || user == nil {
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
