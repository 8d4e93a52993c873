package middleware

import (
	"net/http"
	"strings"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

// SessionCookieName is the browser session cookie.
const SessionCookieName = "familyhub_session"

// RequireAuth authenticates the request and populates AuthContext. Two
// credentials are accepted: the session cookie, and a Bearer token minted by
// the token issuer. API paths get 401 JSON; everything else redirects to
// /login.
func RequireAuth(sessions *store.SessionStore, users *store.UserStore, tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ac, ok := bearerAuth(r, tokens); ok {
				next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
				return
			}

			ac, ok := cookieAuth(r, sessions, users)
			if !ok {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

func bearerAuth(r *http.Request, tokens *auth.TokenIssuer) (auth.AuthContext, bool) {
	if tokens == nil || !tokens.Configured() {
		return auth.AuthContext{}, false
	}
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return auth.AuthContext{}, false
	}
	ac, err := tokens.Verify(raw)
	if err != nil {
		return auth.AuthContext{}, false
	}
	return ac, true
}

func cookieAuth(r *http.Request, sessions *store.SessionStore, users *store.UserStore) (auth.AuthContext, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return auth.AuthContext{}, false
	}

	sess, err := sessions.GetByToken(cookie.Value)
	if err != nil || sess == nil {
		return auth.AuthContext{}, false
	}

	// Role comes from the user row, not the session, so role changes take
	// effect without re-login.
	user, err := users.GetByID(sess.UserID)
	if err != nil || user == nil {
		return auth.AuthContext{}, false
	}

	return auth.AuthContext{
		UserID:    user.ID,
		FamilyID:  user.FamilyID,
		Role:      user.Role,
		SessionID: sess.ID,
	}, true
}

// RequireGuardian gates a route to parents and admins. Mount inside
// RequireAuth.
func RequireGuardian(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsGuardian(r.Context()) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/ws") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized"}`))
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
