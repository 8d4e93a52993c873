package websocket

import (
	"log/slog"
	"net/http"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades an authenticated request and runs it as a hub
// client in the caller's family room. Must be mounted behind RequireAuth.
func HandleWebSocket(hub *Hub, users *store.UserStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		name := ""
		if u, err := users.GetByID(ac.UserID); err == nil && u != nil {
			name = u.Name
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // same-origin enforcement happens at the session layer
		})
		if err != nil {
			logger.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, ac.FamilyID, ac.UserID, name)
		client.Run(r.Context())
	}
}
