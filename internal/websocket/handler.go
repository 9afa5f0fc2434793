package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/williamwmy/fantastic-task/internal/auth"
)

// Handler upgrades an authenticated request to a WebSocket and runs it as
// a hub client for the caller's family.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID := auth.FamilyID(r.Context())
		if familyID == 0 {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // same-origin enforcement is the proxy's job on a home LAN
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		client := newClient(hub, conn, familyID)
		client.run(r.Context())
	}
}
