package handler

import "net/http"

// ConnectedClients lists which participant is bound to which websocket session.
func (h *Handler) ConnectedClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"clients": h.clients.Snapshot()})
}
