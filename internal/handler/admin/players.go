// Package admin serves the /admin route family. Every route runs behind
// auth.RequireAdmin, in global or campaign scope.
package admin

import (
	"net/http"

	"github.com/warcamp/platform/internal/handler"
	"github.com/warcamp/platform/internal/service"
)

// PlayerAdminHandler handles admin player management.
type PlayerAdminHandler struct {
	players *service.PlayerService
}

// NewPlayerAdminHandler creates a new PlayerAdminHandler.
func NewPlayerAdminHandler(players *service.PlayerService) *PlayerAdminHandler {
	return &PlayerAdminHandler{players: players}
}

// List handles GET /admin/players?q=login. A campaign scope lists its members.
func (h *PlayerAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.players.List(r.Context(), handler.ScopeFromContext(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, list)
}

// Update handles PATCH /admin/players/{id}.
func (h *PlayerAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id", "player")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var flags service.PlayerFlags
	if !handler.DecodeBody(w, r, &flags) {
		return
	}
	if err := h.players.AdminUpdate(r.Context(), handler.ScopeFromContext(r.Context()), id, flags); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}

// Remove handles DELETE /admin/players/{id}: removes campaign membership.
func (h *PlayerAdminHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id", "player")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if err := h.players.AdminRemove(r.Context(), handler.ScopeFromContext(r.Context()), id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}
