package admin

import (
	"net/http"

	"github.com/warcamp/platform/internal/handler"
	"github.com/warcamp/platform/internal/service"
)

// GameAdminHandler handles game cleanup.
type GameAdminHandler struct {
	battles *service.BattleService
}

// NewGameAdminHandler creates a new GameAdminHandler.
func NewGameAdminHandler(battles *service.BattleService) *GameAdminHandler {
	return &GameAdminHandler{battles: battles}
}

// List handles GET /admin/games?status=.
func (h *GameAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := handler.GameFilter(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	list, err := h.battles.List(r.Context(), handler.ScopeFromContext(r.Context()), filter)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, list)
}

// Delete handles DELETE /admin/games/{id} in any status.
func (h *GameAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id", "game")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if err := h.battles.Delete(r.Context(), handler.ScopeFromContext(r.Context()), id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}
