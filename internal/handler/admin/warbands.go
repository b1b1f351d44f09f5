package admin

import (
	"net/http"

	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/handler"
	"github.com/warcamp/platform/internal/service"
)

// WarbandAdminHandler handles warband moderation.
type WarbandAdminHandler struct {
	warbands *service.WarbandService
}

// NewWarbandAdminHandler creates a new WarbandAdminHandler.
func NewWarbandAdminHandler(warbands *service.WarbandService) *WarbandAdminHandler {
	return &WarbandAdminHandler{warbands: warbands}
}

// List handles GET /admin/warbands?status=. Retired warbands are included.
func (h *WarbandAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.WarbandFilter{
		Status:         domain.WarbandStatus(r.URL.Query().Get("status")),
		IncludeDeleted: true,
	}
	list, err := h.warbands.List(r.Context(), handler.ScopeFromContext(r.Context()), filter)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, list)
}

type statusBody struct {
	Status domain.WarbandStatus `json:"status"`
}

// SetStatus handles PATCH /admin/warbands/{id}.
func (h *WarbandAdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id", "warband")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var body statusBody
	if !handler.DecodeBody(w, r, &body) {
		return
	}
	wb, err := h.warbands.SetStatus(r.Context(), handler.ScopeFromContext(r.Context()), id, body.Status)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, wb)
}

// Delete handles DELETE /admin/warbands/{id}: removes the warband with its
// games, rosters and stories.
func (h *WarbandAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id", "warband")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	sum, err := h.warbands.Delete(r.Context(), handler.ScopeFromContext(r.Context()), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, sum)
}
