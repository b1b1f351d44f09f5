package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/service"
)

// WarbandHandler serves warband registration, rosters and retirement.
type WarbandHandler struct {
	warbands *service.WarbandService
}

// NewWarbandHandler creates a new WarbandHandler.
func NewWarbandHandler(warbands *service.WarbandService) *WarbandHandler {
	return &WarbandHandler{warbands: warbands}
}

// Apply handles POST /warband-apply (multipart field "file").
func (h *WarbandHandler) Apply(w http.ResponseWriter, r *http.Request) {
	data, err := FormFile(w, r, MaxRosterBytes)
	if err != nil {
		RespondError(w, err)
		return
	}
	detail, err := h.warbands.Apply(r.Context(), playerID(r), ScopeFromContext(r.Context()), data)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, detail)
}

// List handles GET /warbands?status=&player_id=.
func (h *WarbandHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := warbandFilter(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	list, err := h.warbands.List(r.Context(), ScopeFromContext(r.Context()), filter)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, list)
}

// Mine handles GET /warbands/mine.
func (h *WarbandHandler) Mine(w http.ResponseWriter, r *http.Request) {
	me := playerID(r)
	list, err := h.warbands.List(r.Context(), ScopeFromContext(r.Context()), domain.WarbandFilter{PlayerID: &me})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /warbands/{id}.
func (h *WarbandHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id", "warband")
	if err != nil {
		RespondError(w, err)
		return
	}
	detail, err := h.warbands.Get(r.Context(), ScopeFromContext(r.Context()), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, detail)
}

// Rosters handles GET /warbands/{id}/rosters.
func (h *WarbandHandler) Rosters(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id", "warband")
	if err != nil {
		RespondError(w, err)
		return
	}
	list, err := h.warbands.Rosters(r.Context(), ScopeFromContext(r.Context()), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, list)
}

// ReplaceRoster handles POST /warbands/{id}/roster (multipart field "file").
func (h *WarbandHandler) ReplaceRoster(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id", "warband")
	if err != nil {
		RespondError(w, err)
		return
	}
	data, err := FormFile(w, r, MaxRosterBytes)
	if err != nil {
		RespondError(w, err)
		return
	}
	detail, err := h.warbands.ReplaceRoster(r.Context(), playerID(r), ScopeFromContext(r.Context()), id, data)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, detail)
}

// Retire handles DELETE /warbands/{id}.
func (h *WarbandHandler) Retire(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id", "warband")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.warbands.Retire(r.Context(), playerID(r), ScopeFromContext(r.Context()), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// RosterFile handles GET /rosters/{id}/file and streams the upload as an attachment.
func (h *WarbandHandler) RosterFile(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id", "roster")
	if err != nil {
		RespondError(w, err)
		return
	}
	ro, err := h.warbands.RosterFile(r.Context(), ScopeFromContext(r.Context()), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="roster-%s-%d.json"`, ro.WarbandID, ro.GameNumber))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(ro.FileContent))
}

func warbandFilter(r *http.Request) (domain.WarbandFilter, error) {
	q := r.URL.Query()
	filter := domain.WarbandFilter{Status: domain.WarbandStatus(q.Get("status"))}
	if raw := q.Get("player_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, domain.ErrValidation("invalid player_id")
		}
		filter.PlayerID = &id
	}
	return filter, nil
}
