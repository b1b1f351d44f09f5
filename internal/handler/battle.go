package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/service"
)

// BattleHandler serves the /battle/plan family: scheduling and the game lifecycle.
type BattleHandler struct {
	battles *service.BattleService
}

// NewBattleHandler creates a new BattleHandler.
func NewBattleHandler(battles *service.BattleService) *BattleHandler {
	return &BattleHandler{battles: battles}
}

// List handles GET /battle/plan?status=planned,active&mine=true&warband_id=.
func (h *BattleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := GameFilter(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	if r.URL.Query().Get("mine") == "true" {
		me := playerID(r)
		filter.PlayerID = &me
	}
	list, err := h.battles.List(r.Context(), ScopeFromContext(r.Context()), filter)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, list)
}

// Plan handles POST /battle/plan.
func (h *BattleHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var input service.PlanInput
	if !DecodeBody(w, r, &input) {
		return
	}
	g, err := h.battles.Plan(r.Context(), playerID(r), ScopeFromContext(r.Context()), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, g)
}

// Get handles GET /battle/plan/{id}.
func (h *BattleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id", "game")
	if err != nil {
		RespondError(w, err)
		return
	}
	g, err := h.battles.Get(r.Context(), ScopeFromContext(r.Context()), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

// act runs one lifecycle step against the game named in the route.
func (h *BattleHandler) act(w http.ResponseWriter, r *http.Request, step func(ctx context.Context, me uuid.UUID, scope *uuid.UUID, id uuid.UUID) (*domain.Game, error)) {
	id, err := PathID(r, "id", "game")
	if err != nil {
		RespondError(w, err)
		return
	}
	g, err := step(r.Context(), playerID(r), ScopeFromContext(r.Context()), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

// Ready handles PATCH /battle/plan/{id}/ready.
func (h *BattleHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.battles.Ready)
}

// Submit handles PATCH /battle/plan/{id}/result.
func (h *BattleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input service.ResultInput
	if !DecodeBody(w, r, &input) {
		return
	}
	h.act(w, r, func(ctx context.Context, me uuid.UUID, scope *uuid.UUID, id uuid.UUID) (*domain.Game, error) {
		return h.battles.Submit(ctx, me, scope, id, input)
	})
}

// Approve handles PATCH /battle/plan/{id}/approve.
func (h *BattleHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.battles.Approve)
}

// Reject handles PATCH /battle/plan/{id}/reject.
func (h *BattleHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.battles.Reject)
}

// Cancel handles DELETE /battle/plan/{id}.
func (h *BattleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id", "game")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.battles.Cancel(r.Context(), playerID(r), ScopeFromContext(r.Context()), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// GameFilter reads ?status (comma separated) and ?warband_id.
func GameFilter(r *http.Request) (domain.GameFilter, error) {
	q := r.URL.Query()
	var filter domain.GameFilter
	if raw := q.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, domain.GameStatus(strings.TrimSpace(s)))
		}
	}
	if raw := q.Get("warband_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, domain.ErrValidation("invalid warband_id")
		}
		filter.WarbandID = &id
	}
	return filter, nil
}
