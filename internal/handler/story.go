package handler

import (
	"net/http"

	"github.com/warcamp/platform/internal/service"
)

// StoryHandler serves warband narratives.
type StoryHandler struct {
	stories *service.StoryService
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(stories *service.StoryService) *StoryHandler {
	return &StoryHandler{stories: stories}
}

// List handles GET /warbands/{id}/stories.
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id", "warband")
	if err != nil {
		RespondError(w, err)
		return
	}
	list, err := h.stories.List(r.Context(), ScopeFromContext(r.Context()), &id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, list)
}

type storyBody struct {
	Text string `json:"text"`
}

// Upsert handles PUT /warbands/{id}/stories/{gameNumber}.
func (h *StoryHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id", "warband")
	if err != nil {
		RespondError(w, err)
		return
	}
	n, err := pathInt(r, "gameNumber")
	if err != nil {
		RespondError(w, err)
		return
	}
	var body storyBody
	if !DecodeBody(w, r, &body) {
		return
	}
	st, err := h.stories.Upsert(r.Context(), playerID(r), ScopeFromContext(r.Context()), id, n, body.Text)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, st)
}
