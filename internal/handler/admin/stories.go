package admin

import (
	"net/http"

	"github.com/warcamp/platform/internal/handler"
	"github.com/warcamp/platform/internal/service"
)

// StoryAdminHandler handles story moderation.
type StoryAdminHandler struct {
	stories *service.StoryService
}

// NewStoryAdminHandler creates a new StoryAdminHandler.
func NewStoryAdminHandler(stories *service.StoryService) *StoryAdminHandler {
	return &StoryAdminHandler{stories: stories}
}

// List handles GET /admin/stories.
func (h *StoryAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.stories.List(r.Context(), handler.ScopeFromContext(r.Context()), nil)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, list)
}

type textBody struct {
	Text string `json:"text"`
}

// Update handles PATCH /admin/stories/{id}.
func (h *StoryAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id", "story")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var body textBody
	if !handler.DecodeBody(w, r, &body) {
		return
	}
	st, err := h.stories.UpdateText(r.Context(), handler.ScopeFromContext(r.Context()), id, body.Text)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, st)
}

// Delete handles DELETE /admin/stories/{id}.
func (h *StoryAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id", "story")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if err := h.stories.Delete(r.Context(), handler.ScopeFromContext(r.Context()), id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}
