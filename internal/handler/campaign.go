package handler

import (
	"net/http"

	"github.com/warcamp/platform/internal/service"
)

// CampaignHandler serves the public campaign list and membership actions.
type CampaignHandler struct {
	campaigns *service.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler.
func NewCampaignHandler(campaigns *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns}
}

// List handles GET /campaigns?active=true.
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	list, err := h.campaigns.List(r.Context(), activeOnly)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /campaigns/{campaignID}.
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "campaignID", "campaign")
	if err != nil {
		RespondError(w, err)
		return
	}
	c, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, c)
}

// Join handles POST /campaigns/{campaignID}/join.
func (h *CampaignHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "campaignID", "campaign")
	if err != nil {
		RespondError(w, err)
		return
	}
	m, err := h.campaigns.Join(r.Context(), playerID(r), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, m)
}

// Leave handles DELETE /campaigns/{campaignID}/join.
func (h *CampaignHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "campaignID", "campaign")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.campaigns.Leave(r.Context(), playerID(r), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
