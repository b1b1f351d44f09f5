package admin

import (
	"bytes"
	"net/http"

	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/handler"
	"github.com/warcamp/platform/internal/service"
)

// CampaignAdminHandler manages campaigns. Mounted in global scope only.
type CampaignAdminHandler struct {
	campaigns     *service.CampaignService
	maxImageBytes int64
}

// NewCampaignAdminHandler creates a new CampaignAdminHandler.
func NewCampaignAdminHandler(campaigns *service.CampaignService, maxImageBytes int64) *CampaignAdminHandler {
	return &CampaignAdminHandler{campaigns: campaigns, maxImageBytes: maxImageBytes}
}

// Create handles POST /admin/campaigns.
func (h *CampaignAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CampaignInput
	if !handler.DecodeBody(w, r, &input) {
		return
	}
	c, err := h.campaigns.Create(r.Context(), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, c)
}

// Update handles PATCH /admin/campaigns/{id}.
func (h *CampaignAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id", "campaign")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var u domain.CampaignUpdate
	if !handler.DecodeBody(w, r, &u) {
		return
	}
	c, err := h.campaigns.Update(r.Context(), id, u)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, c)
}

// UploadImage handles POST /admin/campaigns/{id}/image (multipart field "file").
func (h *CampaignAdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathID(r, "id", "campaign")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	data, err := handler.FormFile(w, r, h.maxImageBytes)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	c, err := h.campaigns.SetImage(r.Context(), id, bytes.NewReader(data))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, c)
}
