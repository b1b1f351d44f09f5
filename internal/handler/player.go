package handler

import (
	"bytes"
	"net/http"

	"github.com/warcamp/platform/internal/service"
)

// PlayerHandler serves the authenticated player's own profile.
type PlayerHandler struct {
	players       *service.PlayerService
	maxImageBytes int64
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(players *service.PlayerService, maxImageBytes int64) *PlayerHandler {
	return &PlayerHandler{players: players, maxImageBytes: maxImageBytes}
}

// GetMe handles GET /me.
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.players.Profile(r.Context(), playerID(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// UpdateMe handles PATCH /me.
func (h *PlayerHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var input service.ProfileInput
	if !DecodeBody(w, r, &input) {
		return
	}
	profile, err := h.players.UpdateProfile(r.Context(), playerID(r), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// ChangePassword handles PUT /me/password.
func (h *PlayerHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var input service.PasswordInput
	if !DecodeBody(w, r, &input) {
		return
	}
	if err := h.players.ChangePassword(r.Context(), playerID(r), input); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// UploadAvatar handles POST /me/avatar (multipart field "file").
func (h *PlayerHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	data, err := FormFile(w, r, h.maxImageBytes)
	if err != nil {
		RespondError(w, err)
		return
	}
	url, err := h.players.SetAvatar(r.Context(), playerID(r), bytes.NewReader(data))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"avatar_url": url})
}
