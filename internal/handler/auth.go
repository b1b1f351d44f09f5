package handler

import (
	"net/http"
	"time"

	"github.com/warcamp/platform/internal/auth"
	"github.com/warcamp/platform/internal/service"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	authSvc *service.AuthService
	cookie  auth.SessionCookie
	ttl     time.Duration
}

// NewAuthHandler creates a new AuthHandler. Sessions live for ttl.
func NewAuthHandler(authSvc *service.AuthService, cookie auth.SessionCookie, ttl time.Duration) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cookie: cookie, ttl: ttl}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if !DecodeBody(w, r, &input) {
		return
	}

	session, err := h.authSvc.Register(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	h.cookie.Set(w, session.Token, h.ttl)
	RespondJSON(w, http.StatusCreated, session)
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if !DecodeBody(w, r, &input) {
		return
	}

	session, err := h.authSvc.Login(r.Context(), input, ClientIP(r))
	if err != nil {
		RespondError(w, err)
		return
	}

	h.cookie.Set(w, session.Token, h.ttl)
	RespondJSON(w, http.StatusOK, session)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookie.Clear(w)
	RespondJSON(w, http.StatusNoContent, nil)
}
