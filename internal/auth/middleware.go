package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/repository"
)

type contextKey string

const identityKey contextKey = "auth_identity"

// Identity is the authenticated player, re-read from the store on every request.
type Identity struct {
	PlayerID uuid.UUID
	Login    string
	IsAdmin  bool
}

// IdentityFromContext returns the authenticated player, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Authenticate returns middleware that resolves the session token from the
// cookie (or a Bearer header) and loads the player it names.
// Missing or invalid sessions get 401; deactivated players get 403.
func Authenticate(jwtMgr *JWTManager, players repository.PlayerRepository, db repository.DBTX, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cookieName)
			if token == "" {
				deny(w, domain.ErrUnauthorized("not logged in"))
				return
			}

			claims, err := jwtMgr.ValidateToken(token)
			if err != nil {
				deny(w, domain.ErrUnauthorized("invalid session"))
				return
			}
			playerID, err := claims.PlayerID()
			if err != nil {
				deny(w, domain.ErrUnauthorized("invalid session"))
				return
			}

			player, err := players.FindByID(r.Context(), db, playerID)
			if err != nil {
				deny(w, domain.ErrInternal("authentication lookup failed", err))
				return
			}
			if player == nil {
				deny(w, domain.ErrUnauthorized("invalid session"))
				return
			}
			if !player.IsActive {
				deny(w, domain.ErrForbidden("account is deactivated"))
				return
			}

			ctx := WithIdentity(r.Context(), &Identity{
				PlayerID: player.ID,
				Login:    player.Login,
				IsAdmin:  player.IsAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin passes global admins. Under a {campaignID} route it also
// passes players holding the admin flag on their membership of that campaign.
func RequireAdmin(campaigns repository.CampaignRepository, db repository.DBTX) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				deny(w, domain.ErrUnauthorized("not logged in"))
				return
			}
			if id.IsAdmin {
				next.ServeHTTP(w, r)
				return
			}

			raw := chi.URLParam(r, "campaignID")
			if raw == "" {
				deny(w, domain.ErrForbidden("admin access required"))
				return
			}
			campaignID, err := uuid.Parse(raw)
			if err != nil {
				deny(w, domain.ErrNotFound("campaign", raw))
				return
			}

			m, err := campaigns.FindMembership(r.Context(), db, id.PlayerID, campaignID)
			if err != nil {
				deny(w, domain.ErrInternal("authentication lookup failed", err))
				return
			}
			if m == nil || !m.IsAdmin {
				deny(w, domain.ErrForbidden("campaign admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func deny(w http.ResponseWriter, appErr *domain.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
