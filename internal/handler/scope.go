package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/auth"
	"github.com/warcamp/platform/internal/domain"
)

const scopeKey contextKeyType = "campaign_scope"

// ScopeResolver checks a campaign id taken from the route.
type ScopeResolver interface {
	ResolveScope(ctx context.Context, raw string) (*uuid.UUID, error)
}

// CampaignScope resolves the {campaignID} route parameter and stores it in the
// request context. Routes mounted without it run in global scope.
func CampaignScope(resolver ScopeResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := resolver.ResolveScope(r.Context(), chi.URLParam(r, "campaignID"))
			if err != nil {
				RespondError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), scopeKey, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ScopeFromContext returns the campaign scope, or nil for global routes.
func ScopeFromContext(ctx context.Context) *uuid.UUID {
	scope, _ := ctx.Value(scopeKey).(*uuid.UUID)
	return scope
}

// PathID parses a uuid route parameter. Malformed ids are reported as not found.
func PathID(r *http.Request, name, entity string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrNotFound(entity, raw)
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, domain.ErrValidation(name + " must be a number")
	}
	return n, nil
}

// playerID returns the authenticated player's id.
func playerID(r *http.Request) uuid.UUID {
	if id := auth.IdentityFromContext(r.Context()); id != nil {
		return id.PlayerID
	}
	return uuid.Nil
}
