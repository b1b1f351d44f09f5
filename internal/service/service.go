// Package service holds the request-level use cases. Each method validates
// everything it can before the first write, and runs multi-row writes plus
// their outbox events in one transaction.
package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/repository"
)

// Store bundles the data access every service needs.
type Store struct {
	DB    repository.DBTX
	Tx    repository.Transactor
	Repos repository.Set
}

// FileSaver persists uploaded files and returns their public URL.
type FileSaver interface {
	Save(category, ext string, data []byte) (string, error)
	SaveImage(category string, r io.Reader) (string, error)
}

// internalErr passes nil and AppErrors through and wraps anything else as a 500.
func internalErr(msg string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsAppError(err); ok {
		return err
	}
	return domain.ErrInternal(msg, err)
}

func emit(ctx context.Context, st Store, tx repository.DBTX, drafts ...domain.OutboxDraft) error {
	for _, d := range drafts {
		if err := st.Repos.Outbox.Insert(ctx, tx, d); err != nil {
			return err
		}
	}
	return nil
}

// loadWarband returns the warband, or NotFound when it is absent or outside scope.
func loadWarband(ctx context.Context, st Store, scope *uuid.UUID, id uuid.UUID) (*domain.Warband, error) {
	w, err := st.Repos.Warbands.FindByID(ctx, st.DB, id)
	if err != nil {
		return nil, domain.ErrInternal("find warband", err)
	}
	if w == nil || !w.InCampaign(scope) {
		return nil, domain.ErrNotFound("warband", id.String())
	}
	return w, nil
}

// loadGame returns the game, or NotFound when it is absent or outside scope.
func loadGame(ctx context.Context, st Store, scope *uuid.UUID, id uuid.UUID) (*domain.Game, error) {
	g, err := st.Repos.Games.FindByID(ctx, st.DB, id)
	if err != nil {
		return nil, domain.ErrInternal("find game", err)
	}
	if g == nil || !domain.SameScope(scope, g.CampaignID) {
		return nil, domain.ErrNotFound("game", id.String())
	}
	return g, nil
}

func sameCampaign(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
