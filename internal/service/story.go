package service

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/domain"
)

// MaxStoryLength caps the text of one story.
const MaxStoryLength = 20000

// StoryService manages the narrative attached to a warband's games.
type StoryService struct {
	store Store
}

// NewStoryService creates a StoryService.
func NewStoryService(store Store) *StoryService {
	return &StoryService{store: store}
}

// List returns the stories in scope, optionally for one warband.
func (s *StoryService) List(ctx context.Context, scope *uuid.UUID, warbandID *uuid.UUID) ([]domain.Story, error) {
	if warbandID != nil {
		if _, err := loadWarband(ctx, s.store, scope, *warbandID); err != nil {
			return nil, err
		}
	}
	list, err := s.store.Repos.Stories.List(ctx, s.store.DB, domain.StoryFilter{CampaignID: scope, WarbandID: warbandID})
	if err != nil {
		return nil, domain.ErrInternal("list stories", err)
	}
	if list == nil {
		list = []domain.Story{}
	}
	return list, nil
}

// Upsert writes the owner's story for a game number. Number 0 is the
// prologue; any other number must be a game the warband played.
func (s *StoryService) Upsert(ctx context.Context, playerID uuid.UUID, scope *uuid.UUID, warbandID uuid.UUID, gameNumber int, text string) (*domain.Story, error) {
	w, err := loadWarband(ctx, s.store, scope, warbandID)
	if err != nil {
		return nil, err
	}
	if w.PlayerID != playerID {
		return nil, domain.ErrForbidden("you do not own this warband")
	}
	if err := validateStoryText(text); err != nil {
		return nil, err
	}
	if gameNumber < 0 {
		return nil, domain.ErrValidation("game number cannot be negative")
	}
	if gameNumber > 0 {
		played, err := s.store.Repos.Games.PlayedGameNumbers(ctx, s.store.DB, w.ID)
		if err != nil {
			return nil, domain.ErrInternal("list game numbers", err)
		}
		if !slices.Contains(played, gameNumber) {
			return nil, domain.ErrValidation("warband has not finished a game with that number")
		}
	}

	st := &domain.Story{
		ID:         uuid.New(),
		WarbandID:  w.ID,
		GameNumber: gameNumber,
		Text:       text,
	}
	if err := s.store.Repos.Stories.Upsert(ctx, s.store.DB, st); err != nil {
		return nil, domain.ErrInternal("save story", err)
	}
	return st, nil
}

// UpdateText lets an admin edit a story.
func (s *StoryService) UpdateText(ctx context.Context, scope *uuid.UUID, id uuid.UUID, text string) (*domain.Story, error) {
	st, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := validateStoryText(text); err != nil {
		return nil, err
	}
	if err := s.store.Repos.Stories.UpdateText(ctx, s.store.DB, id, text); err != nil {
		return nil, internalErr("update story", err)
	}
	st.Text = text
	return st, nil
}

// Delete removes a story.
func (s *StoryService) Delete(ctx context.Context, scope *uuid.UUID, id uuid.UUID) error {
	if _, err := s.load(ctx, scope, id); err != nil {
		return err
	}
	return internalErr("delete story", s.store.Repos.Stories.Delete(ctx, s.store.DB, id))
}

func (s *StoryService) load(ctx context.Context, scope *uuid.UUID, id uuid.UUID) (*domain.Story, error) {
	st, err := s.store.Repos.Stories.FindByID(ctx, s.store.DB, id)
	if err != nil {
		return nil, domain.ErrInternal("find story", err)
	}
	if st == nil {
		return nil, domain.ErrNotFound("story", id.String())
	}
	if _, err := loadWarband(ctx, s.store, scope, st.WarbandID); err != nil {
		return nil, domain.ErrNotFound("story", id.String())
	}
	return st, nil
}

func validateStoryText(text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrValidation("story text is required")
	}
	if len(text) > MaxStoryLength {
		return domain.ErrValidation("story text is too long")
	}
	return nil
}
