package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// PlayerService handles profiles and admin player management.
type PlayerService struct {
	store Store
	files FileSaver
}

// NewPlayerService creates a PlayerService.
func NewPlayerService(store Store, files FileSaver) *PlayerService {
	return &PlayerService{store: store, files: files}
}

// Profile is a player with their campaign memberships.
type Profile struct {
	*domain.Player
	Campaigns []domain.PlayerCampaign `json:"campaigns"`
}

// Profile returns the player's own profile.
func (s *PlayerService) Profile(ctx context.Context, playerID uuid.UUID) (*Profile, error) {
	p, err := s.store.Repos.Players.FindByID(ctx, s.store.DB, playerID)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound("player", playerID.String())
	}
	memberships, err := s.store.Repos.Campaigns.ListMemberships(ctx, s.store.DB, playerID)
	if err != nil {
		return nil, domain.ErrInternal("list memberships", err)
	}
	if memberships == nil {
		memberships = []domain.PlayerCampaign{}
	}
	return &Profile{Player: p, Campaigns: memberships}, nil
}

// ProfileInput holds editable profile fields. Nil fields are left unchanged.
type ProfileInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UpdateProfile changes the player's display name and email.
func (s *PlayerService) UpdateProfile(ctx context.Context, playerID uuid.UUID, input ProfileInput) (*Profile, error) {
	current, err := s.Profile(ctx, playerID)
	if err != nil {
		return nil, err
	}

	name, email := current.Name, current.Email
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.ErrValidation("name cannot be empty")
		}
	}
	if input.Email != nil {
		email = strings.TrimSpace(*input.Email)
		if email != "" {
			if err := domain.ValidateEmail(email); err != nil {
				return nil, domain.ErrValidation(err.Error())
			}
		}
	}

	if err := s.store.Repos.Players.UpdateProfile(ctx, s.store.DB, playerID, name, email); err != nil {
		return nil, internalErr("update profile", err)
	}
	return s.Profile(ctx, playerID)
}

// PasswordInput holds a password change request.
type PasswordInput struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

// ChangePassword replaces the password after checking the current one.
func (s *PlayerService) ChangePassword(ctx context.Context, playerID uuid.UUID, input PasswordInput) error {
	p, err := s.store.Repos.Players.FindByID(ctx, s.store.DB, playerID)
	if err != nil {
		return domain.ErrInternal("find player", err)
	}
	if p == nil {
		return domain.ErrNotFound("player", playerID.String())
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(input.Current)) != nil {
		return domain.ErrValidation("current password is incorrect")
	}
	if err := domain.ValidatePassword(input.New); err != nil {
		return domain.ErrValidation(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.New), bcrypt.DefaultCost)
	if err != nil {
		return domain.ErrInternal("hash password", err)
	}
	return internalErr("update password", s.store.Repos.Players.UpdatePassword(ctx, s.store.DB, playerID, string(hash)))
}

// SetAvatar stores an uploaded image and points the player's avatar at it.
func (s *PlayerService) SetAvatar(ctx context.Context, playerID uuid.UUID, r io.Reader) (string, error) {
	url, err := s.files.SaveImage("avatars", r)
	if err != nil {
		return "", internalErr("save avatar", err)
	}
	if err := s.store.Repos.Players.UpdateAvatar(ctx, s.store.DB, playerID, url); err != nil {
		return "", internalErr("update avatar", err)
	}
	return url, nil
}

// List returns players; a campaign scope restricts to its members.
func (s *PlayerService) List(ctx context.Context, scope *uuid.UUID, query string) ([]domain.Player, error) {
	players, err := s.store.Repos.Players.List(ctx, s.store.DB, domain.PlayerFilter{CampaignID: scope, Query: query})
	if err != nil {
		return nil, domain.ErrInternal("list players", err)
	}
	if players == nil {
		players = []domain.Player{}
	}
	return players, nil
}

// PlayerFlags holds admin-editable player flags. Nil fields are left unchanged.
type PlayerFlags struct {
	IsActive *bool `json:"is_active"`
	IsAdmin  *bool `json:"is_admin"`
}

// AdminUpdate changes account flags globally, or the campaign admin flag of a
// membership when scoped.
func (s *PlayerService) AdminUpdate(ctx context.Context, scope *uuid.UUID, playerID uuid.UUID, flags PlayerFlags) error {
	if flags.IsActive == nil && flags.IsAdmin == nil {
		return domain.ErrValidation("nothing to update")
	}

	if scope == nil {
		return internalErr("update player", s.store.Repos.Players.SetFlags(ctx, s.store.DB, playerID, flags.IsActive, flags.IsAdmin))
	}

	if flags.IsAdmin == nil {
		return domain.ErrValidation("only is_admin can be changed within a campaign")
	}
	return internalErr("update membership", s.store.Repos.Campaigns.SetMemberAdmin(ctx, s.store.DB, playerID, *scope, *flags.IsAdmin))
}

// AdminRemove removes a player from the scoped campaign. Accounts are never
// deleted globally; deactivate them instead.
func (s *PlayerService) AdminRemove(ctx context.Context, scope *uuid.UUID, playerID uuid.UUID) error {
	if scope == nil {
		return domain.ErrValidation("players cannot be deleted, deactivate them instead")
	}
	return internalErr("remove member", s.store.Repos.Campaigns.RemoveMember(ctx, s.store.DB, playerID, *scope))
}
