package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/domain"
)

// CampaignService handles campaigns and membership.
type CampaignService struct {
	store Store
	files FileSaver
}

// NewCampaignService creates a CampaignService.
func NewCampaignService(store Store, files FileSaver) *CampaignService {
	return &CampaignService{store: store, files: files}
}

// List returns campaigns, newest first.
func (s *CampaignService) List(ctx context.Context, activeOnly bool) ([]domain.Campaign, error) {
	list, err := s.store.Repos.Campaigns.List(ctx, s.store.DB, activeOnly)
	if err != nil {
		return nil, domain.ErrInternal("list campaigns", err)
	}
	if list == nil {
		list = []domain.Campaign{}
	}
	return list, nil
}

// Get returns one campaign.
func (s *CampaignService) Get(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	c, err := s.store.Repos.Campaigns.FindByID(ctx, s.store.DB, id)
	if err != nil {
		return nil, domain.ErrInternal("find campaign", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound("campaign", id.String())
	}
	return c, nil
}

// ResolveScope parses a campaign id from a route and checks the campaign exists.
func (s *CampaignService) ResolveScope(ctx context.Context, raw string) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.ErrNotFound("campaign", raw)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Join adds the player to an active campaign. A player may belong to only
// one active campaign; the check runs here and is not enforced by the schema.
func (s *CampaignService) Join(ctx context.Context, playerID, campaignID uuid.UUID) (*domain.PlayerCampaign, error) {
	c, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, domain.ErrValidation("campaign is not active")
	}

	existing, err := s.store.Repos.Campaigns.FindMembership(ctx, s.store.DB, playerID, campaignID)
	if err != nil {
		return nil, domain.ErrInternal("find membership", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("already a member of this campaign")
	}

	active, err := s.store.Repos.Campaigns.ActiveCampaignsForPlayer(ctx, s.store.DB, playerID)
	if err != nil {
		return nil, domain.ErrInternal("list active campaigns", err)
	}
	if len(active) > 0 {
		return nil, domain.ErrConflict("already playing in active campaign " + active[0].Name)
	}

	m := &domain.PlayerCampaign{PlayerID: playerID, CampaignID: campaignID}
	if err := s.store.Repos.Campaigns.AddMember(ctx, s.store.DB, m); err != nil {
		return nil, internalErr("add member", err)
	}
	return m, nil
}

// Leave removes the player from a campaign.
func (s *CampaignService) Leave(ctx context.Context, playerID, campaignID uuid.UUID) error {
	return internalErr("remove member", s.store.Repos.Campaigns.RemoveMember(ctx, s.store.DB, playerID, campaignID))
}

// CampaignInput holds the fields of a new campaign.
type CampaignInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	WarbandLimit int    `json:"warband_limit"`
}

// Create adds an active campaign. A zero warband limit means unlimited.
func (s *CampaignService) Create(ctx context.Context, input CampaignInput) (*domain.Campaign, error) {
	c := &domain.Campaign{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		IsActive:     true,
		WarbandLimit: input.WarbandLimit,
	}
	if err := validateCampaign(c); err != nil {
		return nil, err
	}
	if err := s.store.Repos.Campaigns.Create(ctx, s.store.DB, c); err != nil {
		return nil, internalErr("create campaign", err)
	}
	return c, nil
}

// Update applies the set fields of u.
func (s *CampaignService) Update(ctx context.Context, id uuid.UUID, u domain.CampaignUpdate) (*domain.Campaign, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Apply(c)
	c.Name = strings.TrimSpace(c.Name)
	if err := validateCampaign(c); err != nil {
		return nil, err
	}
	if err := s.store.Repos.Campaigns.Update(ctx, s.store.DB, c); err != nil {
		return nil, internalErr("update campaign", err)
	}
	return s.Get(ctx, id)
}

// SetImage stores an uploaded image as the campaign's picture.
func (s *CampaignService) SetImage(ctx context.Context, id uuid.UUID, r io.Reader) (*domain.Campaign, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	url, err := s.files.SaveImage("campaigns", r)
	if err != nil {
		return nil, internalErr("save campaign image", err)
	}
	if err := s.store.Repos.Campaigns.UpdateImage(ctx, s.store.DB, id, url); err != nil {
		return nil, internalErr("update campaign image", err)
	}
	return s.Get(ctx, id)
}

func validateCampaign(c *domain.Campaign) error {
	if err := domain.ValidateCampaignName(c.Name); err != nil {
		return domain.ErrValidation(err.Error())
	}
	if c.WarbandLimit != 0 {
		if err := domain.ValidateWarbandLimit(c.WarbandLimit); err != nil {
			return domain.ErrValidation(err.Error())
		}
	}
	return nil
}
