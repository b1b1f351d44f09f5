package domain

import (
	"time"

	"github.com/google/uuid"
)

// Campaign groups players and their warbands.
type Campaign struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url,omitempty"`
	IsActive     bool      `json:"is_active"`
	WarbandLimit int       `json:"warband_limit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PlayerCampaign is the membership join row.
type PlayerCampaign struct {
	PlayerID   uuid.UUID `json:"player_id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	IsAdmin    bool      `json:"is_admin"`
	JoinedAt   time.Time `json:"joined_at"`
}

// CampaignUpdate carries optional campaign field changes.
type CampaignUpdate struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	IsActive     *bool   `json:"is_active"`
	WarbandLimit *int    `json:"warband_limit"`
}

// Apply copies the set fields onto c.
func (u CampaignUpdate) Apply(c *Campaign) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
	if u.WarbandLimit != nil {
		c.WarbandLimit = *u.WarbandLimit
	}
}
