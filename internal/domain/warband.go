package domain

import (
	"time"

	"github.com/google/uuid"
)

// WarbandStatus tracks whether a warband may be scheduled.
type WarbandStatus string

const (
	WarbandActive      WarbandStatus = "active"
	WarbandChecking    WarbandStatus = "checking"     // roster awaiting admin review
	WarbandNeedsUpdate WarbandStatus = "needs_update" // finished a game, new roster required
	WarbandInactive    WarbandStatus = "inactive"     // deactivated by an admin
	WarbandDeleted     WarbandStatus = "deleted"      // retired by its owner
)

// Valid reports whether s is a known status.
func (s WarbandStatus) Valid() bool {
	switch s {
	case WarbandActive, WarbandChecking, WarbandNeedsUpdate, WarbandInactive, WarbandDeleted:
		return true
	}
	return false
}

// Warband is one player's force, identified by name and faction.
type Warband struct {
	ID            uuid.UUID     `json:"id"`
	PlayerID      uuid.UUID     `json:"player_id"`
	CampaignID    *uuid.UUID    `json:"campaign_id,omitempty"`
	Name          string        `json:"name"`
	CatalogueName string        `json:"catalogue_name"`
	Status        WarbandStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// InCampaign reports whether w belongs to the given scope. A nil scope matches everything.
func (w *Warband) InCampaign(scope *uuid.UUID) bool {
	return SameScope(scope, w.CampaignID)
}

// WarbandFilter narrows warband listings.
type WarbandFilter struct {
	CampaignID     *uuid.UUID
	PlayerID       *uuid.UUID
	Status         WarbandStatus
	IncludeDeleted bool
}

// Roster is an immutable snapshot of an uploaded army list.
type Roster struct {
	ID          uuid.UUID `json:"id"`
	WarbandID   uuid.UUID `json:"warband_id"`
	GameNumber  int       `json:"game_number"`
	FileContent string    `json:"-"`
	FileURL     string    `json:"file_url"`
	Ducats      int       `json:"ducats"`
	GloryPoints int       `json:"glory_points"`
	ModelCount  int       `json:"model_count"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Story is free narrative text tied to a warband and one of its game numbers.
type Story struct {
	ID         uuid.UUID `json:"id"`
	WarbandID  uuid.UUID `json:"warband_id"`
	GameNumber int       `json:"game_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StoryFilter narrows story listings.
type StoryFilter struct {
	CampaignID *uuid.UUID
	WarbandID  *uuid.UUID
}

// SameScope reports whether an entity's campaign falls inside scope.
func SameScope(scope, campaignID *uuid.UUID) bool {
	if scope == nil {
		return true
	}
	return campaignID != nil && *campaignID == *scope
}
