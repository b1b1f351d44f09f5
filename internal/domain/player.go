package domain

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a players row.
type Player struct {
	ID           uuid.UUID `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PlayerFilter narrows player listings. A nil CampaignID lists every account.
type PlayerFilter struct {
	CampaignID *uuid.UUID
	Query      string
}

// LoginAttempt is one row of login_attempts.
type LoginAttempt struct {
	Login     string
	IPAddress string
	Success   bool
	CreatedAt time.Time
}
