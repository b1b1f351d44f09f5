package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/warcamp/platform/internal/domain"
)

const campaignColumns = `c.id, c.name, c.description, c.image_url, c.is_active, c.warband_limit, c.created_at, c.updated_at`

type campaignRepo struct{}

// NewCampaignRepository returns a pgx-backed CampaignRepository.
func NewCampaignRepository() CampaignRepository {
	return &campaignRepo{}
}

func (r *campaignRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Campaign, error) {
	row := db.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns c WHERE c.id = $1`, id)
	return scanCampaign(row)
}

func (r *campaignRepo) List(ctx context.Context, db DBTX, activeOnly bool) ([]domain.Campaign, error) {
	rows, err := db.Query(ctx, `
		SELECT `+campaignColumns+` FROM campaigns c
		WHERE ($1 = false OR c.is_active)
		ORDER BY c.created_at DESC`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return collectCampaigns(rows)
}

func (r *campaignRepo) Create(ctx context.Context, db DBTX, c *domain.Campaign) error {
	err := db.QueryRow(ctx, `
		INSERT INTO campaigns (id, name, description, image_url, is_active, warband_limit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Description, c.ImageURL, c.IsActive, c.WarbandLimit,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (r *campaignRepo) Update(ctx context.Context, db DBTX, c *domain.Campaign) error {
	return execOne(ctx, db, "campaign", c.ID, `
		UPDATE campaigns SET name = $2, description = $3, is_active = $4, warband_limit = $5, updated_at = now()
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.IsActive, c.WarbandLimit)
}

func (r *campaignRepo) UpdateImage(ctx context.Context, db DBTX, id uuid.UUID, url string) error {
	return execOne(ctx, db, "campaign", id,
		`UPDATE campaigns SET image_url = $2, updated_at = now() WHERE id = $1`, id, url)
}

func (r *campaignRepo) FindMembership(ctx context.Context, db DBTX, playerID, campaignID uuid.UUID) (*domain.PlayerCampaign, error) {
	var m domain.PlayerCampaign
	err := db.QueryRow(ctx, `
		SELECT player_id, campaign_id, is_admin, joined_at
		FROM player_campaigns WHERE player_id = $1 AND campaign_id = $2`,
		playerID, campaignID).Scan(&m.PlayerID, &m.CampaignID, &m.IsAdmin, &m.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return &m, nil
}

func (r *campaignRepo) ListMemberships(ctx context.Context, db DBTX, playerID uuid.UUID) ([]domain.PlayerCampaign, error) {
	rows, err := db.Query(ctx, `
		SELECT player_id, campaign_id, is_admin, joined_at
		FROM player_campaigns WHERE player_id = $1 ORDER BY joined_at ASC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var out []domain.PlayerCampaign
	for rows.Next() {
		var m domain.PlayerCampaign
		if err := rows.Scan(&m.PlayerID, &m.CampaignID, &m.IsAdmin, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *campaignRepo) ActiveCampaignsForPlayer(ctx context.Context, db DBTX, playerID uuid.UUID) ([]domain.Campaign, error) {
	rows, err := db.Query(ctx, `
		SELECT `+campaignColumns+` FROM campaigns c
		JOIN player_campaigns pc ON pc.campaign_id = c.id
		WHERE pc.player_id = $1 AND c.is_active
		ORDER BY pc.joined_at ASC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}
	return collectCampaigns(rows)
}

func (r *campaignRepo) AddMember(ctx context.Context, db DBTX, m *domain.PlayerCampaign) error {
	err := db.QueryRow(ctx, `
		INSERT INTO player_campaigns (player_id, campaign_id, is_admin)
		VALUES ($1, $2, $3) RETURNING joined_at`,
		m.PlayerID, m.CampaignID, m.IsAdmin).Scan(&m.JoinedAt)
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (r *campaignRepo) RemoveMember(ctx context.Context, db DBTX, playerID, campaignID uuid.UUID) error {
	return execOne(ctx, db, "membership", playerID,
		`DELETE FROM player_campaigns WHERE player_id = $1 AND campaign_id = $2`, playerID, campaignID)
}

func (r *campaignRepo) SetMemberAdmin(ctx context.Context, db DBTX, playerID, campaignID uuid.UUID, isAdmin bool) error {
	return execOne(ctx, db, "membership", playerID,
		`UPDATE player_campaigns SET is_admin = $3 WHERE player_id = $1 AND campaign_id = $2`,
		playerID, campaignID, isAdmin)
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.IsActive, &c.WarbandLimit, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	return &c, nil
}

func collectCampaigns(rows pgx.Rows) ([]domain.Campaign, error) {
	defer rows.Close()
	var out []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
