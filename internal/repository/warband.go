package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/warcamp/platform/internal/domain"
)

const warbandColumns = `w.id, w.player_id, w.campaign_id, w.name, w.catalogue_name, w.status, w.created_at, w.updated_at`

type warbandRepo struct{}

// NewWarbandRepository returns a pgx-backed WarbandRepository.
func NewWarbandRepository() WarbandRepository {
	return &warbandRepo{}
}

func (r *warbandRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Warband, error) {
	row := db.QueryRow(ctx, `SELECT `+warbandColumns+` FROM warbands w WHERE w.id = $1`, id)
	return scanWarband(row)
}

func (r *warbandRepo) FindByOwnerAndName(ctx context.Context, db DBTX, playerID uuid.UUID, name string) (*domain.Warband, error) {
	row := db.QueryRow(ctx, `
		SELECT `+warbandColumns+` FROM warbands w
		WHERE w.player_id = $1 AND w.name = $2 AND w.status <> 'deleted'
		LIMIT 1`, playerID, name)
	return scanWarband(row)
}

func (r *warbandRepo) List(ctx context.Context, db DBTX, filter domain.WarbandFilter) ([]domain.Warband, error) {
	var where []string
	var args []interface{}

	if filter.CampaignID != nil {
		args = append(args, *filter.CampaignID)
		where = append(where, fmt.Sprintf("w.campaign_id = $%d", len(args)))
	}
	if filter.PlayerID != nil {
		args = append(args, *filter.PlayerID)
		where = append(where, fmt.Sprintf("w.player_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("w.status = $%d", len(args)))
	} else if !filter.IncludeDeleted {
		where = append(where, "w.status <> 'deleted'")
	}

	query := `SELECT ` + warbandColumns + ` FROM warbands w`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY w.name ASC`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list warbands: %w", err)
	}
	defer rows.Close()

	var out []domain.Warband
	for rows.Next() {
		w, err := scanWarband(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (r *warbandRepo) Create(ctx context.Context, db DBTX, w *domain.Warband) error {
	err := db.QueryRow(ctx, `
		INSERT INTO warbands (id, player_id, campaign_id, name, catalogue_name, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		w.ID, w.PlayerID, w.CampaignID, w.Name, w.CatalogueName, string(w.Status),
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert warband: %w", err)
	}
	return nil
}

func (r *warbandRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.WarbandStatus) error {
	return execOne(ctx, db, "warband", id,
		`UPDATE warbands SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
}

func (r *warbandRepo) CountForPlayer(ctx context.Context, db DBTX, playerID uuid.UUID, campaignID *uuid.UUID) (int, error) {
	var n int
	err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM warbands
		WHERE player_id = $1 AND campaign_id IS NOT DISTINCT FROM $2 AND status <> 'deleted'`,
		playerID, campaignID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count warbands: %w", err)
	}
	return n, nil
}

func (r *warbandRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	return execOne(ctx, db, "warband", id, `DELETE FROM warbands WHERE id = $1`, id)
}

func scanWarband(row pgx.Row) (*domain.Warband, error) {
	var w domain.Warband
	var status string
	err := row.Scan(&w.ID, &w.PlayerID, &w.CampaignID, &w.Name, &w.CatalogueName, &status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan warband: %w", err)
	}
	w.Status = domain.WarbandStatus(status)
	return &w, nil
}
