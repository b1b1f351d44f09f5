package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/warcamp/platform/internal/domain"
)

const rosterColumns = `id, warband_id, game_number, file_content, file_url, ducats, glory_points, model_count, uploaded_at`

type rosterRepo struct{}

// NewRosterRepository returns a pgx-backed RosterRepository.
func NewRosterRepository() RosterRepository {
	return &rosterRepo{}
}

func (r *rosterRepo) Create(ctx context.Context, db DBTX, ro *domain.Roster) error {
	err := db.QueryRow(ctx, `
		INSERT INTO rosters (id, warband_id, game_number, file_content, file_url, ducats, glory_points, model_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING uploaded_at`,
		ro.ID, ro.WarbandID, ro.GameNumber, ro.FileContent, ro.FileURL, ro.Ducats, ro.GloryPoints, ro.ModelCount,
	).Scan(&ro.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert roster: %w", err)
	}
	return nil
}

func (r *rosterRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Roster, error) {
	row := db.QueryRow(ctx, `SELECT `+rosterColumns+` FROM rosters WHERE id = $1`, id)
	return scanRoster(row)
}

func (r *rosterRepo) Latest(ctx context.Context, db DBTX, warbandID uuid.UUID) (*domain.Roster, error) {
	row := db.QueryRow(ctx, `
		SELECT `+rosterColumns+` FROM rosters
		WHERE warband_id = $1
		ORDER BY game_number DESC, uploaded_at DESC
		LIMIT 1`, warbandID)
	return scanRoster(row)
}

func (r *rosterRepo) ListByWarband(ctx context.Context, db DBTX, warbandID uuid.UUID) ([]domain.Roster, error) {
	rows, err := db.Query(ctx, `
		SELECT `+rosterColumns+` FROM rosters
		WHERE warband_id = $1
		ORDER BY game_number DESC, uploaded_at DESC`, warbandID)
	if err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}
	defer rows.Close()

	var out []domain.Roster
	for rows.Next() {
		ro, err := scanRoster(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ro)
	}
	return out, rows.Err()
}

func (r *rosterRepo) DeleteByWarband(ctx context.Context, db DBTX, warbandID uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM rosters WHERE warband_id = $1`, warbandID)
	if err != nil {
		return 0, fmt.Errorf("delete rosters: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRoster(row pgx.Row) (*domain.Roster, error) {
	var ro domain.Roster
	err := row.Scan(&ro.ID, &ro.WarbandID, &ro.GameNumber, &ro.FileContent, &ro.FileURL,
		&ro.Ducats, &ro.GloryPoints, &ro.ModelCount, &ro.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan roster: %w", err)
	}
	return &ro, nil
}
