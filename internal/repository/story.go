package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/warcamp/platform/internal/domain"
)

const storyColumns = `s.id, s.warband_id, s.game_number, s.text, s.created_at, s.updated_at`

type storyRepo struct{}

// NewStoryRepository returns a pgx-backed StoryRepository.
func NewStoryRepository() StoryRepository {
	return &storyRepo{}
}

func (r *storyRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Story, error) {
	row := db.QueryRow(ctx, `SELECT `+storyColumns+` FROM stories s WHERE s.id = $1`, id)
	return scanStory(row)
}

// Upsert keeps the existing row id when a story for the same game number is replaced.
func (r *storyRepo) Upsert(ctx context.Context, db DBTX, s *domain.Story) error {
	err := db.QueryRow(ctx, `
		INSERT INTO stories (id, warband_id, game_number, text)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (warband_id, game_number)
		DO UPDATE SET text = EXCLUDED.text, updated_at = now()
		RETURNING id, created_at, updated_at`,
		s.ID, s.WarbandID, s.GameNumber, s.Text,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert story: %w", err)
	}
	return nil
}

func (r *storyRepo) UpdateText(ctx context.Context, db DBTX, id uuid.UUID, text string) error {
	return execOne(ctx, db, "story", id,
		`UPDATE stories SET text = $2, updated_at = now() WHERE id = $1`, id, text)
}

func (r *storyRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	return execOne(ctx, db, "story", id, `DELETE FROM stories WHERE id = $1`, id)
}

func (r *storyRepo) List(ctx context.Context, db DBTX, filter domain.StoryFilter) ([]domain.Story, error) {
	rows, err := db.Query(ctx, `
		SELECT `+storyColumns+` FROM stories s
		JOIN warbands w ON w.id = s.warband_id
		WHERE ($1::uuid IS NULL OR w.campaign_id = $1)
		  AND ($2::uuid IS NULL OR s.warband_id = $2)
		ORDER BY s.warband_id, s.game_number ASC`,
		filter.CampaignID, filter.WarbandID)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var out []domain.Story
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *storyRepo) DeleteByWarband(ctx context.Context, db DBTX, warbandID uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM stories WHERE warband_id = $1`, warbandID)
	if err != nil {
		return 0, fmt.Errorf("delete stories: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanStory(row pgx.Row) (*domain.Story, error) {
	var s domain.Story
	err := row.Scan(&s.ID, &s.WarbandID, &s.GameNumber, &s.Text, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan story: %w", err)
	}
	return &s, nil
}
