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

const gameColumns = `g.id, g.campaign_id, g.warband_1_id, g.warband_2_id, g.player1_id, g.player2_id,
	g.warband_1_game_number, g.warband_2_game_number, g.status,
	g.player1_is_ready, g.player2_is_ready, g.vp_1, g.vp_2, g.gp_1, g.gp_2,
	g.player1_is_approved_result, g.player2_is_approved_result, g.player1_called_reinforcements, g.player2_called_reinforcements,
	g.player1_injuries, g.player2_injuries, g.player1_skill_advancements, g.player2_skill_advancements,
	g.player1_exploration_dice, g.player2_exploration_dice, g.created_at, g.updated_at, g.finished_at`

type gameRepo struct{}

// NewGameRepository returns a pgx-backed GameRepository.
func NewGameRepository() GameRepository {
	return &gameRepo{}
}

func (r *gameRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error) {
	row := db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games g WHERE g.id = $1`, id)
	return scanGame(row)
}

func (r *gameRepo) Create(ctx context.Context, db DBTX, g *domain.Game) error {
	err := db.QueryRow(ctx, `
		INSERT INTO games (id, campaign_id, warband_1_id, warband_2_id, player1_id, player2_id,
		                   warband_1_game_number, warband_2_game_number, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		g.ID, g.CampaignID, g.Warband1ID, g.Warband2ID, g.Player1ID, g.Player2ID,
		g.Warband1GameNumber, g.Warband2GameNumber, string(g.Status),
	).Scan(&g.CreatedAt, &g.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict("game number already used by one of the warbands")
	}
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (r *gameRepo) Update(ctx context.Context, db DBTX, g *domain.Game) error {
	return execOne(ctx, db, "game", g.ID, `
		UPDATE games SET
			status = $2,
			player1_is_ready = $3, player2_is_ready = $4,
			vp_1 = $5, vp_2 = $6, gp_1 = $7, gp_2 = $8,
			player1_is_approved_result = $9, player2_is_approved_result = $10,
			player1_called_reinforcements = $11, player2_called_reinforcements = $12,
			player1_injuries = $13, player2_injuries = $14,
			player1_skill_advancements = $15, player2_skill_advancements = $16,
			player1_exploration_dice = $17, player2_exploration_dice = $18,
			finished_at = $19,
			updated_at = now()
		WHERE id = $1`,
		g.ID, string(g.Status),
		g.Player1IsReady, g.Player2IsReady,
		g.VP1, g.VP2, g.GP1, g.GP2,
		g.Player1Approved, g.Player2Approved,
		g.Player1Reinforcements, g.Player2Reinforcements,
		rolls(g.Player1Injuries), rolls(g.Player2Injuries),
		rolls(g.Player1Advancements), rolls(g.Player2Advancements),
		dice(g.Player1Exploration), dice(g.Player2Exploration),
		g.FinishedAt,
	)
}

func (r *gameRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	return execOne(ctx, db, "game", id, `DELETE FROM games WHERE id = $1`, id)
}

func (r *gameRepo) List(ctx context.Context, db DBTX, filter domain.GameFilter) ([]domain.Game, error) {
	var where []string
	var args []interface{}

	if filter.CampaignID != nil {
		args = append(args, *filter.CampaignID)
		where = append(where, fmt.Sprintf("g.campaign_id = $%d", len(args)))
	}
	if filter.WarbandID != nil {
		args = append(args, *filter.WarbandID)
		where = append(where, fmt.Sprintf("(g.warband_1_id = $%d OR g.warband_2_id = $%d)", len(args), len(args)))
	}
	if filter.PlayerID != nil {
		args = append(args, *filter.PlayerID)
		where = append(where, fmt.Sprintf("(g.player1_id = $%d OR g.player2_id = $%d)", len(args), len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("g.status = ANY($%d)", len(args)))
	}

	query := `SELECT ` + gameColumns + ` FROM games g`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY g.created_at DESC`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []domain.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (r *gameRepo) HasInProgress(ctx context.Context, db DBTX, warbandID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM games
			WHERE (warband_1_id = $1 OR warband_2_id = $1)
			  AND status IN ('planned', 'active')
		)`, warbandID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check games in progress: %w", err)
	}
	return exists, nil
}

func (r *gameRepo) GameNumbers(ctx context.Context, db DBTX, warbandID uuid.UUID) ([]int, error) {
	return queryGameNumbers(ctx, db, `
		SELECT warband_1_game_number FROM games WHERE warband_1_id = $1
		UNION ALL
		SELECT warband_2_game_number FROM games WHERE warband_2_id = $1`, warbandID)
}

func (r *gameRepo) PlayedGameNumbers(ctx context.Context, db DBTX, warbandID uuid.UUID) ([]int, error) {
	return queryGameNumbers(ctx, db, `
		SELECT warband_1_game_number FROM games WHERE warband_1_id = $1 AND status = 'finished'
		UNION ALL
		SELECT warband_2_game_number FROM games WHERE warband_2_id = $1 AND status = 'finished'`, warbandID)
}

func queryGameNumbers(ctx context.Context, db DBTX, query string, warbandID uuid.UUID) ([]int, error) {
	rows, err := db.Query(ctx, query, warbandID)
	if err != nil {
		return nil, fmt.Errorf("list game numbers: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan game number: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *gameRepo) GameNumberTaken(ctx context.Context, db DBTX, warbandID uuid.UUID, n int) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM games
			WHERE (warband_1_id = $1 AND warband_1_game_number = $2)
			   OR (warband_2_id = $1 AND warband_2_game_number = $2)
		)`, warbandID, n).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check game number: %w", err)
	}
	return exists, nil
}

func (r *gameRepo) DeleteByWarband(ctx context.Context, db DBTX, warbandID uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM games WHERE warband_1_id = $1 OR warband_2_id = $1`, warbandID)
	if err != nil {
		return 0, fmt.Errorf("delete games: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var g domain.Game
	var status string
	err := row.Scan(
		&g.ID, &g.CampaignID, &g.Warband1ID, &g.Warband2ID, &g.Player1ID, &g.Player2ID,
		&g.Warband1GameNumber, &g.Warband2GameNumber, &status,
		&g.Player1IsReady, &g.Player2IsReady, &g.VP1, &g.VP2, &g.GP1, &g.GP2,
		&g.Player1Approved, &g.Player2Approved, &g.Player1Reinforcements, &g.Player2Reinforcements,
		&g.Player1Injuries, &g.Player2Injuries, &g.Player1Advancements, &g.Player2Advancements,
		&g.Player1Exploration, &g.Player2Exploration, &g.CreatedAt, &g.UpdatedAt, &g.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	g.Status = domain.GameStatus(status)
	return &g, nil
}

// rolls and dice keep JSONB columns as arrays rather than null.
func rolls(v []domain.RollEntry) []domain.RollEntry {
	if v == nil {
		return []domain.RollEntry{}
	}
	return v
}

func dice(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
