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

const playerColumns = `p.id, p.login, p.password_hash, p.name, p.email, p.is_admin, p.is_active,
	p.avatar_url, p.created_at, p.updated_at`

type playerRepo struct{}

// NewPlayerRepository returns a pgx-backed PlayerRepository.
func NewPlayerRepository() PlayerRepository {
	return &playerRepo{}
}

func (r *playerRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error) {
	row := db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players p WHERE p.id = $1`, id)
	return scanPlayer(row)
}

func (r *playerRepo) FindByLogin(ctx context.Context, db DBTX, login string) (*domain.Player, error) {
	row := db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players p WHERE lower(p.login) = lower($1)`, login)
	return scanPlayer(row)
}

func (r *playerRepo) Create(ctx context.Context, db DBTX, p *domain.Player) error {
	err := db.QueryRow(ctx, `
		INSERT INTO players (id, login, password_hash, name, email, is_admin, is_active, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		p.ID, p.Login, p.PasswordHash, p.Name, p.Email, p.IsAdmin, p.IsActive, p.AvatarURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict("login already taken")
	}
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func (r *playerRepo) UpdateProfile(ctx context.Context, db DBTX, id uuid.UUID, name, email string) error {
	return execOne(ctx, db, "player", id,
		`UPDATE players SET name = $2, email = $3, updated_at = now() WHERE id = $1`, id, name, email)
}

func (r *playerRepo) UpdateAvatar(ctx context.Context, db DBTX, id uuid.UUID, url string) error {
	return execOne(ctx, db, "player", id,
		`UPDATE players SET avatar_url = $2, updated_at = now() WHERE id = $1`, id, url)
}

func (r *playerRepo) UpdatePassword(ctx context.Context, db DBTX, id uuid.UUID, hash string) error {
	return execOne(ctx, db, "player", id,
		`UPDATE players SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
}

// SetFlags builds the SET clause from the flags that are present.
func (r *playerRepo) SetFlags(ctx context.Context, db DBTX, id uuid.UUID, isActive, isAdmin *bool) error {
	setClauses := []string{"updated_at = now()"}
	args := []interface{}{id}

	if isActive != nil {
		args = append(args, *isActive)
		setClauses = append(setClauses, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if isAdmin != nil {
		args = append(args, *isAdmin)
		setClauses = append(setClauses, fmt.Sprintf("is_admin = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE players SET %s WHERE id = $1`, strings.Join(setClauses, ", "))
	return execOne(ctx, db, "player", id, query, args...)
}

func (r *playerRepo) List(ctx context.Context, db DBTX, filter domain.PlayerFilter) ([]domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players p`
	var where []string
	var args []interface{}

	if filter.CampaignID != nil {
		args = append(args, *filter.CampaignID)
		query += fmt.Sprintf(` JOIN player_campaigns pc ON pc.player_id = p.id AND pc.campaign_id = $%d`, len(args))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, q)
		where = append(where, fmt.Sprintf(`(p.login ILIKE '%%' || $%d || '%%' OR p.name ILIKE '%%' || $%d || '%%')`, len(args), len(args)))
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY p.login ASC LIMIT 500`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.ID, &p.Login, &p.PasswordHash, &p.Name, &p.Email, &p.IsAdmin, &p.IsActive,
		&p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}
	return &p, nil
}

// execOne runs a single-row statement and maps zero affected rows to NotFound.
func execOne(ctx context.Context, db DBTX, entity string, id uuid.UUID, query string, args ...interface{}) error {
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound(entity, id.String())
	}
	return nil
}
