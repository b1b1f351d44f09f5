package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/warcamp/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Transactor runs fn inside a single database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx DBTX) error) error
}

// PlayerRepository provides access to players.
type PlayerRepository interface {
	// FindByID returns a player by ID, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error)

	// FindByLogin returns a player by login, or nil if absent.
	FindByLogin(ctx context.Context, db DBTX, login string) (*domain.Player, error)

	// Create inserts a new player and fills its timestamps.
	Create(ctx context.Context, db DBTX, p *domain.Player) error

	UpdateProfile(ctx context.Context, db DBTX, id uuid.UUID, name, email string) error
	UpdateAvatar(ctx context.Context, db DBTX, id uuid.UUID, url string) error
	UpdatePassword(ctx context.Context, db DBTX, id uuid.UUID, hash string) error

	// SetFlags updates the admin/active flags that are non-nil.
	SetFlags(ctx context.Context, db DBTX, id uuid.UUID, isActive, isAdmin *bool) error

	// List returns players ordered by login. A campaign filter restricts to members.
	List(ctx context.Context, db DBTX, filter domain.PlayerFilter) ([]domain.Player, error)
}

// CampaignRepository provides access to campaigns and player_campaigns.
type CampaignRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Campaign, error)
	List(ctx context.Context, db DBTX, activeOnly bool) ([]domain.Campaign, error)
	Create(ctx context.Context, db DBTX, c *domain.Campaign) error
	Update(ctx context.Context, db DBTX, c *domain.Campaign) error
	UpdateImage(ctx context.Context, db DBTX, id uuid.UUID, url string) error

	// FindMembership returns the join row, or nil if the player is not a member.
	FindMembership(ctx context.Context, db DBTX, playerID, campaignID uuid.UUID) (*domain.PlayerCampaign, error)

	// ListMemberships returns every campaign membership of a player.
	ListMemberships(ctx context.Context, db DBTX, playerID uuid.UUID) ([]domain.PlayerCampaign, error)

	// ActiveCampaignsForPlayer returns the active campaigns the player belongs to.
	ActiveCampaignsForPlayer(ctx context.Context, db DBTX, playerID uuid.UUID) ([]domain.Campaign, error)

	AddMember(ctx context.Context, db DBTX, m *domain.PlayerCampaign) error
	RemoveMember(ctx context.Context, db DBTX, playerID, campaignID uuid.UUID) error
	SetMemberAdmin(ctx context.Context, db DBTX, playerID, campaignID uuid.UUID, isAdmin bool) error
}

// WarbandRepository provides access to warbands.
type WarbandRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Warband, error)

	// FindByOwnerAndName returns the player's non-deleted warband with this name, or nil.
	FindByOwnerAndName(ctx context.Context, db DBTX, playerID uuid.UUID, name string) (*domain.Warband, error)

	List(ctx context.Context, db DBTX, filter domain.WarbandFilter) ([]domain.Warband, error)
	Create(ctx context.Context, db DBTX, w *domain.Warband) error
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.WarbandStatus) error

	// CountForPlayer counts the player's non-deleted warbands in a campaign (nil = no campaign).
	CountForPlayer(ctx context.Context, db DBTX, playerID uuid.UUID, campaignID *uuid.UUID) (int, error)

	Delete(ctx context.Context, db DBTX, id uuid.UUID) error
}

// RosterRepository provides access to the append-only rosters history.
type RosterRepository interface {
	Create(ctx context.Context, db DBTX, r *domain.Roster) error
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Roster, error)

	// Latest returns the current roster: highest game number, then newest upload.
	Latest(ctx context.Context, db DBTX, warbandID uuid.UUID) (*domain.Roster, error)

	ListByWarband(ctx context.Context, db DBTX, warbandID uuid.UUID) ([]domain.Roster, error)
	DeleteByWarband(ctx context.Context, db DBTX, warbandID uuid.UUID) (int64, error)
}

// GameRepository provides access to games.
type GameRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error)
	Create(ctx context.Context, db DBTX, g *domain.Game) error

	// Update writes every mutable column of g.
	Update(ctx context.Context, db DBTX, g *domain.Game) error

	Delete(ctx context.Context, db DBTX, id uuid.UUID) error
	List(ctx context.Context, db DBTX, filter domain.GameFilter) ([]domain.Game, error)

	// HasInProgress reports whether the warband plays in a planned or active game.
	HasInProgress(ctx context.Context, db DBTX, warbandID uuid.UUID) (bool, error)

	// GameNumbers returns every game number the warband holds, on either side.
	GameNumbers(ctx context.Context, db DBTX, warbandID uuid.UUID) ([]int, error)

	// PlayedGameNumbers returns the game numbers of the warband's finished games.
	PlayedGameNumbers(ctx context.Context, db DBTX, warbandID uuid.UUID) ([]int, error)

	// GameNumberTaken reports whether any game already holds n for the warband.
	GameNumberTaken(ctx context.Context, db DBTX, warbandID uuid.UUID, n int) (bool, error)

	DeleteByWarband(ctx context.Context, db DBTX, warbandID uuid.UUID) (int64, error)
}

// StoryRepository provides access to stories.
type StoryRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Story, error)

	// Upsert inserts or replaces the story for (warband, game number).
	Upsert(ctx context.Context, db DBTX, s *domain.Story) error

	UpdateText(ctx context.Context, db DBTX, id uuid.UUID, text string) error
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error
	List(ctx context.Context, db DBTX, filter domain.StoryFilter) ([]domain.Story, error)
	DeleteByWarband(ctx context.Context, db DBTX, warbandID uuid.UUID) (int64, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the change it describes).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns the oldest pending events.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished deletes delivered events by sequence id.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}

// LoginAttemptRepository provides access to login_attempts.
type LoginAttemptRepository interface {
	Record(ctx context.Context, db DBTX, a domain.LoginAttempt) error

	// CountFailures counts failed attempts for a login since the given time.
	CountFailures(ctx context.Context, db DBTX, login string, since time.Time) (int, error)
}

// Set bundles every repository the application uses.
type Set struct {
	Players       PlayerRepository
	Campaigns     CampaignRepository
	Warbands      WarbandRepository
	Rosters       RosterRepository
	Games         GameRepository
	Stories       StoryRepository
	Outbox        OutboxRepository
	LoginAttempts LoginAttemptRepository
}

// NewPgSet returns the pgx-backed repositories.
func NewPgSet() Set {
	return Set{
		Players:       NewPlayerRepository(),
		Campaigns:     NewCampaignRepository(),
		Warbands:      NewWarbandRepository(),
		Rosters:       NewRosterRepository(),
		Games:         NewGameRepository(),
		Stories:       NewStoryRepository(),
		Outbox:        NewOutboxRepository(),
		LoginAttempts: NewLoginAttemptRepository(),
	}
}
