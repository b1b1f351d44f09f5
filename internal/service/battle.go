package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/battle"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/repository"
)

// BattleService schedules games and advances them through their lifecycle.
type BattleService struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewBattleService creates a BattleService.
func NewBattleService(store Store, logger *slog.Logger) *BattleService {
	return &BattleService{store: store, logger: logger, now: time.Now}
}

// PlanInput names the two warbands of a new game. Warband1 must belong to
// the requester.
type PlanInput struct {
	Warband1ID uuid.UUID `json:"warband_1_id"`
	Warband2ID uuid.UUID `json:"warband_2_id"`
}

// Plan creates a planned game between the requester's warband and an opponent's.
func (s *BattleService) Plan(ctx context.Context, playerID uuid.UUID, scope *uuid.UUID, in PlanInput) (*domain.Game, error) {
	if in.Warband1ID == uuid.Nil || in.Warband2ID == uuid.Nil {
		return nil, domain.ErrValidation("warband_1_id and warband_2_id are required")
	}
	if in.Warband1ID == in.Warband2ID {
		return nil, domain.ErrValidation("a warband cannot fight itself")
	}

	w1, err := loadWarband(ctx, s.store, scope, in.Warband1ID)
	if err != nil {
		return nil, err
	}
	w2, err := loadWarband(ctx, s.store, scope, in.Warband2ID)
	if err != nil {
		return nil, err
	}
	if w1.PlayerID != playerID {
		return nil, domain.ErrForbidden("you do not own warband " + w1.Name)
	}
	if w2.PlayerID == playerID {
		return nil, domain.ErrValidation("the opposing warband must belong to another player")
	}
	for _, w := range []*domain.Warband{w1, w2} {
		if w.Status != domain.WarbandActive {
			return nil, domain.ErrValidation("warband " + w.Name + " is " + string(w.Status) + ", not active")
		}
	}
	if !sameCampaign(w1.CampaignID, w2.CampaignID) {
		return nil, domain.ErrValidation("warbands belong to different campaigns")
	}

	numbers := make([]int, 2)
	for i, w := range []*domain.Warband{w1, w2} {
		busy, err := s.store.Repos.Games.HasInProgress(ctx, s.store.DB, w.ID)
		if err != nil {
			return nil, domain.ErrInternal("check games", err)
		}
		if busy {
			return nil, domain.ErrConflict("warband " + w.Name + " already has a planned or active game")
		}

		played, err := s.store.Repos.Games.GameNumbers(ctx, s.store.DB, w.ID)
		if err != nil {
			return nil, domain.ErrInternal("list game numbers", err)
		}
		numbers[i] = battle.NextGameNumber(played)

		taken, err := s.store.Repos.Games.GameNumberTaken(ctx, s.store.DB, w.ID, numbers[i])
		if err != nil {
			return nil, domain.ErrInternal("check game number", err)
		}
		if taken {
			return nil, domain.ErrConflict("game number already used by warband " + w.Name)
		}
	}

	g := &domain.Game{
		ID:                 uuid.New(),
		CampaignID:         w1.CampaignID,
		Warband1ID:         w1.ID,
		Warband2ID:         w2.ID,
		Player1ID:          w1.PlayerID,
		Player2ID:          w2.PlayerID,
		Warband1GameNumber: numbers[0],
		Warband2GameNumber: numbers[1],
		Status:             domain.GamePlanned,
	}

	err = s.store.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		if err := s.store.Repos.Games.Create(ctx, tx, g); err != nil {
			return err
		}
		return emit(ctx, s.store, tx, domain.NewGameEvent(domain.EventGamePlanned, g))
	})
	if err != nil {
		return nil, internalErr("create game", err)
	}

	s.logger.Info("game planned", "game_id", g.ID, "warband_1", w1.ID, "warband_2", w2.ID)
	return g, nil
}

// Ready marks the requester's side ready.
func (s *BattleService) Ready(ctx context.Context, playerID uuid.UUID, scope *uuid.UUID, gameID uuid.UUID) (*domain.Game, error) {
	return s.transition(ctx, playerID, scope, gameID, func(g *domain.Game, side battle.Side) (domain.EventType, error) {
		started, err := battle.MarkReady(g, side)
		if err != nil || !started {
			return "", err
		}
		return domain.EventGameStarted, nil
	})
}

// ReportInput is one side's post-battle details as sent by the client.
type ReportInput struct {
	CalledReinforcements bool             `json:"calledReinforcements"`
	Injuries             []map[string]any `json:"injuries"`
	SkillAdvancements    []map[string]any `json:"skillAdvancements"`
	ExplorationDice      []int            `json:"explorationDice"`
}

func (r ReportInput) normalize() battle.Report {
	return battle.Report{
		CalledReinforcements: r.CalledReinforcements,
		Injuries:             battle.NormalizeEntries(r.Injuries),
		SkillAdvancements:    battle.NormalizeEntries(r.SkillAdvancements),
		ExplorationDice:      r.ExplorationDice,
	}
}

// ResultInput is a submitted battle outcome.
type ResultInput struct {
	VP1     int         `json:"vp_1"`
	VP2     int         `json:"vp_2"`
	GP1     int         `json:"gp_1"`
	GP2     int         `json:"gp_2"`
	Player1 ReportInput `json:"player1"`
	Player2 ReportInput `json:"player2"`
}

// Submit records a result on behalf of the requester's side.
func (s *BattleService) Submit(ctx context.Context, playerID uuid.UUID, scope *uuid.UUID, gameID uuid.UUID, in ResultInput) (*domain.Game, error) {
	res := battle.Result{
		VP1:     in.VP1,
		VP2:     in.VP2,
		GP1:     in.GP1,
		GP2:     in.GP2,
		Player1: in.Player1.normalize(),
		Player2: in.Player2.normalize(),
	}
	return s.transition(ctx, playerID, scope, gameID, func(g *domain.Game, side battle.Side) (domain.EventType, error) {
		if err := battle.SubmitResult(g, side, res); err != nil {
			return "", err
		}
		return domain.EventResultSubmitted, nil
	})
}

// Approve confirms the pending result. When both sides have approved the game
// finishes and both warbands must submit a new roster.
func (s *BattleService) Approve(ctx context.Context, playerID uuid.UUID, scope *uuid.UUID, gameID uuid.UUID) (*domain.Game, error) {
	return s.transition(ctx, playerID, scope, gameID, func(g *domain.Game, side battle.Side) (domain.EventType, error) {
		finished, err := battle.Approve(g, side, s.now())
		if err != nil || !finished {
			return "", err
		}
		return domain.EventGameFinished, nil
	})
}

// Reject discards the pending result.
func (s *BattleService) Reject(ctx context.Context, playerID uuid.UUID, scope *uuid.UUID, gameID uuid.UUID) (*domain.Game, error) {
	return s.transition(ctx, playerID, scope, gameID, func(g *domain.Game, side battle.Side) (domain.EventType, error) {
		if err := battle.Reject(g, side); err != nil {
			return "", err
		}
		return domain.EventResultRejected, nil
	})
}

type stepFunc func(g *domain.Game, side battle.Side) (domain.EventType, error)

// transition loads the game, resolves the requester's side, applies step and
// persists the result. A non-empty event type is written to the outbox.
func (s *BattleService) transition(ctx context.Context, playerID uuid.UUID, scope *uuid.UUID, gameID uuid.UUID, step stepFunc) (*domain.Game, error) {
	g, err := loadGame(ctx, s.store, scope, gameID)
	if err != nil {
		return nil, err
	}
	side, err := battle.SideOf(g, playerID)
	if err != nil {
		return nil, err
	}
	evt, err := step(g, side)
	if err != nil {
		return nil, err
	}

	err = s.store.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		if err := s.store.Repos.Games.Update(ctx, tx, g); err != nil {
			return err
		}
		if evt == "" {
			return nil
		}
		if err := emit(ctx, s.store, tx, domain.NewGameEvent(evt, g)); err != nil {
			return err
		}
		if evt == domain.EventGameFinished {
			return s.requireNewRosters(ctx, tx, g)
		}
		return nil
	})
	if err != nil {
		return nil, internalErr("update game", err)
	}

	if evt != "" {
		s.logger.Info("game transition", "game_id", g.ID, "event", evt, "status", g.Status)
	}
	return g, nil
}

// requireNewRosters moves both warbands of a finished game to needs_update.
// Warbands an admin deactivated or the owner retired keep their status.
func (s *BattleService) requireNewRosters(ctx context.Context, tx repository.DBTX, g *domain.Game) error {
	for _, id := range []uuid.UUID{g.Warband1ID, g.Warband2ID} {
		w, err := s.store.Repos.Warbands.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if w == nil || w.Status == domain.WarbandDeleted || w.Status == domain.WarbandInactive {
			continue
		}
		if err := s.store.Repos.Warbands.UpdateStatus(ctx, tx, id, domain.WarbandNeedsUpdate); err != nil {
			return err
		}
		w.Status = domain.WarbandNeedsUpdate
		if err := emit(ctx, s.store, tx, domain.NewWarbandEvent(domain.EventWarbandStatus, w)); err != nil {
			return err
		}
	}
	return nil
}

// Cancel deletes a planned game on behalf of one of its participants.
func (s *BattleService) Cancel(ctx context.Context, playerID uuid.UUID, scope *uuid.UUID, gameID uuid.UUID) error {
	g, err := loadGame(ctx, s.store, scope, gameID)
	if err != nil {
		return err
	}
	if _, err := battle.SideOf(g, playerID); err != nil {
		return err
	}
	if err := battle.CanCancel(g); err != nil {
		return err
	}
	return s.remove(ctx, g)
}

// Delete removes a game in any status.
func (s *BattleService) Delete(ctx context.Context, scope *uuid.UUID, gameID uuid.UUID) error {
	g, err := loadGame(ctx, s.store, scope, gameID)
	if err != nil {
		return err
	}
	return s.remove(ctx, g)
}

func (s *BattleService) remove(ctx context.Context, g *domain.Game) error {
	err := s.store.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		if err := s.store.Repos.Games.Delete(ctx, tx, g.ID); err != nil {
			return err
		}
		return emit(ctx, s.store, tx, domain.NewGameEvent(domain.EventGameCancelled, g))
	})
	if err != nil {
		return internalErr("delete game", err)
	}
	s.logger.Info("game deleted", "game_id", g.ID, "status", g.Status)
	return nil
}

// Get returns one game in scope.
func (s *BattleService) Get(ctx context.Context, scope *uuid.UUID, gameID uuid.UUID) (*domain.Game, error) {
	return loadGame(ctx, s.store, scope, gameID)
}

// List returns games matching filter, restricted to scope.
func (s *BattleService) List(ctx context.Context, scope *uuid.UUID, filter domain.GameFilter) ([]domain.Game, error) {
	filter.CampaignID = scope
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, domain.ErrValidation("unknown game status " + string(st))
		}
	}
	list, err := s.store.Repos.Games.List(ctx, s.store.DB, filter)
	if err != nil {
		return nil, domain.ErrInternal("list games", err)
	}
	if list == nil {
		list = []domain.Game{}
	}
	return list, nil
}
