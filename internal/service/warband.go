package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/repository"
	"github.com/warcamp/platform/internal/roster"
)

// WarbandService handles warband registration, roster history and retirement.
type WarbandService struct {
	store        Store
	files        FileSaver
	rosterReview bool
	logger       *slog.Logger
}

// NewWarbandService creates a WarbandService. With rosterReview set, replaced
// rosters put the warband in "checking" until an admin reactivates it.
func NewWarbandService(store Store, files FileSaver, rosterReview bool, logger *slog.Logger) *WarbandService {
	return &WarbandService{store: store, files: files, rosterReview: rosterReview, logger: logger}
}

// WarbandDetail is a warband with its current roster.
type WarbandDetail struct {
	domain.Warband
	Roster *domain.Roster `json:"roster"`
}

// Apply registers a new warband from its first roster upload.
func (s *WarbandService) Apply(ctx context.Context, playerID uuid.UUID, scope *uuid.UUID, data []byte) (*WarbandDetail, error) {
	doc, err := roster.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := doc.RequireIdentity(); err != nil {
		return nil, err
	}

	if scope != nil {
		if err := s.checkCampaignSlot(ctx, playerID, *scope); err != nil {
			return nil, err
		}
	}

	dup, err := s.store.Repos.Warbands.FindByOwnerAndName(ctx, s.store.DB, playerID, doc.Name())
	if err != nil {
		return nil, domain.ErrInternal("find warband", err)
	}
	if dup != nil {
		return nil, domain.ErrConflict("you already have a warband named " + doc.Name())
	}

	url, err := s.files.Save("rosters", ".json", doc.Raw())
	if err != nil {
		return nil, domain.ErrInternal("save roster file", err)
	}

	w := &domain.Warband{
		ID:            uuid.New(),
		PlayerID:      playerID,
		CampaignID:    scope,
		Name:          doc.Name(),
		CatalogueName: doc.Faction(),
		Status:        domain.WarbandActive,
	}
	r := newRoster(w.ID, 0, doc, url)

	err = s.store.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		if err := s.store.Repos.Warbands.Create(ctx, tx, w); err != nil {
			return err
		}
		if err := s.store.Repos.Rosters.Create(ctx, tx, r); err != nil {
			return err
		}
		return emit(ctx, s.store, tx,
			domain.NewWarbandEvent(domain.EventWarbandRegistered, w),
			domain.NewRosterSubmittedEvent(r))
	})
	if err != nil {
		return nil, internalErr("register warband", err)
	}

	s.logger.Info("warband registered", "warband_id", w.ID, "player_id", playerID, "faction", w.CatalogueName)
	return &WarbandDetail{Warband: *w, Roster: r}, nil
}

func (s *WarbandService) checkCampaignSlot(ctx context.Context, playerID, campaignID uuid.UUID) error {
	c, err := s.store.Repos.Campaigns.FindByID(ctx, s.store.DB, campaignID)
	if err != nil {
		return domain.ErrInternal("find campaign", err)
	}
	if c == nil {
		return domain.ErrNotFound("campaign", campaignID.String())
	}
	if !c.IsActive {
		return domain.ErrValidation("campaign is not active")
	}

	m, err := s.store.Repos.Campaigns.FindMembership(ctx, s.store.DB, playerID, campaignID)
	if err != nil {
		return domain.ErrInternal("find membership", err)
	}
	if m == nil {
		return domain.ErrForbidden("join the campaign before registering a warband")
	}

	if c.WarbandLimit > 0 {
		n, err := s.store.Repos.Warbands.CountForPlayer(ctx, s.store.DB, playerID, &campaignID)
		if err != nil {
			return domain.ErrInternal("count warbands", err)
		}
		if n >= c.WarbandLimit {
			return domain.ErrValidation("campaign warband limit reached")
		}
	}
	return nil
}

// ReplaceRoster appends a new roster to the warband's history. The roster
// must carry the warband's name and faction; a mismatch changes nothing.
func (s *WarbandService) ReplaceRoster(ctx context.Context, playerID uuid.UUID, scope *uuid.UUID, warbandID uuid.UUID, data []byte) (*WarbandDetail, error) {
	w, err := loadWarband(ctx, s.store, scope, warbandID)
	if err != nil {
		return nil, err
	}
	if w.PlayerID != playerID {
		return nil, domain.ErrForbidden("you do not own this warband")
	}
	switch w.Status {
	case domain.WarbandDeleted:
		return nil, domain.ErrValidation("warband has been retired")
	case domain.WarbandInactive:
		return nil, domain.ErrValidation("warband has been deactivated by an admin")
	}

	doc, err := roster.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := doc.CheckOwner(w.Name, w.CatalogueName); err != nil {
		return nil, err
	}

	numbers, err := s.store.Repos.Games.PlayedGameNumbers(ctx, s.store.DB, w.ID)
	if err != nil {
		return nil, domain.ErrInternal("list game numbers", err)
	}

	url, err := s.files.Save("rosters", ".json", doc.Raw())
	if err != nil {
		return nil, domain.ErrInternal("save roster file", err)
	}

	r := newRoster(w.ID, maxOf(numbers), doc, url)
	status := domain.WarbandActive
	if s.rosterReview {
		status = domain.WarbandChecking
	}

	err = s.store.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		if err := s.store.Repos.Rosters.Create(ctx, tx, r); err != nil {
			return err
		}
		if err := s.store.Repos.Warbands.UpdateStatus(ctx, tx, w.ID, status); err != nil {
			return err
		}
		w.Status = status
		return emit(ctx, s.store, tx,
			domain.NewRosterSubmittedEvent(r),
			domain.NewWarbandEvent(domain.EventWarbandStatus, w))
	})
	if err != nil {
		return nil, internalErr("replace roster", err)
	}
	return &WarbandDetail{Warband: *w, Roster: r}, nil
}

// Retire marks the owner's warband deleted. History is kept.
func (s *WarbandService) Retire(ctx context.Context, playerID uuid.UUID, scope *uuid.UUID, warbandID uuid.UUID) error {
	w, err := loadWarband(ctx, s.store, scope, warbandID)
	if err != nil {
		return err
	}
	if w.PlayerID != playerID {
		return domain.ErrForbidden("you do not own this warband")
	}
	if w.Status == domain.WarbandDeleted {
		return domain.ErrNotFound("warband", warbandID.String())
	}
	busy, err := s.store.Repos.Games.HasInProgress(ctx, s.store.DB, w.ID)
	if err != nil {
		return domain.ErrInternal("check games", err)
	}
	if busy {
		return domain.ErrConflict("warband has a game in progress")
	}
	return s.setStatus(ctx, w, domain.WarbandDeleted)
}

// Get returns a warband with its current roster.
func (s *WarbandService) Get(ctx context.Context, scope *uuid.UUID, warbandID uuid.UUID) (*WarbandDetail, error) {
	w, err := loadWarband(ctx, s.store, scope, warbandID)
	if err != nil {
		return nil, err
	}
	r, err := s.store.Repos.Rosters.Latest(ctx, s.store.DB, w.ID)
	if err != nil {
		return nil, domain.ErrInternal("find roster", err)
	}
	return &WarbandDetail{Warband: *w, Roster: r}, nil
}

// List returns warbands in scope matching filter.
func (s *WarbandService) List(ctx context.Context, scope *uuid.UUID, filter domain.WarbandFilter) ([]domain.Warband, error) {
	filter.CampaignID = scope
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrValidation("unknown warband status " + string(filter.Status))
	}
	list, err := s.store.Repos.Warbands.List(ctx, s.store.DB, filter)
	if err != nil {
		return nil, domain.ErrInternal("list warbands", err)
	}
	if list == nil {
		list = []domain.Warband{}
	}
	return list, nil
}

// Rosters returns the warband's roster history, newest first.
func (s *WarbandService) Rosters(ctx context.Context, scope *uuid.UUID, warbandID uuid.UUID) ([]domain.Roster, error) {
	if _, err := loadWarband(ctx, s.store, scope, warbandID); err != nil {
		return nil, err
	}
	list, err := s.store.Repos.Rosters.ListByWarband(ctx, s.store.DB, warbandID)
	if err != nil {
		return nil, domain.ErrInternal("list rosters", err)
	}
	if list == nil {
		list = []domain.Roster{}
	}
	return list, nil
}

// RosterFile returns a roster with its raw content.
func (s *WarbandService) RosterFile(ctx context.Context, scope *uuid.UUID, rosterID uuid.UUID) (*domain.Roster, error) {
	r, err := s.store.Repos.Rosters.FindByID(ctx, s.store.DB, rosterID)
	if err != nil {
		return nil, domain.ErrInternal("find roster", err)
	}
	if r == nil {
		return nil, domain.ErrNotFound("roster", rosterID.String())
	}
	if _, err := loadWarband(ctx, s.store, scope, r.WarbandID); err != nil {
		return nil, domain.ErrNotFound("roster", rosterID.String())
	}
	return r, nil
}

// SetStatus lets an admin move a warband to any status.
func (s *WarbandService) SetStatus(ctx context.Context, scope *uuid.UUID, warbandID uuid.UUID, status domain.WarbandStatus) (*domain.Warband, error) {
	if !status.Valid() {
		return nil, domain.ErrValidation("unknown warband status " + string(status))
	}
	w, err := loadWarband(ctx, s.store, scope, warbandID)
	if err != nil {
		return nil, err
	}
	if err := s.setStatus(ctx, w, status); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WarbandService) setStatus(ctx context.Context, w *domain.Warband, status domain.WarbandStatus) error {
	evt := domain.EventWarbandStatus
	if status == domain.WarbandDeleted {
		evt = domain.EventWarbandDeleted
	}
	err := s.store.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		if err := s.store.Repos.Warbands.UpdateStatus(ctx, tx, w.ID, status); err != nil {
			return err
		}
		w.Status = status
		return emit(ctx, s.store, tx, domain.NewWarbandEvent(evt, w))
	})
	return internalErr("update warband status", err)
}

// DeleteSummary counts the rows removed by a cascading warband delete.
type DeleteSummary struct {
	Games   int64 `json:"games"`
	Rosters int64 `json:"rosters"`
	Stories int64 `json:"stories"`
}

// Delete removes a warband and everything that references it: its games,
// stories and rosters go first, then the warband row.
func (s *WarbandService) Delete(ctx context.Context, scope *uuid.UUID, warbandID uuid.UUID) (*DeleteSummary, error) {
	w, err := loadWarband(ctx, s.store, scope, warbandID)
	if err != nil {
		return nil, err
	}

	var sum DeleteSummary
	err = s.store.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		var err error
		if sum.Games, err = s.store.Repos.Games.DeleteByWarband(ctx, tx, w.ID); err != nil {
			return err
		}
		if sum.Stories, err = s.store.Repos.Stories.DeleteByWarband(ctx, tx, w.ID); err != nil {
			return err
		}
		if sum.Rosters, err = s.store.Repos.Rosters.DeleteByWarband(ctx, tx, w.ID); err != nil {
			return err
		}
		if err := s.store.Repos.Warbands.Delete(ctx, tx, w.ID); err != nil {
			return err
		}
		w.Status = domain.WarbandDeleted
		return emit(ctx, s.store, tx, domain.NewWarbandEvent(domain.EventWarbandDeleted, w))
	})
	if err != nil {
		return nil, internalErr("delete warband", err)
	}

	s.logger.Info("warband deleted", "warband_id", w.ID,
		"games", sum.Games, "rosters", sum.Rosters, "stories", sum.Stories)
	return &sum, nil
}

func newRoster(warbandID uuid.UUID, gameNumber int, doc *roster.Document, url string) *domain.Roster {
	stats := doc.Stats()
	return &domain.Roster{
		ID:          uuid.New(),
		WarbandID:   warbandID,
		GameNumber:  gameNumber,
		FileContent: string(doc.Raw()),
		FileURL:     url,
		Ducats:      stats.Ducats,
		GloryPoints: stats.GloryPoints,
		ModelCount:  stats.ModelCount,
	}
}

func maxOf(numbers []int) int {
	highest := 0
	for _, n := range numbers {
		if n > highest {
			highest = n
		}
	}
	return highest
}
