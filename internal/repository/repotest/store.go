// Package repotest provides an in-memory implementation of the repository
// interfaces for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/repository"
)

// Store holds every table in memory. WithinTx snapshots the tables and
// restores them when the callback fails, so rollbacks are observable.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	players     map[uuid.UUID]domain.Player
	campaigns   map[uuid.UUID]domain.Campaign
	memberships map[[2]uuid.UUID]domain.PlayerCampaign
	warbands    map[uuid.UUID]domain.Warband
	rosters     []rosterRow
	games       map[uuid.UUID]domain.Game
	stories     map[uuid.UUID]domain.Story
	outbox      []domain.OutboxDraft
	attempts    []domain.LoginAttempt

	seq int64
	now func() time.Time
}

type rosterRow struct {
	seq    int64
	roster domain.Roster
}

// New returns an empty store.
func New() *Store {
	return &Store{
		players:     make(map[uuid.UUID]domain.Player),
		campaigns:   make(map[uuid.UUID]domain.Campaign),
		memberships: make(map[[2]uuid.UUID]domain.PlayerCampaign),
		warbands:    make(map[uuid.UUID]domain.Warband),
		games:       make(map[uuid.UUID]domain.Game),
		stories:     make(map[uuid.UUID]domain.Story),
		now:         time.Now,
	}
}

// Set returns repositories backed by s.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Players:       &players{s},
		Campaigns:     &campaigns{s},
		Warbands:      &warbands{s},
		Rosters:       &rosters{s},
		Games:         &games{s},
		Stories:       &stories{s},
		Outbox:        &outbox{s},
		LoginAttempts: &attempts{s},
	}
}

// WithinTx implements repository.Transactor. The callback receives a nil DBTX.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.DBTX) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Outbox returns a copy of the pending outbox events.
func (s *Store) Outbox() []domain.OutboxDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboxDraft(nil), s.outbox...)
}

// Counts reports row counts per table, keyed by table name.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]int{
		"players":          len(s.players),
		"campaigns":        len(s.campaigns),
		"player_campaigns": len(s.memberships),
		"warbands":         len(s.warbands),
		"rosters":          len(s.rosters),
		"games":            len(s.games),
		"stories":          len(s.stories),
		"event_outbox":     len(s.outbox),
	}
}

type snapshot struct {
	players     map[uuid.UUID]domain.Player
	campaigns   map[uuid.UUID]domain.Campaign
	memberships map[[2]uuid.UUID]domain.PlayerCampaign
	warbands    map[uuid.UUID]domain.Warband
	rosters     []rosterRow
	games       map[uuid.UUID]domain.Game
	stories     map[uuid.UUID]domain.Story
	outbox      []domain.OutboxDraft
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		players:     cloneMap(s.players),
		campaigns:   cloneMap(s.campaigns),
		memberships: cloneMap(s.memberships),
		warbands:    cloneMap(s.warbands),
		rosters:     append([]rosterRow(nil), s.rosters...),
		games:       cloneMap(s.games),
		stories:     cloneMap(s.stories),
		outbox:      append([]domain.OutboxDraft(nil), s.outbox...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = snap.players
	s.campaigns = snap.campaigns
	s.memberships = snap.memberships
	s.warbands = snap.warbands
	s.rosters = snap.rosters
	s.games = snap.games
	s.stories = snap.stories
	s.outbox = snap.outbox
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- players ---

type players struct{ s *Store }

func (r *players) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *players) FindByLogin(_ context.Context, _ repository.DBTX, login string) (*domain.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.players {
		if strings.EqualFold(p.Login, login) {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *players) Create(_ context.Context, _ repository.DBTX, p *domain.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.players {
		if strings.EqualFold(existing.Login, p.Login) {
			return domain.ErrConflict("login already taken")
		}
	}
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.players[p.ID] = *p
	return nil
}

func (r *players) update(id uuid.UUID, fn func(p *domain.Player)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return domain.ErrNotFound("player", id.String())
	}
	fn(&p)
	p.UpdatedAt = r.s.now()
	r.s.players[id] = p
	return nil
}

func (r *players) UpdateProfile(_ context.Context, _ repository.DBTX, id uuid.UUID, name, email string) error {
	return r.update(id, func(p *domain.Player) { p.Name, p.Email = name, email })
}

func (r *players) UpdateAvatar(_ context.Context, _ repository.DBTX, id uuid.UUID, url string) error {
	return r.update(id, func(p *domain.Player) { p.AvatarURL = url })
}

func (r *players) UpdatePassword(_ context.Context, _ repository.DBTX, id uuid.UUID, hash string) error {
	return r.update(id, func(p *domain.Player) { p.PasswordHash = hash })
}

func (r *players) SetFlags(_ context.Context, _ repository.DBTX, id uuid.UUID, isActive, isAdmin *bool) error {
	return r.update(id, func(p *domain.Player) {
		if isActive != nil {
			p.IsActive = *isActive
		}
		if isAdmin != nil {
			p.IsAdmin = *isAdmin
		}
	})
}

func (r *players) List(_ context.Context, _ repository.DBTX, filter domain.PlayerFilter) ([]domain.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	var out []domain.Player
	for _, p := range r.s.players {
		if filter.CampaignID != nil {
			if _, ok := r.s.memberships[[2]uuid.UUID{p.ID, *filter.CampaignID}]; !ok {
				continue
			}
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Login), q) && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Login < out[j].Login })
	return out, nil
}

// --- campaigns ---

type campaigns struct{ s *Store }

func (r *campaigns) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *campaigns) List(_ context.Context, _ repository.DBTX, activeOnly bool) ([]domain.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Campaign
	for _, c := range r.s.campaigns {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *campaigns) Create(_ context.Context, _ repository.DBTX, c *domain.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.campaigns[c.ID] = *c
	return nil
}

func (r *campaigns) Update(_ context.Context, _ repository.DBTX, c *domain.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.campaigns[c.ID]
	if !ok {
		return domain.ErrNotFound("campaign", c.ID.String())
	}
	existing.Name = c.Name
	existing.Description = c.Description
	existing.IsActive = c.IsActive
	existing.WarbandLimit = c.WarbandLimit
	existing.UpdatedAt = r.s.now()
	r.s.campaigns[c.ID] = existing
	return nil
}

func (r *campaigns) UpdateImage(_ context.Context, _ repository.DBTX, id uuid.UUID, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return domain.ErrNotFound("campaign", id.String())
	}
	c.ImageURL = url
	c.UpdatedAt = r.s.now()
	r.s.campaigns[id] = c
	return nil
}

func (r *campaigns) FindMembership(_ context.Context, _ repository.DBTX, playerID, campaignID uuid.UUID) (*domain.PlayerCampaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memberships[[2]uuid.UUID{playerID, campaignID}]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *campaigns) ListMemberships(_ context.Context, _ repository.DBTX, playerID uuid.UUID) ([]domain.PlayerCampaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.PlayerCampaign
	for _, m := range r.s.memberships {
		if m.PlayerID == playerID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *campaigns) ActiveCampaignsForPlayer(_ context.Context, _ repository.DBTX, playerID uuid.UUID) ([]domain.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Campaign
	for key := range r.s.memberships {
		if key[0] != playerID {
			continue
		}
		if c, ok := r.s.campaigns[key[1]]; ok && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *campaigns) AddMember(_ context.Context, _ repository.DBTX, m *domain.PlayerCampaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{m.PlayerID, m.CampaignID}
	if _, ok := r.s.memberships[key]; ok {
		return domain.ErrConflict("already a member of this campaign")
	}
	m.JoinedAt = r.s.now()
	r.s.memberships[key] = *m
	return nil
}

func (r *campaigns) RemoveMember(_ context.Context, _ repository.DBTX, playerID, campaignID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{playerID, campaignID}
	if _, ok := r.s.memberships[key]; !ok {
		return domain.ErrNotFound("membership", playerID.String())
	}
	delete(r.s.memberships, key)
	return nil
}

func (r *campaigns) SetMemberAdmin(_ context.Context, _ repository.DBTX, playerID, campaignID uuid.UUID, isAdmin bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{playerID, campaignID}
	m, ok := r.s.memberships[key]
	if !ok {
		return domain.ErrNotFound("membership", playerID.String())
	}
	m.IsAdmin = isAdmin
	r.s.memberships[key] = m
	return nil
}

// --- warbands ---

type warbands struct{ s *Store }

func (r *warbands) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Warband, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warbands[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *warbands) FindByOwnerAndName(_ context.Context, _ repository.DBTX, playerID uuid.UUID, name string) (*domain.Warband, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.warbands {
		if w.PlayerID == playerID && w.Name == name && w.Status != domain.WarbandDeleted {
			return &w, nil
		}
	}
	return nil, nil
}

func (r *warbands) List(_ context.Context, _ repository.DBTX, filter domain.WarbandFilter) ([]domain.Warband, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Warband
	for _, w := range r.s.warbands {
		if filter.CampaignID != nil && (w.CampaignID == nil || *w.CampaignID != *filter.CampaignID) {
			continue
		}
		if filter.PlayerID != nil && w.PlayerID != *filter.PlayerID {
			continue
		}
		if filter.Status != "" {
			if w.Status != filter.Status {
				continue
			}
		} else if !filter.IncludeDeleted && w.Status == domain.WarbandDeleted {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *warbands) Create(_ context.Context, _ repository.DBTX, w *domain.Warband) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w.CreatedAt = r.s.now()
	w.UpdatedAt = w.CreatedAt
	r.s.warbands[w.ID] = *w
	return nil
}

func (r *warbands) UpdateStatus(_ context.Context, _ repository.DBTX, id uuid.UUID, status domain.WarbandStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warbands[id]
	if !ok {
		return domain.ErrNotFound("warband", id.String())
	}
	w.Status = status
	w.UpdatedAt = r.s.now()
	r.s.warbands[id] = w
	return nil
}

func (r *warbands) CountForPlayer(_ context.Context, _ repository.DBTX, playerID uuid.UUID, campaignID *uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, w := range r.s.warbands {
		if w.PlayerID != playerID || w.Status == domain.WarbandDeleted {
			continue
		}
		if sameID(w.CampaignID, campaignID) {
			n++
		}
	}
	return n, nil
}

func (r *warbands) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.warbands[id]; !ok {
		return domain.ErrNotFound("warband", id.String())
	}
	delete(r.s.warbands, id)
	return nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// --- rosters ---

type rosters struct{ s *Store }

func (r *rosters) Create(_ context.Context, _ repository.DBTX, ro *domain.Roster) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	ro.UploadedAt = r.s.now()
	r.s.rosters = append(r.s.rosters, rosterRow{seq: r.s.seq, roster: *ro})
	return nil
}

func (r *rosters) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Roster, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.rosters {
		if row.roster.ID == id {
			ro := row.roster
			return &ro, nil
		}
	}
	return nil, nil
}

func (r *rosters) sorted(warbandID uuid.UUID) []domain.Roster {
	var rows []rosterRow
	for _, row := range r.s.rosters {
		if row.roster.WarbandID == warbandID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].roster.GameNumber != rows[j].roster.GameNumber {
			return rows[i].roster.GameNumber > rows[j].roster.GameNumber
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]domain.Roster, len(rows))
	for i, row := range rows {
		out[i] = row.roster
	}
	return out
}

func (r *rosters) Latest(_ context.Context, _ repository.DBTX, warbandID uuid.UUID) (*domain.Roster, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.sorted(warbandID)
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (r *rosters) ListByWarband(_ context.Context, _ repository.DBTX, warbandID uuid.UUID) ([]domain.Roster, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(warbandID), nil
}

func (r *rosters) DeleteByWarband(_ context.Context, _ repository.DBTX, warbandID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.rosters[:0:0]
	var n int64
	for _, row := range r.s.rosters {
		if row.roster.WarbandID == warbandID {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.s.rosters = kept
	return n, nil
}

// --- games ---

type games struct{ s *Store }

func (r *games) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r *games) Create(_ context.Context, _ repository.DBTX, g *domain.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.games {
		if (existing.Warband1ID == g.Warband1ID && existing.Warband1GameNumber == g.Warband1GameNumber) ||
			(existing.Warband2ID == g.Warband2ID && existing.Warband2GameNumber == g.Warband2GameNumber) {
			return domain.ErrConflict("game number already used by one of the warbands")
		}
	}
	g.CreatedAt = r.s.now()
	g.UpdatedAt = g.CreatedAt
	r.s.games[g.ID] = *g
	return nil
}

func (r *games) Update(_ context.Context, _ repository.DBTX, g *domain.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.games[g.ID]; !ok {
		return domain.ErrNotFound("game", g.ID.String())
	}
	g.UpdatedAt = r.s.now()
	r.s.games[g.ID] = *g
	return nil
}

func (r *games) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.games[id]; !ok {
		return domain.ErrNotFound("game", id.String())
	}
	delete(r.s.games, id)
	return nil
}

func (r *games) List(_ context.Context, _ repository.DBTX, filter domain.GameFilter) ([]domain.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Game
	for _, g := range r.s.games {
		if filter.CampaignID != nil && (g.CampaignID == nil || *g.CampaignID != *filter.CampaignID) {
			continue
		}
		if filter.WarbandID != nil && !g.Involves(*filter.WarbandID) {
			continue
		}
		if filter.PlayerID != nil && g.Player1ID != *filter.PlayerID && g.Player2ID != *filter.PlayerID {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, g.Status) {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func hasStatus(list []domain.GameStatus, s domain.GameStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (r *games) HasInProgress(_ context.Context, _ repository.DBTX, warbandID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.games {
		if g.Involves(warbandID) && g.Status.InProgress() {
			return true, nil
		}
	}
	return false, nil
}

func (r *games) GameNumbers(_ context.Context, _ repository.DBTX, warbandID uuid.UUID) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []int
	for _, g := range r.s.games {
		if g.Involves(warbandID) {
			out = append(out, g.GameNumberFor(warbandID))
		}
	}
	return out, nil
}

func (r *games) PlayedGameNumbers(_ context.Context, _ repository.DBTX, warbandID uuid.UUID) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []int
	for _, g := range r.s.games {
		if g.Involves(warbandID) && g.Status == domain.GameFinished {
			out = append(out, g.GameNumberFor(warbandID))
		}
	}
	return out, nil
}

func (r *games) GameNumberTaken(ctx context.Context, db repository.DBTX, warbandID uuid.UUID, n int) (bool, error) {
	numbers, _ := r.GameNumbers(ctx, db, warbandID)
	for _, v := range numbers {
		if v == n {
			return true, nil
		}
	}
	return false, nil
}

func (r *games) DeleteByWarband(_ context.Context, _ repository.DBTX, warbandID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, g := range r.s.games {
		if g.Involves(warbandID) {
			delete(r.s.games, id)
			n++
		}
	}
	return n, nil
}

// --- stories ---

type stories struct{ s *Store }

func (r *stories) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Story, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stories[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (r *stories) Upsert(_ context.Context, _ repository.DBTX, st *domain.Story) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for id, existing := range r.s.stories {
		if existing.WarbandID == st.WarbandID && existing.GameNumber == st.GameNumber {
			existing.Text = st.Text
			existing.UpdatedAt = now
			r.s.stories[id] = existing
			*st = existing
			return nil
		}
	}
	st.CreatedAt = now
	st.UpdatedAt = now
	r.s.stories[st.ID] = *st
	return nil
}

func (r *stories) UpdateText(_ context.Context, _ repository.DBTX, id uuid.UUID, text string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stories[id]
	if !ok {
		return domain.ErrNotFound("story", id.String())
	}
	st.Text = text
	st.UpdatedAt = r.s.now()
	r.s.stories[id] = st
	return nil
}

func (r *stories) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stories[id]; !ok {
		return domain.ErrNotFound("story", id.String())
	}
	delete(r.s.stories, id)
	return nil
}

func (r *stories) List(_ context.Context, _ repository.DBTX, filter domain.StoryFilter) ([]domain.Story, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Story
	for _, st := range r.s.stories {
		if filter.WarbandID != nil && st.WarbandID != *filter.WarbandID {
			continue
		}
		if filter.CampaignID != nil {
			w, ok := r.s.warbands[st.WarbandID]
			if !ok || w.CampaignID == nil || *w.CampaignID != *filter.CampaignID {
				continue
			}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WarbandID != out[j].WarbandID {
			return out[i].WarbandID.String() < out[j].WarbandID.String()
		}
		return out[i].GameNumber < out[j].GameNumber
	})
	return out, nil
}

func (r *stories) DeleteByWarband(_ context.Context, _ repository.DBTX, warbandID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, st := range r.s.stories {
		if st.WarbandID == warbandID {
			delete(r.s.stories, id)
			n++
		}
	}
	return n, nil
}

// --- outbox ---

type outbox struct{ s *Store }

func (r *outbox) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	draft.SeqID = r.s.seq
	r.s.outbox = append(r.s.outbox, draft)
	return nil
}

func (r *outbox) FetchUnpublished(_ context.Context, _ repository.DBTX, limit int) ([]domain.OutboxDraft, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.outbox)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]domain.OutboxDraft(nil), r.s.outbox[:n]...), nil
}

func (r *outbox) MarkPublished(_ context.Context, _ repository.DBTX, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := r.s.outbox[:0:0]
	for _, d := range r.s.outbox {
		if _, ok := drop[d.SeqID]; !ok {
			kept = append(kept, d)
		}
	}
	r.s.outbox = kept
	return nil
}

// --- login attempts ---

type attempts struct{ s *Store }

func (r *attempts) Record(_ context.Context, _ repository.DBTX, a domain.LoginAttempt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.s.now()
	}
	a.Login = strings.ToLower(a.Login)
	r.s.attempts = append(r.s.attempts, a)
	return nil
}

func (r *attempts) CountFailures(_ context.Context, _ repository.DBTX, login string, since time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	login = strings.ToLower(login)
	n := 0
	for _, a := range r.s.attempts {
		if a.Login == login && !a.Success && !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

var _ repository.Transactor = (*Store)(nil)
