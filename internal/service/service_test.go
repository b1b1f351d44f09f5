package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/warcamp/platform/internal/auth"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/guard"
	"github.com/warcamp/platform/internal/repository/repotest"
)

type fakeFiles struct {
	saved map[string][]byte
}

func (f *fakeFiles) Save(category, ext string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	url := fmt.Sprintf("/uploads/%s/%d%s", category, len(f.saved), ext)
	f.saved[url] = data
	return url, nil
}

func (f *fakeFiles) SaveImage(category string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", domain.ErrValidation("image is empty")
	}
	return f.Save(category, ".png", data)
}

type env struct {
	mem       *repotest.Store
	files     *fakeFiles
	auth      *AuthService
	players   *PlayerService
	campaigns *CampaignService
	warbands  *WarbandService
	battles   *BattleService
	stories   *StoryService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mem := repotest.New()
	st := Store{Tx: mem, Repos: mem.Set()}
	files := &fakeFiles{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &env{
		mem:       mem,
		files:     files,
		auth:      NewAuthService(st, auth.NewJWTManager("test-secret-key-for-unit-tests-only", time.Hour), guard.NewLockout(st.Repos.LoginAttempts), logger),
		players:   NewPlayerService(st, files),
		campaigns: NewCampaignService(st, files),
		warbands:  NewWarbandService(st, files, false, logger),
		battles:   NewBattleService(st, logger),
		stories:   NewStoryService(st),
	}
}

func rosterJSON(name, faction string) []byte {
	return []byte(fmt.Sprintf(`{"roster":{"name":%q,"catalogueName":%q,
		"costs":[{"name":"Ducats","value":700},{"name":"Glory Points","value":3}],
		"forces":[{"catalogueName":%q,"selections":[{"name":"Trooper","type":"model","number":4}]}]}}`,
		name, faction, faction))
}

func (e *env) player(t *testing.T, login string) uuid.UUID {
	t.Helper()
	sess, err := e.auth.Register(context.Background(), RegisterInput{Login: login, Password: "password123"})
	require.NoError(t, err)
	return sess.Player.ID
}

func (e *env) warband(t *testing.T, playerID uuid.UUID, scope *uuid.UUID, name, faction string) *domain.Warband {
	t.Helper()
	d, err := e.warbands.Apply(context.Background(), playerID, scope, rosterJSON(name, faction))
	require.NoError(t, err)
	return &d.Warband
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
}
