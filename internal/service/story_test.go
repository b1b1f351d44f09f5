package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warcamp/platform/internal/domain"
)

func TestStoryUpsert(t *testing.T) {
	f := newBattleFixture(t)
	ctx := context.Background()

	prologue, err := f.stories.Upsert(ctx, f.a, nil, f.wa.ID, 0, "They marched at dawn.")
	require.NoError(t, err)
	assert.Equal(t, 0, prologue.GameNumber)

	_, err = f.stories.Upsert(ctx, f.a, nil, f.wa.ID, 1, "Too early.")
	requireCode(t, err, domain.CodeValidation)

	playFinishedGame(t, f.env, f.a, f.b, f.wa.ID, f.wb.ID)

	first, err := f.stories.Upsert(ctx, f.a, nil, f.wa.ID, 1, "First blood.")
	require.NoError(t, err)

	again, err := f.stories.Upsert(ctx, f.a, nil, f.wa.ID, 1, "First blood, retold.")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "one story per warband and game")
	assert.Equal(t, "First blood, retold.", again.Text)

	list, err := f.stories.List(ctx, nil, &f.wa.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStoryUpsert_UnplayedGame(t *testing.T) {
	f := newBattleFixture(t)
	ctx := context.Background()

	playFinishedGame(t, f.env, f.a, f.b, f.wa.ID, f.wb.ID)
	_, err := f.warbands.ReplaceRoster(ctx, f.a, nil, f.wa.ID, rosterJSON(f.wa.Name, f.wa.CatalogueName))
	require.NoError(t, err)
	_, err = f.warbands.ReplaceRoster(ctx, f.b, nil, f.wb.ID, rosterJSON(f.wb.Name, f.wb.CatalogueName))
	require.NoError(t, err)

	planned, err := f.battles.Plan(ctx, f.a, nil, PlanInput{Warband1ID: f.wa.ID, Warband2ID: f.wb.ID})
	require.NoError(t, err)
	require.Equal(t, 2, planned.Warband1GameNumber)

	_, err = f.stories.Upsert(ctx, f.a, nil, f.wa.ID, 2, "Not fought yet.")
	requireCode(t, err, domain.CodeValidation)
}

func TestStoryUpsert_Rejects(t *testing.T) {
	f := newBattleFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		player uuid.UUID
		number int
		text   string
		code   string
	}{
		{"not the owner", f.b, 0, "Stolen tale.", domain.CodeForbidden},
		{"empty text", f.a, 0, "   ", domain.CodeValidation},
		{"too long", f.a, 0, strings.Repeat("x", MaxStoryLength+1), domain.CodeValidation},
		{"negative number", f.a, -1, "Before time.", domain.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.stories.Upsert(ctx, tt.player, nil, f.wa.ID, tt.number, tt.text)
			requireCode(t, err, tt.code)
		})
	}
	assert.Equal(t, 0, f.mem.Counts()["stories"])
}

func TestStoryAdmin(t *testing.T) {
	f := newBattleFixture(t)
	ctx := context.Background()

	st, err := f.stories.Upsert(ctx, f.a, nil, f.wa.ID, 0, "Draft.")
	require.NoError(t, err)

	edited, err := f.stories.UpdateText(ctx, nil, st.ID, "Edited by the referee.")
	require.NoError(t, err)
	assert.Equal(t, "Edited by the referee.", edited.Text)

	other := uuid.New()
	_, err = f.stories.UpdateText(ctx, &other, st.ID, "Out of scope.")
	requireCode(t, err, domain.CodeNotFound)

	require.NoError(t, f.stories.Delete(ctx, nil, st.ID))
	requireCode(t, f.stories.Delete(ctx, nil, st.ID), domain.CodeNotFound)
}
