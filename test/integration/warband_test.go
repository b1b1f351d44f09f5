//go:build integration

package integration

import (
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/test/integration/testutil"
)

type warbandDetail struct {
	domain.Warband
	Roster domain.Roster `json:"roster"`
}

func TestApply_StoresWarbandAndRoster(t *testing.T) {
	env := testutil.NewTestEnv(t)
	session, playerID := env.RegisterPlayer("alice", "securepass123")

	resp := env.Upload("/warband-apply", testutil.RosterFile("Alpha", "FactionX", 700), session)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var w warbandDetail
	testutil.DecodeJSON(t, resp, &w)
	assert.Equal(t, "Alpha", w.Name)
	assert.Equal(t, "FactionX", w.CatalogueName)
	assert.Equal(t, playerID, w.PlayerID)
	assert.Equal(t, domain.WarbandActive, w.Status)
	assert.Nil(t, w.CampaignID)

	assert.Equal(t, 0, w.Roster.GameNumber)
	assert.Equal(t, 700, w.Roster.Ducats)
	assert.Equal(t, 1, w.Roster.GloryPoints)
	assert.Equal(t, 4, w.Roster.ModelCount)

	assert.Equal(t, 1, testutil.CountRows(t, env, "rosters", "warband_id = $1", w.ID))
	assert.Equal(t, []string{
		string(domain.EventWarbandRegistered),
		string(domain.EventRosterSubmitted),
	}, testutil.OutboxEventTypes(t, env, w.ID.String()))

	// The uploaded file is served back as-is.
	file := env.GET(w.Roster.FileURL, "")
	defer file.Body.Close()
	require.Equal(t, http.StatusOK, file.StatusCode)
	body, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Equal(t, testutil.RosterFile("Alpha", "FactionX", 700), body)
}

func TestApply_Rejects(t *testing.T) {
	env := testutil.NewTestEnv(t)
	session, _ := env.RegisterPlayer("alice", "securepass123")
	env.ApplyWarband("/warband-apply", session, "Alpha", "FactionX")

	tests := []struct {
		name string
		file []byte
		code string
	}{
		{"invalid json", []byte("{not json"), domain.CodeInvalidJSON},
		{"missing name", []byte(`{"roster":{"catalogueName":"FactionX"}}`), domain.CodeValidation},
		{"duplicate name", testutil.RosterFile("Alpha", "FactionX", 500), domain.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.Upload("/warband-apply", tt.file, session)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			testutil.AssertErrorCode(t, resp, tt.code)
		})
	}
	assert.Equal(t, 1, testutil.CountRows(t, env, "warbands", ""))
}

func TestReplaceRoster(t *testing.T) {
	env := testutil.NewTestEnv(t)
	session, _ := env.RegisterPlayer("alice", "securepass123")
	other, _ := env.RegisterPlayer("bob", "securepass123")
	id := env.ApplyWarband("/warband-apply", session, "Alpha", "FactionX")
	path := "/warbands/" + id.String() + "/roster"

	t.Run("faction mismatch", func(t *testing.T) {
		resp := env.Upload(path, testutil.RosterFile("Alpha", "FactionZ", 800), session)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		testutil.AssertErrorCode(t, resp, domain.CodeFactionMismatch)
	})

	t.Run("name mismatch", func(t *testing.T) {
		resp := env.Upload(path, testutil.RosterFile("Omega", "FactionX", 800), session)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		testutil.AssertErrorCode(t, resp, domain.CodeNameMismatch)
	})

	t.Run("not owner", func(t *testing.T) {
		resp := env.Upload(path, testutil.RosterFile("Alpha", "FactionX", 800), other)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("success", func(t *testing.T) {
		resp := env.Upload(path, testutil.RosterFile("Alpha", "FactionX", 800), session)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = env.GET("/warbands/"+id.String(), session)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var w warbandDetail
		testutil.DecodeJSON(t, resp, &w)
		assert.Equal(t, 800, w.Roster.Ducats)
		assert.Equal(t, domain.WarbandActive, w.Status)
	})

	assert.Equal(t, 2, testutil.CountRows(t, env, "rosters", "warband_id = $1", id))
}

func TestRetire_HidesWarband(t *testing.T) {
	env := testutil.NewTestEnv(t)
	session, _ := env.RegisterPlayer("alice", "securepass123")
	id := env.ApplyWarband("/warband-apply", session, "Alpha", "FactionX")

	resp := env.DELETE("/warbands/"+id.String(), session)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	var status string
	require.NoError(t, env.Pool.QueryRow(t.Context(), "SELECT status FROM warbands WHERE id = $1", id).Scan(&status))
	assert.Equal(t, string(domain.WarbandDeleted), status)

	resp = env.GET("/warbands/mine", session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []domain.Warband
	testutil.DecodeJSON(t, resp, &mine)
	assert.Empty(t, mine)

	// The name is free again once the old warband is retired.
	env.ApplyWarband("/warband-apply", session, "Alpha", "FactionX")
}

func TestGetWarband_UnknownID(t *testing.T) {
	env := testutil.NewTestEnv(t)
	session, _ := env.RegisterPlayer("alice", "securepass123")

	resp := env.GET("/warbands/"+uuid.NewString(), session)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, domain.CodeNotFound)

	resp = env.GET("/warbands/not-a-uuid", session)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStories(t *testing.T) {
	env := testutil.NewTestEnv(t)
	session, _ := env.RegisterPlayer("alice", "securepass123")
	id := env.ApplyWarband("/warband-apply", session, "Alpha", "FactionX")
	base := "/warbands/" + id.String() + "/stories"

	resp := env.Do(http.MethodPut, base+"/0", map[string]string{"text": "Founded in the mud."}, session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.Do(http.MethodPut, base+"/0", map[string]string{"text": "Founded in the rain."}, session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.Do(http.MethodPut, base+"/3", map[string]string{"text": "A game never played."}, session)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.GET(base, session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stories []domain.Story
	testutil.DecodeJSON(t, resp, &stories)
	require.Len(t, stories, 1)
	assert.Equal(t, "Founded in the rain.", stories[0].Text)
}
