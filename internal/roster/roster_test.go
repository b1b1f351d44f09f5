package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warcamp/platform/internal/domain"
)

const sampleRoster = `{
  "roster": {
    "name": "Alpha",
    "catalogueName": "FactionX",
    "costs": [
      {"name": "Ducats", "typeId": "d", "value": 120},
      {"name": "Glory Points", "typeId": "g", "value": 5}
    ],
    "forces": [{
      "catalogueName": "FactionX",
      "selections": [
        {"name": "Trench Cleaner", "type": "model", "number": 3},
        {"name": "Sniper", "type": "model", "number": 1,
         "selections": [{"name": "Rifle", "type": "upgrade", "number": 1}]},
        {"name": "Squad", "type": "unit", "selections": [
          {"name": "Trooper", "type": "model", "number": 2},
          {"name": "Officer", "type": "model"}
        ]}
      ]
    }]
  }
}`

func TestParse_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", `{not json`},
		{"empty", ``},
		{"array root", `[1,2,3]`},
		{"trailing data", `{"roster":{}} {"roster":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, domain.HasCode(err, domain.CodeInvalidJSON))
		})
	}
}

func TestDocument_Identity(t *testing.T) {
	doc, err := Parse([]byte(sampleRoster))
	require.NoError(t, err)

	assert.Equal(t, "Alpha", doc.Name())
	assert.Equal(t, "FactionX", doc.Faction())
	assert.NoError(t, doc.RequireIdentity())
	assert.Equal(t, sampleRoster, string(doc.Raw()))
}

func TestDocument_FactionFallsBackToFirstForce(t *testing.T) {
	doc, err := Parse([]byte(`{"roster":{"name":"Beta","forces":[{"catalogueName":"FactionY"},{"catalogueName":"Other"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, "FactionY", doc.Faction())
}

func TestDocument_RequireIdentity(t *testing.T) {
	doc, err := Parse([]byte(`{"roster":{"catalogueName":"FactionX"}}`))
	require.NoError(t, err)
	assert.True(t, domain.HasCode(doc.RequireIdentity(), domain.CodeValidation))

	doc, err = Parse([]byte(`{"roster":{"name":"Alpha"}}`))
	require.NoError(t, err)
	assert.True(t, domain.HasCode(doc.RequireIdentity(), domain.CodeValidation))
}

func TestDocument_CheckOwner(t *testing.T) {
	doc, err := Parse([]byte(sampleRoster))
	require.NoError(t, err)

	t.Run("match", func(t *testing.T) {
		assert.NoError(t, doc.CheckOwner("Alpha", "FactionX"))
	})

	t.Run("stored values are trimmed", func(t *testing.T) {
		assert.NoError(t, doc.CheckOwner(" Alpha ", "FactionX\n"))
	})

	t.Run("name mismatch", func(t *testing.T) {
		err := doc.CheckOwner("Gamma", "FactionX")
		assert.True(t, domain.HasCode(err, domain.CodeNameMismatch))
	})

	t.Run("faction mismatch", func(t *testing.T) {
		err := doc.CheckOwner("Alpha", "FactionZ")
		assert.True(t, domain.HasCode(err, domain.CodeFactionMismatch))
	})

	t.Run("absent fields do not mismatch", func(t *testing.T) {
		bare, err := Parse([]byte(`{"roster":{}}`))
		require.NoError(t, err)
		assert.NoError(t, bare.CheckOwner("Anything", "Whatever"))
	})
}

func TestDocument_Stats(t *testing.T) {
	doc, err := Parse([]byte(sampleRoster))
	require.NoError(t, err)

	stats := doc.Stats()
	assert.Equal(t, 120, stats.Ducats)
	assert.Equal(t, 5, stats.GloryPoints)
	assert.Equal(t, 7, stats.ModelCount)
}

func TestDocument_StatsOutOfRangeNumbers(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantDucats int
		wantGlory  int
		wantModels int
	}{
		{
			"huge cost",
			`{"roster":{"costs":[{"name":"Ducats","value":1e300},{"name":"Glory Points","value":2}]}}`,
			0, 2, 0,
		},
		{
			"negative cost",
			`{"roster":{"costs":[{"name":"Ducats","value":-50}]}}`,
			0, 0, 0,
		},
		{
			"fractional cost",
			`{"roster":{"costs":[{"name":"Ducats","value":12.5}]}}`,
			0, 0, 0,
		},
		{
			"oversized and negative model numbers",
			`{"roster":{"forces":[{"selections":[{"type":"model","number":5000000000},{"type":"model","number":-3}]}]}}`,
			0, 0, 2,
		},
		{
			"model total capped",
			`{"roster":{"forces":[{"selections":[{"type":"model","number":2147483647},{"type":"model","number":2147483647}]}]}}`,
			0, 0, 2147483647,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.data))
			require.NoError(t, err)
			stats := doc.Stats()
			assert.Equal(t, tt.wantDucats, stats.Ducats)
			assert.Equal(t, tt.wantGlory, stats.GloryPoints)
			assert.Equal(t, tt.wantModels, stats.ModelCount)
		})
	}
}

func TestDocument_StatsIsDeterministic(t *testing.T) {
	a, err := Parse([]byte(sampleRoster))
	require.NoError(t, err)
	b, err := Parse([]byte(sampleRoster))
	require.NoError(t, err)

	assert.Equal(t, a.Stats(), b.Stats())
	assert.Equal(t, a.Stats(), a.Stats())
}

func TestDocument_CostDefaults(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantDucats int
		wantGlory  int
	}{
		{"no costs", `{"roster":{}}`, 0, 0},
		{"only ducats", `{"roster":{"costs":[{"name":"Ducats","value":75}]}}`, 75, 0},
		{"non numeric", `{"roster":{"costs":[{"name":"Ducats","value":"lots"},{"name":"Glory Points","value":null}]}}`, 0, 0},
		{"numeric string", `{"roster":{"costs":[{"name":"Glory Points","value":"4"}]}}`, 0, 4},
		{"costs not an array", `{"roster":{"costs":{"name":"Ducats","value":10}}}`, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.data))
			require.NoError(t, err)
			stats := doc.Stats()
			assert.Equal(t, tt.wantDucats, stats.Ducats)
			assert.Equal(t, tt.wantGlory, stats.GloryPoints)
		})
	}
}

func TestCountModels(t *testing.T) {
	tests := []struct {
		name string
		tree any
		want int
	}{
		{"nil", nil, 0},
		{"not an array", map[string]any{"type": "model"}, 0},
		{
			"flat models",
			[]any{
				map[string]any{"type": "model", "number": float64(3)},
				map[string]any{"type": "model", "number": float64(1)},
			},
			4,
		},
		{
			"number defaults to one",
			[]any{map[string]any{"type": "model"}},
			1,
		},
		{
			"upgrades and units do not count",
			[]any{
				map[string]any{"type": "upgrade", "number": float64(5)},
				map[string]any{"type": "unit", "number": float64(2)},
			},
			0,
		},
		{
			"nested at depth",
			[]any{
				map[string]any{"type": "unit", "selections": []any{
					map[string]any{"type": "unit", "selections": []any{
						map[string]any{"type": "model", "number": float64(2)},
					}},
					map[string]any{"type": "model"},
				}},
			},
			3,
		},
		{
			"non-object entries are skipped",
			[]any{"model", float64(7), map[string]any{"type": "model", "number": float64(2)}},
			2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountModels(tt.tree))
		})
	}
}

func TestDocument_ModelCountAcrossForces(t *testing.T) {
	doc, err := Parse([]byte(`{"roster":{"forces":[
		{"selections":[{"type":"model","number":3},{"type":"model","number":1}]},
		{"selections":[{"type":"model","number":2}]}
	]}}`))
	require.NoError(t, err)
	assert.Equal(t, 6, doc.Stats().ModelCount)
}
