// Package roster parses army-list exports and derives the statistics the
// campaign tracks for each submission.
//
// A roster document looks like:
//
//	{"roster": {
//	    "name": "...", "catalogueName": "...",
//	    "costs": [{"name": "Ducats", "value": 120}, ...],
//	    "forces": [{"catalogueName": "...", "selections": [...]}]}}
//
// The document is decoded into a generic tree (map[string]any / []any) so the
// walk does not depend on any particular export version.
package roster

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/warcamp/platform/internal/domain"
)

// Cost names looked up in roster.costs.
const (
	CostDucats      = "Ducats"
	CostGloryPoints = "Glory Points"
)

// Stats are the numbers derived from one roster upload.
type Stats struct {
	Ducats      int `json:"ducats"`
	GloryPoints int `json:"glory_points"`
	ModelCount  int `json:"model_count"`
}

// Document is a parsed roster export.
type Document struct {
	raw  []byte
	root map[string]any
}

// Parse decodes data as a roster export. Anything that is not a JSON object
// is rejected with an INVALID_JSON error.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, domain.ErrInvalidJSON(err)
	}
	if dec.More() {
		return nil, domain.ErrInvalidJSON(nil)
	}
	obj, ok := tree.(map[string]any)
	if !ok {
		return nil, domain.ErrInvalidJSON(nil)
	}

	root, _ := obj["roster"].(map[string]any)
	if root == nil {
		root = map[string]any{}
	}
	return &Document{raw: data, root: root}, nil
}

// Raw returns the uploaded bytes unchanged.
func (d *Document) Raw() []byte { return d.raw }

// Name returns roster.name, or "" when absent.
func (d *Document) Name() string {
	return stringField(d.root, "name")
}

// Faction returns roster.catalogueName, falling back to the first force's
// catalogueName.
func (d *Document) Faction() string {
	if f := stringField(d.root, "catalogueName"); f != "" {
		return f
	}
	forces, _ := d.root["forces"].([]any)
	if len(forces) == 0 {
		return ""
	}
	first, _ := forces[0].(map[string]any)
	return stringField(first, "catalogueName")
}

// CheckOwner verifies the roster belongs to a warband with the given name and
// faction. A value missing from the document is not a mismatch.
func (d *Document) CheckOwner(name, faction string) error {
	if got := d.Name(); got != "" && got != strings.TrimSpace(name) {
		return domain.ErrNameMismatch(name, got)
	}
	if got := d.Faction(); got != "" && got != strings.TrimSpace(faction) {
		return domain.ErrFactionMismatch(faction, got)
	}
	return nil
}

// RequireIdentity checks a first upload carries both a name and a faction.
func (d *Document) RequireIdentity() error {
	if d.Name() == "" {
		return domain.ErrValidation("roster has no name")
	}
	if d.Faction() == "" {
		return domain.ErrValidation("roster has no faction (catalogueName)")
	}
	return nil
}

// Stats derives ducats, glory points and model count.
func (d *Document) Stats() Stats {
	return Stats{
		Ducats:      costValue(d.root["costs"], CostDucats),
		GloryPoints: costValue(d.root["costs"], CostGloryPoints),
		ModelCount:  min(countForces(d.root["forces"]), math.MaxInt32),
	}
}

func countForces(node any) int {
	forces, _ := node.([]any)
	total := 0
	for _, f := range forces {
		force, _ := f.(map[string]any)
		if force == nil {
			continue
		}
		total += CountModels(force["selections"])
	}
	return total
}

// CountModels sums the number of every "model" selection in a selections
// tree, descending into nested selections at any depth.
func CountModels(node any) int {
	entries, _ := node.([]any)
	total := 0
	for _, e := range entries {
		sel, _ := e.(map[string]any)
		if sel == nil {
			continue
		}
		if stringField(sel, "type") == "model" {
			n, ok := count(sel["number"])
			if !ok {
				n = 1
			}
			total += n
		}
		total += CountModels(sel["selections"])
	}
	return total
}

func costValue(node any, name string) int {
	costs, _ := node.([]any)
	for _, c := range costs {
		cost, _ := c.(map[string]any)
		if cost == nil || stringField(cost, "name") != name {
			continue
		}
		v, _ := count(cost["value"])
		return v
	}
	return 0
}

func stringField(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// count reads a whole, non-negative number that fits an INTEGER column.
// Anything else reports false.
func count(v any) (int, bool) {
	f, ok := number(v)
	if !ok || math.IsNaN(f) || f < 0 || f > math.MaxInt32 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// number reads a JSON number or numeric string.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
