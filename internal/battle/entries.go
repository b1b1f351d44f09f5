package battle

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/warcamp/platform/internal/domain"
)

// NormalizeEntries cleans client-supplied injury or advancement rolls.
// Entries without a non-empty name or without a roll are dropped; the rest
// are coerced to {name, roll}.
func NormalizeEntries(raw []map[string]any) []domain.RollEntry {
	out := make([]domain.RollEntry, 0, len(raw))
	for _, e := range raw {
		if e == nil {
			continue
		}
		name, _ := e["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		roll, ok := rollValue(e["roll"])
		if !ok {
			continue
		}
		out = append(out, domain.RollEntry{Name: name, Roll: roll})
	}
	return out
}

func rollValue(v any) (float64, bool) {
	switch r := v.(type) {
	case float64:
		return r, true
	case json.Number:
		f, err := r.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(r)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}
