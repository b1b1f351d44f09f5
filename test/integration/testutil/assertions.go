//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// CountRows returns the number of rows in table matching where (a SQL
// condition on $1). An empty where counts the whole table.
func CountRows(t *testing.T, env *TestEnv, table, where string, args ...any) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var count int
	if err := env.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		t.Fatalf("CountRows %s: %v", table, err)
	}
	return count
}

// OutboxEventTypes returns the event types recorded for an aggregate, oldest first.
func OutboxEventTypes(t *testing.T, env *TestEnv, aggregateID string) []string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := env.Pool.Query(ctx,
		"SELECT event_type FROM event_outbox WHERE aggregate_id = $1 ORDER BY id", aggregateID)
	if err != nil {
		t.Fatalf("OutboxEventTypes: %v", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatalf("OutboxEventTypes: scan: %v", err)
		}
		types = append(types, s)
	}
	return types
}
