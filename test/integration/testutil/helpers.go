//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
)

// RegisterPlayer creates a new player and returns the session token and player ID.
func (env *TestEnv) RegisterPlayer(login, password string) (session string, playerID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/register", map[string]string{
		"login":    login,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterPlayer: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Player struct {
			ID uuid.UUID `json:"id"`
		} `json:"player"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterPlayer: decode: %v", err)
	}
	return sessionCookie(resp), result.Player.ID
}

// LoginPlayer authenticates an existing player and returns the session token.
func (env *TestEnv) LoginPlayer(login, password string) string {
	env.t.Helper()
	resp := env.POST("/login", map[string]string{
		"login":    login,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("LoginPlayer: expected 200, got %d", resp.StatusCode)
	}
	return sessionCookie(resp)
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == TestCookieName {
			return c.Value
		}
	}
	return ""
}

// GET performs a GET request with an optional session.
func (env *TestEnv) GET(path, session string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, session)
}

// POST performs a POST request with an optional session.
func (env *TestEnv) POST(path string, body interface{}, session string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPost, path, body, session)
}

// PATCH performs a PATCH request with an optional session.
func (env *TestEnv) PATCH(path string, body interface{}, session string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPatch, path, body, session)
}

// DELETE performs a DELETE request with an optional session.
func (env *TestEnv) DELETE(path, session string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodDelete, path, nil, session)
}

// Do sends a JSON request. The session, when set, travels in the session cookie.
func (env *TestEnv) Do(method, path string, body interface{}, session string) *http.Response {
	env.t.Helper()
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
		reader = &buf
	}
	req, err := http.NewRequest(method, env.Server.URL+path, reader)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return env.send(req, session)
}

// Upload posts file as the multipart field "file".
func (env *TestEnv) Upload(path string, file []byte, session string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "roster.json")
	if err != nil {
		env.t.Fatalf("Upload %s: %v", path, err)
	}
	if _, err := part.Write(file); err != nil {
		env.t.Fatalf("Upload %s: %v", path, err)
	}
	if err := mw.Close(); err != nil {
		env.t.Fatalf("Upload %s: %v", path, err)
	}

	req, err := http.NewRequest(http.MethodPost, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("Upload %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return env.send(req, session)
}

func (env *TestEnv) send(req *http.Request, session string) *http.Response {
	env.t.Helper()
	if session != "" {
		req.AddCookie(&http.Cookie{Name: TestCookieName, Value: session})
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

// ApplyWarband registers a warband from a generated roster and returns its ID.
func (env *TestEnv) ApplyWarband(path, session, name, faction string) uuid.UUID {
	env.t.Helper()
	resp := env.Upload(path, RosterFile(name, faction, 700), session)
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		env.t.Fatalf("ApplyWarband: expected 201, got %d: %s", resp.StatusCode, body)
	}

	var result struct {
		ID uuid.UUID `json:"id"`
	}
	DecodeJSON(env.t, resp, &result)
	return result.ID
}

// MakeAdmin grants the global admin flag directly in the database.
func (env *TestEnv) MakeAdmin(playerID uuid.UUID) {
	env.t.Helper()
	if _, err := env.Pool.Exec(env.t.Context(), "UPDATE players SET is_admin = true WHERE id = $1", playerID); err != nil {
		env.t.Fatalf("MakeAdmin: %v", err)
	}
}

// RosterFile renders a minimal roster export.
func RosterFile(name, faction string, ducats int) []byte {
	return []byte(fmt.Sprintf(`{"roster":{"name":%q,"catalogueName":%q,
		"costs":[{"name":"Ducats","value":%d},{"name":"Glory Points","value":1}],
		"forces":[{"catalogueName":%q,"selections":[
			{"name":"Yeoman","type":"model","number":3},
			{"name":"Sniper","type":"model","number":1}]}]}}`,
		name, faction, ducats, faction))
}
