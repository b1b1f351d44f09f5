package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/guard"
)

// --- RespondJSON Tests ---

func TestRespondJSON(t *testing.T) {
	t.Run("200 with body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("201 with body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusCreated, map[string]int{"id": 42})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("204 with nil body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusNoContent, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

// --- RespondError Tests ---

func TestRespondError(t *testing.T) {
	t.Run("AppError maps to correct status", func(t *testing.T) {
		tests := []struct {
			err        *domain.AppError
			wantStatus int
			wantCode   string
		}{
			{domain.ErrNotFound("player", "123"), 404, "NOT_FOUND"},
			{domain.ErrValidation("bad input"), 400, "VALIDATION_ERROR"},
			{domain.ErrUnauthorized("no token"), 401, "UNAUTHORIZED"},
			{domain.ErrForbidden("not allowed"), 403, "FORBIDDEN"},
			{domain.ErrConflict("duplicate"), 400, "CONFLICT"},
			{domain.ErrFactionMismatch("X", "Y"), 400, "FACTION_MISMATCH"},
			{domain.ErrRateLimited("slow down"), 429, "RATE_LIMITED"},
			{domain.ErrAccountLocked("locked"), 429, "ACCOUNT_LOCKED"},
			{domain.ErrInternal("oops", nil), 500, "INTERNAL_ERROR"},
		}

		for _, tt := range tests {
			t.Run(tt.wantCode, func(t *testing.T) {
				w := httptest.NewRecorder()
				RespondError(w, tt.err)
				assert.Equal(t, tt.wantStatus, w.Code)

				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.wantCode, body["code"])
			})
		}
	})

	t.Run("generic error returns 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondError(w, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "INTERNAL_ERROR", body["code"])
		assert.Equal(t, "internal server error", body["message"])
		assert.Equal(t, assert.AnError.Error(), body["detail"])
	})

	t.Run("client errors carry no detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondError(w, fmt.Errorf("plan game: %w", domain.ErrConflict("warband busy")))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "CONFLICT", body["code"])
		assert.NotContains(t, body, "detail")
	})
}

// --- DecodeJSON Tests ---

func TestDecodeJSON(t *testing.T) {
	t.Run("valid JSON body", func(t *testing.T) {
		body := bytes.NewBufferString(`{"name":"test","value":42}`)
		r := httptest.NewRequest(http.MethodPost, "/", body)
		var dst struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}
		require.NoError(t, DecodeJSON(r, &dst))
		assert.Equal(t, "test", dst.Name)
		assert.Equal(t, 42, dst.Value)
	})

	t.Run("invalid JSON returns error", func(t *testing.T) {
		body := bytes.NewBufferString(`{invalid`)
		r := httptest.NewRequest(http.MethodPost, "/", body)
		var dst map[string]interface{}
		err := DecodeJSON(r, &dst)
		require.Error(t, err)
	})

	t.Run("body exceeding 1MiB returns error", func(t *testing.T) {
		bigBody := strings.Repeat("x", 1<<20+1)
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(bigBody))
		var dst map[string]interface{}
		err := DecodeJSON(r, &dst)
		require.Error(t, err)
	})
}

// --- ClientIP Tests ---

func TestClientIP(t *testing.T) {
	t.Run("X-Forwarded-For single IP", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", "1.2.3.4")
		assert.Equal(t, "1.2.3.4", ClientIP(r))
	})

	t.Run("X-Forwarded-For multiple IPs takes first", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8, 9.10.11.12")
		assert.Equal(t, "1.2.3.4", ClientIP(r))
	})

	t.Run("X-Forwarded-For with spaces", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", "  1.2.3.4  ")
		assert.Equal(t, "1.2.3.4", ClientIP(r))
	})

	t.Run("no X-Forwarded-For uses RemoteAddr", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:54321"
		assert.Equal(t, "10.0.0.1", ClientIP(r))
	})

	t.Run("RemoteAddr without port", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1"
		assert.Equal(t, "10.0.0.1", ClientIP(r))
	})
}

// --- RequestID Middleware Tests ---

func TestRequestID(t *testing.T) {
	t.Run("generates ID when none provided", func(t *testing.T) {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetRequestID(r.Context())
			assert.NotEmpty(t, id)
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("uses provided X-Request-ID", func(t *testing.T) {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetRequestID(r.Context())
			assert.Equal(t, "my-custom-id", id)
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Request-ID", "my-custom-id")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, "my-custom-id", w.Header().Get("X-Request-ID"))
	})
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	id := GetRequestID(context.Background())
	assert.Empty(t, id)
}

// --- JSONContentType Middleware Tests ---

func TestJSONContentType(t *testing.T) {
	handler := JSONContentType(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

// --- CORS Middleware Tests ---

func TestCORSWithOrigins(t *testing.T) {
	t.Run("sets CORS headers", func(t *testing.T) {
		handler := CORSWithOrigins("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Request-ID")
	})

	t.Run("OPTIONS returns 204", func(t *testing.T) {
		handler := CORSWithOrigins("https://example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest(http.MethodOptions, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("specific origin", func(t *testing.T) {
		handler := CORSWithOrigins("https://app.warcamp.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, "https://app.warcamp.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("origin list echoes a listed origin", func(t *testing.T) {
		handler := CORSWithOrigins("https://a.example", "https://b.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "https://b.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, "https://b.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

		r = httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "https://evil.example")
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

// --- RateLimit Middleware Tests ---

func TestRateLimit(t *testing.T) {
	limiter := guard.NewRateLimiter(2, time.Minute)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(ip string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)

	w := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code, "other clients are unaffected")
}

// --- Scope Tests ---

type fakeResolver struct{ known uuid.UUID }

func (f fakeResolver) ResolveScope(_ context.Context, raw string) (*uuid.UUID, error) {
	if raw != f.known.String() {
		return nil, domain.ErrNotFound("campaign", raw)
	}
	id := f.known
	return &id, nil
}

func TestCampaignScope(t *testing.T) {
	known := uuid.New()
	r := chi.NewRouter()
	r.Get("/things", func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, ScopeFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/campaigns/{campaignID}", func(r chi.Router) {
		r.Use(CampaignScope(fakeResolver{known: known}))
		r.Get("/things", func(w http.ResponseWriter, r *http.Request) {
			scope := ScopeFromContext(r.Context())
			require.NotNil(t, scope)
			assert.Equal(t, known, *scope)
			w.WriteHeader(http.StatusOK)
		})
	})

	tests := []struct {
		path string
		want int
	}{
		{"/things", http.StatusOK},
		{"/campaigns/" + known.String() + "/things", http.StatusOK},
		{"/campaigns/" + uuid.NewString() + "/things", http.StatusNotFound},
		{"/campaigns/nope/things", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.want, w.Code, tt.path)
	}
}

// --- FormFile Tests ---

func multipartRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "upload.json")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestFormFile(t *testing.T) {
	t.Run("reads the file part", func(t *testing.T) {
		data, err := FormFile(httptest.NewRecorder(), multipartRequest(t, "file", []byte(`{"roster":{}}`)), 1024)
		require.NoError(t, err)
		assert.Equal(t, `{"roster":{}}`, string(data))
	})

	t.Run("wrong field name", func(t *testing.T) {
		_, err := FormFile(httptest.NewRecorder(), multipartRequest(t, "upload", []byte("x")), 1024)
		assert.True(t, domain.HasCode(err, domain.CodeValidation))
	})

	t.Run("file over the limit", func(t *testing.T) {
		_, err := FormFile(httptest.NewRecorder(), multipartRequest(t, "file", bytes.Repeat([]byte("x"), 2048)), 1024)
		assert.True(t, domain.HasCode(err, domain.CodeValidation))
	})

	t.Run("not multipart", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		r.Header.Set("Content-Type", "application/json")
		_, err := FormFile(httptest.NewRecorder(), r, 1024)
		assert.True(t, domain.HasCode(err, domain.CodeValidation))
	})
}

// --- Health Tests ---

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	HealthHandler(fakePinger{})(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = httptest.NewRecorder()
	HealthHandler(fakePinger{err: assert.AnError})(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unhealthy")
}

// --- Recovery Middleware Tests ---

func TestRecovery(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		logger := noopLogger()
		handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("something went wrong")
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		// Should not panic
		assert.NotPanics(t, func() {
			handler.ServeHTTP(w, r)
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	})

	t.Run("passes through without panic", func(t *testing.T) {
		logger := noopLogger()
		handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"ok":true}`))
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

// --- responseWriter Tests ---

func TestResponseWriter_CapturesStatus(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, status: 200}

	rw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, 404, rw.status)
	assert.Equal(t, 404, w.Code)
}

// helper

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
