package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		{"valid email", "user@example.com", false, ""},
		{"valid email with dots", "first.last@example.co.uk", false, ""},
		{"valid email with plus", "user+tag@example.com", false, ""},
		{"empty string", "", true, "email is required"},
		{"no at sign", "userexample.com", true, "invalid email format"},
		{"no domain", "user@", true, "invalid email format"},
		{"no tld", "user@example", true, "invalid email format"},
		{"spaces", "user @example.com", true, "invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name    string
		login   string
		wantErr bool
	}{
		{"simple", "captain", false},
		{"with digits and separators", "red_baron-01.x", false},
		{"minimum length", "abc", false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", "abcdefghijklmnopqrstuvwxyz0123456", true},
		{"space", "the captain", true},
		{"unicode", "kapitän", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogin(tt.login)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("12345678"))
	err := ValidatePassword("1234567")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8")
}

func TestValidateCampaignFields(t *testing.T) {
	assert.NoError(t, ValidateCampaignName("Siege of Mons"))
	assert.Error(t, ValidateCampaignName("   "))
	assert.NoError(t, ValidateWarbandLimit(1))
	assert.Error(t, ValidateWarbandLimit(0))
}

// --- AppError Tests ---

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := ErrNotFound("warband", "abc-123")
		assert.Equal(t, "NOT_FOUND: warband abc-123 not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrInternal("database error", cause)
		assert.Contains(t, err.Error(), "INTERNAL_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrInternal("wrapped", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("plan game: %w", ErrConflict("warband busy"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeConflict, appErr.Code)
	assert.True(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(wrapped, CodeNotFound))

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorFactories(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"ErrNotFound", ErrNotFound("game", "123"), "NOT_FOUND", 404},
		{"ErrConflict", ErrConflict("already exists"), "CONFLICT", 400},
		{"ErrValidation", ErrValidation("bad input"), "VALIDATION_ERROR", 400},
		{"ErrInvalidJSON", ErrInvalidJSON(errors.New("eof")), "INVALID_JSON", 400},
		{"ErrNameMismatch", ErrNameMismatch("Alpha", "Beta"), "NAME_MISMATCH", 400},
		{"ErrFactionMismatch", ErrFactionMismatch("X", "Y"), "FACTION_MISMATCH", 400},
		{"ErrUnauthorized", ErrUnauthorized("no session"), "UNAUTHORIZED", 401},
		{"ErrForbidden", ErrForbidden("not allowed"), "FORBIDDEN", 403},
		{"ErrAccountLocked", ErrAccountLocked("too many attempts"), "ACCOUNT_LOCKED", 429},
		{"ErrRateLimited", ErrRateLimited("slow down"), "RATE_LIMITED", 429},
		{"ErrInternal", ErrInternal("oops", nil), "INTERNAL_ERROR", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

// --- Status Tests ---

func TestGameStatus(t *testing.T) {
	assert.True(t, GamePlanned.InProgress())
	assert.True(t, GameActive.InProgress())
	assert.False(t, GamePendingApproval.InProgress())
	assert.False(t, GameFinished.InProgress())
	assert.True(t, GamePendingApproval.Valid())
	assert.False(t, GameStatus("paused").Valid())
}

func TestWarbandStatusValid(t *testing.T) {
	for _, s := range []WarbandStatus{WarbandActive, WarbandChecking, WarbandNeedsUpdate, WarbandInactive, WarbandDeleted} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, WarbandStatus("retired").Valid())
}

func TestSameScope(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	assert.True(t, SameScope(nil, nil))
	assert.True(t, SameScope(nil, &a))
	assert.True(t, SameScope(&a, &a))
	assert.False(t, SameScope(&a, &b))
	assert.False(t, SameScope(&a, nil))
}

func TestGameNumberFor(t *testing.T) {
	w1, w2 := uuid.New(), uuid.New()
	g := &Game{Warband1ID: w1, Warband2ID: w2, Warband1GameNumber: 3, Warband2GameNumber: 7}

	assert.Equal(t, 3, g.GameNumberFor(w1))
	assert.Equal(t, 7, g.GameNumberFor(w2))
	assert.Equal(t, 0, g.GameNumberFor(uuid.New()))
	assert.True(t, g.Involves(w2))
}

func TestCampaignUpdateApply(t *testing.T) {
	name := "Winter Offensive"
	limit := 2
	c := &Campaign{Name: "old", Description: "keep", WarbandLimit: 1}

	CampaignUpdate{Name: &name, WarbandLimit: &limit}.Apply(c)

	assert.Equal(t, "Winter Offensive", c.Name)
	assert.Equal(t, "keep", c.Description)
	assert.Equal(t, 2, c.WarbandLimit)
}

// --- Event Tests ---

func TestNewGameEvent(t *testing.T) {
	g := &Game{ID: uuid.New(), Status: GameFinished, VP1: 3}

	draft := NewGameEvent(EventGameFinished, g)

	assert.NotEqual(t, uuid.Nil, draft.EventID)
	assert.Equal(t, AggregateGame, draft.AggregateType)
	assert.Equal(t, g.ID.String(), draft.AggregateID)
	assert.Equal(t, EventGameFinished, draft.EventType)
	assert.False(t, draft.OccurredAt.IsZero())

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(draft.Payload, &payload))
	assert.Equal(t, "finished", payload["status"])
	assert.Equal(t, float64(3), payload["vp_1"])
}

func TestNewRosterSubmittedEvent(t *testing.T) {
	r := &Roster{ID: uuid.New(), WarbandID: uuid.New(), Ducats: 120, FileContent: `{"secret":true}`}

	draft := NewRosterSubmittedEvent(r)

	assert.Equal(t, AggregateWarband, draft.AggregateType)
	assert.Equal(t, r.WarbandID.String(), draft.AggregateID)
	assert.NotContains(t, string(draft.Payload), "secret")
	assert.Contains(t, string(draft.Payload), `"ducats":120`)
}
