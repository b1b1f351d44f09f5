package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/repository/repotest"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		result := rl.Check("test-key")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	c := newClock()
	rl.now = c.now

	rl.Check("test-key")
	c.advance(10 * time.Second)
	rl.Check("test-key")
	result := rl.Check("test-key")

	assert.False(t, result.Allowed)
	assert.Contains(t, result.Reason, "rate limit exceeded")
	assert.Equal(t, 50*time.Second, result.RetryAfter)
}

func TestRateLimiter_ZeroLimitRejects(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)

	result := rl.Check("1.2.3.4")

	assert.False(t, result.Allowed)
	assert.Equal(t, time.Minute, result.RetryAfter)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	c := newClock()
	rl.now = c.now

	require.True(t, rl.Check("k").Allowed)
	require.False(t, rl.Check("k").Allowed)

	c.advance(time.Minute + time.Second)
	assert.True(t, rl.Check("k").Allowed)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	r1 := rl.Check("key-a")
	r2 := rl.Check("key-b")

	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	c := newClock()
	rl.now = c.now

	rl.Check("old")
	c.advance(2 * time.Minute)
	rl.Check("fresh")

	rl.Sweep()
	assert.Equal(t, 1, rl.Len())
}

func TestLockout_LocksAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	repos := repotest.New().Set()
	l := NewLockout(repos.LoginAttempts)
	c := newClock()
	l.now = c.now

	for i := 0; i < MaxAttempts-1; i++ {
		l.Record(ctx, nil, "Grimhilde", "10.0.0.1", false)
	}
	require.NoError(t, l.CheckLocked(ctx, nil, "grimhilde"))

	l.Record(ctx, nil, "grimhilde", "10.0.0.1", false)
	err := l.CheckLocked(ctx, nil, "GRIMHILDE")
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeAccountLocked))
}

func TestLockout_SuccessesDoNotCount(t *testing.T) {
	ctx := context.Background()
	repos := repotest.New().Set()
	l := NewLockout(repos.LoginAttempts)

	for i := 0; i < MaxAttempts*2; i++ {
		l.Record(ctx, nil, "ok", "", true)
	}
	assert.NoError(t, l.CheckLocked(ctx, nil, "ok"))
}

func TestLockout_WindowExpires(t *testing.T) {
	ctx := context.Background()
	repos := repotest.New().Set()
	l := NewLockout(repos.LoginAttempts)
	c := newClock()
	l.now = c.now

	for i := 0; i < MaxAttempts; i++ {
		l.Record(ctx, nil, "late", "", false)
	}
	require.Error(t, l.CheckLocked(ctx, nil, "late"))

	c.advance(LockoutWindow + time.Minute)
	assert.NoError(t, l.CheckLocked(ctx, nil, "late"))
}
