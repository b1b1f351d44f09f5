package guard

import (
	"context"
	"time"

	"github.com/warcamp/platform/internal/domain"
	"github.com/warcamp/platform/internal/repository"
)

const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// Lockout blocks logins after repeated failures, counted from login_attempts.
type Lockout struct {
	attempts repository.LoginAttemptRepository
	now      func() time.Time
}

// NewLockout creates a lockout guard.
func NewLockout(attempts repository.LoginAttemptRepository) *Lockout {
	return &Lockout{attempts: attempts, now: time.Now}
}

// Record inserts a login attempt row. Failures to record are ignored.
func (l *Lockout) Record(ctx context.Context, db repository.DBTX, login, ip string, success bool) {
	_ = l.attempts.Record(ctx, db, domain.LoginAttempt{
		Login:     login,
		IPAddress: ip,
		Success:   success,
		CreatedAt: l.now(),
	})
}

// CheckLocked returns ErrAccountLocked if the login has >= MaxAttempts failed
// attempts within the lockout window.
func (l *Lockout) CheckLocked(ctx context.Context, db repository.DBTX, login string) error {
	count, err := l.attempts.CountFailures(ctx, db, login, l.now().Add(-LockoutWindow))
	if err != nil {
		return nil // store errors never lock an account
	}
	if count >= MaxAttempts {
		return domain.ErrAccountLocked("too many failed login attempts, try again later")
	}
	return nil
}
