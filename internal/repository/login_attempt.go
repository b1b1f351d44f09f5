package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/warcamp/platform/internal/domain"
)

type loginAttemptRepo struct{}

// NewLoginAttemptRepository returns a pgx-backed LoginAttemptRepository.
func NewLoginAttemptRepository() LoginAttemptRepository {
	return &loginAttemptRepo{}
}

func (r *loginAttemptRepo) Record(ctx context.Context, db DBTX, a domain.LoginAttempt) error {
	_, err := db.Exec(ctx, `
		INSERT INTO login_attempts (login, ip_address, success)
		VALUES ($1, $2, $3)`,
		strings.ToLower(a.Login), a.IPAddress, a.Success)
	if err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

func (r *loginAttemptRepo) CountFailures(ctx context.Context, db DBTX, login string, since time.Time) (int, error) {
	var n int
	err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts
		WHERE login = $1 AND success = false AND created_at >= $2`,
		strings.ToLower(login), since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count login failures: %w", err)
	}
	return n, nil
}
