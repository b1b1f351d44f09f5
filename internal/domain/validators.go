package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	loginRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{3,32}$`)
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateLogin checks the account login format.
func ValidateLogin(login string) error {
	if login == "" {
		return fmt.Errorf("login is required")
	}
	if !loginRegex.MatchString(login) {
		return fmt.Errorf("login must be 3-32 letters, digits, '.', '_' or '-'")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// ValidateCampaignName checks a campaign name is present and reasonably short.
func ValidateCampaignName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("campaign name is required")
	}
	if len(name) > 200 {
		return fmt.Errorf("campaign name is too long")
	}
	return nil
}

// ValidateWarbandLimit checks the per-player warband cap of a campaign.
func ValidateWarbandLimit(limit int) error {
	if limit < 1 {
		return fmt.Errorf("warband limit must be at least 1, got %d", limit)
	}
	return nil
}
