package domain

import (
	"fmt"
	"regexp"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	inviteCodeRegex = regexp.MustCompile(`^\d{6,10}$`)
)

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

// ValidateInviteCode checks the referral code shape before hitting the store.
func ValidateInviteCode(code string) error {
	if !inviteCodeRegex.MatchString(code) {
		return fmt.Errorf("invalid invite code")
	}
	return nil
}

// ValidatePositiveAmount checks that an amount is positive.
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}
