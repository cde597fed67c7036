package account

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength   = 2
	MinSecretLength = 8
)

// NormalizeEmail trims and lower-cases an email address.
// All comparisons and lookups use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinNameLength {
		return newValidationError("name", "name must be at least %d characters", MinNameLength)
	}
	return nil
}

func validateEmail(email string) error {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return newValidationError("email", "email is required")
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return newValidationError("email", "invalid email address")
	}
	return nil
}

func validateSecret(secret string) error {
	if utf8.RuneCountInString(secret) < MinSecretLength {
		return newValidationError("secret", "secret must be at least %d characters", MinSecretLength)
	}
	return nil
}

// Validate checks a registration request.
func (in RegisterInput) Validate() error {
	if err := validateName(in.Name); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	return validateSecret(in.Secret)
}

// Validate checks a profile update request.
func (in ProfileInput) Validate() error {
	if err := validateName(in.Name); err != nil {
		return err
	}
	return validateEmail(in.Email)
}
