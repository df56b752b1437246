package auth

import (
	"net/mail"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/users"
)

const (
	maxNameLength   = 100
	birthDateLayout = "2006-01-02"
)

var validGenders = map[string]bool{
	"MALE":   true,
	"FEMALE": true,
	"OTHER":  true,
}

// fieldErrors collects per-field messages, first message per field wins
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, ok := f[field]; !ok {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.WithDetails(apperrors.ErrValidation, f)
}

// ValidateEmail checks an identifier is a bare address, e.g. john@example.com
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.WithDetails(apperrors.ErrValidation, map[string]string{"email": "email is required"})
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return apperrors.WithDetails(apperrors.ErrValidation, map[string]string{"email": "invalid email format"})
	}
	return nil
}

// Validate checks field formats. Secret confirmation is checked by the service
// so that a mismatch reports ErrSecretMismatch rather than a validation error.
func (r *SignupRequest) Validate() error {
	errs := fieldErrors{}

	if err := ValidateEmail(r.Email); err != nil {
		for k, v := range apperrors.Details(err) {
			errs.add(k, v)
		}
	}

	if err := users.ValidatePasswordStrength(r.Password); err != nil {
		errs.add("password", err.Error())
	}

	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		errs.add("name", "name is required")
	case len([]rune(name)) > maxNameLength:
		errs.add("name", "name is too long")
	}

	if r.BirthDate != "" {
		if _, err := time.Parse(birthDateLayout, r.BirthDate); err != nil {
			errs.add("birthDate", "birthDate must be YYYY-MM-DD")
		}
	}

	if r.Gender != "" && !validGenders[strings.ToUpper(r.Gender)] {
		errs.add("gender", "gender must be MALE, FEMALE or OTHER")
	}

	return errs.err()
}

func (r *LoginRequest) Validate() error {
	errs := fieldErrors{}
	if strings.TrimSpace(r.Email) == "" {
		errs.add("email", "email is required")
	}
	if r.Password == "" {
		errs.add("password", "password is required")
	}
	return errs.err()
}

func (r *RefreshRequest) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return apperrors.WithDetails(apperrors.ErrValidation, map[string]string{"refreshToken": "refreshToken is required"})
	}
	return nil
}

func (r *ChangeSecretRequest) Validate() error {
	errs := fieldErrors{}
	if r.CurrentPassword == "" {
		errs.add("currentPassword", "currentPassword is required")
	}
	if err := users.ValidatePasswordStrength(r.NewPassword); err != nil {
		errs.add("newPassword", err.Error())
	}
	return errs.err()
}
