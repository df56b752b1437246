package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Role is the enumerated capability level of a principal
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the principal being authenticated. It is never physically deleted,
// deactivation sets DeactivatedAt.
type User struct {
	ID            string     `json:"id"`                    // Stable unique identifier
	Email         string     `json:"email"`                 // Login identifier, normalised to lower case
	PasswordHash  string     `json:"-"`                     // Secret digest - never serialize
	Name          string     `json:"name"`                  // Display name
	Role          Role       `json:"role"`                  // Capability level
	BirthDate     string     `json:"birthDate,omitempty"`   // YYYY-MM-DD
	Gender        string     `json:"gender,omitempty"`      // MALE, FEMALE or OTHER
	Address       string     `json:"address,omitempty"`     // Postal address
	PhoneNumber   string     `json:"phoneNumber,omitempty"` // Contact number
	CreatedAt     time.Time  `json:"createdAt"`             // Signup time
	UpdatedAt     time.Time  `json:"updatedAt"`             // Last profile or secret change
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}

// Active reports whether the principal may still authenticate
func (u *User) Active() bool {
	return u.DeactivatedAt == nil
}

// Profile is the public view of a principal, it never carries the digest
type Profile struct {
	ID          string    `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	BirthDate   string    `json:"birthDate,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Address     string    `json:"address,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		BirthDate:   u.BirthDate,
		Gender:      u.Gender,
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
	}
}

// NormalizeEmail trims and lower-cases an identifier so lookups are case insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const (
	minPasswordLength = 8
	maxPasswordLength = 50
	// bcrypt rejects longer secrets
	maxPasswordBytes = 72
)

// ValidatePasswordStrength checks if password meets security requirements:
// - Between 8 and 50 characters long, at most 72 bytes
// - Contains uppercase and lowercase letters
// - Contains at least one number and one special character
func ValidatePasswordStrength(password string) error {
	length := len([]rune(password))
	if length < minPasswordLength || length > maxPasswordLength {
		return fmt.Errorf("password must be between %d and %d characters long", minPasswordLength, maxPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("password must not exceed %d bytes", maxPasswordBytes)
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}
	if !hasSpecial {
		return fmt.Errorf("password must contain at least one special character")
	}

	return nil
}
