package auth

import (
	"time"

	"github.com/jrsteele09/go-session-auth/users"
)

// SignupRequest registers a new principal
type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	Name            string `json:"name"`
	BirthDate       string `json:"birthDate,omitempty"`
	Gender          string `json:"gender,omitempty"`
	Address         string `json:"address,omitempty"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangeSecretRequest replaces the secret of the authenticated principal
type ChangeSecretRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	NewPasswordConfirm string `json:"newPasswordConfirm"`
}

// TokenPair is a freshly minted access and refresh credential
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"` // Access credential lifetime in seconds
}

// LoginResult is returned by Login. The profile fields sit next to the tokens.
type LoginResult struct {
	TokenPair
	*users.Profile
	LoginAt time.Time `json:"loginAt"`
}
