package server

import (
	"testing"

	"github.com/jrsteele09/go-session-auth/users"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for range 20 {
		password, err := generatePassword()
		require.NoError(t, err)
		require.NoError(t, users.ValidatePasswordStrength(password))
		require.False(t, seen[password])
		seen[password] = true
	}
}
