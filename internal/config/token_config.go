package config

import (
	"os"
	"strings"
	"time"
)

type TokenConfig interface {
	GetTokenAlgorithm() string
	GetTokenIssuer() string
	GetTokenSecret() string
	GetTokenPrivateKeyPEM() ([]byte, error)
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

type tokenSettings struct {
	Algorithm  string        `koanf:"algorithm"`
	Issuer     string        `koanf:"issuer"`
	AccessTTL  time.Duration `koanf:"access_ttl"`
	RefreshTTL time.Duration `koanf:"refresh_ttl"`
}

func (c *mainConfig) GetTokenAlgorithm() string {
	return strings.ToUpper(c.Token.Algorithm)
}

func (c *mainConfig) GetTokenIssuer() string {
	return c.Token.Issuer
}

// GetTokenSecret returns the HMAC signing key from AUTH_TOKEN_SECRET
func (c *mainConfig) GetTokenSecret() string {
	return c.secrets.tokenSecret
}

// GetTokenPrivateKeyPEM reads the key pair file named by AUTH_TOKEN_PRIVATE_KEY_FILE, nil when unset
func (c *mainConfig) GetTokenPrivateKeyPEM() ([]byte, error) {
	if c.secrets.privateKeyFile == "" {
		return nil, nil
	}
	return os.ReadFile(c.secrets.privateKeyFile)
}

func (c *mainConfig) GetAccessTokenTTL() time.Duration {
	return c.Token.AccessTTL
}

func (c *mainConfig) GetRefreshTokenTTL() time.Duration {
	return c.Token.RefreshTTL
}

func isHMAC(algorithm string) bool {
	return strings.HasPrefix(strings.ToUpper(algorithm), "HS")
}
