package token

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
)

// Codec encodes and decodes signed session credentials.
// It holds no state beyond the signing key and the clock.
type Codec struct {
	signer  Signer
	issuer  string
	nowFunc func() time.Time
	idFunc  func() string
	parser  *jwt.Parser
}

type CodecOption func(*Codec)

// WithNowFunc overrides the clock used for iat, exp and expiry checks
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

// WithIDFunc overrides the jti source. A constant source makes encoding deterministic.
func WithIDFunc(id func() string) CodecOption {
	return func(c *Codec) {
		c.idFunc = id
	}
}

// WithIssuer stamps iss on encode and requires it on decode
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) {
		c.issuer = issuer
	}
}

func NewCodec(signer Signer, options ...CodecOption) (*Codec, error) {
	if signer == nil {
		return nil, errors.New("[NewCodec] signer is required")
	}

	c := &Codec{
		signer:  signer,
		nowFunc: time.Now,
		idFunc:  func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		opt(c)
	}

	// Claims are validated by Decode so that expiry is checked against the
	// injected clock and expired claims can still be returned.
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	return c, nil
}

// Encode mints a credential for subject with iat = now and exp = now + ttl, both in whole seconds.
// Each credential carries a jti from the codec's id source, a random uuid unless
// WithIDFunc is given, so output is deterministic only with a fixed clock, key and id source.
func (c *Codec) Encode(subject, role string, tokenType Type, ttl time.Duration) (string, error) {
	signed, _, err := c.Mint(subject, role, tokenType, ttl)
	return signed, err
}

// Mint is Encode that also returns the claims it signed, so callers can
// persist the exact expiry without decoding their own credential.
func (c *Codec) Mint(subject, role string, tokenType Type, ttl time.Duration) (string, *Claims, error) {
	if subject == "" {
		return "", nil, errors.New("[Mint] subject is required")
	}
	if !tokenType.Valid() {
		return "", nil, fmt.Errorf("[Mint] invalid token type %q", tokenType)
	}

	issuedAt := c.nowFunc().Truncate(time.Second)
	claims := &Claims{
		Role: role,
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl.Truncate(time.Second))),
			ID:        c.idFunc(),
		},
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", nil, apperrors.Wrapf(err, "[Mint] sign %s token", tokenType)
	}
	return signed, claims, nil
}

// Decode verifies the signature before anything else. Unverifiable or structurally
// invalid credentials fail with ErrMalformedToken and no claims. Authentic credentials
// past their expiry fail with ErrExpiredToken and the claims are still returned.
func (c *Codec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(raw, claims, c.signer.GetVerificationKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedToken, err)
	}
	if !parsed.Valid {
		return nil, apperrors.ErrMalformedToken
	}

	if err := c.checkStructure(claims); err != nil {
		return nil, err
	}

	if c.nowFunc().After(claims.ExpiresAt.Time) {
		return claims, apperrors.ErrExpiredToken
	}
	return claims, nil
}

func (c *Codec) checkStructure(claims *Claims) error {
	switch {
	case claims.Subject == "":
		return fmt.Errorf("%w: missing sub", apperrors.ErrMalformedToken)
	case !claims.Type.Valid():
		return fmt.Errorf("%w: invalid type %q", apperrors.ErrMalformedToken, claims.Type)
	case claims.ExpiresAt == nil:
		return fmt.Errorf("%w: missing exp", apperrors.ErrMalformedToken)
	case claims.IssuedAt == nil:
		return fmt.Errorf("%w: missing iat", apperrors.ErrMalformedToken)
	case c.issuer != "" && claims.Issuer != c.issuer:
		return fmt.Errorf("%w: unexpected issuer", apperrors.ErrMalformedToken)
	}
	return nil
}

// RemainingSeconds returns floor((exp - now) / 1s). Negative means expired.
func (c *Codec) RemainingSeconds(claims *Claims) int64 {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return int64(math.Floor(claims.ExpiresAt.Time.Sub(c.nowFunc()).Seconds()))
}

// Now returns the codec clock's current time
func (c *Codec) Now() time.Time {
	return c.nowFunc()
}
