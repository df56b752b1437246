package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is an interface for signing and verifying JWT tokens
type Signer interface {
	// Sign creates a signed compact JWT from claims
	Sign(claims jwt.Claims) (string, error)

	// GetVerificationKey returns the key used to verify a parsed token's signature
	GetVerificationKey(token *jwt.Token) (any, error)

	// GetSigningMethod returns the JWT signing method used
	GetSigningMethod() jwt.SigningMethod
}

// HMACSigner implements Signer using a symmetric HMAC secret
type HMACSigner struct {
	secret []byte
	method *jwt.SigningMethodHMAC
}

var _ Signer = (*HMACSigner)(nil)

// NewHMACSigner creates a new HMAC signer for HS256, HS384 or HS512
func NewHMACSigner(secret string, algorithm string) (*HMACSigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("[NewHMACSigner] secret is required")
	}

	var method *jwt.SigningMethodHMAC
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512", "":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("[NewHMACSigner] unsupported HMAC algorithm: %s", algorithm)
	}

	return &HMACSigner{
		secret: []byte(secret),
		method: method,
	}, nil
}

func (h *HMACSigner) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(h.method, claims)
	signedToken, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token with HMAC: %w", err)
	}
	return signedToken, nil
}

func (h *HMACSigner) GetVerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) GetSigningMethod() jwt.SigningMethod {
	return h.method
}

// KeyPairSigner implements Signer using RSA or ECDSA
type KeyPairSigner struct {
	keyPair *KeyPair
}

var _ Signer = (*KeyPairSigner)(nil)

// NewKeyPairSigner creates a new key pair signer with the given key pair
func NewKeyPairSigner(keyPair *KeyPair) *KeyPairSigner {
	return &KeyPairSigner{
		keyPair: keyPair,
	}
}

func (a *KeyPairSigner) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(a.keyPair.GetSigningMethod(), claims)
	if a.keyPair.KeyID != "" {
		token.Header["kid"] = a.keyPair.KeyID
	}

	signedToken, err := token.SignedString(a.keyPair.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token with asymmetric key: %w", err)
	}
	return signedToken, nil
}

func (a *KeyPairSigner) GetVerificationKey(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
		return a.keyPair.PublicKey, nil
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}

func (a *KeyPairSigner) GetSigningMethod() jwt.SigningMethod {
	return a.keyPair.GetSigningMethod()
}

// NewSigner builds the signer for algorithm. HMAC algorithms use secret,
// RSA and ECDSA algorithms load the PEM encoded private key.
func NewSigner(algorithm, secret, privateKeyPEM string) (Signer, error) {
	switch algorithm {
	case "HS256", "HS384", "HS512", "":
		return NewHMACSigner(secret, algorithm)

	case "RS256", "RS384", "RS512", "ES256", "ES384", "ES512":
		if privateKeyPEM == "" {
			return nil, fmt.Errorf("[NewSigner] %s requires a private key", algorithm)
		}
		keyPair, err := LoadKeyPairFromPEM("", privateKeyPEM, algorithm)
		if err != nil {
			return nil, fmt.Errorf("[NewSigner] failed to load key pair: %w", err)
		}
		return NewKeyPairSigner(keyPair), nil

	default:
		return nil, fmt.Errorf("[NewSigner] unsupported signing algorithm: %s", algorithm)
	}
}
