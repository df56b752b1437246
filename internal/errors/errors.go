package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Authentication and session lifecycle errors
var (
	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateIdentity  = errors.New("identifier already registered")
	ErrSecretMismatch     = errors.New("password and confirmation do not match")

	// Token errors
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// Access errors
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")

	// General errors
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input value")
	ErrInternal   = errors.New("internal error")
)

// Descriptor is the HTTP shape of an error: status code, stable code and a client safe message.
type Descriptor struct {
	Status  int
	Code    string
	Message string
}

var descriptors = []struct {
	err        error
	descriptor Descriptor
}{
	{ErrInvalidCredentials, Descriptor{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}},
	{ErrDuplicateIdentity, Descriptor{http.StatusConflict, "DUPLICATE_EMAIL", "Email is already registered"}},
	{ErrSecretMismatch, Descriptor{http.StatusBadRequest, "PASSWORD_MISMATCH", "Password and confirmation do not match"}},
	{ErrMalformedToken, Descriptor{http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token"}},
	{ErrExpiredToken, Descriptor{http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired"}},
	{ErrWrongTokenType, Descriptor{http.StatusUnauthorized, "WRONG_TOKEN_TYPE", "Token type is not valid for this operation"}},
	{ErrSessionNotFound, Descriptor{http.StatusUnauthorized, "SESSION_NOT_FOUND", "Session not found, please log in again"}},
	{ErrSessionExpired, Descriptor{http.StatusUnauthorized, "SESSION_EXPIRED", "Session has expired, please log in again"}},
	{ErrUnauthorized, Descriptor{http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required"}},
	{ErrForbidden, Descriptor{http.StatusForbidden, "FORBIDDEN", "Access is denied"}},
	{ErrNotFound, Descriptor{http.StatusNotFound, "NOT_FOUND", "Resource not found"}},
	{ErrValidation, Descriptor{http.StatusBadRequest, "INVALID_INPUT_VALUE", "Invalid input value"}},
}

var internalDescriptor = Descriptor{http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred"}

// Describe maps err to its HTTP descriptor by walking the taxonomy in order.
// Anything outside the taxonomy is reported as an internal error.
func Describe(err error) Descriptor {
	for _, d := range descriptors {
		if errors.Is(err, d.err) {
			return d.descriptor
		}
	}
	return internalDescriptor
}

// detailedError carries field level details alongside a wrapped taxonomy error
type detailedError struct {
	err     error
	details map[string]string
}

func (d *detailedError) Error() string { return d.err.Error() }
func (d *detailedError) Unwrap() error { return d.err }

// WithDetails attaches details to err. A nil err stays nil.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}
	return &detailedError{err: err, details: details}
}

// Details returns the details attached anywhere in err's chain, or nil.
func Details(err error) map[string]string {
	var d *detailedError
	if errors.As(err, &d) {
		return d.details
	}
	return nil
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
