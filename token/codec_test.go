package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/token"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "a-very-long-test-secret-for-hs512-signing"
	testSubject = "john.doe@example.com"
	testRole    = "USER"
)

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time         { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func fixedID(id string) func() string {
	return func() string { return id }
}

func mustSigner(t *testing.T, alg string) token.Signer {
	t.Helper()
	s, err := token.NewHMACSigner(testSecret, alg)
	require.NoError(t, err)
	return s
}

func setupCodec(t *testing.T, clock *testClock, options ...token.CodecOption) *token.Codec {
	t.Helper()
	options = append([]token.CodecOption{token.WithNowFunc(clock.Now)}, options...)
	codec, err := token.NewCodec(mustSigner(t, "HS512"), options...)
	require.NoError(t, err)
	return codec
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	clock := newTestClock()
	codec := setupCodec(t, clock)

	raw, err := codec.Encode(testSubject, testRole, token.TypeAccess, time.Hour)
	require.NoError(t, err)
	require.Len(t, strings.Split(raw, "."), 3)

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, testSubject, claims.Identifier())
	require.Equal(t, testRole, claims.Role)
	require.Equal(t, token.TypeAccess, claims.Type)
	require.Equal(t, clock.Now().Unix(), claims.IssuedAt.Unix())
	require.Equal(t, clock.Now().Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	require.NotEmpty(t, claims.ID)
	require.EqualValues(t, 3600, codec.RemainingSeconds(claims))
}

func TestEncode_UsesHS512ByDefault(t *testing.T) {
	codec := setupCodec(t, newTestClock())
	raw, err := codec.Encode(testSubject, testRole, token.TypeRefresh, time.Hour)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(raw, &token.Claims{})
	require.NoError(t, err)
	require.Equal(t, "HS512", parsed.Method.Alg())
}

func TestEncode_DeterministicWithFixedClockAndID(t *testing.T) {
	clock := newTestClock()
	codec := setupCodec(t, clock, token.WithIDFunc(fixedID("jti-1")))

	first, err := codec.Encode(testSubject, testRole, token.TypeRefresh, time.Hour)
	require.NoError(t, err)
	second, err := codec.Encode(testSubject, testRole, token.TypeRefresh, time.Hour)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEncode_SameSecondTokensDiffer(t *testing.T) {
	codec := setupCodec(t, newTestClock())

	first, err := codec.Encode(testSubject, testRole, token.TypeRefresh, time.Hour)
	require.NoError(t, err)
	second, err := codec.Encode(testSubject, testRole, token.TypeRefresh, time.Hour)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestEncode_InvalidInput(t *testing.T) {
	codec := setupCodec(t, newTestClock())

	_, err := codec.Encode("", testRole, token.TypeAccess, time.Hour)
	require.Error(t, err)

	_, err = codec.Encode(testSubject, testRole, token.Type("id"), time.Hour)
	require.Error(t, err)
}

func TestMint_ReturnsSignedClaims(t *testing.T) {
	clock := newTestClock()
	codec := setupCodec(t, clock, token.WithIDFunc(fixedID("jti-1")))

	raw, minted, err := codec.Mint(testSubject, testRole, token.TypeRefresh, 7*24*time.Hour)
	require.NoError(t, err)

	decoded, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, minted.ExpiresAt.Unix(), decoded.ExpiresAt.Unix())
	require.Equal(t, "jti-1", decoded.ID)
	require.Equal(t, clock.Now().Add(7*24*time.Hour).Unix(), minted.ExpiresAt.Unix())
}

func TestDecode_ExpiredReturnsClaims(t *testing.T) {
	clock := newTestClock()
	codec := setupCodec(t, clock)

	raw, err := codec.Encode(testSubject, testRole, token.TypeAccess, 3600*time.Second)
	require.NoError(t, err)

	// exp itself is still valid, one second past is not
	clock.Advance(3600 * time.Second)
	_, err = codec.Decode(raw)
	require.NoError(t, err)

	clock.Advance(time.Second)
	claims, err := codec.Decode(raw)
	require.ErrorIs(t, err, apperrors.ErrExpiredToken)
	require.NotNil(t, claims)
	require.Equal(t, testSubject, claims.Subject)
	require.EqualValues(t, -1, codec.RemainingSeconds(claims))
}

func TestDecode_FlippedSignatureIsMalformed(t *testing.T) {
	clock := newTestClock()
	codec := setupCodec(t, clock)

	raw, err := codec.Encode(testSubject, testRole, token.TypeAccess, time.Hour)
	require.NoError(t, err)

	tampered := flipSignatureChar(raw)

	claims, err := codec.Decode(tampered)
	require.ErrorIs(t, err, apperrors.ErrMalformedToken)
	require.Nil(t, claims)

	// regardless of exp
	clock.Advance(2 * time.Hour)
	claims, err = codec.Decode(tampered)
	require.ErrorIs(t, err, apperrors.ErrMalformedToken)
	require.Nil(t, claims)
}

func TestDecode_TamperedClaimsIsMalformed(t *testing.T) {
	codec := setupCodec(t, newTestClock())
	raw, err := codec.Encode(testSubject, "USER", token.TypeAccess, time.Hour)
	require.NoError(t, err)

	other, err := codec.Encode(testSubject, "ADMIN", token.TypeAccess, time.Hour)
	require.NoError(t, err)

	// splice the ADMIN payload onto the USER signature
	rawParts := strings.Split(raw, ".")
	otherParts := strings.Split(other, ".")
	spliced := strings.Join([]string{rawParts[0], otherParts[1], rawParts[2]}, ".")

	_, err = codec.Decode(spliced)
	require.ErrorIs(t, err, apperrors.ErrMalformedToken)
}

func TestDecode_Garbage(t *testing.T) {
	codec := setupCodec(t, newTestClock())

	for _, raw := range []string{"", "abc", "a.b.c", "a.b", "....."} {
		claims, err := codec.Decode(raw)
		require.ErrorIs(t, err, apperrors.ErrMalformedToken, raw)
		require.Nil(t, claims)
	}
}

func TestDecode_WrongKeyIsMalformed(t *testing.T) {
	clock := newTestClock()
	codec := setupCodec(t, clock)

	otherSigner, err := token.NewHMACSigner("another-secret-entirely", "HS512")
	require.NoError(t, err)
	other, err := token.NewCodec(otherSigner, token.WithNowFunc(clock.Now))
	require.NoError(t, err)

	raw, err := other.Encode(testSubject, testRole, token.TypeAccess, time.Hour)
	require.NoError(t, err)

	_, err = codec.Decode(raw)
	require.ErrorIs(t, err, apperrors.ErrMalformedToken)
}

func TestDecode_RejectsOtherAlgorithms(t *testing.T) {
	clock := newTestClock()
	codec := setupCodec(t, clock)

	hs256, err := token.NewCodec(mustSigner(t, "HS256"), token.WithNowFunc(clock.Now))
	require.NoError(t, err)
	raw, err := hs256.Encode(testSubject, testRole, token.TypeAccess, time.Hour)
	require.NoError(t, err)

	_, err = codec.Decode(raw)
	require.ErrorIs(t, err, apperrors.ErrMalformedToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &token.Claims{
		Type: token.TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testSubject,
			IssuedAt:  jwt.NewNumericDate(clock.Now()),
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	})
	noneRaw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Decode(noneRaw)
	require.ErrorIs(t, err, apperrors.ErrMalformedToken)
}

func TestDecode_MissingTypeIsMalformed(t *testing.T) {
	clock := newTestClock()
	signer := mustSigner(t, "HS512")
	codec, err := token.NewCodec(signer, token.WithNowFunc(clock.Now))
	require.NoError(t, err)

	raw, err := signer.Sign(jwt.MapClaims{
		"sub": testSubject,
		"iat": clock.Now().Unix(),
		"exp": clock.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	claims, err := codec.Decode(raw)
	require.ErrorIs(t, err, apperrors.ErrMalformedToken)
	require.Nil(t, claims)
}

func TestDecode_IssuerMismatch(t *testing.T) {
	clock := newTestClock()
	issuing := setupCodec(t, clock, token.WithIssuer("other-issuer"))
	verifying := setupCodec(t, clock, token.WithIssuer("go-session-auth"))

	raw, err := issuing.Encode(testSubject, testRole, token.TypeAccess, time.Hour)
	require.NoError(t, err)

	_, err = verifying.Decode(raw)
	require.ErrorIs(t, err, apperrors.ErrMalformedToken)
}

func TestRemainingSeconds_Floors(t *testing.T) {
	clock := newTestClock()
	codec := setupCodec(t, clock)

	raw, err := codec.Encode(testSubject, testRole, token.TypeAccess, 10*time.Second)
	require.NoError(t, err)
	claims, err := codec.Decode(raw)
	require.NoError(t, err)

	clock.Advance(2500 * time.Millisecond)
	require.EqualValues(t, 7, codec.RemainingSeconds(claims))

	clock.Advance(8 * time.Second) // 0.5s past exp
	require.EqualValues(t, -1, codec.RemainingSeconds(claims))
}

func TestNewCodec_RequiresSigner(t *testing.T) {
	_, err := token.NewCodec(nil)
	require.Error(t, err)
}

func flipSignatureChar(raw string) string {
	parts := strings.Split(raw, ".")
	sig := []byte(parts[2])
	i := len(sig) / 2
	if sig[i] == 'A' {
		sig[i] = 'B'
	} else {
		sig[i] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}
