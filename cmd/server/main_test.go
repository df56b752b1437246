package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-session-auth/internal/config"
	"github.com/jrsteele09/go-session-auth/token"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateThenPurge_SQLite(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "a-very-long-test-secret-for-hs512-signing")
	t.Setenv("AUTH_DATABASE_DSN", "")
	dsn := "file:" + filepath.Join(t.TempDir(), "auth.db")

	out, err := execute(t, "migrate", "--app.env=TEST", "--storage.driver=sqlite", "--storage.dsn="+dsn)
	require.NoError(t, err)
	require.Contains(t, out, "Migrations completed successfully")

	out, err = execute(t, "purge", "--app.env=TEST", "--storage.driver=sqlite", "--storage.dsn="+dsn)
	require.NoError(t, err)
	require.Contains(t, out, "Purged 0 expired sessions")
}

func TestPurge_Memory(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "a-very-long-test-secret-for-hs512-signing")

	out, err := execute(t, "purge", "--app.env=TEST")
	require.NoError(t, err)
	require.Contains(t, out, "Purged 0 expired sessions")
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "")

	_, err := execute(t, "purge", "--app.env=TEST")
	require.Error(t, err)
}

func TestNewCodec(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "a-very-long-test-secret-for-hs512-signing")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--token.issuer=session-auth"}))
	cfg, err := config.Load(fs, "")
	require.NoError(t, err)

	codec, err := newCodec(cfg)
	require.NoError(t, err)

	raw, err := codec.Encode("john@example.com", "USER", token.TypeAccess, cfg.GetAccessTokenTTL())
	require.NoError(t, err)
	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "session-auth", claims.Issuer)
}
