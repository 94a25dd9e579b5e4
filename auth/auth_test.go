package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/showreel/docstore"
)

func newTestProvider(t *testing.T) *LocalProvider {
	t.Helper()
	s, err := docstore.Open(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return newLocalProvider(s, bcrypt.MinCost)
}

func TestSignIn(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	require.NoError(t, p.AddUser(ctx, "Admin@Example.com ", "correct-horse"))

	s, err := p.SignIn(ctx, "admin@example.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", s.Email)
	require.False(t, s.IssuedAt.IsZero())

	_, err = p.SignIn(ctx, "ADMIN@example.com", "correct-horse")
	require.NoError(t, err)
}

func TestSignInFailuresAreIndistinguishable(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	require.NoError(t, p.AddUser(ctx, "admin@example.com", "correct-horse"))

	cases := []struct{ email, password string }{
		{"admin@example.com", "wrong-password"},
		{"nobody@example.com", "correct-horse"},
		{"", "correct-horse"},
		{"admin@example.com", ""},
	}
	for _, c := range cases {
		_, err := p.SignIn(ctx, c.email, c.password)
		require.ErrorIs(t, err, ErrInvalidCredentials, "%s/%s", c.email, c.password)
		require.Equal(t, ErrInvalidCredentials.Error(), err.Error())
	}
}

func TestAddUserValidation(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	require.Error(t, p.AddUser(ctx, "not-an-email", "correct-horse"))
	require.Error(t, p.AddUser(ctx, "admin@example.com", "short"))
}

func TestAddUserReplacesPassword(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	require.NoError(t, p.AddUser(ctx, "admin@example.com", "first-password"))
	require.NoError(t, p.AddUser(ctx, "admin@example.com", "second-password"))

	_, err := p.SignIn(ctx, "admin@example.com", "first-password")
	require.True(t, errors.Is(err, ErrInvalidCredentials))
	_, err = p.SignIn(ctx, "admin@example.com", "second-password")
	require.NoError(t, err)
}

func TestSignOut(t *testing.T) {
	p := newTestProvider(t)
	require.NoError(t, p.SignOut(context.Background(), Session{Email: "admin@example.com"}))
}
