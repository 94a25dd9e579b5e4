// Package auth provides the identity provider behind the admin session gate.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/showreel/docstore"
)

// CollectionAdmins holds one document per admin, keyed by lowercased email.
const CollectionAdmins = "admins"

// MinPasswordLength is enforced by AddUser.
const MinPasswordLength = 8

// ErrInvalidCredentials is returned for every failed sign-in, whatever the
// cause.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Session is an authenticated admin.
type Session struct {
	Email    string
	IssuedAt time.Time
}

// Provider signs admins in and out.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, s Session) error
}

// Accounts is the storage used by LocalProvider.
type Accounts interface {
	Get(ctx context.Context, collection, id string) (docstore.Document, error)
	Set(ctx context.Context, collection, id string, fields map[string]any) error
}

// LocalProvider checks bcrypt password hashes kept in the document store.
type LocalProvider struct {
	accounts Accounts
	now      func() time.Time
	cost     int
	// dummy is compared against when the account does not exist so unknown
	// and known emails take the same time.
	dummy []byte
}

// NewLocalProvider returns a provider backed by accounts.
func NewLocalProvider(accounts Accounts) *LocalProvider {
	return newLocalProvider(accounts, bcrypt.DefaultCost)
}

func newLocalProvider(accounts Accounts, cost int) *LocalProvider {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("showreel-placeholder"), cost)
	return &LocalProvider{
		accounts: accounts,
		now:      time.Now,
		cost:     cost,
		dummy:    dummy,
	}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignIn verifies email and password.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	hash := p.dummy
	found := false
	doc, err := p.accounts.Get(ctx, CollectionAdmins, email)
	switch {
	case err == nil:
		if h, ok := doc.Fields["passwordHash"].(string); ok && h != "" {
			hash = []byte(h)
			found = true
		}
	case !errors.Is(err, docstore.ErrNotFound):
		return Session{}, fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !found {
		return Session{}, ErrInvalidCredentials
	}
	return Session{Email: email, IssuedAt: p.now()}, nil
}

// SignOut is a no-op for cookie sessions; the gate clears the cookie.
func (p *LocalProvider) SignOut(context.Context, Session) error {
	return nil
}

// AddUser creates or replaces the admin account for email.
func (p *LocalProvider) AddUser(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", email)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return p.accounts.Set(ctx, CollectionAdmins, email, map[string]any{
		"email":        email,
		"passwordHash": string(hash),
		"createdAt":    p.now().UTC().Format(time.RFC3339),
	})
}
