// Package auth supplies the signed-in user and the id token attached to
// backend requests.
package auth

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// refreshBefore is how long before expiry a cached token is re-issued.
const refreshBefore = time.Minute

// User is the signed-in identity.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Provider exposes the current user and a bearer token for them.
type Provider interface {
	CurrentUser() (User, bool)
	IDToken(ctx context.Context) (string, error)
}

// Session is a Provider backed by a JWTManager. Tokens are cached until
// shortly before they expire.
type Session struct {
	jwt *JWTManager

	mu      sync.Mutex
	user    *User
	token   string
	expires time.Time
}

// NewSession creates a signed-out session.
func NewSession(m *JWTManager) *Session {
	return &Session{jwt: m}
}

// SignIn makes user the current user.
func (s *Session) SignIn(user User) error {
	if user.ID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.user = &u
	s.token = ""
	return nil
}

// SignOut forgets the current user and token.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}

func (s *Session) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IDToken returns a valid token for the current user, issuing a new one when
// the cached token is missing or about to expire.
func (s *Session) IDToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return "", apperrors.Unauthorized("no user signed in")
	}
	if s.token != "" && s.jwt.now().Add(refreshBefore).Before(s.expires) {
		return s.token, nil
	}

	token, expires, err := s.jwt.GenerateIDToken(*s.user)
	if err != nil {
		return "", err
	}
	s.token = token
	s.expires = expires
	return token, nil
}

// Anonymous is a Provider with no user.
type Anonymous struct{}

func (Anonymous) CurrentUser() (User, bool) { return User{}, false }

func (Anonymous) IDToken(context.Context) (string, error) {
	return "", apperrors.Unauthorized("no user signed in")
}
