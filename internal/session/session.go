package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/daylight-community/daylight-go/internal/models"
)

var (
	// ErrNoRefreshToken indicates the session has no refresh token to renew with.
	ErrNoRefreshToken = errors.New("session has no refresh token")
	// ErrExpired indicates the refresh token was rejected and the session has been torn down.
	ErrExpired = errors.New("session expired")
)

// RefreshFunc exchanges a refresh token for a new access token.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

// TokenStore persists the bearer credential pair between process runs.
type TokenStore interface {
	Load() (models.SessionTokens, error)
	Save(tokens models.SessionTokens) error
	Clear() error
}

// Session owns the access/refresh token pair for the current user. All reads
// and writes go through one mutex so no caller ever observes a torn pair, and
// concurrent refresh attempts are coalesced into a single in-flight call.
type Session struct {
	mu     sync.RWMutex
	tokens models.SessionTokens

	store TokenStore
	group singleflight.Group
}

// New constructs a Session, restoring any persisted tokens from the store.
// A nil store yields an in-memory-only session.
func New(store TokenStore) (*Session, error) {
	s := &Session{store: store}
	if store != nil {
		tokens, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("load persisted tokens: %w", err)
		}
		s.tokens = tokens
	}
	return s, nil
}

// Tokens returns the current credential pair as one consistent snapshot.
func (s *Session) Tokens() models.SessionTokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// AccessToken returns the current access token, which may be empty.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.AccessToken
}

// Authenticated reports whether the session holds any usable credential.
func (s *Session) Authenticated() bool {
	return s.Tokens().Valid()
}

// SetTokens replaces both tokens atomically and persists the new pair.
func (s *Session) SetTokens(tokens models.SessionTokens) error {
	s.mu.Lock()
	s.tokens = tokens
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(tokens); err != nil {
			return fmt.Errorf("persist tokens: %w", err)
		}
	}
	return nil
}

// Clear destroys both tokens and removes any persisted copy.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.tokens = models.SessionTokens{}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			return fmt.Errorf("clear persisted tokens: %w", err)
		}
	}
	return nil
}

// Refresh renews the access token through fn. Concurrent callers share one
// in-flight attempt and all receive the token it produced, so a retried
// request never races a second refresh. A failed refresh tears the session
// down: both tokens are cleared and ErrExpired is returned.
func (s *Session) Refresh(ctx context.Context, fn RefreshFunc) (string, error) {
	value, err, _ := s.group.Do("refresh", func() (any, error) {
		refreshToken := s.Tokens().RefreshToken
		if refreshToken == "" {
			return "", ErrNoRefreshToken
		}

		access, err := fn(ctx, refreshToken)
		if err != nil {
			if clearErr := s.Clear(); clearErr != nil {
				return "", errors.Join(ErrExpired, clearErr)
			}
			return "", fmt.Errorf("%w: %v", ErrExpired, err)
		}

		s.mu.Lock()
		s.tokens.AccessToken = access
		tokens := s.tokens
		s.mu.Unlock()

		if s.store != nil {
			if saveErr := s.store.Save(tokens); saveErr != nil {
				return "", fmt.Errorf("persist refreshed tokens: %w", saveErr)
			}
		}
		return access, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// AccessExpiresWithin reports whether the access token's exp claim falls
// inside the next d. The claim is decoded without signature verification;
// tokens that do not parse as JWTs report false so callers degrade to
// reacting to 401 responses instead.
func (s *Session) AccessExpiresWithin(d time.Duration) bool {
	access := s.AccessToken()
	if access == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < d
}
