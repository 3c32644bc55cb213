package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/daylight-community/daylight-go/internal/models"
)

func TestSetTokensAndClear(t *testing.T) {
	sess, err := New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if sess.Authenticated() {
		t.Fatal("fresh session should not be authenticated")
	}

	pair := models.SessionTokens{AccessToken: "a1", RefreshToken: "r1"}
	if err := sess.SetTokens(pair); err != nil {
		t.Fatalf("set tokens: %v", err)
	}
	if got := sess.Tokens(); got != pair {
		t.Fatalf("expected %+v, got %+v", pair, got)
	}
	if !sess.Authenticated() {
		t.Fatal("expected session to be authenticated")
	}

	if err := sess.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if sess.Authenticated() {
		t.Fatal("expected cleared session to be signed out")
	}
}

func TestRefreshSwapsAccessToken(t *testing.T) {
	sess, _ := New(nil)
	_ = sess.SetTokens(models.SessionTokens{AccessToken: "a1", RefreshToken: "r1"})

	access, err := sess.Refresh(context.Background(), func(ctx context.Context, refreshToken string) (string, error) {
		if refreshToken != "r1" {
			t.Fatalf("expected refresh token r1, got %q", refreshToken)
		}
		return "a2", nil
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access != "a2" {
		t.Fatalf("expected a2, got %q", access)
	}

	got := sess.Tokens()
	if got.AccessToken != "a2" || got.RefreshToken != "r1" {
		t.Fatalf("expected swapped access with kept refresh, got %+v", got)
	}
}

func TestRefreshFailureTearsSessionDown(t *testing.T) {
	sess, _ := New(nil)
	_ = sess.SetTokens(models.SessionTokens{AccessToken: "a1", RefreshToken: "r1"})

	_, err := sess.Refresh(context.Background(), func(ctx context.Context, refreshToken string) (string, error) {
		return "", errors.New("refresh rejected")
	})
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if sess.Authenticated() {
		t.Fatal("expected both tokens cleared after failed refresh")
	}
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	sess, _ := New(nil)
	_ = sess.SetTokens(models.SessionTokens{AccessToken: "a1"})

	_, err := sess.Refresh(context.Background(), func(ctx context.Context, refreshToken string) (string, error) {
		t.Fatal("refresh func should not run without a refresh token")
		return "", nil
	})
	if !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}
	if !sess.Authenticated() {
		t.Fatal("access token should survive a no-op refresh")
	}
}

func TestConcurrentRefreshesCoalesce(t *testing.T) {
	sess, _ := New(nil)
	_ = sess.SetTokens(models.SessionTokens{AccessToken: "a1", RefreshToken: "r1"})

	var calls atomic.Int32
	gate := make(chan struct{})
	fn := func(ctx context.Context, refreshToken string) (string, error) {
		calls.Add(1)
		<-gate
		return "a2", nil
	}

	const waiters = 8
	results := make([]string, waiters)
	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func(i int) {
			defer wg.Done()
			access, err := sess.Refresh(context.Background(), fn)
			if err != nil {
				t.Errorf("refresh %d: %v", i, err)
			}
			results[i] = access
		}(i)
	}

	// Give the waiters time to pile onto the single flight before release.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one coalesced refresh call, got %d", got)
	}
	for i, access := range results {
		if access != "a2" {
			t.Fatalf("waiter %d got %q, want a2", i, access)
		}
	}
}

func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAccessExpiresWithin(t *testing.T) {
	sess, _ := New(nil)
	_ = sess.SetTokens(models.SessionTokens{AccessToken: signedToken(t, 10*time.Second)})

	if !sess.AccessExpiresWithin(30 * time.Second) {
		t.Fatal("token expiring in 10s should report true for a 30s window")
	}
	if sess.AccessExpiresWithin(5 * time.Second) {
		t.Fatal("token expiring in 10s should report false for a 5s window")
	}
}

func TestAccessExpiresWithinDegradesForOpaqueTokens(t *testing.T) {
	sess, _ := New(nil)
	_ = sess.SetTokens(models.SessionTokens{AccessToken: "not-a-jwt"})

	if sess.AccessExpiresWithin(time.Hour) {
		t.Fatal("opaque token should never report as expiring")
	}

	_ = sess.Clear()
	if sess.AccessExpiresWithin(time.Hour) {
		t.Fatal("empty token should never report as expiring")
	}
}
