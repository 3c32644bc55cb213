package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/daylight-community/daylight-go/internal/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	// Missing file reads as a signed-out pair.
	tokens, err := store.Load()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if tokens.Valid() {
		t.Fatalf("expected empty pair, got %+v", tokens)
	}

	pair := models.SessionTokens{AccessToken: "a1", RefreshToken: "r1"}
	if err := store.Save(pair); err != nil {
		t.Fatalf("save: %v", err)
	}

	tokens, err = store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tokens != pair {
		t.Fatalf("expected %+v, got %+v", pair, tokens)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Fatalf("expected owner-only permissions, got %o", perm)
		}
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected token file removed, stat err=%v", err)
	}

	// Clearing again is not an error.
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestFileStoreRejectsEmptyPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSessionRestoresPersistedTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save(models.SessionTokens{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	sess, err := New(store)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if got := sess.Tokens(); got.AccessToken != "a1" || got.RefreshToken != "r1" {
		t.Fatalf("expected restored tokens, got %+v", got)
	}
}
