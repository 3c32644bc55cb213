package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/daylight-community/daylight-go/internal/models"
)

func TestLoginStoresTokenPair(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/token/" || r.Method != http.MethodPost {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload["username"] != "ruth" || payload["password"] != "hunter2" {
			t.Errorf("unexpected payload %+v err=%v", payload, err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access":"a1","refresh":"r1"}`))
	})

	client, sess := newTestClient(t, handler, models.SessionTokens{})

	if err := client.Login(context.Background(), "ruth", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}
	got := sess.Tokens()
	if got.AccessToken != "a1" || got.RefreshToken != "r1" {
		t.Fatalf("expected stored pair, got %+v", got)
	}
}

func TestLoginFailureLeavesSessionSignedOut(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
	})

	client, sess := newTestClient(t, handler, models.SessionTokens{})

	err := client.Login(context.Background(), "ruth", "wrong")
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 api error, got %v", err)
	}
	if sess.Authenticated() {
		t.Fatal("failed login must not store tokens")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	client, sess := newTestClient(t, http.NotFoundHandler(), models.SessionTokens{AccessToken: "a1", RefreshToken: "r1"})

	if err := client.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sess.Authenticated() {
		t.Fatal("expected tokens destroyed")
	}
}

func TestRegisterSurfacesFieldErrors(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["confirmPassword"] != "hunter2" {
			t.Errorf("expected confirmPassword key on the wire, got %+v", payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"username":["A user with that username already exists."]}`))
	})

	client, _ := newTestClient(t, handler, models.SessionTokens{})

	_, err := client.Register(context.Background(), RegisterParams{
		Username:        "ruth",
		Email:           "ruth@example.org",
		Password:        "hunter2",
		ConfirmPassword: "hunter2",
	})
	var apiErr *Error
	if !errors.As(err, &apiErr) || !apiErr.HasFieldErrors() {
		t.Fatalf("expected field errors, got %v", err)
	}
	if apiErr.Fields["username"][0] != "A user with that username already exists." {
		t.Fatalf("unexpected field errors %+v", apiErr.Fields)
	}
}

func TestUpdateMeSendsOnlySetFields(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/users/me/" {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["display_name"] != "Ruth" {
			t.Errorf("expected display_name, got %+v", payload)
		}
		if _, present := payload["profile_picture"]; present {
			t.Errorf("unset fields must be omitted, got %+v", payload)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"username":"ruth","display_name":"Ruth"}`))
	})

	client, _ := newTestClient(t, handler, models.SessionTokens{AccessToken: "a1"})

	name := "Ruth"
	profile, err := client.UpdateMe(context.Background(), ProfileUpdate{DisplayName: &name})
	if err != nil {
		t.Fatalf("update me: %v", err)
	}
	if profile.Name() != "Ruth" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestCommunityStats(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/core/stats/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"members":120,"prayer_requests":45,"answered_prayers":12,"encouragements":300}`))
	})

	client, _ := newTestClient(t, handler, models.SessionTokens{AccessToken: "a1"})

	stats, err := client.CommunityStats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := models.CommunityStats{Members: 120, PrayerRequests: 45, AnsweredPrayers: 12, Encouragements: 300}
	if stats != want {
		t.Fatalf("expected %+v, got %+v", want, stats)
	}
}
