package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/daylight-community/daylight-go/internal/models"
)

// Login exchanges credentials for a token pair and stores it on the session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	payload := map[string]string{"username": username, "password": password}
	if err := c.Public(ctx, http.MethodPost, "users/token/", payload, &out); err != nil {
		return err
	}
	return c.session.SetTokens(models.SessionTokens{AccessToken: out.Access, RefreshToken: out.Refresh})
}

// Logout destroys the stored session credentials. The DayLight API keeps no
// server-side session to revoke.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// RegisterParams carries the registration form fields. The server may reject
// them with per-field validation errors surfaced on *Error.Fields.
type RegisterParams struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates a new account. Registration does not sign the user in; a
// Login call follows it.
func (c *Client) Register(ctx context.Context, params RegisterParams) (models.UserProfile, error) {
	var out userPayload
	if err := c.Public(ctx, http.MethodPost, "users/register/", params, &out); err != nil {
		return models.UserProfile{}, err
	}
	return out.toModel(), nil
}

// Me fetches the current user's profile.
func (c *Client) Me(ctx context.Context) (models.UserProfile, error) {
	var out userPayload
	if err := c.Get(ctx, "users/me/", &out); err != nil {
		return models.UserProfile{}, err
	}
	return out.toModel(), nil
}

// ProfileUpdate lists the profile fields that may be patched. Nil fields are
// left untouched server-side.
type ProfileUpdate struct {
	DisplayName    *string `json:"display_name,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// UpdateMe applies a partial profile update and returns the server's copy.
func (c *Client) UpdateMe(ctx context.Context, update ProfileUpdate) (models.UserProfile, error) {
	var out userPayload
	if err := c.Patch(ctx, "users/me/", update, &out); err != nil {
		return models.UserProfile{}, err
	}
	return out.toModel(), nil
}

// CommunityStats fetches the platform-wide counters from core/stats/.
func (c *Client) CommunityStats(ctx context.Context) (models.CommunityStats, error) {
	var out struct {
		Members         int `json:"members"`
		PrayerRequests  int `json:"prayer_requests"`
		AnsweredPrayers int `json:"answered_prayers"`
		Encouragements  int `json:"encouragements"`
	}
	if err := c.Get(ctx, "core/stats/", &out); err != nil {
		return models.CommunityStats{}, fmt.Errorf("fetch community stats: %w", err)
	}
	return models.CommunityStats{
		Members:         out.Members,
		PrayerRequests:  out.PrayerRequests,
		AnsweredPrayers: out.AnsweredPrayers,
		Encouragements:  out.Encouragements,
	}, nil
}
