package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/daylight-community/daylight-go/internal/models"
)

const prayerRequestsPath = "prayer_requests/prayer_requests/"

// ListPrayerRequests fetches the full current prayer wall.
func (c *Client) ListPrayerRequests(ctx context.Context) ([]models.PrayerRequest, error) {
	var out listPayload[prayerRequestPayload]
	if err := c.Get(ctx, prayerRequestsPath, &out); err != nil {
		return nil, fmt.Errorf("list prayer requests: %w", err)
	}

	requests := make([]models.PrayerRequest, 0, len(out.Items))
	for _, item := range out.Items {
		requests = append(requests, item.toModel())
	}
	return requests, nil
}

// Pray records the viewer's participation on a request and returns the
// server's authoritative prayer count.
func (c *Client) Pray(ctx context.Context, requestID string) (int, error) {
	return c.togglePray(ctx, http.MethodPost, requestID)
}

// Unpray withdraws the viewer's participation and returns the authoritative
// prayer count.
func (c *Client) Unpray(ctx context.Context, requestID string) (int, error) {
	return c.togglePray(ctx, http.MethodDelete, requestID)
}

func (c *Client) togglePray(ctx context.Context, method, requestID string) (int, error) {
	var out struct {
		PrayerCount int `json:"prayer_count"`
	}
	path := prayerRequestsPath + requestID + "/pray/"
	if err := c.Do(ctx, method, path, nil, &out); err != nil {
		return 0, fmt.Errorf("toggle pray on %s: %w", requestID, err)
	}
	return out.PrayerCount, nil
}

// ListEncouragements fetches the full encouragement thread of a request,
// newest first as served.
func (c *Client) ListEncouragements(ctx context.Context, requestID string) ([]models.Encouragement, error) {
	var out listPayload[encouragementPayload]
	path := prayerRequestsPath + requestID + "/encouragements/"
	if err := c.Get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("list encouragements for %s: %w", requestID, err)
	}

	encouragements := make([]models.Encouragement, 0, len(out.Items))
	for _, item := range out.Items {
		encouragements = append(encouragements, item.toModel())
	}
	return encouragements, nil
}

// CreateEncouragement posts a supportive message to a request.
func (c *Client) CreateEncouragement(ctx context.Context, requestID, message string) (models.Encouragement, error) {
	var out encouragementPayload
	path := prayerRequestsPath + requestID + "/encouragements/"
	payload := map[string]string{"message": message}
	if err := c.Post(ctx, path, payload, &out); err != nil {
		return models.Encouragement{}, fmt.Errorf("create encouragement on %s: %w", requestID, err)
	}
	return out.toModel(), nil
}

// MarkAnswered transitions a request to answered and returns the server's
// updated copy. The server enforces that only the owner may do this.
func (c *Client) MarkAnswered(ctx context.Context, requestID, note, scripture string) (models.PrayerRequest, error) {
	var out prayerRequestPayload
	path := prayerRequestsPath + requestID + "/mark-answered/"
	payload := map[string]string{"answered_note": note, "answered_scripture": scripture}
	if err := c.Post(ctx, path, payload, &out); err != nil {
		return models.PrayerRequest{}, fmt.Errorf("mark %s answered: %w", requestID, err)
	}
	return out.toModel(), nil
}

// PrayedUsers fetches the profiles of supporters who prayed for a request.
func (c *Client) PrayedUsers(ctx context.Context, requestID string) ([]models.UserProfile, error) {
	var out listPayload[userPayload]
	path := prayerRequestsPath + requestID + "/prayed-users/"
	if err := c.Get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("list prayed users for %s: %w", requestID, err)
	}

	profiles := make([]models.UserProfile, 0, len(out.Items))
	for _, item := range out.Items {
		profiles = append(profiles, item.toModel())
	}
	return profiles, nil
}
