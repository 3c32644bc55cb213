package api

import (
	"encoding/json"
	"time"

	"github.com/daylight-community/daylight-go/internal/models"
)

// wireID tolerates servers that serialize identifiers as JSON numbers or
// strings; either form lands as the opaque string the models carry.
type wireID string

func (id *wireID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = wireID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = wireID(n.String())
	return nil
}

// userPayload is the wire shape of a profile as served by users/ endpoints.
type userPayload struct {
	ID             wireID `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	ProfilePicture string `json:"profile_picture"`
}

func (p userPayload) toModel() models.UserProfile {
	return models.UserProfile{
		ID:                string(p.ID),
		Username:          p.Username,
		DisplayName:       p.DisplayName,
		ProfilePictureURL: p.ProfilePicture,
	}
}

// encouragementPayload is the wire shape of one encouragement.
type encouragementPayload struct {
	ID          wireID       `json:"id"`
	Message     string       `json:"message"`
	CreatedAt   time.Time    `json:"created_at"`
	UserProfile *userPayload `json:"user_profile"`
}

func (p encouragementPayload) toModel() models.Encouragement {
	enc := models.Encouragement{
		ID:        string(p.ID),
		Message:   p.Message,
		CreatedAt: p.CreatedAt,
	}
	if p.UserProfile != nil {
		author := p.UserProfile.toModel()
		enc.Author = &author
	}
	return enc
}

// prayerRequestPayload is the wire shape served by prayer_requests/ routes.
// Absent optional fields take documented defaults: category and the answered
// texts default to empty strings, counts to zero, visibility to public and
// status to active.
type prayerRequestPayload struct {
	ID                   wireID                 `json:"id"`
	ShortDescription     string                 `json:"short_description"`
	Category             string                 `json:"category"`
	Visibility           string                 `json:"visibility"`
	Status               string                 `json:"status"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
	AnsweredAt           *time.Time             `json:"answered_at"`
	AnsweredNote         string                 `json:"answered_note"`
	AnsweredScripture    string                 `json:"answered_scripture"`
	UserProfile          *userPayload           `json:"user_profile"`
	PrayerCount          int                    `json:"prayer_count"`
	EncouragementCount   int                    `json:"encouragement_count"`
	IsPrayed             bool                   `json:"is_prayed_by_current_user"`
	IsOwner              bool                   `json:"is_owner"`
	RecentEncouragements []encouragementPayload `json:"recent_encouragements"`
}

func (p prayerRequestPayload) toModel() models.PrayerRequest {
	req := models.PrayerRequest{
		ID:                 string(p.ID),
		ShortDescription:   p.ShortDescription,
		Category:           p.Category,
		Visibility:         p.Visibility,
		Status:             p.Status,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		AnsweredAt:         p.AnsweredAt,
		AnsweredNote:       p.AnsweredNote,
		AnsweredScripture:  p.AnsweredScripture,
		PrayerCount:        p.PrayerCount,
		EncouragementCount: p.EncouragementCount,
		PrayedByViewer:     p.IsPrayed,
		IsOwner:            p.IsOwner,
	}
	if req.Visibility == "" {
		req.Visibility = models.VisibilityPublic
	}
	if req.Status == "" {
		req.Status = models.StatusActive
	}
	if p.UserProfile != nil {
		owner := p.UserProfile.toModel()
		req.Owner = &owner
	}
	for _, enc := range p.RecentEncouragements {
		req.RecentEncouragements = append(req.RecentEncouragements, enc.toModel())
	}
	return req
}

// listPayload accepts both response envelopes the API serves for
// collections: a bare JSON array or a paginated {"results": [...]} object.
type listPayload[T any] struct {
	Items []T
}

func (l *listPayload[T]) UnmarshalJSON(data []byte) error {
	var bare []T
	if err := json.Unmarshal(data, &bare); err == nil {
		l.Items = bare
		return nil
	}

	var envelope struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	l.Items = envelope.Results
	return nil
}
