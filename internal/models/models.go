package models

import "time"

// Visibility values accepted by the DayLight API for a prayer request.
const (
	VisibilityPublic    = "public"
	VisibilityFriends   = "friends"
	VisibilityAnonymous = "anonymous"
)

// Status values reported by the DayLight API for a prayer request.
const (
	StatusActive   = "active"
	StatusAnswered = "answered"
)

// UserProfile is the viewer-relevant subset of an account on the platform.
type UserProfile struct {
	ID                string
	Username          string
	DisplayName       string
	ProfilePictureURL string
}

// Name returns the profile's preferred display name, falling back to the
// username when no display name has been set.
func (p UserProfile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

// Encouragement is a short supportive message attached to a prayer request.
type Encouragement struct {
	ID        string
	Message   string
	CreatedAt time.Time
	Author    *UserProfile
}

// PrayerRequest represents one entry on the community prayer wall together
// with the viewer-relative flags computed by the server.
type PrayerRequest struct {
	ID                   string
	ShortDescription     string
	Category             string
	Visibility           string
	Status               string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	AnsweredAt           *time.Time
	AnsweredNote         string
	AnsweredScripture    string
	Owner                *UserProfile
	PrayerCount          int
	EncouragementCount   int
	PrayedByViewer       bool
	IsOwner              bool
	RecentEncouragements []Encouragement
}

// Answered reports whether the request has been marked answered.
func (r PrayerRequest) Answered() bool {
	return r.Status == StatusAnswered
}

// SessionTokens groups the bearer credentials issued to an authenticated user.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
}

// Valid reports whether the pair can authenticate requests at all.
func (t SessionTokens) Valid() bool {
	return t.AccessToken != "" || t.RefreshToken != ""
}

// WallStats aggregates the locally loaded prayer wall.
type WallStats struct {
	Total    int
	Active   int
	Answered int
}

// CommunityStats mirrors the platform-wide counters served by core/stats/.
type CommunityStats struct {
	Members         int
	PrayerRequests  int
	AnsweredPrayers int
	Encouragements  int
}
