package prayerwall

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/daylight-community/daylight-go/internal/models"
)

var (
	// ErrSignInRequired indicates the viewer must authenticate before the action.
	ErrSignInRequired = errors.New("sign in required")
	// ErrNotFound indicates the prayer request is not in the loaded wall.
	ErrNotFound = errors.New("prayer request not found")
	// ErrTogglePending indicates a toggle for the same request is already in flight.
	ErrTogglePending = errors.New("prayer toggle already in flight")
	// ErrEmptyMessage indicates the encouragement text was empty after trimming.
	ErrEmptyMessage = errors.New("encouragement message is empty")
	// ErrMessageTooLong indicates the encouragement exceeds the allowed length.
	ErrMessageTooLong = fmt.Errorf("encouragement message exceeds %d characters", MaxEncouragementLength)
)

// MaxEncouragementLength is the client-side cap on encouragement text.
const MaxEncouragementLength = 100

// recentPreviewCap bounds the per-request encouragement preview.
const recentPreviewCap = 3

// anonymousLabel is rendered in place of the author whenever a request is
// posted with anonymous visibility, or when the server omitted the owner.
const anonymousLabel = "Anonymous"

// PrayerService captures the API operations the wall depends on.
type PrayerService interface {
	ListPrayerRequests(ctx context.Context) ([]models.PrayerRequest, error)
	Pray(ctx context.Context, requestID string) (int, error)
	Unpray(ctx context.Context, requestID string) (int, error)
	ListEncouragements(ctx context.Context, requestID string) ([]models.Encouragement, error)
	CreateEncouragement(ctx context.Context, requestID, message string) (models.Encouragement, error)
	MarkAnswered(ctx context.Context, requestID, note, scripture string) (models.PrayerRequest, error)
}

// Viewer reports whether the current user can perform authenticated actions.
type Viewer interface {
	Authenticated() bool
}

// SortOption selects one of the derived wall orderings.
type SortOption string

const (
	SortNewest     SortOption = "newest"
	SortMostPrayed SortOption = "most_prayed"
	SortAnswered   SortOption = "answered"
)

// Wall owns the client-side view of the community prayer requests. Mutations
// are applied only after server confirmation: a failed call leaves the
// affected entry untouched, and counts always come from the server rather
// than a locally incremented guess, so concurrent toggles by other viewers
// never drift the display.
type Wall struct {
	service PrayerService
	viewer  Viewer

	mu       sync.Mutex
	requests []models.PrayerRequest
	threads  map[string][]models.Encouragement
	pending  map[string]bool
}

// New constructs a Wall over the provided service and viewer.
func New(service PrayerService, viewer Viewer) *Wall {
	if service == nil {
		panic("prayerwall: service must not be nil")
	}
	if viewer == nil {
		panic("prayerwall: viewer must not be nil")
	}
	return &Wall{
		service: service,
		viewer:  viewer,
		threads: make(map[string][]models.Encouragement),
		pending: make(map[string]bool),
	}
}

// Load fetches the full current wall and replaces local state wholesale.
// Errors are surfaced to the caller; there is no automatic retry.
func (w *Wall) Load(ctx context.Context) ([]models.PrayerRequest, error) {
	requests, err := w.service.ListPrayerRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prayer wall: %w", err)
	}

	w.mu.Lock()
	w.requests = requests
	w.threads = make(map[string][]models.Encouragement)
	w.mu.Unlock()

	return w.Requests(), nil
}

// Requests returns a copy of the wall in its loaded order.
func (w *Wall) Requests() []models.PrayerRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.PrayerRequest, len(w.requests))
	copy(out, w.requests)
	return out
}

// TogglePrayer flips the viewer's participation on one request and returns
// the server's authoritative prayer count. While the call is outstanding the
// request id is marked pending and further toggles for it are rejected;
// toggles on other ids may proceed concurrently.
func (w *Wall) TogglePrayer(ctx context.Context, requestID string) (int, error) {
	if !w.viewer.Authenticated() {
		return 0, ErrSignInRequired
	}

	w.mu.Lock()
	idx := w.indexLocked(requestID)
	if idx < 0 {
		w.mu.Unlock()
		return 0, ErrNotFound
	}
	if w.pending[requestID] {
		w.mu.Unlock()
		return 0, ErrTogglePending
	}
	w.pending[requestID] = true
	prayed := w.requests[idx].PrayedByViewer
	w.mu.Unlock()

	var count int
	var err error
	if prayed {
		count, err = w.service.Unpray(ctx, requestID)
	} else {
		count, err = w.service.Pray(ctx, requestID)
	}

	w.mu.Lock()
	delete(w.pending, requestID)
	if err == nil {
		if idx := w.indexLocked(requestID); idx >= 0 {
			w.requests[idx].PrayedByViewer = !prayed
			w.requests[idx].PrayerCount = count
		}
	}
	w.mu.Unlock()

	if err != nil {
		return 0, fmt.Errorf("toggle prayer on %s: %w", requestID, err)
	}
	return count, nil
}

// Pending reports whether a toggle for the request is currently in flight,
// so its action control can be disabled.
func (w *Wall) Pending(requestID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending[requestID]
}

// LoadThread fetches the full encouragement thread for one request and
// caches it locally.
func (w *Wall) LoadThread(ctx context.Context, requestID string) ([]models.Encouragement, error) {
	thread, err := w.service.ListEncouragements(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("load thread for %s: %w", requestID, err)
	}

	w.mu.Lock()
	w.threads[requestID] = thread
	w.mu.Unlock()

	return thread, nil
}

// SubmitEncouragement posts a supportive message to a request. On success the
// created encouragement is prepended to the cached thread (when loaded) and
// to the request's capped preview, and the encouragement count advances by
// exactly one.
func (w *Wall) SubmitEncouragement(ctx context.Context, requestID, message string) (models.Encouragement, error) {
	if !w.viewer.Authenticated() {
		return models.Encouragement{}, ErrSignInRequired
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return models.Encouragement{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxEncouragementLength {
		return models.Encouragement{}, ErrMessageTooLong
	}

	w.mu.Lock()
	exists := w.indexLocked(requestID) >= 0
	w.mu.Unlock()
	if !exists {
		return models.Encouragement{}, ErrNotFound
	}

	created, err := w.service.CreateEncouragement(ctx, requestID, message)
	if err != nil {
		return models.Encouragement{}, fmt.Errorf("submit encouragement on %s: %w", requestID, err)
	}

	w.mu.Lock()
	if thread, ok := w.threads[requestID]; ok {
		w.threads[requestID] = append([]models.Encouragement{created}, thread...)
	}
	if idx := w.indexLocked(requestID); idx >= 0 {
		req := &w.requests[idx]
		preview := append([]models.Encouragement{created}, req.RecentEncouragements...)
		if len(preview) > recentPreviewCap {
			preview = preview[:recentPreviewCap]
		}
		req.RecentEncouragements = preview
		req.EncouragementCount++
	}
	w.mu.Unlock()

	return created, nil
}

// MarkAnswered transitions one of the viewer's own requests to answered. The
// local entry is replaced wholesale with the server's updated copy rather
// than patched field by field.
func (w *Wall) MarkAnswered(ctx context.Context, requestID, note, scripture string) (models.PrayerRequest, error) {
	if !w.viewer.Authenticated() {
		return models.PrayerRequest{}, ErrSignInRequired
	}

	w.mu.Lock()
	exists := w.indexLocked(requestID) >= 0
	w.mu.Unlock()
	if !exists {
		return models.PrayerRequest{}, ErrNotFound
	}

	updated, err := w.service.MarkAnswered(ctx, requestID, note, scripture)
	if err != nil {
		return models.PrayerRequest{}, fmt.Errorf("mark %s answered: %w", requestID, err)
	}

	w.mu.Lock()
	if idx := w.indexLocked(requestID); idx >= 0 {
		w.requests[idx] = updated
	}
	w.mu.Unlock()

	return updated, nil
}

// Stats aggregates the loaded wall without touching the network.
func (w *Wall) Stats() models.WallStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats := models.WallStats{Total: len(w.requests)}
	for _, req := range w.requests {
		if req.Answered() {
			stats.Answered++
		} else {
			stats.Active++
		}
	}
	return stats
}

func (w *Wall) indexLocked(requestID string) int {
	for i := range w.requests {
		if w.requests[i].ID == requestID {
			return i
		}
	}
	return -1
}

// DisplayName returns the author label to render for a request. Anonymous
// visibility always masks the owner, regardless of what the profile payload
// contains.
func DisplayName(req models.PrayerRequest) string {
	if req.Visibility == models.VisibilityAnonymous || req.Owner == nil {
		return anonymousLabel
	}
	return req.Owner.Name()
}
