package profiles

import (
	"context"
	"sync"
	"time"

	"github.com/daylight-community/daylight-go/internal/models"
)

// Provider resolves the current user's profile from the API.
type Provider interface {
	Me(ctx context.Context) (models.UserProfile, error)
}

// Cache wraps a Provider with a TTL-based in-memory cache so viewer-relative
// rendering does not refetch the profile on every screen.
type Cache struct {
	base Provider
	ttl  time.Duration

	mu      sync.RWMutex
	profile models.UserProfile
	expires time.Time
	cached  bool
}

// NewCache returns a Provider caching the current profile for the given TTL.
func NewCache(base Provider, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{base: base, ttl: ttl}
}

// Me returns the cached profile when fresh, otherwise it delegates to the
// underlying provider and stores the result.
func (c *Cache) Me(ctx context.Context) (models.UserProfile, error) {
	now := time.Now()

	c.mu.RLock()
	profile, cached, expires := c.profile, c.cached, c.expires
	c.mu.RUnlock()
	if cached && now.Before(expires) {
		return profile, nil
	}

	profile, err := c.base.Me(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}

	c.mu.Lock()
	c.profile = profile
	c.expires = now.Add(c.ttl)
	c.cached = true
	c.mu.Unlock()

	return profile, nil
}

// Invalidate drops the cached profile, forcing the next Me to refetch. Called
// after profile updates and sign-out.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.cached = false
	c.mu.Unlock()
}
