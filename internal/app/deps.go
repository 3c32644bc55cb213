package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/daylight-community/daylight-go/internal/api"
	"github.com/daylight-community/daylight-go/internal/config"
	"github.com/daylight-community/daylight-go/internal/logging"
	"github.com/daylight-community/daylight-go/internal/prayerwall"
	"github.com/daylight-community/daylight-go/internal/profiles"
	"github.com/daylight-community/daylight-go/internal/session"
)

// profileCacheTTL bounds how long the current user's profile is reused
// between commands in one process.
const profileCacheTTL = 5 * time.Minute

// dependencies wires together the concrete pieces the commands act on.
type dependencies struct {
	cfg      config.Config
	logger   *slog.Logger
	session  *session.Session
	client   *api.Client
	profiles *profiles.Cache
	wall     *prayerwall.Wall
}

// buildDependencies loads configuration and constructs the session, API
// client, profile cache and prayer wall in leaf-first order.
func buildDependencies(configPath string) (*dependencies, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	store, err := session.NewFileStore(cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(store)
	if err != nil {
		return nil, err
	}

	client, err := api.New(cfg.API.BaseURL, sess,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst),
		api.WithSessionExpiredHook(func() {
			fmt.Fprintln(os.Stderr, "Your session has expired. Please sign in again with `daylight login`.")
		}),
	)
	if err != nil {
		return nil, err
	}

	return &dependencies{
		cfg:      cfg,
		logger:   logger,
		session:  sess,
		client:   client,
		profiles: profiles.NewCache(client, profileCacheTTL),
		wall:     prayerwall.New(client, sess),
	}, nil
}
