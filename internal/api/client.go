package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/daylight-community/daylight-go/internal/logging"
	"github.com/daylight-community/daylight-go/internal/session"
)

// accessExpiryLeeway triggers a proactive refresh when the access token's exp
// claim falls this close, sparing a round trip that would only earn a 401.
const accessExpiryLeeway = 30 * time.Second

// Client performs every outbound call to the DayLight REST API. It attaches
// bearer credentials, recovers transparently from access-token expiry with at
// most one refresh-and-retry per logical call, and normalizes every non-2xx
// response into *Error. The client itself is stateless apart from the
// injected session, so concurrent calls from multiple goroutines are safe.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	session    *session.Session
	limiter    *rate.Limiter

	// onSessionExpired is invoked after an irrecoverable refresh failure has
	// torn the session down, so the caller can route the user back to login.
	onSessionExpired func()
}

// Option customizes a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithRateLimit throttles outbound calls to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithSessionExpiredHook registers fn to run once a refresh failure has
// signed the user out.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

// New constructs a Client for the API rooted at baseURL. The session must not
// be nil; a signed-out session simply issues unauthenticated calls.
func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	if sess == nil {
		return nil, errors.New("api: session must be provided")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		session:    sess,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request is the replayable description of one outbound call. Keeping the
// serialized body and headers in a value object lets the 401 retry replay the
// exact original call without closing over mutable state.
type request struct {
	method string
	path   string
	body   []byte
}

func newRequest(method, path string, body any) (request, error) {
	r := request{method: method, path: path}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return request{}, fmt.Errorf("encode request body: %w", err)
		}
		r.body = data
	}
	return r, nil
}

// Do performs an authenticated call and decodes the response into out, which
// may be nil when the caller does not need the body. On a 401 it refreshes
// the access token once and replays the original request once with the token
// that refresh produced; a second 401 is surfaced as a normal failure.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := newRequest(method, path, body)
	if err != nil {
		return err
	}
	return c.roundTrip(ctx, req, out, true)
}

// Public performs an unauthenticated call: no bearer token is attached and no
// refresh-retry is attempted. Pre-login flows (registration, token issuance)
// go through here.
func (c *Client) Public(ctx context.Context, method, path string, body, out any) error {
	req, err := newRequest(method, path, body)
	if err != nil {
		return err
	}
	return c.roundTrip(ctx, req, out, false)
}

// Get issues an authenticated GET.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues an authenticated PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Patch issues an authenticated PATCH.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) roundTrip(ctx context.Context, req request, out any, authenticated bool) (err error) {
	ctx, span := logging.StartSpan(ctx, req.method+" "+req.path)
	defer func() { span.End(err) }()

	token := ""
	if authenticated {
		token, err = c.currentToken(ctx)
		if err != nil {
			return err
		}
	}

	resp, body, err := c.send(ctx, req, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && authenticated && c.session.Tokens().RefreshToken != "" {
		// Exactly one refresh per logical call; the retry uses the token this
		// refresh produced, never a later one.
		access, refreshErr := c.session.Refresh(ctx, c.refreshAccess)
		if refreshErr != nil {
			if errors.Is(refreshErr, session.ErrExpired) {
				c.notifySessionExpired(ctx)
			}
			return refreshErr
		}
		resp, body, err = c.send(ctx, req, access)
		if err != nil {
			return err
		}
	}

	return c.decode(ctx, resp, body, out)
}

// currentToken returns the access token to attach, refreshing proactively
// when the token is about to lapse and a refresh token is available.
func (c *Client) currentToken(ctx context.Context) (string, error) {
	if !c.session.AccessExpiresWithin(accessExpiryLeeway) {
		return c.session.AccessToken(), nil
	}

	access, err := c.session.Refresh(ctx, c.refreshAccess)
	switch {
	case err == nil:
		return access, nil
	case errors.Is(err, session.ErrNoRefreshToken):
		return c.session.AccessToken(), nil
	default:
		if errors.Is(err, session.ErrExpired) {
			c.notifySessionExpired(ctx)
		}
		return "", err
	}
}

// send performs one HTTP round trip and returns the response with its fully
// read body.
func (c *Client) send(ctx context.Context, req request, token string) (*http.Response, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	target := c.baseURL.JoinPath(req.path)

	var reader io.Reader
	if req.body != nil {
		reader = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-Id", requestID)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response body: %w", err)
	}

	logging.FromContext(ctx).Debug("round trip complete", slog.Int("status", resp.StatusCode))
	return resp, body, nil
}

// decode resolves the call outcome: 2xx bodies are parsed into out according
// to content type (204 and empty bodies leave out untouched), everything else
// becomes a normalized *Error.
func (c *Client) decode(ctx context.Context, resp *http.Response, body []byte, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, body, logging.RequestIDFromContext(ctx))
	}
	if resp.StatusCode == http.StatusNoContent || len(body) == 0 || out == nil {
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
		return nil
	}
	if text, ok := out.(*string); ok {
		*text = string(body)
		return nil
	}
	return fmt.Errorf("unexpected content type %q", contentType)
}

// refreshAccess exchanges the refresh token for a new access token. It rides
// the public path so a failing refresh can never trigger another refresh.
func (c *Client) refreshAccess(ctx context.Context, refreshToken string) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	payload := map[string]string{"refresh": refreshToken}
	if err := c.Public(ctx, http.MethodPost, "users/token/refresh/", payload, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", errors.New("refresh response missing access token")
	}
	return out.Access, nil
}

func (c *Client) notifySessionExpired(ctx context.Context) {
	logging.FromContext(ctx).Warn("session expired, tokens cleared")
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}
