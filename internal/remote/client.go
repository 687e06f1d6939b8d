// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package remote is the HTTP source client for the Farmily Up backend.
// It implements the sync engine's source interfaces against the v1
// entity endpoints and reports non-2xx responses as
// *retry.StatusError, so failures classify by status code.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/models"
	"github.com/neville-gpp/farmily-up-sub000/internal/retry"
	"github.com/neville-gpp/farmily-up-sub000/internal/sync"
)

const (
	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 30 * time.Second

	// rateLimitRetries bounds the transparent handling of 429
	// responses inside one logical request. Anything beyond that
	// surfaces as a throttled StatusError for the outer retry layer.
	rateLimitRetries = 5

	// rateLimitBaseDelay seeds the doubling wait between 429 retries.
	// A Retry-After header overrides it.
	rateLimitBaseDelay = 1 * time.Second

	// errorBodyLimit caps how much of an error response body is kept
	// for the StatusError body.
	errorBodyLimit = 64 * 1024
)

// Config configures the backend client.
type Config struct {
	// BaseURL is the backend root, e.g. "https://api.farmily.app".
	BaseURL string

	// Token is sent as a bearer token on every request when set.
	Token string

	// Timeout bounds each HTTP attempt. Zero selects DefaultTimeout.
	Timeout time.Duration
}

// Client fetches family data over HTTP. It satisfies all four of the
// sync engine's source interfaces.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New builds a client for the given backend.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// FetchChildren returns the user's children changed since the given
// instant, or all of them when since is nil.
func (c *Client) FetchChildren(ctx context.Context, userID string, since *time.Time) ([]models.Child, error) {
	var children []models.Child
	if err := c.getJSON(ctx, entityPath(userID, "children"), sinceQuery(since), &children); err != nil {
		return nil, err
	}
	return children, nil
}

// FetchCalendarEvents returns the user's calendar events changed since
// the given instant, or all of them when since is nil.
func (c *Client) FetchCalendarEvents(ctx context.Context, userID string, since *time.Time) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	if err := c.getJSON(ctx, entityPath(userID, "calendar-events"), sinceQuery(since), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FetchFamilyActivities returns the user's family activities changed
// since the given instant, or all of them when since is nil.
func (c *Client) FetchFamilyActivities(ctx context.Context, userID string, since *time.Time) ([]models.FamilyActivity, error) {
	var activities []models.FamilyActivity
	if err := c.getJSON(ctx, entityPath(userID, "family-activities"), sinceQuery(since), &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// FetchProfile returns the user's profile. A backend 404 means the
// profile has not been created yet and maps to (nil, nil).
func (c *Client) FetchProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.getJSON(ctx, entityPath(userID, "profile"), nil, &profile); err != nil {
		var statusErr *retry.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Sources returns the client as a source bundle for engine wiring.
// Production wiring usually passes it through WithBreaker first.
func (c *Client) Sources() sync.Sources {
	return sync.Sources{Children: c, Calendar: c, Activities: c, Profile: c}
}

// getJSON performs a GET against path and decodes the response body
// into result.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, result any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	resp, err := c.doWithRateLimit(ctx, reqURL)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &retry.StatusError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       readBodyForError(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// doWithRateLimit issues the GET, absorbing 429 responses with a
// doubling wait that a Retry-After header (seconds) overrides.
func (c *Client) doWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; attempt < rateLimitRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		retryAfter := resp.Header.Get("Retry-After")
		_ = resp.Body.Close()

		if attempt == rateLimitRetries-1 {
			break
		}

		delay := rateLimitBaseDelay * (1 << attempt)
		if retryAfter != "" {
			if parsed, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = parsed
			}
		}
		logging.Debug().
			Str("url", reqURL).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Rate limited by backend, waiting before retry")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, &retry.StatusError{
		StatusCode: http.StatusTooManyRequests,
		Status:     http.StatusText(http.StatusTooManyRequests),
		Body:       fmt.Sprintf("rate limit persisted after %d attempts", rateLimitRetries),
	}
}

// entityPath builds the v1 entity endpoint path for a user.
func entityPath(userID, entity string) string {
	return fmt.Sprintf("/v1/users/%s/%s", url.PathEscape(userID), entity)
}

// sinceQuery encodes the incremental-pull watermark. Nil means a full
// pull and adds no parameter.
func sinceQuery(since *time.Time) url.Values {
	if since == nil {
		return nil
	}
	params := url.Values{}
	params.Set("since", since.UTC().Format(time.RFC3339Nano))
	return params
}

// readBodyForError drains up to errorBodyLimit of an error response
// for inclusion in the StatusError body.
func readBodyForError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, errorBodyLimit))
	if err != nil || len(data) == 0 {
		return ""
	}
	msg := strings.TrimSpace(string(data))
	if len(data) == errorBodyLimit {
		msg += " ... (truncated)"
	}
	return msg
}

// Errors
var (
	// ErrNoBaseURL reports a client configured without a backend URL.
	ErrNoBaseURL = fmt.Errorf("remote: base URL required")
)
