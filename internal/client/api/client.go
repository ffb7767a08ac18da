// Package api is a typed HTTP client for the activitydash server.
//
// Every call takes a context and returns either the decoded body or an
// error. Non-2xx replies become *Error carrying the server's error envelope;
// transport failures wrap ErrUnavailable so callers can tell "server down"
// apart from "request rejected".
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/activitydash/internal/common"
	"github.com/sethvargo/go-retry"
)

// ErrUnavailable marks transport-level failures.
var ErrUnavailable = errors.New("server unavailable")

// Error is a non-2xx reply decoded from the server's error envelope.
type Error struct {
	Status  int               `json:"-"`
	Code    string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	if len(e.Details) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Details))
	for k, v := range e.Details {
		parts = append(parts, k+": "+v)
	}
	slices.Sort(parts)
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsSuperuser bool   `json:"is_superuser"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ProfileUpdate carries only the fields to change; nil fields are omitted.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type DailyCount struct {
	Day          string `json:"day"`
	ActivityType string `json:"activity_type"`
	Count        int64  `json:"count"`
}

type Export struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Client talks to one server. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
	backoff func() retry.Backoff
}

// New returns a client for baseURL (e.g. "http://127.0.0.1:8000").
// Idempotent GETs are retried on ErrUnavailable and 5xx.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
		},
	}
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	in := map[string]string{"username": username, "email": email, "password": password}
	var u User
	if err := c.do(ctx, http.MethodPost, "/register", "", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	in := map[string]string{"username": username, "password": password}
	var p TokenPair
	if err := c.do(ctx, http.MethodPost, "/login", "", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Logout(ctx context.Context, access, refresh string) error {
	return c.do(ctx, http.MethodPost, "/logout", access, map[string]string{"refresh": refresh}, nil)
}

func (c *Client) Profile(ctx context.Context, access string) (*User, error) {
	var u User
	if err := c.get(ctx, "/profile", access, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, access string, in ProfileUpdate) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPatch, "/profile-update", access, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ActivityChart(ctx context.Context, access string) ([]DailyCount, error) {
	var out []DailyCount
	if err := c.get(ctx, "/activity-chart", access, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ExportActivityChart(ctx context.Context, access string) (*Export, error) {
	var e Export
	if err := c.do(ctx, http.MethodPost, "/activity-chart/export", access, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Ping checks GET /health.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *Client) get(ctx context.Context, path, access string, out any) error {
	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, access, nil, out)
		if isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isTransient(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status >= http.StatusInternalServerError
}

func (c *Client) do(ctx context.Context, method, path, access string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusResetContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
