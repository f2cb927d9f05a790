// Package client is a Go client for the habits HTTP API.
//
// Credentials are never cached globally: Login returns a *Session that the
// caller passes to every authenticated call. The client refreshes the session
// in place when its access token is about to expire.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/user/habits-go/auth"
	"github.com/user/habits-go/dashboard"
	"github.com/user/habits-go/habits"
)

// DefaultRefreshSkew is how long before expiry a session is refreshed.
const DefaultRefreshSkew = 30 * time.Second

// Client is a thin HTTP wrapper for the habits API.
type Client struct {
	URL         string
	HTTPClient  *http.Client
	RefreshSkew time.Duration

	now func() time.Time
}

// New creates a new client for the API at url (no trailing slash).
func New(url string) *Client {
	return &Client{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		RefreshSkew: DefaultRefreshSkew,
		now:         time.Now,
	}
}

// Session is the credential a logged-in caller carries between requests.
// A Session is updated in place on refresh and is not safe for concurrent use.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// expiresWithin reports whether the access token expires before now+skew.
func (s *Session) expiresWithin(now time.Time, skew time.Duration) bool {
	return !s.ExpiresAt.IsZero() && !now.Add(skew).Before(s.ExpiresAt)
}

func (s *Session) update(tokens *auth.TokenResponse, now time.Time) {
	s.AccessToken = tokens.AccessToken
	s.RefreshToken = tokens.RefreshToken
	s.ExpiresAt = now.Add(time.Duration(tokens.ExpiresIn) * time.Second)
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	// Challenge is the WWW-Authenticate header of a 401. The server only sets
	// it when the access token itself was refused; an ownership 401 has none.
	Challenge string
}

// tokenRejected reports whether err means the session's access token was refused.
func tokenRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized && apiErr.Challenge != ""
}

func (e *APIError) Error() string {
	return fmt.Sprintf("habits api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// StatusCode returns the HTTP status of err if it is an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count,omitempty"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, email, password string) (*auth.User, error) {
	var user auth.User
	body := auth.RegisterRequest{Username: username, Email: email, Password: password}
	if err := c.do(ctx, nil, http.MethodPost, "/auth/register", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a new Session.
func (c *Client) Login(ctx context.Context, login, password string) (*Session, error) {
	var tokens auth.TokenResponse
	body := auth.LoginRequest{Login: login, Password: password}
	if err := c.do(ctx, nil, http.MethodPost, "/auth/login", body, &tokens); err != nil {
		return nil, err
	}
	s := &Session{}
	s.update(&tokens, c.now())
	return s, nil
}

// Refresh replaces the session's tokens using its refresh token.
func (c *Client) Refresh(ctx context.Context, s *Session) error {
	if s == nil || s.RefreshToken == "" {
		return &APIError{StatusCode: http.StatusUnauthorized, Message: "session has no refresh token"}
	}
	var tokens auth.TokenResponse
	body := auth.RefreshTokenRequest{RefreshToken: s.RefreshToken}
	if err := c.do(ctx, nil, http.MethodPost, "/auth/refresh", body, &tokens); err != nil {
		return err
	}
	s.update(&tokens, c.now())
	return nil
}

// ListHabits returns the caller's habits.
func (c *Client) ListHabits(ctx context.Context, s *Session) ([]habits.Habit, error) {
	var list []habits.Habit
	if err := c.authed(ctx, s, http.MethodGet, "/api/v1/habits", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetHabit returns one habit.
func (c *Client) GetHabit(ctx context.Context, s *Session, id string) (*habits.Habit, error) {
	var h habits.Habit
	if err := c.authed(ctx, s, http.MethodGet, "/api/v1/habits/"+url.PathEscape(id), nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateHabit creates a habit.
func (c *Client) CreateHabit(ctx context.Context, s *Session, req habits.CreateHabitRequest) (*habits.Habit, error) {
	var h habits.Habit
	if err := c.authed(ctx, s, http.MethodPost, "/api/v1/habits", req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateHabit changes a habit's editable fields.
func (c *Client) UpdateHabit(ctx context.Context, s *Session, id string, req habits.UpdateHabitRequest) (*habits.Habit, error) {
	var h habits.Habit
	if err := c.authed(ctx, s, http.MethodPut, "/api/v1/habits/"+url.PathEscape(id), req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// DeleteHabit removes a habit.
func (c *Client) DeleteHabit(ctx context.Context, s *Session, id string) error {
	return c.authed(ctx, s, http.MethodDelete, "/api/v1/habits/"+url.PathEscape(id), nil, nil)
}

// ToggleHabit marks today complete or undoes it, returning the new state.
func (c *Client) ToggleHabit(ctx context.Context, s *Session, id string) (*habits.Habit, error) {
	var h habits.Habit
	if err := c.authed(ctx, s, http.MethodPut, "/api/v1/habits/"+url.PathEscape(id)+"/complete", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Week fetches the dashboard grid for the week containing date. A zero date
// means the server's today.
func (c *Client) Week(ctx context.Context, s *Session, date time.Time) (*dashboard.Week, error) {
	path := "/api/v1/dashboard/week"
	if !date.IsZero() {
		path += "?date=" + date.Format(dashboard.DateLayout)
	}
	var week dashboard.Week
	if err := c.authed(ctx, s, http.MethodGet, path, nil, &week); err != nil {
		return nil, err
	}
	return &week, nil
}

// authed performs an authenticated call, refreshing the session first when it
// is close to expiry and once more if the server refuses the access token.
// A 401 without a token challenge (writing someone else's habit) is returned
// as is, without a refresh or a second attempt.
func (c *Client) authed(ctx context.Context, s *Session, method, path string, body, result interface{}) error {
	if s == nil || s.AccessToken == "" {
		return &APIError{StatusCode: http.StatusUnauthorized, Message: "not logged in"}
	}
	if s.RefreshToken != "" && s.expiresWithin(c.now(), c.RefreshSkew) {
		if err := c.Refresh(ctx, s); err != nil {
			return err
		}
	}

	err := c.do(ctx, s, method, path, body, result)
	if tokenRejected(err) && s.RefreshToken != "" {
		if rerr := c.Refresh(ctx, s); rerr != nil {
			return err
		}
		return c.do(ctx, s, method, path, body, result)
	}
	return err
}

func (c *Client) do(ctx context.Context, s *Session, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		req.Header.Set("Authorization", "Bearer "+s.AccessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if jsonErr := json.Unmarshal(data, &env); jsonErr != nil && resp.StatusCode < 400 {
		return fmt.Errorf("decode response: %w", jsonErr)
	}
	if resp.StatusCode >= 400 {
		msg := env.Error
		if msg == "" {
			msg = string(bytes.TrimSpace(data))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg, Challenge: resp.Header.Get("WWW-Authenticate")}
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
