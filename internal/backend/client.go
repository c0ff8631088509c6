// Package backend is the HTTP client of the planner server. It speaks the
// books/tags/schedule contract with a bearer token and throttles its own
// requests.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/studyplanner/planner/internal/config"
	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/models"
)

const defaultTimeout = 15 * time.Second

// Client is an authenticated planner API client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// Options tunes a Client. Zero values pick the defaults.
type Options struct {
	Timeout    time.Duration
	Rate       float64 // requests per second, 0 disables throttling
	Burst      int
	HTTPClient *http.Client
}

// New creates a Client for the server at baseURL.
func New(baseURL, token string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
		limiter: limiter,
	}
}

// NewFromConfig creates a Client from the backend section of cfg.
func NewFromConfig(cfg *config.Config) *Client {
	return New(cfg.Backend.URL, cfg.Backend.Token, Options{
		Timeout: cfg.Backend.Timeout,
		Rate:    cfg.Backend.Rate,
		Burst:   cfg.Backend.Burst,
	})
}

// Token returns the bearer token in use.
func (c *Client) Token() string { return c.token }

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) { c.token = token }

// BaseURL returns the server URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// FeedURL returns the websocket URL of the schedule change feed.
func (c *Client) FeedURL() string {
	u := c.baseURL + "/ws/schedule"
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// AuthHeader returns the headers needed to open the change feed.
func (c *Client) AuthHeader() http.Header {
	h := http.Header{}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	ExpiresIn int          `json:"expires_in"`
}

// Login exchanges credentials for a session token and starts using it.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var res LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/login", body, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Signup registers a student account. It does not log in.
func (c *Client) Signup(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	body := map[string]string{"username": username, "password": password, "confirm_password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/signup", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout ends the current session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/users/logout", nil, nil)
	c.token = ""
	return err
}

// Me returns the user of the current session.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ServerVersion returns the version the server reports at /api/version.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	var out struct {
		Version string `json:"version"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/version", nil, &out); err != nil {
		return "", err
	}
	return out.Version, nil
}

// ListBooks fetches the caller's books.
func (c *Client) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := c.doJSON(ctx, http.MethodGet, "/api/books/", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// NewBook is the body of a book creation request.
type NewBook struct {
	Title    string `json:"title"`
	PageFrom int    `json:"pageFrom"`
	PageTo   int    `json:"pageTo"`
	Duration int    `json:"duration"`
	TagID    *int64 `json:"tag_id,omitempty"`
}

// CreateBook registers a new book.
func (c *Client) CreateBook(ctx context.Context, book NewBook) (*models.Book, error) {
	var created models.Book
	if err := c.doJSON(ctx, http.MethodPost, "/api/books/", book, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteBook removes a book together with its blocks.
func (c *Client) DeleteBook(ctx context.Context, bookID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/books/%d/", bookID), nil, nil)
}

// ListTags fetches all tags.
func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.doJSON(ctx, http.MethodGet, "/api/tags/", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag creates a tag. An empty color lets the server pick the default.
func (c *Client) CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	var created models.Tag
	if err := c.doJSON(ctx, http.MethodPost, "/api/tags/", tag, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListSchedule fetches the caller's raw blocks. Their tags are ids only.
func (c *Client) ListSchedule(ctx context.Context) ([]models.ScheduledBlock, error) {
	var blocks []models.ScheduledBlock
	if err := c.doJSON(ctx, http.MethodGet, "/schedule/", nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// ScheduleBook asks the server to generate the book's blocks from start
// (YYYY-MM-DD).
func (c *Client) ScheduleBook(ctx context.Context, bookID int64, start string) error {
	body := map[string]any{"book_id": bookID, "start_date": start}
	return c.doJSON(ctx, http.MethodPost, "/schedule/book/", body, nil)
}

// MoveBlock moves a block to date (YYYY-MM-DD).
func (c *Client) MoveBlock(ctx context.Context, blockID int64, date string) error {
	body := map[string]any{"date_gregorian": date}
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/schedule/block/%d/", blockID), body, nil)
}

// RetagBlock sets a block's tag. A nil tagID clears it.
func (c *Client) RetagBlock(ctx context.Context, blockID int64, tagID *int64) error {
	body := map[string]*int64{"tag_id": tagID}
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/schedule/%d/tag/", blockID), body, nil)
}

// ClearSchedule removes all of the caller's blocks.
func (c *Client) ClearSchedule(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/schedule/clear/", nil, nil)
}

// doJSON sends a request and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Internal("encode request", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return errors.BackendUnavailable(method+" "+path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return errors.BackendUnavailable(method+" "+path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.BackendUnavailable(method+" "+path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(method, path, resp); err != nil {
		return err
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.BackendUnavailable("decode "+method+" "+path, err)
		}
	}
	return nil
}

type errorBody struct {
	Error   string      `json:"error"`
	Code    errors.Code `json:"code"`
	Details any         `json:"details"`
}

// checkStatus returns a domain error for non-2xx responses. A 401 is
// Unauthorized; anything else is BackendUnavailable wrapping the server's
// own error so that callers can still match its code.
func checkStatus(method, path string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := strings.TrimSpace(eb.Error)
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.Unauthorized(msg)
	}

	var cause error = fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	if eb.Code != "" {
		cause = (&errors.Error{Code: eb.Code, Message: msg}).WithDetails(eb.Details)
	}
	return errors.BackendUnavailable(method+" "+path, cause)
}
