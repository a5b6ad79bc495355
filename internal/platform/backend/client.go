// Package backend is the HTTP client for the flashcard and payment backend.
//
// It translates transport failures and non-success statuses into the domain
// error taxonomy so callers never inspect raw HTTP responses.
package backend

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

	"github.com/phrazzld/study-buddy/internal/domain"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Paths are the backend routes. Zero fields fall back to DefaultPaths.
type Paths struct {
	Generate string
	List     string
	Save     string
	Delete   string // formatted with the card id
	ClearAll string
	Health   string
	Charge   string
}

// DefaultPaths matches the reference backend's routes.
var DefaultPaths = Paths{
	Generate: "/generate_flashcards",
	List:     "/get_flashcards",
	Save:     "/save_flashcard",
	Delete:   "/delete_flashcard/%d",
	ClearAll: "/clear_all_flashcards",
	Health:   "/health",
	Charge:   "/create_payment",
}

// Client talks to the flashcard and payment backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	paths      Paths
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPaths overrides individual routes.
func WithPaths(p Paths) Option {
	return func(c *Client) {
		if p.Generate != "" {
			c.paths.Generate = p.Generate
		}
		if p.List != "" {
			c.paths.List = p.List
		}
		if p.Save != "" {
			c.paths.Save = p.Save
		}
		if p.Delete != "" {
			c.paths.Delete = p.Delete
		}
		if p.ClearAll != "" {
			c.paths.ClearAll = p.ClearAll
		}
		if p.Health != "" {
			c.paths.Health = p.Health
		}
		if p.Charge != "" {
			c.paths.Charge = p.Charge
		}
	}
}

// NewClient creates a Client for baseURL. timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend base URL %q", baseURL)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		paths:      DefaultPaths,
		logger:     logger.With("component", "backend_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends a request and returns the status and body. Transport failures are
// reported as domain.ErrUnreachable.
func (c *Client) do(ctx context.Context, method, path string, in any) (int, []byte, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding %s request: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("backend request failed",
			"method", method,
			"path", path,
			"error", err)
		return 0, nil, fmt.Errorf("%w: %s %s: %v", domain.ErrUnreachable, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: reading %s response: %v", domain.ErrUnreachable, path, err)
	}

	log.Debug("backend request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	return resp.StatusCode, data, nil
}

// serviceError builds a *domain.ServiceError, lifting the backend's message.
func serviceError(op string, status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.Error
	if msg == "" {
		msg = eb.Message
	}
	return &domain.ServiceError{Operation: op, StatusCode: status, Message: msg}
}

func success(status int) bool {
	return status >= 200 && status < 300
}
