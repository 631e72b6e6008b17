package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kidandcat/tracker/internal/localstate"
)

const DefaultBaseURL = "http://localhost:8080/api/v1"

// Client talks JSON to the tracker REST API. The bearer token is read from
// local state on every request, and a 401 response removes it.
type Client struct {
	baseURL    string
	state      localstate.Store
	httpClient *http.Client
	log        *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func New(baseURL string, state localstate.Store, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		state:      state,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// publicPaths never need a token, so a missing one is not worth a warning.
var publicPaths = map[string]bool{
	"/auth/login":    true,
	"/auth/register": true,
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := localstate.Token(ctx, c.state)
	if err != nil {
		c.log.Warn("read auth token", zap.Error(err))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if !publicPaths[routeOf(path)] {
		c.log.Warn("no auth token for request",
			zap.String("method", method),
			zap.String("path", path),
		)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "network error", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(ctx, method, path, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) statusError(ctx context.Context, method, path string, status int, data []byte) error {
	msg := errorMessage(data)

	switch {
	case status == http.StatusUnauthorized:
		// The response already arrived; clear the token even if ctx is done.
		if err := c.state.Delete(context.WithoutCancel(ctx), localstate.TokenKey); err != nil {
			c.log.Warn("clear auth token", zap.Error(err))
		}
		if msg == "" {
			msg = "unauthorized"
		}
		c.log.Info("session rejected by server", zap.String("method", method), zap.String("path", path))
		return &Error{Kind: KindUnauthorized, Status: status, Message: msg}
	case status >= 500:
		if msg == "" {
			msg = "server error"
		}
		return &Error{Kind: KindNetwork, Status: status, Message: msg}
	case status == http.StatusNotFound:
		if msg == "" {
			msg = "resource not found"
		}
		return &Error{Kind: KindNotFound, Status: status, Message: msg}
	default:
		if msg == "" {
			msg = "unknown error"
		}
		return &Error{Kind: KindValidation, Status: status, Message: msg}
	}
}

func routeOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

func pathf(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
