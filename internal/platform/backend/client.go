// Package backend talks to the procurement REST backend.
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

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const maxResponseBytes = 8 << 20

// TokenSource resolves the bearer token for an outgoing call.
type TokenSource func(ctx context.Context) string

// StaticToken returns a TokenSource that always yields token.
func StaticToken(token string) TokenSource {
	return func(context.Context) string { return token }
}

// Config collects client dependencies.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource
	Logger     *slog.Logger
	HTTPClient *http.Client
	// OnUnauthorized runs when the backend answers 401/403 for a request context.
	OnUnauthorized func(ctx context.Context)
}

// Client wraps interactions with the backend API. It never retries.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	logger         *slog.Logger
	onUnauthorized func(ctx context.Context)
}

// NewClient constructs a new client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:     httpClient,
		tokens:         cfg.Tokens,
		logger:         logger,
		onUnauthorized: cfg.OnUnauthorized,
	}
}

// Get issues a GET and decodes the unwrapped data into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Stream issues a GET and hands back the raw response for proxying. The caller closes the body.
func (c *Client) Stream(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, query), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.roundTrip(req, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer func() {
			_ = resp.Body.Close()
		}()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return nil, c.classify(ctx, decodeResponse(req.Method, path, resp.StatusCode, raw, nil))
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, path, out)
}

func (c *Client) send(req *http.Request, path string, out any) error {
	resp, err := c.roundTrip(req, path)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Method: req.Method, Path: path, Err: err}
	}
	return c.classify(req.Context(), decodeResponse(req.Method, path, resp.StatusCode, raw, out))
}

func (c *Client) roundTrip(req *http.Request, path string) (*http.Response, error) {
	ctx := req.Context()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID(ctx))
	if c.tokens != nil {
		if token := c.tokens(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("backend: %s %s: %w", req.Method, path, ctxErr)
		}
		c.logger.Warn("backend unreachable", slog.String("method", req.Method), slog.String("path", path), slog.Any("error", err))
		return nil, &NetworkError{Method: req.Method, Path: path, Err: err}
	}
	c.logger.Debug("backend call",
		slog.String("method", req.Method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

func (c *Client) classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnauthorized) && c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
	return err
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
