// Package httpapi implements store.API against a JHipster-style REST backend:
// GET/POST/PUT on /api/{collection}[/{id}], listings paged through
// page/size/sort query parameters and errors reported as problem+json.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/store"
)

// Client talks to the REST backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	timeout time.Duration
	logger  *zap.Logger
}

var _ store.API = (*Client)(nil)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithBearerToken attaches an Authorization header to every request.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("httpapi: base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(trimmed, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpapi: parse base url: %w", err)
	}

	c := &Client{
		baseURL: parsed,
		http:    http.DefaultClient,
		timeout: 30 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// FetchEntity implements store.API.
func (c *Client) FetchEntity(ctx context.Context, collection, id string) (entity.Entity, error) {
	var out entity.Entity
	err := c.do(ctx, http.MethodGet, c.resource(collection, id), nil, nil, &out)
	return out, err
}

// CreateEntity implements store.API.
func (c *Client) CreateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error) {
	var out entity.Entity
	err := c.do(ctx, http.MethodPost, c.resource(collection, ""), nil, e, &out)
	return out, err
}

// UpdateEntity implements store.API.
func (c *Client) UpdateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error) {
	id := e.ID()
	if id == "" {
		return nil, fmt.Errorf("httpapi: update %s: id is required", collection)
	}
	var out entity.Entity
	err := c.do(ctx, http.MethodPut, c.resource(collection, id), nil, e, &out)
	return out, err
}

// FetchCollection implements store.API.
func (c *Client) FetchCollection(ctx context.Context, collection string, page store.PageParams) ([]entity.Entity, error) {
	query := url.Values{}
	if page.Size > 0 {
		query.Set("page", strconv.Itoa(page.Page))
		query.Set("size", strconv.Itoa(page.Size))
	}
	if sort := strings.TrimSpace(page.Sort); sort != "" {
		query.Set("sort", sort)
	}
	query.Set("cacheBuster", strconv.FormatInt(time.Now().UnixMilli(), 10))

	var out []entity.Entity
	if err := c.do(ctx, http.MethodGet, c.resource(collection, ""), query, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.Entity{}
	}
	return out, nil
}

// resource returns the escaped path of a collection or one of its entities.
func (c *Client) resource(collection, id string) string {
	path := "/api/" + url.PathEscape(collection)
	if id != "" {
		path += "/" + url.PathEscape(id)
	}
	return path
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqCtx := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := *c.baseURL
	target.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + path
	unescaped, err := url.PathUnescape(target.RawPath)
	if err != nil {
		return fmt.Errorf("httpapi: path %s: %w", path, err)
	}
	target.Path = unescaped
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpapi: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target.String(), reader)
	if err != nil {
		return err
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
		return fmt.Errorf("httpapi: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpapi: read response: %w", err)
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeProblem(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpapi: decode response: %w", err)
	}
	return nil
}
