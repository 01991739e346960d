// Package client is a Go client for the catalog API. Reads are cached per
// resource key; a successful mutation drops the keys it affects so the next
// read refetches.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/templui/incomeatlas/internal/model"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	cache map[string][]byte
}

type Option func(*Client)

// WithHTTPClient uses a copy of hc for requests; hc itself is never
// modified. A copy without a cookie jar gets a fresh one, since the session
// lives in a cookie. A jar already set on hc is shared.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		copied := *hc
		c.http = &copied
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		cache:   make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}

	return c, nil
}

// StrategyQuery filters Strategies. Zero values mean no filter.
type StrategyQuery struct {
	Category model.Category
	Search   string
}

func (q StrategyQuery) values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", string(q.Category))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}

func (c *Client) Strategies(ctx context.Context, q StrategyQuery) ([]model.Strategy, error) {
	query := q.values().Encode()
	var out []model.Strategy
	err := c.cachedGet(ctx, "strategies?"+query, withQuery("/api/strategies", query), &out)
	return out, err
}

func (c *Client) Strategy(ctx context.Context, id string) (*model.Strategy, error) {
	var out model.Strategy
	err := c.cachedGet(ctx, "strategies/"+id, "/api/strategies/"+url.PathEscape(id), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context, category model.Category) (*model.CatalogStats, error) {
	query := StrategyQuery{Category: category}.values().Encode()
	var out model.CatalogStats
	err := c.cachedGet(ctx, "stats?"+query, withQuery("/api/stats", query), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Progress(ctx context.Context) ([]model.UserProgress, error) {
	var out []model.UserProgress
	err := c.cachedGet(ctx, "progress", "/api/progress", &out)
	return out, err
}

// ProgressFor returns nil when the session has no progress on the strategy.
func (c *Client) ProgressFor(ctx context.Context, strategyID string) (*model.UserProgress, error) {
	var out *model.UserProgress
	err := c.cachedGet(ctx, "progress/"+strategyID, "/api/progress/"+url.PathEscape(strategyID), &out)
	return out, err
}

// ProgressChange is a partial progress update. Nil fields are not sent and
// keep their stored value.
type ProgressChange struct {
	Status      *model.ProgressStatus `json:"status,omitempty"`
	Notes       *string               `json:"notes,omitempty"`
	StartedAt   *string               `json:"startedAt,omitempty"`
	CompletedAt *string               `json:"completedAt,omitempty"`
	Results     *string               `json:"results,omitempty"`
}

func (c *Client) UpdateProgress(ctx context.Context, strategyID string, change ProgressChange) (*model.UserProgress, error) {
	var out model.UserProgress
	err := c.send(ctx, http.MethodPost, "/api/progress/"+url.PathEscape(strategyID), change, &out)
	if err != nil {
		return nil, err
	}
	c.invalidate("progress", "progress/"+strategyID)
	return &out, nil
}

func (c *Client) DeleteProgress(ctx context.Context, strategyID string) error {
	err := c.send(ctx, http.MethodDelete, "/api/progress/"+url.PathEscape(strategyID), nil, nil)
	if err != nil {
		return err
	}
	c.invalidate("progress", "progress/"+strategyID)
	return nil
}

func (c *Client) Bookmarks(ctx context.Context) ([]model.UserBookmark, error) {
	var out []model.UserBookmark
	err := c.cachedGet(ctx, "bookmarks", "/api/bookmarks", &out)
	return out, err
}

func (c *Client) BookmarkStatus(ctx context.Context, strategyID string) (bool, error) {
	var out struct {
		IsBookmarked bool `json:"isBookmarked"`
	}
	err := c.cachedGet(ctx, "bookmarks/"+strategyID, "/api/bookmarks/"+url.PathEscape(strategyID), &out)
	return out.IsBookmarked, err
}

// AddBookmark fails with an *APIError of status 409 when the strategy is
// already bookmarked.
func (c *Client) AddBookmark(ctx context.Context, strategyID string) (*model.UserBookmark, error) {
	var out model.UserBookmark
	err := c.send(ctx, http.MethodPost, "/api/bookmarks/"+url.PathEscape(strategyID), nil, &out)
	if err != nil {
		return nil, err
	}
	c.invalidate("bookmarks", "bookmarks/"+strategyID)
	return &out, nil
}

func (c *Client) RemoveBookmark(ctx context.Context, strategyID string) error {
	err := c.send(ctx, http.MethodDelete, "/api/bookmarks/"+url.PathEscape(strategyID), nil, nil)
	if err != nil {
		return err
	}
	c.invalidate("bookmarks", "bookmarks/"+strategyID)
	return nil
}

// cachedGet decodes the cached body for key, fetching path on a miss. Only
// successful responses are cached.
func (c *Client) cachedGet(ctx context.Context, key, path string, out any) error {
	c.mu.Lock()
	body, ok := c.cache[key]
	c.mu.Unlock()

	if !ok {
		var err error
		body, err = c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.cache[key] = body
		c.mu.Unlock()
	}

	err := json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return nil, apiErr
	}

	return body, nil
}

func (c *Client) invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.cache, key)
	}
}
