// Package speedrun is a read-only client for the speedrun.com REST API.
package speedrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/runboard/internal/domain/locator"
	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/pkg/logger"
	"github.com/okian/runboard/pkg/metrics"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://www.speedrun.com/api/v1"

	defaultUserAgent = "runboard/1.0"
	defaultTimeout   = 15 * time.Second
	defaultRPS       = 1.5
	defaultBurst     = 5

	// Error bodies beyond this are not worth reading for a message.
	maxErrorBody = 64 << 10
)

// Client is a rate-limited speedrun.com API client.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	baseURL   string
	userAgent string
	logger    logger.Logger

	cacheTTL   time.Duration
	categories *categoryCache
}

// New creates a client with the public API defaults.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
		logger:    logger.Get().Named("speedrun"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cacheTTL > 0 {
		cache, err := newCategoryCache(c.cacheTTL)
		if err != nil {
			c.logger.Warn(context.Background(), "category cache disabled", logger.Error(err))
		} else {
			c.categories = cache
		}
	}
	return c
}

// Close releases the category cache.
func (c *Client) Close() {
	c.categories.close()
}

// BaseURL returns the API root in use.
func (c *Client) BaseURL() string { return c.baseURL }

// Categories lists every category of a game in upstream order.
func (c *Client) Categories(ctx context.Context, gameID string) ([]model.Category, error) {
	if cats, ok := c.categories.get(gameID); ok {
		metrics.RecordUpstreamRequest("categories", "cached", 0)
		return cats, nil
	}
	var cats []model.Category
	path := "/games/" + url.PathEscape(gameID) + "/categories"
	if err := c.get(ctx, "categories", path, nil, &cats); err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []model.Category{}
	}
	c.categories.put(gameID, cats)
	return cats, nil
}

type leaderboardData struct {
	Runs []struct {
		Place int       `json:"place"`
		Run   model.Run `json:"run"`
	} `json:"runs"`
}

// Leaderboard returns the ranked runs of one category. Runs come back
// unwrapped, in upstream rank order.
func (c *Client) Leaderboard(ctx context.Context, gameID, categoryID string) ([]model.Run, error) {
	var data leaderboardData
	path := "/leaderboards/" + url.PathEscape(gameID) + "/category/" + url.PathEscape(categoryID)
	if err := c.get(ctx, "leaderboard", path, nil, &data); err != nil {
		return nil, err
	}
	out := make([]model.Run, 0, len(data.Runs))
	for _, r := range data.Runs {
		out = append(out, r.Run)
	}
	return out, nil
}

// LeaderboardByURL fetches the leaderboard a category link points at. Only
// the game and category are taken from the link; the request always goes to
// the configured API root.
func (c *Client) LeaderboardByURL(ctx context.Context, link string) ([]model.Run, error) {
	ref, ok := locator.ParseLeaderboardURL(link)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLocator, link)
	}
	return c.Leaderboard(ctx, ref.GameID, ref.CategoryID)
}

// GamesQuery pages through the game catalog.
type GamesQuery struct {
	OrderBy   string
	Direction string
	Max       int
	Offset    int
}

func (q GamesQuery) values() url.Values {
	v := url.Values{}
	if q.OrderBy != "" {
		v.Set("orderby", q.OrderBy)
	}
	if q.Direction != "" {
		v.Set("direction", q.Direction)
	}
	if q.Max > 0 {
		v.Set("max", strconv.Itoa(q.Max))
	}
	v.Set("offset", strconv.Itoa(q.Offset))
	return v
}

// Games returns one page of the catalog.
func (c *Client) Games(ctx context.Context, q GamesQuery) ([]model.Game, error) {
	var games []model.Game
	if err := c.get(ctx, "games", "/games", q.values(), &games); err != nil {
		return nil, err
	}
	if games == nil {
		games = []model.Game{}
	}
	return games, nil
}

// RunsQuery filters the global run listing.
type RunsQuery struct {
	Status    string
	OrderBy   string
	Direction string
	Max       int
	EmbedGame bool
}

func (q RunsQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.OrderBy != "" {
		v.Set("orderby", q.OrderBy)
	}
	if q.Direction != "" {
		v.Set("direction", q.Direction)
	}
	if q.Max > 0 {
		v.Set("max", strconv.Itoa(q.Max))
	}
	if q.EmbedGame {
		v.Set("embed", "game")
	}
	return v
}

// Runs returns runs matching q.
func (c *Client) Runs(ctx context.Context, q RunsQuery) ([]model.Run, error) {
	var runs []model.Run
	if err := c.get(ctx, "runs", "/runs", q.values(), &runs); err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []model.Run{}
	}
	return runs, nil
}

// get performs a rate-limited GET and decodes the {"data": ...} envelope
// into out. A missing data member leaves out untouched.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug(ctx, "speedrun request",
		logger.String("endpoint", endpoint),
		logger.String("url", target),
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error", latency)
		metrics.RecordErrorByComponent("speedrun", "transport")
		return fmt.Errorf("%w: %s: %w", ErrRequest, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordUpstreamRequest(endpoint, strconv.Itoa(resp.StatusCode), latency)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordErrorByComponent("speedrun", "status_"+strconv.Itoa(resp.StatusCode))
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &StatusError{
			Op:      endpoint,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, body),
			URL:     target,
		}
		c.logger.Warn(ctx, "speedrun request failed",
			logger.String("endpoint", endpoint),
			logger.Int("status", resp.StatusCode),
			logger.String("message", se.Message),
		)
		return se
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		metrics.RecordErrorByComponent("speedrun", "decode")
		return fmt.Errorf("%w: %s: %w", ErrDecode, endpoint, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		metrics.RecordErrorByComponent("speedrun", "decode")
		return fmt.Errorf("%w: %s: %w", ErrDecode, endpoint, err)
	}
	return nil
}

// errorMessage prefers the API's own {"message": ...} over the status text.
func errorMessage(status int, body []byte) string {
	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return http.StatusText(status)
}
