// Package catalog pages through the game catalog and ranks popular games.
package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/okian/runboard/internal/adapters/speedrun"
	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/internal/domain/types"
	"github.com/okian/runboard/pkg/logger"
)

const (
	defaultPageSize = 50
	defaultMax      = 200
	defaultSample   = 200
	defaultTop      = 20
)

// Source lists games and runs. *speedrun.Client satisfies it.
type Source interface {
	Games(ctx context.Context, q speedrun.GamesQuery) ([]model.Game, error)
	Runs(ctx context.Context, q speedrun.RunsQuery) ([]model.Run, error)
}

// Catalog accumulates newest-first catalog pages for one viewer and holds
// its popular-games carousel.
type Catalog struct {
	src      Source
	pageSize int
	max      int
	sample   int
	top      int
	logger   logger.Logger

	mu       sync.Mutex
	games    []model.Game
	offset   int
	hasMore  bool
	started  bool
	fetching bool
	errMsg   string
	filter   string

	carousel *Carousel
}

// New creates an empty catalog reading from src.
func New(src Source, opts ...Option) *Catalog {
	c := &Catalog{
		src:      src,
		pageSize: defaultPageSize,
		max:      defaultMax,
		sample:   defaultSample,
		top:      defaultTop,
		logger:   logger.Get().Named("catalog"),
		carousel: &Carousel{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchGames loads the first page once. Later calls return the current
// listing without refetching.
func (c *Catalog) FetchGames(ctx context.Context) (types.GamePage, error) {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if started {
		return c.Page(), nil
	}
	return c.fetch(ctx)
}

// LoadMore appends the next page. It is a no-op when the listing is
// exhausted.
func (c *Catalog) LoadMore(ctx context.Context) (types.GamePage, error) {
	c.mu.Lock()
	more := c.hasMore || !c.started
	c.mu.Unlock()
	if !more {
		return c.Page(), nil
	}
	return c.fetch(ctx)
}

func (c *Catalog) fetch(ctx context.Context) (types.GamePage, error) {
	c.mu.Lock()
	if c.fetching {
		c.mu.Unlock()
		return c.Page(), ErrBusy
	}
	c.fetching = true
	c.started = true
	c.errMsg = ""
	offset := c.offset
	c.mu.Unlock()

	batch, err := c.src.Games(ctx, speedrun.GamesQuery{
		OrderBy:   "created",
		Direction: "desc",
		Max:       c.pageSize,
		Offset:    offset,
	})

	c.mu.Lock()
	c.fetching = false
	if err != nil {
		c.errMsg = errorText(err)
		c.mu.Unlock()
		c.logger.Warn(ctx, "catalog fetch failed", logger.Int("offset", offset), logger.Error(err))
		return c.Page(), err
	}
	c.games = append(c.games, batch...)
	c.offset += c.pageSize
	c.hasMore = len(batch) == c.pageSize && c.offset < c.max
	c.mu.Unlock()

	c.logger.Debug(ctx, "catalog page fetched",
		logger.Int("offset", offset),
		logger.Int("batch", len(batch)),
	)
	return c.Page(), nil
}

// Filter narrows the listing to names containing term, ignoring case. An
// empty term shows everything.
func (c *Catalog) Filter(term string) types.GamePage {
	c.mu.Lock()
	c.filter = strings.TrimSpace(term)
	c.mu.Unlock()
	return c.Page()
}

// Page renders the accumulated listing.
func (c *Catalog) Page() types.GamePage {
	c.mu.Lock()
	defer c.mu.Unlock()

	needle := strings.ToLower(c.filter)
	page := types.GamePage{
		Games:   make([]types.GameCard, 0, len(c.games)),
		Offset:  c.offset,
		HasMore: c.hasMore,
		Error:   c.errMsg,
	}
	for _, g := range c.games {
		card := Card(g)
		if needle != "" && !strings.Contains(strings.ToLower(card.Name), needle) {
			continue
		}
		page.Games = append(page.Games, card)
	}
	return page
}

// Carousel returns the popular-games carousel.
func (c *Catalog) Carousel() *Carousel { return c.carousel }
