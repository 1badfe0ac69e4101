package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/okian/runboard/internal/adapters/speedrun"
	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/internal/domain/types"
	"github.com/okian/runboard/pkg/logger"
)

// Popular ranks games by how many of the most recently verified runs they
// received and loads the result into the carousel.
func (c *Catalog) Popular(ctx context.Context) ([]types.GameCard, error) {
	list, err := c.src.Runs(ctx, speedrun.RunsQuery{
		Status:    "verified",
		OrderBy:   "verify-date",
		Direction: "desc",
		Max:       c.sample,
		EmbedGame: true,
	})
	if err != nil {
		c.carousel.fail(errorText(err))
		c.logger.Warn(ctx, "popular games fetch failed", logger.Error(err))
		return nil, err
	}
	cards := RankPopular(list, c.top)
	c.carousel.Set(cards)
	return cards, nil
}

// RankPopular counts runs per embedded game and returns the top games by
// count. Ties keep first-seen order. Runs without embedded game data are
// skipped.
func RankPopular(list []model.Run, top int) []types.GameCard {
	type tally struct {
		game  *model.Game
		count int
	}
	var order []string
	counts := make(map[string]*tally)
	for _, r := range list {
		g := r.Game.Data
		if g == nil || g.ID == "" {
			continue
		}
		t, ok := counts[g.ID]
		if !ok {
			t = &tally{game: g}
			counts[g.ID] = t
			order = append(order, g.ID)
		}
		t.count++
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b].count - counts[a].count
	})
	if top > 0 && len(order) > top {
		order = order[:top]
	}

	out := make([]types.GameCard, 0, len(order))
	for _, id := range order {
		t := counts[id]
		card := Card(*t.game)
		card.RunCount = t.count
		out = append(out, card)
	}
	return out
}

// Carousel rotates through a list of games, wrapping at both ends.
type Carousel struct {
	mu     sync.Mutex
	games  []types.GameCard
	index  int
	errMsg string
}

// Set replaces the games and rewinds to the first one.
func (c *Carousel) Set(games []types.GameCard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.games = games
	c.index = 0
	c.errMsg = ""
}

func (c *Carousel) fail(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = msg
}

// Next moves forward one game. It is a no-op when empty.
func (c *Carousel) Next() types.Carousel {
	c.mu.Lock()
	if n := len(c.games); n > 0 {
		c.index = (c.index + 1) % n
	}
	c.mu.Unlock()
	return c.View()
}

// Prev moves back one game. It is a no-op when empty.
func (c *Carousel) Prev() types.Carousel {
	c.mu.Lock()
	if n := len(c.games); n > 0 {
		c.index = (c.index - 1 + n) % n
	}
	c.mu.Unlock()
	return c.View()
}

// Current returns the game under the cursor.
func (c *Carousel) Current() (types.GameCard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.games) == 0 {
		return types.GameCard{}, false
	}
	return c.games[c.index], true
}

// View renders the carousel.
func (c *Carousel) View() types.Carousel {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := types.Carousel{
		Index: c.index,
		Games: append([]types.GameCard{}, c.games...),
		Error: c.errMsg,
	}
	if len(c.games) > 0 {
		cur := c.games[c.index]
		v.Current = &cur
	}
	return v
}
