package speedrun

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/okian/runboard/internal/domain/model"
)

const (
	cacheCounters    = 10_000
	cacheMaxCost     = 1_000 // games
	cacheBufferItems = 64
)

// categoryCache remembers category lists per game for a short while. Every
// viewer that opens the same game asks for the same list first.
type categoryCache struct {
	store *ristretto.Cache[string, []model.Category]
	ttl   time.Duration
}

func newCategoryCache(ttl time.Duration) (*categoryCache, error) {
	store, err := ristretto.NewCache(&ristretto.Config[string, []model.Category]{
		NumCounters: cacheCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
		// each game costs 1, so MaxCost counts games
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &categoryCache{store: store, ttl: ttl}, nil
}

func (c *categoryCache) get(gameID string) ([]model.Category, bool) {
	if c == nil {
		return nil, false
	}
	cats, ok := c.store.Get(gameID)
	if !ok {
		return nil, false
	}
	return append([]model.Category(nil), cats...), true
}

func (c *categoryCache) put(gameID string, cats []model.Category) {
	if c == nil {
		return
	}
	c.store.SetWithTTL(gameID, cats, 1, c.ttl)
	c.store.Wait()
}

func (c *categoryCache) close() {
	if c == nil {
		return
	}
	c.store.Close()
}
