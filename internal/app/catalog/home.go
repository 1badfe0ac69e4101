package catalog

import (
	"context"
	"errors"

	"github.com/okian/runboard/internal/domain/types"
	"golang.org/x/sync/errgroup"
)

// Home fetches the first catalog page and the popular games concurrently.
// Upstream failures are reported inside each section; only cancellation of
// ctx fails the whole call.
func (c *Catalog) Home(ctx context.Context) (types.Home, error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := c.FetchGames(gctx)
		return cancelled(err)
	})
	g.Go(func() error {
		_, err := c.Popular(gctx)
		return cancelled(err)
	})
	if err := g.Wait(); err != nil {
		return types.Home{}, err
	}

	return types.Home{
		Catalog: c.Page(),
		Popular: c.carousel.View(),
	}, nil
}

func cancelled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
