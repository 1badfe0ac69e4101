package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/internal/domain/types"
	"github.com/okian/runboard/pkg/logger"
)

// eventSettle is how long Run waits for queued events before draining them.
const eventSettle = 200 * time.Millisecond

// Run opens a session on the server, prints what cfg asks for and closes
// the session again.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	log := logger.Get().Named("cli")
	log.Info(ctx, "starting runboard client",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("link", cfg.Link),
		logger.String("gameID", cfg.GameID),
		logger.Int("pages", cfg.Pages),
		logger.Duration("timeout", cfg.Timeout),
	)

	c := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := c.Do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	var snap types.Snapshot
	if err := c.Do(ctx, http.MethodPost, "/sessions", nil, &snap); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	base := "/sessions/" + url.PathEscape(snap.SessionID)
	defer func() {
		// the run context may already be done
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Timeout)
		defer cancel()
		if err := c.Do(cctx, http.MethodDelete, base, nil, nil); err != nil {
			log.Warn(ctx, "failed to close session", logger.Error(err))
		}
	}()

	if err := printBoard(ctx, c, base, cfg, out); err != nil {
		return err
	}
	if cfg.Games {
		var page types.GamePage
		if err := c.Do(ctx, http.MethodGet, base+"/games", nil, &page); err != nil {
			return fmt.Errorf("fetch games: %w", err)
		}
		if err := RenderGames(out, "newest games", page.Games, page.Error); err != nil {
			return err
		}
	}
	if cfg.Popular {
		var car types.Carousel
		if err := c.Do(ctx, http.MethodGet, base+"/popular", nil, &car); err != nil {
			return fmt.Errorf("fetch popular games: %w", err)
		}
		if err := RenderGames(out, "popular games", car.Games, car.Error); err != nil {
			return err
		}
	}

	if cfg.Verbose {
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for events: %w", ctx.Err())
		case <-time.After(eventSettle):
		}
		var resp struct {
			Events []model.Event `json:"events"`
		}
		if err := c.Do(ctx, http.MethodGet, base+"/events", nil, &resp); err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}
		if err := RenderEvents(out, resp.Events); err != nil {
			return err
		}
	}
	return nil
}

// printBoard loads the requested leaderboard and prints cfg.Pages pages.
func printBoard(ctx context.Context, c *Client, base string, cfg *Config, out io.Writer) error {
	var snap types.Snapshot
	switch {
	case cfg.Link != "":
		if err := c.Do(ctx, http.MethodPost, base+"/load", map[string]string{"url": cfg.Link}, &snap); err != nil {
			return fmt.Errorf("load leaderboard: %w", err)
		}
	case cfg.GameID != "":
		if err := c.Do(ctx, http.MethodPost, base+"/game", map[string]string{"game_id": cfg.GameID}, &snap); err != nil {
			return fmt.Errorf("load game: %w", err)
		}
	default:
		return nil
	}

	for i := 0; i < cfg.Pages; i++ {
		if err := RenderSnapshot(out, snap); err != nil {
			return err
		}
		if !snap.HasNext || i == cfg.Pages-1 {
			break
		}
		if err := c.Do(ctx, http.MethodPost, base+"/next", nil, &snap); err != nil {
			return fmt.Errorf("next page: %w", err)
		}
	}
	return nil
}
