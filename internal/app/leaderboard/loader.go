// Package leaderboard loads and pages a single speedrun leaderboard.
//
// A Loader is driven by Load (a leaderboard link), LoadGame (a bare game
// id) and SelectCategory (a category link). Each call runs its fetches in
// sequence, blocks until done and re-enters the idle, loading, loaded or
// errored lifecycle. Every call bumps a generation counter and cancels the
// previous call's context, so only the latest call may publish its result.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/okian/runboard/internal/domain/locator"
	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/internal/domain/pagination"
	"github.com/okian/runboard/internal/domain/runs"
	"github.com/okian/runboard/internal/domain/types"
	"github.com/okian/runboard/pkg/logger"
	"github.com/okian/runboard/pkg/metrics"
)

// Load outcomes recorded in metrics.
const (
	outcomeLoaded  = "loaded"
	outcomeEmpty   = "empty"
	outcomeErrored = "errored"
	outcomeStale   = "stale_discarded"
)

// Source fetches leaderboard data. *speedrun.Client satisfies it.
type Source interface {
	Categories(ctx context.Context, gameID string) ([]model.Category, error)
	Leaderboard(ctx context.Context, gameID, categoryID string) ([]model.Run, error)
}

// Loader holds one leaderboard view. It is safe for concurrent use.
type Loader struct {
	src      Source
	policy   Policy
	pageSize int
	logger   logger.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc

	state        types.LoadState
	errMsg       string
	gameID       string
	categoryID   string
	categories   []model.Category
	noCategories bool
	view         pagination.View[model.Run]
}

// New creates an idle loader reading from src.
func New(src Source, opts ...Option) *Loader {
	l := &Loader{
		src:      src,
		policy:   PolicySilent,
		pageSize: pagination.DefaultPageSize,
		logger:   logger.Get().Named("leaderboard"),
		state:    types.StateIdle,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.view.Reset(nil, l.pageSize)
	return l
}

// result is what one call publishes when it is still current.
type result struct {
	state             types.LoadState
	err               error
	runs              []model.Run
	categoryID        string
	categories        []model.Category
	replaceCategories bool
	noCategories      bool
}

// Load fetches the leaderboard named by a leaderboards/{game}/category/{cat}
// link. Links that do not match are ignored and leave the state untouched.
//
// The category list is fetched first. If the leaderboard request is rejected
// with 400, the first per-game category is tried once instead. A 400 with no
// category to fall back on is handled by the bad-request policy.
func (l *Loader) Load(ctx context.Context, resourceURL string) error {
	ref, ok := locator.ParseLeaderboardURL(resourceURL)
	if !ok {
		l.logger.Debug(ctx, "ignoring non-leaderboard link", logger.String("url", resourceURL))
		return nil
	}

	ctx, cancel, gen := l.begin(ctx, ref.GameID, ref.CategoryID)
	defer cancel()

	cats, catsOK := l.perGameCategories(ctx, ref.GameID)

	res := result{categoryID: ref.CategoryID, categories: cats, replaceCategories: true}
	list, err := l.src.Leaderboard(ctx, ref.GameID, ref.CategoryID)

	fellBack := false
	if err != nil && isBadRequest(err) && len(cats) > 0 {
		fellBack = true
		res.categoryID = cats[0].ID
		metrics.RecordFallback()
		l.logger.Info(ctx, "leaderboard rejected, falling back to first category",
			logger.String("game", ref.GameID),
			logger.String("requested", ref.CategoryID),
			logger.String("fallback", res.categoryID),
		)
		list, err = l.src.Leaderboard(ctx, ref.GameID, res.categoryID)
	}

	switch {
	case err == nil:
		res.state = types.StateLoaded
		res.runs = list
	case !fellBack && isBadRequest(err) && l.policy == PolicySilent:
		res.state = types.StateLoaded
		res.runs = nil
	default:
		res.state = types.StateErrored
		res.err = fmt.Errorf("error loading leaderboard: %w", err)
	}
	res.noCategories = catsOK && len(cats) == 0 && res.state == types.StateLoaded

	return l.finish(ctx, gen, res)
}

// LoadGame shows the first per-game category of a game.
func (l *Loader) LoadGame(ctx context.Context, gameID string) error {
	if gameID == "" {
		return nil
	}

	ctx, cancel, gen := l.begin(ctx, gameID, "")
	defer cancel()

	all, err := l.src.Categories(ctx, gameID)
	if err != nil {
		return l.finish(ctx, gen, result{
			state:             types.StateErrored,
			err:               fmt.Errorf("error fetching categories: %w", err),
			replaceCategories: true,
		})
	}
	cats := model.PerGameCategories(all)
	if len(cats) == 0 {
		return l.finish(ctx, gen, result{
			state:             types.StateErrored,
			err:               ErrNoCategories,
			replaceCategories: true,
			noCategories:      true,
		})
	}

	res := result{categoryID: cats[0].ID, categories: cats, replaceCategories: true}
	list, err := l.src.Leaderboard(ctx, gameID, res.categoryID)
	if err != nil {
		res.state = types.StateErrored
		res.err = fmt.Errorf("error loading leaderboard: %w", err)
	} else {
		res.state = types.StateLoaded
		res.runs = list
	}
	return l.finish(ctx, gen, res)
}

// SelectCategory switches to the category a link points at and fetches its
// runs. The link's game is used when present, otherwise the current game.
// Categories are not re-fetched and no fallback is attempted.
func (l *Loader) SelectCategory(ctx context.Context, link string) error {
	catID, ok := locator.CategoryID(link)
	if !ok {
		return nil
	}
	gameID := l.currentGame()
	if ref, ok := locator.ParseLeaderboardURL(link); ok {
		gameID = ref.GameID
	}
	if gameID == "" {
		return ErrNoGame
	}

	ctx, cancel, gen := l.begin(ctx, gameID, catID)
	defer cancel()

	res := result{categoryID: catID}
	list, err := l.src.Leaderboard(ctx, gameID, catID)
	if err != nil {
		res.state = types.StateErrored
		res.err = fmt.Errorf("error loading leaderboard: %w", err)
	} else {
		res.state = types.StateLoaded
		res.runs = list
	}
	return l.finish(ctx, gen, res)
}

// NextPage advances one page. It is a no-op on the last page.
func (l *Loader) NextPage() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view.Next()
}

// PreviousPage goes back one page. It is a no-op on the first page.
func (l *Loader) PreviousPage() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view.Prev()
}

// State returns the lifecycle state.
func (l *Loader) State() types.LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Generation returns how many loads and selections have started.
func (l *Loader) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// Snapshot renders the current page.
func (l *Loader) Snapshot() types.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := types.Snapshot{
		State:            l.state,
		Error:            l.errMsg,
		GameID:           l.gameID,
		ActiveCategoryID: l.categoryID,
		Categories:       make([]types.CategoryOption, 0, len(l.categories)),
		NoCategories:     l.noCategories,
		Page:             l.view.Index(),
		PageSize:         l.view.Size(),
		Total:            l.view.Total(),
		HasNext:          l.view.HasNext(),
		HasPrev:          l.view.HasPrev(),
	}
	for _, c := range l.categories {
		snap.Categories = append(snap.Categories, types.CategoryOption{ID: c.ID, Name: c.Name, URL: c.LeaderboardURL()})
	}

	page := l.view.Page()
	snap.Rows = make([]types.Row, 0, len(page))
	offset := l.view.Offset()
	for i, r := range page {
		abs := offset + i
		row := types.Row{
			Rank:   abs + 1,
			Player: runs.PlayerName(r),
			Time:   runs.FormatTime(r),
		}
		if t, ok := runs.Trophy(abs); ok {
			row.Trophy = t
		}
		if v, ok := r.VideoURI(); ok {
			row.Video = v
		}
		snap.Rows = append(snap.Rows, row)
	}
	return snap
}

// Close cancels any in-flight call. Its result is discarded as stale.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// begin starts a new generation. The previous call, if any, is cancelled.
func (l *Loader) begin(ctx context.Context, gameID, categoryID string) (context.Context, context.CancelFunc, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.gen++

	l.state = types.StateLoading
	l.errMsg = ""
	if l.gameID != gameID {
		l.categories = nil
		l.noCategories = false
	}
	l.gameID = gameID
	l.categoryID = categoryID
	return ctx, cancel, l.gen
}

// finish publishes res if gen is still the latest generation.
func (l *Loader) finish(ctx context.Context, gen uint64, res result) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		metrics.RecordLoad(outcomeStale)
		l.logger.Debug(ctx, "discarding stale leaderboard result", logger.Uint64("generation", gen))
		return ErrSuperseded
	}

	l.state = res.state
	if res.categoryID != "" {
		l.categoryID = res.categoryID
	}
	if res.replaceCategories {
		l.categories = res.categories
		l.noCategories = res.noCategories
	}

	if res.state == types.StateErrored {
		l.errMsg = res.err.Error()
		l.view.Reset(nil, l.pageSize)
		metrics.RecordLoad(outcomeErrored)
		l.logger.Warn(ctx, "leaderboard load failed",
			logger.String("game", l.gameID),
			logger.String("category", l.categoryID),
			logger.Error(res.err),
		)
		return res.err
	}

	l.errMsg = ""
	l.view.Reset(res.runs, l.pageSize)
	if len(res.runs) == 0 {
		metrics.RecordLoad(outcomeEmpty)
	} else {
		metrics.RecordLoad(outcomeLoaded)
	}
	return nil
}

// perGameCategories fetches categories. A failure is logged and reported as
// an unavailable (empty) list.
func (l *Loader) perGameCategories(ctx context.Context, gameID string) ([]model.Category, bool) {
	all, err := l.src.Categories(ctx, gameID)
	if err != nil {
		l.logger.Warn(ctx, "category fetch failed", logger.String("game", gameID), logger.Error(err))
		return nil, false
	}
	return model.PerGameCategories(all), true
}

func (l *Loader) currentGame() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gameID
}

// isBadRequest matches any error carrying an HTTP 400 status.
func isBadRequest(err error) bool {
	var se interface{ HTTPStatus() int }
	return errors.As(err, &se) && se.HTTPStatus() == http.StatusBadRequest
}
