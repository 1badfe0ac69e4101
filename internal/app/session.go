package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/runboard/internal/app/account"
	"github.com/okian/runboard/internal/app/catalog"
	"github.com/okian/runboard/internal/app/leaderboard"
	"github.com/okian/runboard/internal/app/search"
	"github.com/okian/runboard/internal/app/video"
	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/internal/domain/types"
	"github.com/okian/runboard/pkg/logger"
	"github.com/okian/runboard/pkg/metrics"
)

// Session is one viewer's state: a leaderboard, a video popup, a search box
// and a game catalog.
type Session struct {
	ID      string
	Created time.Time

	board   *leaderboard.Loader
	popup   *video.Popup
	search  *search.Debouncer
	catalog *catalog.Catalog
	outbox  *outbox
}

func (sess *Session) close() {
	sess.board.Close()
	sess.search.Close()
}

// sessionEmitter tags events with the session that raised them.
type sessionEmitter struct {
	svc *Service
	id  string
}

func (e sessionEmitter) Emit(ctx context.Context, ev model.Event) bool { //nolint:gocritic // hugeParam: events travel by value
	ev.SessionID = e.id
	return e.svc.Emit(ctx, ev)
}

// outbox buffers dispatched events until the viewer collects them. The
// oldest event is dropped when it is full.
type outbox struct {
	mu     sync.Mutex
	max    int
	events []model.Event
}

func (o *outbox) push(e model.Event) { //nolint:gocritic // hugeParam: events travel by value
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.events) >= o.max {
		metrics.RecordEventDropped(string(o.events[0].Kind))
		o.events = o.events[1:]
	}
	o.events = append(o.events, e)
}

func (o *outbox) drain() []model.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.events
	o.events = nil
	if out == nil {
		out = []model.Event{}
	}
	return out
}

// CreateSession starts an idle session and returns its first snapshot.
func (s *Service) CreateSession(ctx context.Context) (types.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Snapshot{}, ErrNotStarted
	}

	id := uuid.NewString()
	emit := sessionEmitter{svc: s, id: id}
	games := catalog.New(s.upstream, s.catalogOptions...)

	lbOpts := []leaderboard.Option{leaderboard.WithBadRequestPolicy(s.policy)}
	if s.pageSize > 0 {
		lbOpts = append(lbOpts, leaderboard.WithPageSize(s.pageSize))
	}

	sess := &Session{
		ID:      id,
		Created: time.Now().UTC(),
		board:   leaderboard.New(s.upstream, lbOpts...),
		popup:   video.NewPopup(emit),
		search: search.New(emit,
			search.WithDelay(s.searchDelay),
			search.WithHandler(func(_ context.Context, term string) { games.Filter(term) }),
		),
		catalog: games,
		outbox:  &outbox{max: s.outboxSize},
	}

	// an evicted session is closed by the store's eviction callback
	if _, _, err := s.sessions.Put(ctx, id, sess); err != nil {
		return types.Snapshot{}, fmt.Errorf("store session: %w", err)
	}
	metrics.UpdateSessionCount(s.sessions.Count(ctx))

	s.logger.Debug(ctx, "session created", logger.String("sessionID", id))
	return s.snapshot(sess), nil
}

// DeleteSession closes and forgets a session.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	sess, ok := s.sessions.Delete(ctx, id)
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	sess.close()
	metrics.UpdateSessionCount(s.sessions.Count(ctx))
	return nil
}

// Snapshot renders a session's leaderboard.
func (s *Service) Snapshot(ctx context.Context, id string) (types.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.Snapshot{}, err
	}
	return s.snapshot(sess), nil
}

// Load opens the leaderboard behind a leaderboards/{game}/category/{cat}
// link. Upstream failures are reported in the snapshot, not as errors.
func (s *Service) Load(ctx context.Context, id, link string) (types.Snapshot, error) {
	return s.withBoard(ctx, id, func(b *leaderboard.Loader) error {
		return b.Load(ctx, link)
	})
}

// LoadGame opens the first per-game category of a game.
func (s *Service) LoadGame(ctx context.Context, id, gameID string) (types.Snapshot, error) {
	return s.withBoard(ctx, id, func(b *leaderboard.Loader) error {
		return b.LoadGame(ctx, gameID)
	})
}

// SelectCategory raises category_selected and shows that category.
func (s *Service) SelectCategory(ctx context.Context, id, link string) (types.Snapshot, error) {
	return s.withBoard(ctx, id, func(b *leaderboard.Loader) error {
		s.Emit(ctx, model.Event{SessionID: id, Kind: model.EventCategorySelected, URL: link})
		return b.SelectCategory(ctx, link)
	})
}

// NextPage advances the session's leaderboard one page.
func (s *Service) NextPage(ctx context.Context, id string) (types.Snapshot, error) {
	return s.withBoard(ctx, id, func(b *leaderboard.Loader) error {
		b.NextPage()
		return nil
	})
}

// PreviousPage moves the session's leaderboard back one page.
func (s *Service) PreviousPage(ctx context.Context, id string) (types.Snapshot, error) {
	return s.withBoard(ctx, id, func(b *leaderboard.Loader) error {
		b.PreviousPage()
		return nil
	})
}

// OpenVideo shows a run video in the session's popup.
func (s *Service) OpenVideo(ctx context.Context, id, url string) (types.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.Snapshot{}, err
	}
	sess.popup.Open(ctx, url)
	return s.snapshot(sess), nil
}

// CloseVideo hides the session's popup.
func (s *Service) CloseVideo(ctx context.Context, id string) (types.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.Snapshot{}, err
	}
	sess.popup.Close(ctx)
	return s.snapshot(sess), nil
}

// Search feeds a keystroke to the session's search box. The catalog filter
// follows once input has settled.
func (s *Service) Search(ctx context.Context, id, term string) (types.GamePage, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.GamePage{}, err
	}
	sess.search.Input(ctx, term)
	return sess.catalog.Page(), nil
}

// Events returns and clears the session's dispatched events.
func (s *Service) Events(ctx context.Context, id string) ([]model.Event, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.outbox.drain(), nil
}

// Games returns the session's catalog. more appends the next page.
func (s *Service) Games(ctx context.Context, id string, more bool) (types.GamePage, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.GamePage{}, err
	}
	if more {
		page, err := sess.catalog.LoadMore(ctx)
		return page, catalogErr(err)
	}
	page, err := sess.catalog.FetchGames(ctx)
	return page, catalogErr(err)
}

// Popular loads the popular-games carousel.
func (s *Service) Popular(ctx context.Context, id string) (types.Carousel, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.Carousel{}, err
	}
	if _, err := sess.catalog.Popular(ctx); err != nil && ctx.Err() != nil {
		return types.Carousel{}, err
	}
	return sess.catalog.Carousel().View(), nil
}

// Carousel moves the popular carousel by step: positive for next, negative
// for previous, zero to read it.
func (s *Service) Carousel(ctx context.Context, id string, step int) (types.Carousel, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.Carousel{}, err
	}
	c := sess.catalog.Carousel()
	switch {
	case step > 0:
		return c.Next(), nil
	case step < 0:
		return c.Prev(), nil
	default:
		return c.View(), nil
	}
}

// Home loads the catalog and the popular carousel together.
func (s *Service) Home(ctx context.Context, id string) (types.Home, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.Home{}, err
	}
	return sess.catalog.Home(ctx)
}

// Login validates the sign-in form.
func (s *Service) Login(form account.LoginForm) (types.Redirect, error) {
	return s.forms.Login(form)
}

// Register validates the sign-up form.
func (s *Service) Register(form account.RegisterForm) (types.Redirect, error) {
	return s.forms.Register(form)
}

func (s *Service) session(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	started, store := s.started, s.sessions
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	sess, err := store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return sess, nil
}

// withBoard runs fn against the session's loader. Load failures and
// superseded loads are already reflected in the snapshot.
func (s *Service) withBoard(ctx context.Context, id string, fn func(*leaderboard.Loader) error) (types.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.Snapshot{}, err
	}
	if err := fn(sess.board); errors.Is(err, leaderboard.ErrNoGame) {
		return s.snapshot(sess), err
	}
	return s.snapshot(sess), nil
}

func (s *Service) snapshot(sess *Session) types.Snapshot {
	snap := sess.board.Snapshot()
	snap.SessionID = sess.ID
	snap.Video = sess.popup.Active()
	return snap
}

// catalogErr hides upstream failures, which the page already carries.
func catalogErr(err error) error {
	if errors.Is(err, catalog.ErrBusy) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
