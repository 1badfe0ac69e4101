package leaderboard_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/okian/runboard/internal/app/leaderboard"
	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type statusErr int

func (s statusErr) Error() string   { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatus() int { return int(s) }

// fakeSource serves canned categories and leaderboards keyed by category id.
type fakeSource struct {
	mu         sync.Mutex
	cats       []model.Category
	catsErr    error
	boards     map[string][]model.Run
	boardErrs  map[string]error
	gates      map[string]chan struct{}
	boardCalls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		boards:    map[string][]model.Run{},
		boardErrs: map[string]error{},
		gates:     map[string]chan struct{}{},
	}
}

func (f *fakeSource) Categories(_ context.Context, _ string) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cats, f.catsErr
}

func (f *fakeSource) Leaderboard(ctx context.Context, _, cat string) ([]model.Run, error) {
	f.mu.Lock()
	f.boardCalls = append(f.boardCalls, cat)
	gate := f.gates[cat]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.boardErrs[cat]; err != nil {
		return nil, err
	}
	return f.boards[cat], nil
}

func (f *fakeSource) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.boardCalls...)
}

func makeRuns(n int) []model.Run {
	out := make([]model.Run, n)
	for i := range out {
		out[i] = model.Run{
			ID:      fmt.Sprintf("r%d", i),
			Players: []model.Player{{ID: fmt.Sprintf("p%d", i)}},
			Times:   &model.Times{PrimaryT: float64(60 + i)},
		}
	}
	return out
}

const link = "https://www.speedrun.com/api/v1/leaderboards/g1/category/c1"

func TestLoader_Load(t *testing.T) {
	Convey("Given a loader over a healthy source", t, func() {
		src := newFakeSource()
		src.cats = []model.Category{
			{ID: "c1", Name: "Any%", Type: model.CategoryPerGame},
			{ID: "lvl", Name: "Level 1", Type: model.CategoryPerLevel},
			{ID: "c2", Name: "100%", Type: model.CategoryPerGame},
		}
		src.boards["c1"] = makeRuns(25)
		l := leaderboard.New(src)
		ctx := context.Background()

		Convey("Then a new loader is idle", func() {
			So(l.State(), ShouldEqual, types.StateIdle)
			So(l.Snapshot().Rows, ShouldBeEmpty)
		})

		Convey("When loading a leaderboard link", func() {
			err := l.Load(ctx, link)
			snap := l.Snapshot()

			Convey("Then the first page is shown", func() {
				So(err, ShouldBeNil)
				So(snap.State, ShouldEqual, types.StateLoaded)
				So(snap.GameID, ShouldEqual, "g1")
				So(snap.ActiveCategoryID, ShouldEqual, "c1")
				So(snap.Total, ShouldEqual, 25)
				So(len(snap.Rows), ShouldEqual, 10)
				So(snap.Rows[0].Rank, ShouldEqual, 1)
				So(snap.Rows[0].Player, ShouldEqual, "p0")
				So(snap.Rows[0].Time, ShouldEqual, "00:01:00")
				So(snap.Rows[0].Trophy, ShouldEqual, "https://www.speedrun.com/images/1st.png")
				So(snap.Rows[3].Trophy, ShouldBeEmpty)
			})

			Convey("Then only per-game categories are offered", func() {
				So(len(snap.Categories), ShouldEqual, 2)
				So(snap.Categories[0].ID, ShouldEqual, "c1")
				So(snap.Categories[1].ID, ShouldEqual, "c2")
				So(snap.NoCategories, ShouldBeFalse)
			})

			Convey("Then paging walks the runs and stops at the ends", func() {
				So(l.PreviousPage(), ShouldBeFalse)
				So(l.NextPage(), ShouldBeTrue)
				So(l.NextPage(), ShouldBeTrue)
				So(l.NextPage(), ShouldBeFalse)

				last := l.Snapshot()
				So(last.Page, ShouldEqual, 2)
				So(len(last.Rows), ShouldEqual, 5)
				So(last.Rows[0].Rank, ShouldEqual, 21)
				So(last.Rows[0].Trophy, ShouldBeEmpty)
			})

			Convey("Then reloading resets to the first page", func() {
				l.NextPage()
				So(l.Load(ctx, link), ShouldBeNil)
				So(l.Snapshot().Page, ShouldEqual, 0)
			})
		})

		Convey("When the link is not a leaderboard", func() {
			err := l.Load(ctx, "https://www.speedrun.com/games/g1")

			Convey("Then nothing happens", func() {
				So(err, ShouldBeNil)
				So(l.State(), ShouldEqual, types.StateIdle)
				So(l.Generation(), ShouldEqual, uint64(0))
				So(src.calls(), ShouldBeEmpty)
			})
		})

		Convey("When the category fetch fails", func() {
			src.catsErr = errors.New("network down")
			err := l.Load(ctx, link)
			snap := l.Snapshot()

			Convey("Then the leaderboard still loads without categories", func() {
				So(err, ShouldBeNil)
				So(snap.State, ShouldEqual, types.StateLoaded)
				So(snap.Categories, ShouldBeEmpty)
				So(snap.NoCategories, ShouldBeFalse)
				So(snap.Error, ShouldBeEmpty)
			})
		})

		Convey("When the game has no per-game categories", func() {
			src.cats = []model.Category{{ID: "lvl", Type: model.CategoryPerLevel}}
			err := l.Load(ctx, link)

			Convey("Then the load succeeds and flags the missing categories", func() {
				So(err, ShouldBeNil)
				So(l.Snapshot().NoCategories, ShouldBeTrue)
			})
		})
	})
}

func TestLoader_BadRequest(t *testing.T) {
	Convey("Given a source that rejects the requested category", t, func() {
		src := newFakeSource()
		src.boardErrs["c1"] = statusErr(http.StatusBadRequest)
		src.boards["c2"] = makeRuns(3)
		ctx := context.Background()

		Convey("When a per-game category is available", func() {
			src.cats = []model.Category{{ID: "c2", Type: model.CategoryPerGame}, {ID: "c3", Type: model.CategoryPerGame}}
			l := leaderboard.New(src)
			err := l.Load(ctx, link)
			snap := l.Snapshot()

			Convey("Then the first category is tried exactly once", func() {
				So(err, ShouldBeNil)
				So(src.calls(), ShouldResemble, []string{"c1", "c2"})
				So(snap.ActiveCategoryID, ShouldEqual, "c2")
				So(snap.Total, ShouldEqual, 3)
			})
		})

		Convey("When the fallback also fails", func() {
			src.cats = []model.Category{{ID: "c2", Type: model.CategoryPerGame}}
			src.boardErrs["c2"] = statusErr(http.StatusBadRequest)
			l := leaderboard.New(src)
			err := l.Load(ctx, link)

			Convey("Then the load errors without a second retry", func() {
				So(err, ShouldNotBeNil)
				So(src.calls(), ShouldResemble, []string{"c1", "c2"})
				So(l.State(), ShouldEqual, types.StateErrored)
				So(l.Snapshot().ActiveCategoryID, ShouldEqual, "c2")
			})
		})

		Convey("When no category is available under the silent policy", func() {
			l := leaderboard.New(src)
			err := l.Load(ctx, link)
			snap := l.Snapshot()

			Convey("Then an empty leaderboard is shown", func() {
				So(err, ShouldBeNil)
				So(snap.State, ShouldEqual, types.StateLoaded)
				So(snap.Error, ShouldBeEmpty)
				So(snap.Rows, ShouldBeEmpty)
			})
		})

		Convey("When no category is available under the surface policy", func() {
			l := leaderboard.New(src, leaderboard.WithBadRequestPolicy(leaderboard.PolicySurface))
			err := l.Load(ctx, link)
			snap := l.Snapshot()

			Convey("Then the error is shown", func() {
				So(err, ShouldNotBeNil)
				So(snap.State, ShouldEqual, types.StateErrored)
				So(snap.Error, ShouldContainSubstring, "error loading leaderboard")
				So(snap.Error, ShouldContainSubstring, "400")
			})
		})
	})

	Convey("Given a source failing with a server error", t, func() {
		src := newFakeSource()
		src.cats = []model.Category{{ID: "c2", Type: model.CategoryPerGame}}
		src.boardErrs["c1"] = statusErr(http.StatusInternalServerError)
		l := leaderboard.New(src)

		err := l.Load(context.Background(), link)

		Convey("Then no fallback is attempted", func() {
			So(err, ShouldNotBeNil)
			So(src.calls(), ShouldResemble, []string{"c1"})
			So(l.Snapshot().Error, ShouldContainSubstring, "500")
		})
	})
}

func TestLoader_SelectCategory(t *testing.T) {
	Convey("Given a loaded leaderboard", t, func() {
		src := newFakeSource()
		src.cats = []model.Category{{ID: "c1", Type: model.CategoryPerGame}, {ID: "c2", Type: model.CategoryPerGame}}
		src.boards["c1"] = makeRuns(12)
		src.boards["c2"] = makeRuns(4)
		l := leaderboard.New(src)
		ctx := context.Background()
		So(l.Load(ctx, link), ShouldBeNil)
		l.NextPage()

		Convey("When selecting another category", func() {
			err := l.SelectCategory(ctx, "https://www.speedrun.com/api/v1/leaderboards/g1/category/c2")
			snap := l.Snapshot()

			Convey("Then its runs replace the view and categories are kept", func() {
				So(err, ShouldBeNil)
				So(snap.ActiveCategoryID, ShouldEqual, "c2")
				So(snap.Total, ShouldEqual, 4)
				So(snap.Page, ShouldEqual, 0)
				So(len(snap.Categories), ShouldEqual, 2)
				So(src.calls(), ShouldResemble, []string{"c1", "c2"})
			})
		})

		Convey("When the selected category fails with 400", func() {
			src.boardErrs["c2"] = statusErr(http.StatusBadRequest)
			err := l.SelectCategory(ctx, "leaderboards/g1/category/c2")

			Convey("Then no fallback happens", func() {
				So(err, ShouldNotBeNil)
				So(l.State(), ShouldEqual, types.StateErrored)
				So(src.calls(), ShouldResemble, []string{"c1", "c2"})
			})
		})
	})

	Convey("Given a fresh loader", t, func() {
		l := leaderboard.New(newFakeSource())

		Convey("When selecting by a bare category link", func() {
			err := l.SelectCategory(context.Background(), "https://example.com/c2")

			Convey("Then it needs a game first", func() {
				So(errors.Is(err, leaderboard.ErrNoGame), ShouldBeTrue)
				So(l.State(), ShouldEqual, types.StateIdle)
			})
		})
	})
}

func TestLoader_LoadGame(t *testing.T) {
	Convey("Given a game with categories", t, func() {
		src := newFakeSource()
		src.cats = []model.Category{{ID: "lvl", Type: model.CategoryPerLevel}, {ID: "c1", Type: model.CategoryPerGame}}
		src.boards["c1"] = makeRuns(2)
		l := leaderboard.New(src)

		Convey("When loading by game id", func() {
			err := l.LoadGame(context.Background(), "g1")

			Convey("Then the first per-game category is shown", func() {
				So(err, ShouldBeNil)
				So(l.Snapshot().ActiveCategoryID, ShouldEqual, "c1")
				So(l.Snapshot().Total, ShouldEqual, 2)
			})
		})

		Convey("When the game has no per-game category", func() {
			src.cats = nil
			err := l.LoadGame(context.Background(), "g1")

			Convey("Then the load errors", func() {
				So(errors.Is(err, leaderboard.ErrNoCategories), ShouldBeTrue)
				So(l.Snapshot().State, ShouldEqual, types.StateErrored)
				So(l.Snapshot().Error, ShouldEqual, leaderboard.ErrNoCategories.Error())
				So(l.Snapshot().NoCategories, ShouldBeTrue)
			})
		})

		Convey("When the category fetch fails", func() {
			src.catsErr = statusErr(http.StatusNotFound)
			err := l.LoadGame(context.Background(), "g1")

			Convey("Then the error names the category fetch", func() {
				So(err, ShouldNotBeNil)
				So(l.Snapshot().Error, ShouldContainSubstring, "error fetching categories")
			})
		})
	})
}

func TestLoader_Supersede(t *testing.T) {
	Convey("Given a slow load followed by a fast one", t, func() {
		src := newFakeSource()
		src.cats = []model.Category{{ID: "slow", Type: model.CategoryPerGame}, {ID: "fast", Type: model.CategoryPerGame}}
		src.boards["slow"] = makeRuns(30)
		src.boards["fast"] = makeRuns(5)
		gate := make(chan struct{})
		src.gates["slow"] = gate
		l := leaderboard.New(src)
		ctx := context.Background()

		slowErr := make(chan error, 1)
		go func() { slowErr <- l.Load(ctx, "leaderboards/g1/category/slow") }()

		// wait until the slow request is in flight
		deadline := time.Now().Add(2 * time.Second)
		for len(src.calls()) == 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}

		fastErr := l.Load(ctx, "leaderboards/g1/category/fast")

		Convey("Then the older result is discarded", func() {
			So(fastErr, ShouldBeNil)
			err := <-slowErr
			So(errors.Is(err, leaderboard.ErrSuperseded), ShouldBeTrue)

			snap := l.Snapshot()
			So(snap.ActiveCategoryID, ShouldEqual, "fast")
			So(snap.Total, ShouldEqual, 5)
			So(snap.State, ShouldEqual, types.StateLoaded)
			So(l.Generation(), ShouldEqual, uint64(2))
		})
	})
}

func TestLoader_CloseDiscardsInFlight(t *testing.T) {
	Convey("Given a load in flight", t, func() {
		src := newFakeSource()
		src.cats = []model.Category{{ID: "slow", Type: model.CategoryPerGame}}
		src.boards["slow"] = makeRuns(3)
		src.gates["slow"] = make(chan struct{})
		l := leaderboard.New(src)

		loadErr := make(chan error, 1)
		go func() { loadErr <- l.Load(context.Background(), "leaderboards/g1/category/slow") }()

		deadline := time.Now().Add(2 * time.Second)
		for len(src.calls()) == 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}

		Convey("When the loader is closed", func() {
			l.Close()
			err := <-loadErr

			Convey("Then the cancelled result is dropped as stale", func() {
				So(errors.Is(err, leaderboard.ErrSuperseded), ShouldBeTrue)
				snap := l.Snapshot()
				So(snap.State, ShouldNotEqual, types.StateErrored)
				So(snap.Error, ShouldBeEmpty)
			})
		})
	})
}
