package catalog_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/okian/runboard/internal/adapters/speedrun"
	"github.com/okian/runboard/internal/app/catalog"
	"github.com/okian/runboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSource struct {
	mu       sync.Mutex
	total    int
	gamesErr error
	runs     []model.Run
	runsErr  error
	queries  []speedrun.GamesQuery
}

func (f *fakeSource) Games(_ context.Context, q speedrun.GamesQuery) ([]model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.gamesErr != nil {
		return nil, f.gamesErr
	}
	var out []model.Game
	for i := q.Offset; i < q.Offset+q.Max && i < f.total; i++ {
		out = append(out, model.Game{ID: fmt.Sprintf("g%d", i), Names: model.Names{International: fmt.Sprintf("Game %d", i)}})
	}
	return out, nil
}

func (f *fakeSource) Runs(_ context.Context, _ speedrun.RunsQuery) ([]model.Run, error) {
	return f.runs, f.runsErr
}

func runFor(id string) model.Run {
	return model.Run{Game: model.GameEmbed{ID: id, Data: &model.Game{ID: id, Names: model.Names{International: "Game " + id}}}}
}

func TestCatalog_Paging(t *testing.T) {
	Convey("Given a catalog of 500 games", t, func() {
		src := &fakeSource{total: 500}
		c := catalog.New(src)
		ctx := context.Background()

		Convey("When fetching the first page", func() {
			page, err := c.FetchGames(ctx)

			Convey("Then 50 newest games are listed with more available", func() {
				So(err, ShouldBeNil)
				So(len(page.Games), ShouldEqual, 50)
				So(page.Offset, ShouldEqual, 50)
				So(page.HasMore, ShouldBeTrue)
				So(src.queries[0].OrderBy, ShouldEqual, "created")
				So(src.queries[0].Direction, ShouldEqual, "desc")
				So(src.queries[0].Offset, ShouldEqual, 0)
			})

			Convey("Then fetching again does not refetch", func() {
				_, _ = c.FetchGames(ctx)
				So(len(src.queries), ShouldEqual, 1)
			})

			Convey("Then loading more stops at 200 games", func() {
				for i := 0; i < 5; i++ {
					page, err = c.LoadMore(ctx)
					So(err, ShouldBeNil)
				}
				So(len(page.Games), ShouldEqual, 200)
				So(page.HasMore, ShouldBeFalse)
				So(len(src.queries), ShouldEqual, 4)
			})
		})
	})

	Convey("Given a short catalog", t, func() {
		c := catalog.New(&fakeSource{total: 12})

		page, err := c.FetchGames(context.Background())

		Convey("Then a short batch ends the listing", func() {
			So(err, ShouldBeNil)
			So(len(page.Games), ShouldEqual, 12)
			So(page.HasMore, ShouldBeFalse)
		})
	})

	Convey("Given a failing upstream", t, func() {
		c := catalog.New(&fakeSource{gamesErr: &speedrun.StatusError{Op: "games", Status: http.StatusServiceUnavailable, Message: "Service Unavailable"}})

		page, err := c.FetchGames(context.Background())

		Convey("Then the error is shown with its status", func() {
			So(err, ShouldNotBeNil)
			So(page.Error, ShouldStartWith, "Error 503: ")
			So(page.Games, ShouldBeEmpty)
		})
	})
}

func TestCatalog_Filter(t *testing.T) {
	Convey("Given a fetched catalog", t, func() {
		c := catalog.New(&fakeSource{total: 30})
		_, _ = c.FetchGames(context.Background())

		Convey("When filtering by a term", func() {
			page := c.Filter("game 2")

			Convey("Then only matching names remain", func() {
				So(len(page.Games), ShouldEqual, 11)
				So(page.Games[0].Name, ShouldEqual, "Game 2")
			})
		})

		Convey("When clearing the filter", func() {
			c.Filter("zzz")
			page := c.Filter("")
			So(len(page.Games), ShouldEqual, 30)
		})
	})
}

func TestPopular(t *testing.T) {
	Convey("Given recent runs across games", t, func() {
		runs := []model.Run{
			runFor("a"), runFor("b"), runFor("b"), runFor("c"),
			runFor("a"), runFor("c"), runFor("b"), {ID: "orphan"},
		}

		Convey("When ranking them", func() {
			cards := catalog.RankPopular(runs, 20)

			Convey("Then counts sort descending and ties keep first-seen order", func() {
				So(len(cards), ShouldEqual, 3)
				So(cards[0].ID, ShouldEqual, "b")
				So(cards[0].RunCount, ShouldEqual, 3)
				So(cards[1].ID, ShouldEqual, "a")
				So(cards[2].ID, ShouldEqual, "c")
			})
		})

		Convey("When keeping only the top game", func() {
			cards := catalog.RankPopular(runs, 1)
			So(len(cards), ShouldEqual, 1)
			So(cards[0].ID, ShouldEqual, "b")
		})

		Convey("When loading them into the carousel", func() {
			c := catalog.New(&fakeSource{runs: runs})
			_, err := c.Popular(context.Background())
			So(err, ShouldBeNil)
			car := c.Carousel()

			Convey("Then the carousel wraps in both directions", func() {
				So(car.View().Current.ID, ShouldEqual, "b")
				So(car.Prev().Current.ID, ShouldEqual, "c")
				So(car.Next().Current.ID, ShouldEqual, "b")
				So(car.Next().Current.ID, ShouldEqual, "a")
				So(car.Next().Current.ID, ShouldEqual, "c")
				So(car.Next().Index, ShouldEqual, 0)
			})
		})
	})

	Convey("Given an empty carousel", t, func() {
		car := &catalog.Carousel{}

		Convey("Then moving is a no-op", func() {
			So(car.Next().Index, ShouldEqual, 0)
			So(car.Prev().Current, ShouldBeNil)
			_, ok := car.Current()
			So(ok, ShouldBeFalse)
		})
	})
}

func TestHome(t *testing.T) {
	Convey("Given a catalog whose popular feed fails", t, func() {
		src := &fakeSource{total: 10, runsErr: &speedrun.StatusError{Op: "runs", Status: 500, Message: "boom"}}
		c := catalog.New(src)

		home, err := c.Home(context.Background())

		Convey("Then the catalog still loads and the failure is reported in place", func() {
			So(err, ShouldBeNil)
			So(len(home.Catalog.Games), ShouldEqual, 10)
			So(home.Popular.Error, ShouldStartWith, "Error 500")
			So(home.Popular.Games, ShouldBeEmpty)
		})
	})
}

func TestAssets(t *testing.T) {
	Convey("Given games with assorted assets", t, func() {
		full := model.Game{
			Names: model.Names{Twitch: "Twitch Name"},
			Assets: map[string]*model.Asset{
				"cover-medium": {URI: "https://x/no-cover.png"},
				"cover-small":  {URI: "http://x/small.png"},
				"background":   {URI: "https://x/blankcover.png"},
				"cover-large":  {URI: "http://x/large.png"},
			},
			Released: 2017,
		}

		So(catalog.Cover(full), ShouldEqual, "https://x/small.png")
		So(catalog.Background(full), ShouldEqual, "https://x/large.png")
		So(catalog.Name(full), ShouldEqual, "Twitch Name")
		So(catalog.ReleaseYear(full), ShouldEqual, "2017")

		bare := model.Game{}
		So(catalog.Cover(bare), ShouldEqual, catalog.NoCover)
		So(catalog.Background(bare), ShouldEqual, catalog.NoCover)
		So(catalog.Name(bare), ShouldEqual, catalog.UntitledGame)
		So(catalog.ReleaseYear(bare), ShouldBeEmpty)
	})
}

// blockingSource holds every Games call past the first page until release
// is closed.
type blockingSource struct {
	fakeSource
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSource) Games(ctx context.Context, q speedrun.GamesQuery) ([]model.Game, error) {
	if q.Offset > 0 {
		close(b.entered)
		<-b.release
	}
	return b.fakeSource.Games(ctx, q)
}

func TestCatalog_Busy(t *testing.T) {
	Convey("Given a LoadMore in flight", t, func() {
		src := &blockingSource{
			fakeSource: fakeSource{total: 120},
			entered:    make(chan struct{}),
			release:    make(chan struct{}),
		}
		c := catalog.New(src)
		ctx := context.Background()

		_, err := c.FetchGames(ctx)
		So(err, ShouldBeNil)

		done := make(chan error, 1)
		go func() {
			_, err := c.LoadMore(ctx)
			done <- err
		}()
		<-src.entered

		Convey("Then a second LoadMore is refused until the first completes", func() {
			_, err := c.LoadMore(ctx)
			So(err, ShouldEqual, catalog.ErrBusy)

			close(src.release)
			So(<-done, ShouldBeNil)
			So(len(c.Page().Games), ShouldEqual, 100)
		})
	})
}
