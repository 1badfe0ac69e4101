package video_test

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/runboard/internal/app/video"
	"github.com/okian/runboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recorder) Emit(_ context.Context, e model.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return true
}

func TestPopup(t *testing.T) {
	Convey("Given a closed popup", t, func() {
		rec := &recorder{}
		p := video.NewPopup(rec)
		ctx := context.Background()

		So(p.Active(), ShouldBeNil)

		Convey("When opening a YouTube link", func() {
			embed, opened := p.Open(ctx, "https://www.youtube.com/watch?v=abc123")

			Convey("Then the autoplay embed is active and announced", func() {
				So(opened, ShouldBeTrue)
				So(embed, ShouldEqual, "https://www.youtube.com/embed/abc123?autoplay=1")
				So(*p.Active(), ShouldEqual, embed)
				So(len(rec.events), ShouldEqual, 1)
				So(rec.events[0].Kind, ShouldEqual, model.EventVideoRequested)
				So(*rec.events[0].EmbedURL, ShouldEqual, embed)
			})

			Convey("Then opening the same video again does nothing", func() {
				_, opened := p.Open(ctx, "https://youtu.be/abc123")
				So(opened, ShouldBeFalse)
				So(len(rec.events), ShouldEqual, 1)
			})

			Convey("Then closing clears it and announces a nil URL", func() {
				p.Close(ctx)
				So(p.Active(), ShouldBeNil)
				So(len(rec.events), ShouldEqual, 2)
				So(rec.events[1].EmbedURL, ShouldBeNil)
			})
		})

		Convey("When opening a non-YouTube link", func() {
			embed, _ := p.Open(ctx, "https://www.twitch.tv/videos/42")
			So(embed, ShouldEqual, "https://www.twitch.tv/videos/42")
		})
	})

	Convey("Given a popup without an emitter", t, func() {
		p := video.NewPopup(nil)
		_, opened := p.Open(context.Background(), "https://youtu.be/x")
		So(opened, ShouldBeTrue)
		p.Close(context.Background())
		So(p.Active(), ShouldBeNil)
	})
}
