package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/runboard/internal/adapters/http/api"
	"github.com/okian/runboard/internal/adapters/http/site"
	"github.com/okian/runboard/internal/adapters/http/swagger"
	"github.com/okian/runboard/internal/adapters/speedrun"
	app "github.com/okian/runboard/internal/app"
	"github.com/okian/runboard/internal/app/leaderboard"
	"github.com/okian/runboard/internal/config"
	"github.com/okian/runboard/pkg/logger"
	"github.com/okian/runboard/pkg/metrics"
)

func init() {
	_ = logger.Init()
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("RUNBOARD_ADDR", ":8080")
			_ = os.Setenv("RUNBOARD_QUEUE_SIZE", "1000")
			_ = os.Setenv("RUNBOARD_WORKER_COUNT", "4")
			_ = os.Setenv("RUNBOARD_BAD_REQUEST_POLICY", "surface")
			defer func() {
				_ = os.Unsetenv("RUNBOARD_ADDR")
				_ = os.Unsetenv("RUNBOARD_QUEUE_SIZE")
				_ = os.Unsetenv("RUNBOARD_WORKER_COUNT")
				_ = os.Unsetenv("RUNBOARD_BAD_REQUEST_POLICY")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(leaderboard.Policy(cfg.BadRequestPolicy), convey.ShouldEqual, leaderboard.PolicySurface)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				convey.So(app.New(), convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithMaxSessions(10),
				)
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(svc.GetStats()["maxSessions"], convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("When testing metrics updates", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(app.New()) }, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given the assembled HTTP stack", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		upstream := httptest.NewServer(http.NotFoundHandler())
		defer upstream.Close()
		client := speedrun.New(speedrun.WithBaseURL(upstream.URL), speedrun.WithTimeout(time.Second))
		defer client.Close()

		svc := app.New(app.WithUpstream(client), app.WithWorkerCount(2))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		site.Register(ctx, mux)
		swagger.Register(ctx, mux)
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(api.RecoverMiddleware(mux))
		defer srv.Close()

		get := func(path string) int {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+path, nil)
			convey.So(err, convey.ShouldBeNil)
			resp, err := http.DefaultClient.Do(req)
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			return resp.StatusCode
		}

		convey.Convey("Then every surface answers", func() {
			convey.So(get("/"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/sessions/unknown"), convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When the address is empty", func() {
			_ = os.Setenv("RUNBOARD_ADDR", "")
			defer func() { _ = os.Unsetenv("RUNBOARD_ADDR") }()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When options carry extreme values", func() {
			svc := app.New(
				app.WithWorkerCount(0),
				app.WithQueueSize(0),
				app.WithMaxSessions(0),
			)
			convey.So(svc, convey.ShouldNotBeNil)
			convey.So(svc.GetStats(), convey.ShouldNotBeNil)
		})
	})
}
