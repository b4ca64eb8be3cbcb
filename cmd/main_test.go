package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/clipscore/internal/adapters/http/api"
	app "github.com/okian/clipscore/internal/app"
	"github.com/okian/clipscore/internal/config"
	"github.com/okian/clipscore/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("CLIPSCORE_ADDR", ":8080")
			_ = os.Setenv("CLIPSCORE_BATCH_SIZE", "25")
			defer func() {
				_ = os.Unsetenv("CLIPSCORE_ADDR")
				_ = os.Unsetenv("CLIPSCORE_BATCH_SIZE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.BatchSize, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with defaults", func() {
				svc := app.New(config.New())
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			cfg := config.New()
			svc := app.New(cfg)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			mux := http.NewServeMux()
			apiServer := api.NewServer(svc, "secret", cfg.MaxRankingsLimit)
			apiServer.Register(context.Background(), mux)

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           mux,
				ReadTimeout:       readTimeout,
				WriteTimeout:      writeTimeout,
				IdleTimeout:       idleTimeout,
				ReadHeaderTimeout: readHeaderTimeout,
			}

			convey.Convey("Then the server should carry the configured timeouts", func() {
				convey.So(srv.ReadTimeout, convey.ShouldEqual, 10*time.Second)
				convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, 5*time.Second)
				convey.So(srv.Handler, convey.ShouldNotBeNil)
			})
		})
	})
}
