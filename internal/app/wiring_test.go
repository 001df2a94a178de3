package service_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/caffinecoder/skillnav/internal/app"
	"github.com/caffinecoder/skillnav/internal/config"
	"github.com/caffinecoder/skillnav/pkg/logger"
)

func TestWiring(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		Convey("The analyzer runs on the engine only", func() {
			a, closeFn, err := service.NewAnalyzer(ctx, cfg, logger.Get())
			So(err, ShouldBeNil)
			So(a.AIEnabled(), ShouldBeFalse)
			So(closeFn(), ShouldBeNil)
		})

		Convey("The verifier accepts demo sessions but not Descope tokens", func() {
			v := service.NewVerifier(cfg)
			So(v.DemoEnabled(), ShouldBeTrue)
			So(v.Configured(), ShouldBeFalse)
		})

		Convey("The engine uses the configured weights", func() {
			cfg.Scoring.Base = 40
			So(service.NewEngine(cfg).Weights().Base, ShouldEqual, 40.0)
		})

		Convey("Service options build a working service", func() {
			svc := service.New(service.FromConfig(cfg)...)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["workerCount"], ShouldEqual, cfg.WorkerCount)
			So(svc.Stop(ctx), ShouldBeNil)
		})

		Convey("A GitHub client is built", func() {
			So(service.NewGitHubClient(cfg, logger.Get()), ShouldNotBeNil)
		})
	})
}
