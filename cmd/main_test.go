package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/caffinecoder/skillnav/internal/app"
	"github.com/caffinecoder/skillnav/internal/config"
	"github.com/caffinecoder/skillnav/pkg/logger"
)

func TestMainConfiguration(t *testing.T) {
	t.Setenv("SKILLNAV_ADDR", ":8080")
	t.Setenv("SKILLNAV_QUEUE_SIZE", "1000")
	t.Setenv("SKILLNAV_WORKER_COUNT", "4")

	convey.Convey("Given environment configuration", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then it is applied over the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given the wired application", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.WorkerCount = 2

		analyzer, closeAnalyzer, err := app.NewAnalyzer(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = closeAnalyzer() }()

		svc := app.New(append(app.FromConfig(cfg), app.WithAnalyzer(analyzer))...)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		srv := httptest.NewServer(newHandler(ctx, cfg, svc, logger.Get()))
		defer srv.Close()

		post := func(path, token, body string) *http.Response {
			req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			resp, err := http.DefaultClient.Do(req)
			convey.So(err, convey.ShouldBeNil)
			return resp
		}
		decode := func(resp *http.Response) map[string]interface{} {
			defer resp.Body.Close()
			var out map[string]interface{}
			convey.So(json.NewDecoder(resp.Body).Decode(&out), convey.ShouldBeNil)
			return out
		}

		convey.Convey("A demo session can analyze synchronously and asynchronously", func() {
			demo := decode(post("/auth/demo", "", ""))
			token := demo["token"].(string)

			resp := post("/analyze", token, `{"career_goal":"Machine Learning Engineer","linkedin_skills":"Python, PyTorch"}`)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			res := decode(resp)
			convey.So(res["score"], convey.ShouldBeBetweenOrEqual, 0.0, 100.0)
			convey.So(res["source"], convey.ShouldEqual, "engine")

			resp = post("/analyses", token, `{"career_goal":"Data Analyst","request_id":"it-1"}`)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusAccepted)
			id := decode(resp)["id"].(string)

			var status string
			for deadline := time.Now().Add(5 * time.Second); time.Now().Before(deadline); time.Sleep(10 * time.Millisecond) {
				req, _ := http.NewRequest(http.MethodGet, srv.URL+"/analyses/"+id, http.NoBody)
				req.Header.Set("Authorization", "Bearer "+token)
				r, err := http.DefaultClient.Do(req)
				convey.So(err, convey.ShouldBeNil)
				status, _ = decode(r)["status"].(string)
				if status == "completed" {
					break
				}
			}
			convey.So(status, convey.ShouldEqual, "completed")
		})

		convey.Convey("The docs and metrics are served", func() {
			for _, path := range []string{"/openapi.yaml", "/api-docs", "/healthz"} {
				resp, err := http.Get(srv.URL + path)
				convey.So(err, convey.ShouldBeNil)
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given the background updaters", t, func() {
		convey.Convey("They return once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, app.New()) }, convey.ShouldNotPanic)
		})

		convey.Convey("System metrics update without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
