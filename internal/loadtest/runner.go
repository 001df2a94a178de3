package loadtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/caffinecoder/skillnav/pkg/logger"
)

// Operation names used in Report.Latencies.
const (
	OpAnalyze  = "analyze"
	OpSubmit   = "submit"
	OpComplete = "complete"
)

// Report is the outcome of a run.
type Report struct {
	Requests   int
	Succeeded  int
	Duplicates int
	Failed     int
	Duration   time.Duration
	Latencies  map[string]Latency
}

// Throughput returns completed operations per second.
func (r *Report) Throughput() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Succeeded+r.Duplicates) / r.Duration.Seconds()
}

// SuccessRate returns the share of operations that did not fail, in percent.
func (r *Report) SuccessRate() float64 {
	if r.Requests == 0 {
		return 0
	}
	return float64(r.Requests-r.Failed) / float64(r.Requests) * 100
}

type demoResponse struct {
	Token string `json:"token"`
}

type ackResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type jobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

type analyzeResponse struct {
	Score int `json:"score"`
}

// errJobFailed is returned when a submitted analysis ends in the failed state.
var errJobFailed = errors.New("analysis job failed")

// Run checks the server, obtains a demo token and sends cfg.Requests
// operations with at most cfg.Workers in flight. Individual operation
// failures are counted, not returned; only setup failures and context
// cancellation abort the run.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("loadtest")
	c := newClient(cfg.BaseURL, cfg.Timeout)

	if _, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil, http.StatusOK); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	var demo demoResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/demo", nil, &demo, http.StatusOK); err != nil {
		return nil, fmt.Errorf("demo token: %w", err)
	}
	c.token = demo.Token

	log.Info(ctx, "starting load test",
		logger.String("url", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	var (
		rec                          = newRecorder()
		succeeded, duplicates, fails atomic.Int64
		start                        = time.Now()
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for i, req := range generateRequests(cfg.Requests) {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			var (
				dup bool
				err error
			)
			if i%2 == 0 {
				err = analyzeOnce(gctx, c, rec, req)
			} else {
				dup, err = submitAndWait(gctx, c, rec, req, cfg.PollInterval)
			}
			switch {
			case err == nil && dup:
				duplicates.Add(1)
			case err == nil:
				succeeded.Add(1)
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				fails.Add(1)
				if cfg.Verbose {
					log.Warn(gctx, "operation failed", logger.Int("index", i), logger.Error(err))
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load test interrupted: %w", err)
	}

	report := &Report{
		Requests:   cfg.Requests,
		Succeeded:  int(succeeded.Load()),
		Duplicates: int(duplicates.Load()),
		Failed:     int(fails.Load()),
		Duration:   time.Since(start),
		Latencies:  rec.summaries(),
	}
	log.Info(ctx, "load test finished",
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", report.Failed),
		logger.Duration("duration", report.Duration),
		logger.Float64("throughput", report.Throughput()))
	return report, nil
}

func analyzeOnce(ctx context.Context, c *client, rec *recorder, req Request) error {
	req.RequestID = ""
	began := time.Now()
	var res analyzeResponse
	if _, err := c.do(ctx, http.MethodPost, "/analyze", req, &res, http.StatusOK); err != nil {
		return err
	}
	rec.add(OpAnalyze, time.Since(began))
	return nil
}

// submitAndWait posts to /analyses and polls the job until it leaves the
// pending state. It reports whether the submission was a duplicate.
func submitAndWait(ctx context.Context, c *client, rec *recorder, req Request, poll time.Duration) (bool, error) {
	began := time.Now()
	var ack ackResponse
	if _, err := c.do(ctx, http.MethodPost, "/analyses", req, &ack, http.StatusAccepted, http.StatusOK); err != nil {
		return false, err
	}
	rec.add(OpSubmit, time.Since(began))

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		var job jobResponse
		if _, err := c.do(ctx, http.MethodGet, "/analyses/"+ack.ID, nil, &job, http.StatusOK); err != nil {
			return ack.Duplicate, err
		}
		switch job.Status {
		case "completed":
			rec.add(OpComplete, time.Since(began))
			return ack.Duplicate, nil
		case "failed":
			return ack.Duplicate, fmt.Errorf("%w: %s", errJobFailed, job.Error)
		}
		select {
		case <-ctx.Done():
			return ack.Duplicate, ctx.Err()
		case <-ticker.C:
		}
	}
}
