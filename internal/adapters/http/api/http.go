// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/caffinecoder/skillnav/internal/adapters/github"
	"github.com/caffinecoder/skillnav/internal/adapters/repository"
	service "github.com/caffinecoder/skillnav/internal/app"
	"github.com/caffinecoder/skillnav/internal/auth"
	"github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/caffinecoder/skillnav/internal/domain/scoring"
	"github.com/caffinecoder/skillnav/pkg/logger"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Analyze runs a synchronous analysis.
	Analyze(ctx context.Context, p model.Profile) (model.Result, error)

	// Submit queues an analysis. duplicate is true when requestID was seen.
	Submit(ctx context.Context, owner, requestID string, p model.Profile) (job model.AnalysisJob, duplicate bool, err error)

	// Get returns a previously submitted job.
	Get(ctx context.Context, id string) (model.AnalysisJob, error)

	// AIEnabled reports whether the generative model is configured.
	AIEnabled() bool
}

// Authenticator verifies bearer tokens and issues demo sessions.
type Authenticator interface {
	auth.Authenticator
	IssueDemo(ctx context.Context) (string, auth.Session, error)
	Configured() bool
	DemoEnabled() bool
}

// Option configures a Server.
type Option func(*Server)

// WithAuthenticator sets the session verifier.
func WithAuthenticator(a Authenticator) Option {
	return func(s *Server) { s.auth = a }
}

// WithRepositoryFetcher enables GET /github/{username}.
func WithRepositoryFetcher(f github.Fetcher) Option {
	return func(s *Server) { s.repos = f }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps         Dependencies
	auth         Authenticator
	repos        github.Fetcher
	validate     *validator.Validate
	maxBodyBytes int64
	logger       logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		maxBodyBytes:  defaultMaxBodyBytes,
		logger:        logger.Named("api"),
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// route is a path with the methods it accepts.
type route struct {
	pattern  string
	endpoint string
	methods  []string
	handler  http.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{"/healthz", "healthz", []string{http.MethodGet}, s.healthHandler.HandleHealth},
		{"/stats", "stats", []string{http.MethodGet}, s.statsHandler.HandleStats},
		{"/auth/verify", "auth_verify", []string{http.MethodPost}, s.handleVerify},
		{"/auth/demo", "auth_demo", []string{http.MethodPost}, s.handleDemo},
		{"/analyze", "analyze", []string{http.MethodPost}, s.requireSession(s.handleAnalyze)},
		{"/analyses", "analyses_submit", []string{http.MethodPost}, s.requireSession(s.handleSubmit)},
		{"/analyses/", "analyses_get", []string{http.MethodGet}, s.requireSession(s.handleGetJob)},
		{"/github/", "github", []string{http.MethodGet}, s.handleGitHub},
	}
}

// AvailableEndpoints lists the public paths reported by 404 responses.
func AvailableEndpoints() []string {
	return []string{"/", "/analyze", "/auth/verify", "/auth/demo", "/analyses", "/analyses/{id}", "/github/{username}", "/healthz", "/stats"}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	for _, rt := range s.routes() {
		mux.HandleFunc(rt.pattern, MetricsMiddleware(allowMethods(rt.handler, rt.methods...), rt.endpoint))
	}
	mux.HandleFunc("/", MetricsMiddleware(s.handleRoot, "root"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps an error to a status code and a short machine code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, scoring.ErrInvalidInput), errors.Is(err, github.ErrInvalidUsername):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound), errors.Is(err, github.ErrUserNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure), errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, github.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, ErrUpstream), errors.As(err, new(*github.Error)):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, ErrUnavailable), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail writes err using statusFor and logs server side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	}
	writeError(w, status, code, err)
}
