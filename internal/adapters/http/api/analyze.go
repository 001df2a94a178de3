package api

import (
	"net/http"
	"strings"

	"github.com/caffinecoder/skillnav/internal/auth"
	"github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/caffinecoder/skillnav/pkg/logger"
)

type ackResponse struct {
	ID        string          `json:"id"`
	Status    model.JobStatus `json:"status"`
	Duplicate bool            `json:"duplicate"`
}

type repositoriesResponse struct {
	Username     string             `json:"username"`
	Repositories []model.Repository `json:"repositories"`
}

// handleAnalyze handles POST /analyze.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	req, err := s.decodeAnalyzeRequest(w, r, op)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess, _ := auth.SessionFrom(r.Context())

	res, err := s.deps.Analyze(r.Context(), req.profile())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res.User = sess.Label()

	s.logger.Info(r.Context(), "analysis served",
		logger.String("user", res.User),
		logger.Int("score", res.Score),
		logger.String("source", string(res.Source)))
	writeJSON(w, http.StatusOK, res)
}

// handleSubmit handles POST /analyses.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_analysis"
	req, err := s.decodeAnalyzeRequest(w, r, op)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess, _ := auth.SessionFrom(r.Context())

	job, duplicate, err := s.deps.Submit(r.Context(), sess.Label(), req.RequestID, req.profile())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{ID: job.ID, Status: job.Status, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{ID: job.ID, Status: job.Status})
}

// handleGetJob handles GET /analyses/{id}. Jobs of other owners are
// reported as not found.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_analysis"
	id := strings.TrimPrefix(r.URL.Path, "/analyses/")
	if id == "" || strings.Contains(id, "/") {
		s.fail(w, r, WrapKindf(op, ErrBadRequest, "missing analysis id"))
		return
	}
	sess, _ := auth.SessionFrom(r.Context())

	job, err := s.deps.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if job.Owner != sess.Label() {
		s.fail(w, r, WrapKindf(op, ErrNotFound, "analysis %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleGitHub handles GET /github/{username}.
func (s *Server) handleGitHub(w http.ResponseWriter, r *http.Request) {
	const op = "api.github"
	if s.repos == nil {
		s.fail(w, r, WrapKindf(op, ErrUnavailable, "github lookups are disabled"))
		return
	}
	username := strings.TrimPrefix(r.URL.Path, "/github/")
	if username == "" || strings.Contains(username, "/") {
		s.fail(w, r, WrapKindf(op, ErrBadRequest, "missing username"))
		return
	}

	repos, err := s.repos.Repositories(r.Context(), username)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, repositoriesResponse{Username: username, Repositories: repos})
}
