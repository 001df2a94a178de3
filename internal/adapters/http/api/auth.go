package api

import (
	"errors"
	"net/http"

	"github.com/caffinecoder/skillnav/internal/auth"
	"github.com/caffinecoder/skillnav/pkg/logger"
)

const invalidSessionMessage = "Invalid or expired token"

type verifyResponse struct {
	Valid bool          `json:"valid"`
	User  *auth.Session `json:"user,omitempty"`
	Error string        `json:"error,omitempty"`
}

type demoResponse struct {
	Token string       `json:"token"`
	User  auth.Session `json:"user"`
}

// requireSession rejects requests without a valid bearer session and puts
// the session in the request context.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	const op = "api.require_session"
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			s.fail(w, r, WrapKindf(op, ErrUnavailable, "authentication unavailable"))
			return
		}
		token, err := auth.BearerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", err)
			return
		}
		sess, err := s.auth.Verify(r.Context(), token)
		if err != nil {
			s.logSessionError(r, err)
			writeError(w, http.StatusUnauthorized, "unauthorized", errors.New(invalidSessionMessage))
			return
		}
		next(w, r.WithContext(auth.WithSession(r.Context(), sess)))
	}
}

func (s *Server) logSessionError(r *http.Request, err error) {
	if auth.IsUnauthorized(err) {
		s.logger.Debug(r.Context(), "session rejected", logger.Error(err))
		return
	}
	s.logger.Warn(r.Context(), "session could not be verified", logger.Error(err))
}

// handleVerify handles POST /auth/verify.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		writeJSON(w, http.StatusServiceUnavailable, verifyResponse{Error: "authentication unavailable"})
		return
	}
	token, err := auth.BearerFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, verifyResponse{Error: "Invalid authorization header"})
		return
	}
	sess, err := s.auth.Verify(r.Context(), token)
	if err != nil {
		s.logSessionError(r, err)
		writeJSON(w, http.StatusUnauthorized, verifyResponse{Error: "Invalid token"})
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Valid: true, User: &sess})
}

// handleDemo handles POST /auth/demo.
func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	const op = "api.auth_demo"
	if s.auth == nil || !s.auth.DemoEnabled() {
		writeNotFound(w)
		return
	}
	token, sess, err := s.auth.IssueDemo(r.Context())
	if err != nil {
		s.fail(w, r, WrapKind(op, ErrNotFound, err))
		return
	}
	writeJSON(w, http.StatusOK, demoResponse{Token: token, User: sess})
}
