package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/caffinecoder/skillnav/pkg/metrics"
)

// Demo session constants.
const (
	DemoTokenPrefix = "demo-session-token-"
	DemoEmail       = "demo@example.com"
	DemoName        = "Demo User"
	demoUserID      = "demo-user"
	// legacyDemoToken is sent by clients that have no session yet.
	legacyDemoToken = "demo-token"
)

// DescopeIssuer returns the expected "iss" claim for projectID.
func DescopeIssuer(projectID string) string {
	return "https://api.descope.com/" + projectID
}

// Authenticator turns a bearer token into a Session.
type Authenticator interface {
	Verify(ctx context.Context, token string) (Session, error)
}

// Verifier accepts Descope session tokens and, in demo mode, demo tokens.
//
// Descope tokens are decoded without checking the signature; only the
// issuer and expiry are enforced.
type Verifier struct {
	projectID string
	demoMode  bool
	leeway    time.Duration
	now       func() time.Time
	parser    *jwt.Parser
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithProjectID sets the Descope project ID. Empty disables Descope tokens.
func WithProjectID(id string) Option {
	return func(v *Verifier) { v.projectID = strings.TrimSpace(id) }
}

// WithDemoMode enables demo sessions.
func WithDemoMode(enabled bool) Option {
	return func(v *Verifier) { v.demoMode = enabled }
}

// WithLeeway tolerates clock skew on expiry.
func WithLeeway(d time.Duration) Option {
	return func(v *Verifier) {
		if d >= 0 {
			v.leeway = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewVerifier creates a Verifier.
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{
		now:    time.Now,
		parser: jwt.NewParser(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Configured reports whether Descope tokens can be verified.
func (v *Verifier) Configured() bool { return v.projectID != "" }

// DemoEnabled reports whether demo sessions are accepted.
func (v *Verifier) DemoEnabled() bool { return v.demoMode }

type descopeClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Verify implements Authenticator.
func (v *Verifier) Verify(_ context.Context, token string) (Session, error) {
	s, reason, err := v.verify(token)
	if err != nil {
		metrics.RecordAuthFailure(reason)
		return Session{}, err
	}
	return s, nil
}

func (v *Verifier) verify(token string) (Session, string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, "empty", ErrInvalidToken
	}

	if token == legacyDemoToken || strings.HasPrefix(token, DemoTokenPrefix) {
		if !v.demoMode {
			return Session{}, "demo_disabled", ErrDemoDisabled
		}
		return demoSession(), "", nil
	}

	if v.projectID == "" {
		return Session{}, "not_configured", ErrNotConfigured
	}

	claims := &descopeClaims{}
	if _, _, err := v.parser.ParseUnverified(token, claims); err != nil {
		return Session{}, "malformed", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Issuer != DescopeIssuer(v.projectID) {
		return Session{}, "issuer", fmt.Errorf("%w: %q", ErrWrongIssuer, claims.Issuer)
	}

	s := Session{UserID: claims.Subject, Email: claims.Email, Name: claims.Name}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
		if v.now().After(s.ExpiresAt.Add(v.leeway)) {
			return Session{}, "expired", ErrExpiredToken
		}
	}
	return s, "", nil
}

func demoSession() Session {
	return Session{UserID: demoUserID, Email: DemoEmail, Name: DemoName, Demo: true}
}

// IssueDemo creates a demo session token.
func (v *Verifier) IssueDemo(_ context.Context) (string, Session, error) {
	if !v.demoMode {
		return "", Session{}, ErrDemoDisabled
	}
	return DemoTokenPrefix + strconv.FormatInt(v.now().UnixMilli(), 10), demoSession(), nil
}

// IsUnauthorized reports whether err means the caller must authenticate
// again, as opposed to a server side misconfiguration.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrMissingHeader) ||
		errors.Is(err, ErrMalformedHeader) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrWrongIssuer) ||
		errors.Is(err, ErrDemoDisabled)
}
