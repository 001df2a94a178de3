package auth

import "errors"

// Sentinel kinds for authentication errors. Messages of the header errors
// are part of the public API.
var (
	ErrMissingHeader   = errors.New("No authorization header provided")    //nolint:staticcheck // public message
	ErrMalformedHeader = errors.New("Invalid authorization header format") //nolint:staticcheck // public message
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token expired")
	ErrWrongIssuer     = errors.New("token issuer mismatch")
	ErrNotConfigured   = errors.New("session verification not configured")
	ErrDemoDisabled    = errors.New("demo sessions disabled")
)
