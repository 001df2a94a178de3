package auth

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProject = "P2testproject"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unused-secret"))
	require.NoError(t, err)
	return token
}

func newTestVerifier(opts ...Option) *Verifier {
	base := []Option{WithProjectID(testProject), WithClock(func() time.Time { return fixedNow }), WithLeeway(30 * time.Second)}
	return NewVerifier(append(base, opts...)...)
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer abc.def", want: "abc.def"},
		{name: "case insensitive scheme", header: "bearer tok", want: "tok"},
		{name: "extra spaces", header: "  Bearer   tok  ", want: "tok"},
		{name: "missing", header: "", wantErr: ErrMissingHeader},
		{name: "blank", header: "   ", wantErr: ErrMissingHeader},
		{name: "wrong scheme", header: "Basic dXNlcg==", wantErr: ErrMalformedHeader},
		{name: "no token", header: "Bearer", wantErr: ErrMalformedHeader},
		{name: "too many parts", header: "Bearer a b", wantErr: ErrMalformedHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearer(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "No authorization header provided", ErrMissingHeader.Error())
	assert.Equal(t, "Invalid authorization header format", ErrMalformedHeader.Error())
}

func TestBearerFromRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/analyze", nil)
	r.Header.Set("Authorization", "Bearer xyz")

	tok, err := BearerFromRequest(r)

	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)
}

func TestVerify_Descope(t *testing.T) {
	v := newTestVerifier()
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"iss":   DescopeIssuer(testProject),
			"sub":   "U123",
			"email": "ada@example.com",
			"name":  "Ada",
			"exp":   fixedNow.Add(time.Hour).Unix(),
		})

		s, err := v.Verify(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, "U123", s.UserID)
		assert.Equal(t, "ada@example.com", s.Email)
		assert.Equal(t, "Ada", s.Name)
		assert.False(t, s.Demo)
		assert.Equal(t, "ada@example.com", s.Label())
	})

	t.Run("signature is not checked", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"iss": DescopeIssuer(testProject), "sub": "U1"})
		parts := strings.Split(token, ".")
		tampered := parts[0] + "." + parts[1] + ".bm90LWEtc2lnbmF0dXJl"

		s, err := v.Verify(ctx, tampered)

		require.NoError(t, err)
		assert.Equal(t, "U1", s.UserID)
		assert.Equal(t, "U1", s.Label())
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"iss": DescopeIssuer("other"), "sub": "U1"})
		_, err := v.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrWrongIssuer)
	})

	t.Run("expired beyond leeway", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"iss": DescopeIssuer(testProject), "exp": fixedNow.Add(-time.Minute).Unix()})
		_, err := v.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("expired within leeway", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"iss": DescopeIssuer(testProject), "exp": fixedNow.Add(-10 * time.Second).Unix()})
		_, err := v.Verify(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := v.Verify(ctx, " ")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerify_NotConfigured(t *testing.T) {
	v := NewVerifier()
	assert.False(t, v.Configured())

	_, err := v.Verify(context.Background(), "a.b.c")

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, IsUnauthorized(err))
}

func TestDemoSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("enabled", func(t *testing.T) {
		v := newTestVerifier(WithDemoMode(true))
		assert.True(t, v.DemoEnabled())

		token, s, err := v.IssueDemo(ctx)
		require.NoError(t, err)
		assert.Equal(t, "demo-session-token-1772366400000", token)
		assert.Equal(t, DemoEmail, s.Email)
		assert.Equal(t, DemoName, s.Name)
		assert.True(t, s.Demo)

		verified, err := v.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, s, verified)

		legacy, err := v.Verify(ctx, "demo-token")
		require.NoError(t, err)
		assert.True(t, legacy.Demo)
	})

	t.Run("disabled", func(t *testing.T) {
		v := newTestVerifier(WithDemoMode(false))

		_, _, err := v.IssueDemo(ctx)
		assert.ErrorIs(t, err, ErrDemoDisabled)

		_, err = v.Verify(ctx, "demo-session-token-1")
		assert.ErrorIs(t, err, ErrDemoDisabled)
	})
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFrom(context.Background())
	assert.False(t, ok)

	want := Session{UserID: "u", Email: "e@x.io"}
	got, ok := SessionFrom(WithSession(context.Background(), want))

	assert.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, "unknown", Session{}.Label())
}
