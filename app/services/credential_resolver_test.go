package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signmark/niap-ui-base-sub002/utils"
)

type stubStrategy struct {
	name  string
	token string
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Resolve(_ context.Context) (string, error) {
	s.calls++
	return s.token, s.err
}

func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestSystemTokenFirstSuccessWins(t *testing.T) {
	first := &stubStrategy{name: "first", token: "tok-1"}
	second := &stubStrategy{name: "second", token: "tok-2"}

	r := NewCredentialResolver(nil, first, second)
	token, ok := r.SystemToken(context.Background())

	require.True(t, ok)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
}

func TestSystemTokenFallsThroughEmptyAndFailedTiers(t *testing.T) {
	empty := &stubStrategy{name: "empty"}
	failing := &stubStrategy{name: "failing", err: errors.New("login refused")}
	last := &stubStrategy{name: "last", token: "tok-3"}

	r := NewCredentialResolver(nil, empty, failing, last)
	token, ok := r.SystemToken(context.Background())

	require.True(t, ok)
	assert.Equal(t, "tok-3", token)
	assert.Equal(t, 1, empty.calls)
	assert.Equal(t, 1, failing.calls)
}

func TestSystemTokenAllTiersExhausted(t *testing.T) {
	r := NewCredentialResolver(nil,
		&stubStrategy{name: "a"},
		&stubStrategy{name: "b", err: errors.New("down")},
	)

	token, ok := r.SystemToken(context.Background())
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestTokenUsable(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		usable bool
	}{
		{
			name:   "jwt expiring in an hour",
			token:  "", // filled below
			usable: true,
		},
		{
			name:   "expired jwt",
			usable: false,
		},
		{
			name:   "jwt expiring within the margin",
			usable: false,
		},
		{
			name:   "non-jwt static token",
			token:  "directus_static_token_abc",
			usable: true,
		},
	}

	tests[0].token = signedJWT(t, utils.UTCNow().Add(time.Hour))
	tests[1].token = signedJWT(t, utils.UTCNow().Add(-time.Hour))
	tests[2].token = signedJWT(t, utils.UTCNow().Add(5*time.Second))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.usable, tokenUsable(tt.token))
		})
	}
}

func TestStaticTokenStrategy(t *testing.T) {
	s := NewStaticTokenStrategy("static-tok")
	token, err := s.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static-tok", token)

	blank := NewStaticTokenStrategy("  ")
	token, err = blank.Resolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAdminLoginStrategyWithoutCredentials(t *testing.T) {
	s := NewAdminLoginStrategy(nil, nil, nil, "", "", "", "")
	token, err := s.Resolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCachedSessionStrategyWithoutCache(t *testing.T) {
	s := NewCachedSessionStrategy(nil, "")
	token, err := s.Resolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestStoredTokenStrategyWithoutRepository(t *testing.T) {
	s := NewStoredTokenStrategy(nil, "user-1")
	token, err := s.Resolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}
