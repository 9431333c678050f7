package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T, store *fakeStore) (*Gate, *countingVerifier, *TokenManager) {
	t.Helper()
	tm := NewTokenManager(testSecret, time.Hour, WithClock(fixedClock(testNow)))
	v := &countingVerifier{Verifier: tm}
	var opts []GateOption
	if store != nil {
		opts = append(opts, WithAccountResolver(store))
	}
	return NewGate(v, opts...), v, tm
}

func bobStore() *fakeStore {
	return &fakeStore{accounts: map[string]*models.Account{
		"u-1": {ID: "u-1", Nickname: "Bob", Email: "bob@gmail.com"},
	}}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def.ghi", "", false},
		{"Bearer a b", "", false},
	}
	for _, c := range cases {
		token, ok := BearerToken(c.header)
		assert.Equal(t, c.ok, ok, c.header)
		assert.Equal(t, c.token, token, c.header)
	}
}

func TestGate_MalformedHeaderSkipsVerifier(t *testing.T) {
	g, v, _ := newTestGate(t, bobStore())

	for _, h := range []string{"", "Token abc", "Bearer"} {
		_, err := g.Authorize(context.Background(), h)
		assert.ErrorIs(t, err, common.ErrMalformedHeader)
		assert.True(t, IsUnauthenticated(err))
		assert.Equal(t, CodeHeaderMalformed, ErrorCode(err))
	}
	assert.Zero(t, v.calls.Load())
}

func TestGate_NeverIssuedToken(t *testing.T) {
	g, v, _ := newTestGate(t, bobStore())
	foreign, err := NewTokenManager([]byte("other"), time.Hour).Issue(Claims{ID: "u-1"})
	require.NoError(t, err)

	_, err = g.Authorize(context.Background(), "Bearer "+foreign)
	assert.ErrorIs(t, err, common.ErrTokenBadSignature)
	assert.True(t, IsUnauthenticated(err))
	assert.Equal(t, CodeTokenBadSig, ErrorCode(err))
	assert.EqualValues(t, 1, v.calls.Load())
}

func TestGate_MalformedToken(t *testing.T) {
	g, _, _ := newTestGate(t, bobStore())

	_, err := g.Authorize(context.Background(), "Bearer not-a-jwt")
	assert.ErrorIs(t, err, common.ErrTokenMalformed)
	assert.Equal(t, CodeTokenMalformed, ErrorCode(err))
}

func TestGate_Expired(t *testing.T) {
	issuer := NewTokenManager(testSecret, time.Minute, WithClock(fixedClock(testNow.Add(-time.Hour))))
	token, err := issuer.Issue(Claims{ID: "u-1"})
	require.NoError(t, err)

	g, _, _ := newTestGate(t, bobStore())
	_, err = g.Authorize(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
	assert.True(t, IsUnauthenticated(err))
	assert.Equal(t, CodeTokenExpired, ErrorCode(err))
}

func TestGate_AccountGone(t *testing.T) {
	g, _, tm := newTestGate(t, &fakeStore{accounts: map[string]*models.Account{}})
	token, err := tm.Issue(Claims{ID: "u-1", Nickname: "Bob"})
	require.NoError(t, err)

	_, err = g.Authorize(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, common.ErrAccountNotFoundAfterTokenValid)
	assert.False(t, IsUnauthenticated(err))
	assert.Equal(t, CodeAccountGone, ErrorCode(err))
}

func TestGate_StoreDown(t *testing.T) {
	cause := errors.New("boom")
	g, _, tm := newTestGate(t, &fakeStore{err: cause})
	token, err := tm.Issue(Claims{ID: "u-1"})
	require.NoError(t, err)

	_, err = g.Authorize(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsUnauthenticated(err))
	assert.Equal(t, CodeStoreUnavailable, ErrorCode(err))
}

func TestGate_SuccessRefreshesFromAccount(t *testing.T) {
	g, _, tm := newTestGate(t, bobStore())
	token, err := tm.Issue(Claims{ID: "u-1", Nickname: "OldNick", Email: "old@gmail.com"})
	require.NoError(t, err)

	ctx, p, err := g.Attach(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, Principal{ID: "u-1", Nickname: "Bob", Email: "bob@gmail.com"}, p)

	fromCtx, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, p, fromCtx)
}

func TestGate_WithoutResolverUsesClaims(t *testing.T) {
	g, _, tm := newTestGate(t, nil)
	token, err := tm.Issue(Claims{ID: "u-9", Nickname: "Ghost", Email: "ghost@gmail.com"})
	require.NoError(t, err)

	p, err := g.Authorize(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, Principal{ID: "u-9", Nickname: "Ghost", Email: "ghost@gmail.com"}, p)
}

func TestPrincipalFromContext_Empty(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)
}
