package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/server/models"
	"github.com/samber/oops"
)

// Verifier checks a bearer credential. *TokenManager implements it.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// AccountResolver looks an account up by id once its token has verified.
type AccountResolver interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

// Gate turns an Authorization header value into a Principal.
type Gate struct {
	verifier Verifier
	resolver AccountResolver
}

type GateOption func(*Gate)

// WithAccountResolver makes the gate re-read the account behind every valid
// token, so deleted accounts stop authorizing and the principal carries
// current nickname and email.
func WithAccountResolver(r AccountResolver) GateOption {
	return func(g *Gate) { g.resolver = r }
}

func NewGate(v Verifier, opts ...GateOption) *Gate {
	g := &Gate{verifier: v}
	for _, o := range opts {
		o(g)
	}
	return g
}

// BearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// Authorize checks header and returns the caller's Principal. Errors wrap
// common.ErrMalformedHeader, one of the token errors,
// common.ErrAccountNotFoundAfterTokenValid or common.ErrStoreUnavailable,
// and carry an oops code naming the reason.
func (g *Gate) Authorize(ctx context.Context, header string) (Principal, error) {
	token, ok := BearerToken(header)
	if !ok {
		return Principal{}, oops.Code(CodeHeaderMalformed).Wrap(common.ErrMalformedHeader)
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		return Principal{}, oops.Code(tokenErrorCode(err)).Wrap(err)
	}

	if g.resolver == nil {
		return PrincipalFromClaims(claims), nil
	}

	account, err := g.resolver.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return Principal{}, oops.Code(CodeAccountGone).
				With("account_id", claims.ID).
				Wrap(common.ErrAccountNotFoundAfterTokenValid)
		}
		return Principal{}, oops.Code(CodeStoreUnavailable).
			Wrapf(errors.Join(common.ErrStoreUnavailable, err), "resolve account")
	}

	return Principal{ID: account.ID, Nickname: account.Nickname, Email: account.Email}, nil
}

// Attach authorizes header and, on success, returns ctx carrying the
// Principal.
func (g *Gate) Attach(ctx context.Context, header string) (context.Context, Principal, error) {
	p, err := g.Authorize(ctx, header)
	if err != nil {
		return ctx, Principal{}, err
	}
	return WithPrincipal(ctx, p), p, nil
}
