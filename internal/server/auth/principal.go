package auth

import "context"

// Principal is the identity resolved for one request.
type Principal struct {
	ID       string
	Nickname string
	Email    string
}

func PrincipalFromClaims(c Claims) Principal {
	return Principal{ID: c.ID, Nickname: c.Nickname, Email: c.Email}
}

// Claims returns the credential claims for p, without expiry.
func (p Principal) Claims() Claims {
	return Claims{ID: p.ID, Nickname: p.Nickname, Email: p.Email}
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
