package auth

import (
	"errors"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/samber/oops"
)

// oops codes attached to every rejection so logs and metrics can tell the
// reasons apart after they have been collapsed for clients.
const (
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeNoSuchAccount      = "AUTH_NO_SUCH_ACCOUNT"
	CodeBadCredentials     = "AUTH_BAD_CREDENTIALS"
	CodeStoreUnavailable   = "AUTH_STORE_UNAVAILABLE"
	CodeHeaderMalformed    = "AUTH_HEADER_MALFORMED"
	CodeTokenMalformed     = "TOKEN_MALFORMED"
	CodeTokenBadSig        = "TOKEN_BAD_SIGNATURE"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeAccountGone        = "AUTH_ACCOUNT_GONE"
)

// ErrorCode returns the oops code carried by err, or "" when there is none.
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// IsUnauthenticated reports whether err means the caller presented no
// usable credential, as opposed to a server-side failure.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, common.ErrMalformedHeader) ||
		errors.Is(err, common.ErrTokenMalformed) ||
		errors.Is(err, common.ErrTokenBadSignature) ||
		errors.Is(err, common.ErrTokenExpired)
}

func tokenErrorCode(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return CodeTokenExpired
	case errors.Is(err, common.ErrTokenBadSignature):
		return CodeTokenBadSig
	default:
		return CodeTokenMalformed
	}
}
