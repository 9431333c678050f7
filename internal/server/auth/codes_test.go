package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))

	coded := oops.Code(CodeTokenExpired).Wrap(common.ErrTokenExpired)
	assert.Equal(t, CodeTokenExpired, ErrorCode(coded))
	assert.Equal(t, CodeTokenExpired, ErrorCode(fmt.Errorf("outer: %w", coded)))

	uncoded := oops.With("k", "v").Wrap(common.ErrTokenExpired)
	assert.Equal(t, "", ErrorCode(uncoded))
}

func TestIsUnauthenticated(t *testing.T) {
	for _, err := range []error{common.ErrMalformedHeader, common.ErrTokenMalformed, common.ErrTokenBadSignature, common.ErrTokenExpired} {
		assert.True(t, IsUnauthenticated(oops.Wrap(err)), err.Error())
	}
	assert.False(t, IsUnauthenticated(common.ErrStoreUnavailable))
	assert.False(t, IsUnauthenticated(common.ErrAccountNotFoundAfterTokenValid))
}
