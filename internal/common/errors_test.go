package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := NotFound("product %s not found", "p1")

	assert.True(t, errors.Is(err, ErrorNotFound))
	assert.False(t, errors.Is(err, ErrorValidation))
	assert.Equal(t, "product p1 not found", err.Error())
}

func TestError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("lookup: %w", Unauthorized("refresh token not found"))

	assert.True(t, errors.Is(err, ErrorUnauthorized))
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestWrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, KindInternal, "store failure")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrorInternal)
	assert.Equal(t, "store failure: boom", err.Error())
	assert.Nil(t, Wrap(nil, KindInternal, "x"))
}

func TestKindOf_Untyped(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindValidation, KindOf(Validation("bad")))
}

func TestMessageOf(t *testing.T) {
	wrapped := Wrap(errors.New("token has invalid claims: token is expired"), KindUnauthorized, "invalid access token")

	assert.Equal(t, "invalid access token", MessageOf(wrapped))
	assert.Equal(t, "invalid access token", MessageOf(fmt.Errorf("auth: %w", wrapped)))
	assert.Equal(t, "bad", MessageOf(Validation("bad")))
	assert.Equal(t, "internal error", MessageOf(errors.New("plain")))
}
