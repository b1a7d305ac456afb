package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindAndCause(t *testing.T) {
	err := Unauthenticated("invalid access token", ErrTokenExpired)

	assert.ErrorIs(t, err, ErrorUnauthenticated)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrorInternal)
	assert.Equal(t, "invalid access token: token expired", err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("handler: %w", Validation("all fields are required"))

	assert.ErrorIs(t, err, ErrorValidation)
	assert.Equal(t, ErrorValidation, KindOf(err))
	assert.Equal(t, "all fields are required", PublicMessage(err))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, ErrorInternal, KindOf(errors.New("boom")))
}

func TestPublicMessage_InternalHidesCause(t *testing.T) {
	err := Internal(errors.New("pq: connection refused"))

	assert.Equal(t, "internal server error", PublicMessage(err))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("raw")))
	assert.ErrorIs(t, err, ErrorInternal)
}

func TestConflict_Message(t *testing.T) {
	err := Conflict("user with email or username already exists", ErrorAlreadyExists)

	assert.ErrorIs(t, err, ErrorConflict)
	assert.ErrorIs(t, err, ErrorAlreadyExists)
	assert.Equal(t, "user with email or username already exists", PublicMessage(err))
}
