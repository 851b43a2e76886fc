package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("domain errors pass through", func(t *testing.T) {
		err := NewConflict("email already registered", nil)
		domainErr := ToDomainError(err)
		assert.Equal(t, CodeConflict, domainErr.Code)
		assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
	})

	t.Run("wrapped domain errors are unwrapped", func(t *testing.T) {
		err := fmt.Errorf("login: %w", NewUnauthorized("invalid credentials"))
		domainErr := ToDomainError(err)
		assert.Equal(t, CodeUnauthorized, domainErr.Code)
	})

	t.Run("unknown errors become internal", func(t *testing.T) {
		domainErr := ToDomainError(errors.New("boom"))
		assert.Equal(t, CodeInternal, domainErr.Code)
		assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	})
}

func TestHasCode(t *testing.T) {
	err := NewUnavailable("user directory unreachable", errors.New("dial tcp: refused"))

	assert.True(t, HasCode(err, CodeUnavailable))
	assert.False(t, HasCode(err, CodeUnauthorized))
	assert.False(t, HasCode(nil, CodeUnavailable))
	assert.False(t, HasCode(errors.New("plain"), CodeUnavailable))
}

func TestNewUnavailable_Status(t *testing.T) {
	domainErr := ToDomainError(NewUnavailable("user directory unreachable", nil))
	require.NotNil(t, domainErr)
	assert.Equal(t, http.StatusServiceUnavailable, domainErr.HTTPStatus)
}
