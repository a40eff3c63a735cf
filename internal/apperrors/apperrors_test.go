// internal/apperrors/apperrors_test.go
package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{Unauthenticated("no token"), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("order"), http.StatusNotFound},
		{ValidationFailed("bad input", nil), http.StatusBadRequest},
		{InvalidTransition("quote_asked", "delivered"), http.StatusUnprocessableEntity},
		{InvalidState("already accepted"), http.StatusUnprocessableEntity},
		{OrderLocked("in production"), http.StatusLocked},
		{Conflict("duplicate email"), http.StatusConflict},
		{Internal("boom", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus(), "%s", tc.err.Code)
	}
}

func TestInvalidTransitionCarriesPair(t *testing.T) {
	err := InvalidTransition("quote_sent", "delivered")
	details, ok := err.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "quote_sent", details["from"])
	assert.Equal(t, "delivered", details["to"])
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := From(cause)
	assert.Equal(t, CodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, cause)

	original := Forbidden("no access")
	assert.Same(t, original, From(original))

	assert.Nil(t, From(nil))
}
