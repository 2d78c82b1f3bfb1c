package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMalformedInputError(t *testing.T) {
	var target any
	decodeErr := json.Unmarshal([]byte(`{"a":`), &target)
	require.Error(t, decodeErr)

	err := fmt.Errorf("hydrate: %w", Malformed("widget", decodeErr))

	assert.True(t, errors.Is(err, ErrMalformedInput))
	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr), "decoder error must stay reachable")

	var malformed *MalformedInputError
	require.True(t, As(err, &malformed))
	assert.Equal(t, "widget", malformed.Type)
	assert.Contains(t, malformed.Error(), "malformed widget input")
}

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"malformed", Malformed("user", errors.New("bad")), http.StatusBadRequest, "MALFORMED_INPUT"},
		{"not found", fmt.Errorf("get: %w", ErrRecordNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"exists", ErrRecordExists, http.StatusConflict, "ALREADY_EXISTS"},
		{"missing key", ErrMissingKey, http.StatusBadRequest, "MISSING_KEY"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.ToErrorResponse().Code)
		})
	}
}
