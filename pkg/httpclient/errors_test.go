package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func makeResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func structuredError(code, message string) string {
	return `{"error":{"code":"` + code + `","message":"` + message + `"}}`
}

func TestParseResponseError_Structured(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusNotFound, apperrors.ErrNotFound},
		{http.StatusBadRequest, apperrors.ErrInvalidInput},
		{http.StatusConflict, apperrors.ErrConflict},
		{http.StatusUnauthorized, apperrors.ErrUnauthorized},
		{http.StatusForbidden, apperrors.ErrForbidden},
		{http.StatusGone, apperrors.ErrGone},
		{http.StatusServiceUnavailable, apperrors.ErrServiceUnavail},
		{http.StatusInternalServerError, apperrors.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := ParseResponseError(makeResponse(tt.status, structuredError("X", "msg")), "storefront-api")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusTeapot, "<html>nope</html>"), "storefront-api")

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "UNEXPECTED_STATUS", appErr.Code)
	assert.Equal(t, http.StatusTeapot, appErr.Status)
	assert.Contains(t, appErr.Message, "nope")
}

func TestFromTransportError(t *testing.T) {
	err := FromTransportError(&StatusError{Status: http.StatusBadGateway, Body: "down"}, "api")
	assert.True(t, errors.Is(err, apperrors.ErrNetwork))

	err = FromTransportError(fmt.Errorf("call: %w", ErrCircuitOpen), "api")
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
	assert.True(t, errors.Is(err, ErrCircuitOpen))

	plain := errors.New("dial tcp: refused")
	assert.Same(t, plain, FromTransportError(plain, "api"))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(500))
	assert.False(t, IsClientError(204))
}
