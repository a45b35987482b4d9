package errors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnauthorized,
		ErrForbidden, ErrInternal, ErrConflict, ErrServiceUnavail,
		ErrGone, ErrNetwork,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("connection reset")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "connection reset")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "product not found"}
	assert.Equal(t, "NOT_FOUND: product not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

// --- Constructors ---

func TestNotFound(t *testing.T) {
	err := NotFound("product", "abc-123")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Contains(t, err.Message, "abc-123")
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestConstructors_StatusAndSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		status   int
		sentinel error
	}{
		{"invalid input", InvalidInput("bad"), http.StatusBadRequest, ErrInvalidInput},
		{"conflict", Conflict("stale"), http.StatusConflict, ErrConflict},
		{"unauthorized", Unauthorized("who"), http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden, ErrForbidden},
		{"gone", Gone("bye"), http.StatusGone, ErrGone},
		{"unavailable", Unavailable("down"), http.StatusServiceUnavailable, ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

// --- Classify ---

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, Classify(nil, ContextProductFetch, SeverityMedium))
}

func TestClassify_KeepsAppErrorCode(t *testing.T) {
	original := NotFound("product", "p-1")
	got := Classify(fmt.Errorf("lookup: %w", original), ContextProductFetch, SeverityLow)

	require.NotNil(t, got)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, ContextProductFetch, got.Context)
	assert.Equal(t, SeverityLow, got.Severity)
	assert.Empty(t, original.Context, "original must not be mutated")
}

func TestClassify_Timeout(t *testing.T) {
	got := Classify(context.DeadlineExceeded, ContextNetwork, SeverityHigh)
	assert.Equal(t, "TIMEOUT", got.Code)
	assert.True(t, errors.Is(got, context.DeadlineExceeded))
}

func TestClassify_Network(t *testing.T) {
	got := Classify(fmt.Errorf("dial: %w", ErrNetwork), ContextCartOperation, SeverityMedium)
	assert.Equal(t, "NETWORK_ERROR", got.Code)
	assert.Equal(t, http.StatusBadGateway, got.Status)
}

func TestClassify_Unknown(t *testing.T) {
	got := Classify(fmt.Errorf("boom"), ContextUnknown, SeverityCritical)
	assert.Equal(t, "UNKNOWN_ERROR", got.Code)
	assert.Equal(t, "boom", got.Message)
}

// --- UserMessage ---

func TestUserMessage(t *testing.T) {
	err := Classify(fmt.Errorf("x"), ContextProductFetch, SeverityMedium)
	assert.Equal(t, "Unable to load products. Please try again.", UserMessage(err))
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(fmt.Errorf("plain")))
}

// --- Log ---

func TestLog_LevelFollowsSeverity(t *testing.T) {
	tests := []struct {
		severity Severity
		level    string
	}{
		{SeverityLow, "INFO"},
		{SeverityMedium, "WARN"},
		{SeverityHigh, "ERROR"},
		{SeverityCritical, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			var buf bytes.Buffer
			l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			Log(context.Background(), l, Classify(fmt.Errorf("x"), ContextCategoryFetch, tt.severity))

			assert.Contains(t, buf.String(), "level="+tt.level)
			assert.Contains(t, buf.String(), "[category-fetch]")
		})
	}
}

// --- HTTPStatus ---

func TestHTTPStatus_SentinelErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrGone, http.StatusGone},
		{ErrServiceUnavail, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("unknown")))
}
