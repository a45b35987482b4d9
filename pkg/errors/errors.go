package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrGone           = errors.New("gone")
	ErrNetwork        = errors.New("network failure")
)

// Context tags the operation an error originated from. The UI layer uses it to
// pick a retry message.
type Context string

const (
	ContextProductFetch      Context = "product-fetch"
	ContextCategoryFetch     Context = "category-fetch"
	ContextCartOperation     Context = "cart-operation"
	ContextWishlistOperation Context = "wishlist-operation"
	ContextUserAuth          Context = "user-auth"
	ContextNetwork           Context = "network"
	ContextUnknown           Context = "unknown"
)

// Severity controls the log level an AppError is reported at.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Status   int      `json:"-"`
	Context  Context  `json:"context,omitempty"`
	Severity Severity `json:"severity,omitempty"`
	Err      error    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Gone creates a 410 error.
func Gone(message string) *AppError {
	return &AppError{
		Code:    "GONE",
		Message: message,
		Status:  http.StatusGone,
		Err:     ErrGone,
	}
}

// Unavailable creates a 503 error.
func Unavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Classify tags err with an operation context and severity. An existing
// AppError keeps its code and status; anything else becomes a network or
// internal error depending on what it wraps. A nil err yields nil.
func Classify(err error, ctx Context, severity Severity) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		cpy := *appErr
		cpy.Context = ctx
		cpy.Severity = severity
		return &cpy
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &AppError{
			Code:     "TIMEOUT",
			Message:  "request timed out or was canceled",
			Status:   http.StatusGatewayTimeout,
			Context:  ctx,
			Severity: severity,
			Err:      err,
		}
	case errors.Is(err, ErrNetwork), errors.As(err, &netErr):
		return &AppError{
			Code:     "NETWORK_ERROR",
			Message:  "network request failed",
			Status:   http.StatusBadGateway,
			Context:  ctx,
			Severity: severity,
			Err:      err,
		}
	default:
		return &AppError{
			Code:     "UNKNOWN_ERROR",
			Message:  err.Error(),
			Status:   http.StatusInternalServerError,
			Context:  ctx,
			Severity: severity,
			Err:      err,
		}
	}
}

var userMessages = map[Context]string{
	ContextProductFetch:      "Unable to load products. Please try again.",
	ContextCategoryFetch:     "Unable to load categories. Please try again.",
	ContextCartOperation:     "Unable to update cart. Please try again.",
	ContextWishlistOperation: "Unable to update wishlist. Please try again.",
	ContextUserAuth:          "Authentication failed. Please sign in again.",
	ContextNetwork:           "Network connection failed. Please check your internet.",
	ContextUnknown:           "Something went wrong. Please try again.",
}

// UserMessage returns the retry message shown for err.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if msg, ok := userMessages[appErr.Context]; ok {
			return msg
		}
	}
	return userMessages[ContextUnknown]
}

// Log reports err at the level matching its severity. Errors that are not
// AppErrors are logged at error level.
func Log(ctx context.Context, l *slog.Logger, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		l.ErrorContext(ctx, err.Error())
		return
	}

	msg := fmt.Sprintf("[%s] %s", appErr.Context, appErr.Message)
	attrs := []any{
		slog.String("code", appErr.Code),
		slog.String("severity", string(appErr.Severity)),
	}
	if appErr.Err != nil {
		attrs = append(attrs, slog.String("error", appErr.Err.Error()))
	}

	switch appErr.Severity {
	case SeverityLow:
		l.InfoContext(ctx, msg, attrs...)
	case SeverityMedium:
		l.WarnContext(ctx, msg, attrs...)
	default:
		l.ErrorContext(ctx, msg, attrs...)
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrGone):
		return http.StatusGone
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
