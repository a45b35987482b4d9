package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ErrorBody mirrors httputil.ErrorResponse, the error envelope the backend
// answers with.
type ErrorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx response and translates it
// into an AppError. Structured bodies keep their code and message. The body is
// consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var parsed ErrorBody
	if json.Unmarshal(bodyBytes, &parsed) == nil && parsed.Error != nil {
		return mapStatus(resp.StatusCode, parsed.Error.Code, parsed.Error.Message, serviceName)
	}

	return mapStatus(resp.StatusCode, "", string(bodyBytes), serviceName)
}

// FromTransportError converts an error returned by CircuitBreakerClient.Do
// into an AppError when it carries a status, and tags breaker rejections as
// service unavailable. Other errors are returned unchanged.
func FromTransportError(err error, serviceName string) error {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return mapStatus(statusErr.Status, "", statusErr.Body, serviceName)
	case errors.Is(err, ErrCircuitOpen):
		return &apperrors.AppError{
			Code:    "SERVICE_UNAVAILABLE",
			Message: serviceName + ": circuit open",
			Status:  http.StatusServiceUnavailable,
			Err:     fmt.Errorf("%w: %w", apperrors.ErrServiceUnavail, err),
		}
	default:
		return err
	}
}

func mapStatus(status int, code, message, serviceName string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualifiedMsg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualifiedMsg)
	case status == http.StatusGone:
		return apperrors.Gone(qualifiedMsg)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(qualifiedMsg)
	case status >= 500:
		if code == "" {
			code = "UPSTREAM_ERROR"
		}
		return &apperrors.AppError{
			Code:    code,
			Message: qualifiedMsg,
			Status:  http.StatusBadGateway,
			Err:     apperrors.ErrNetwork,
		}
	default:
		if code == "" {
			code = "UNEXPECTED_STATUS"
		}
		return &apperrors.AppError{
			Code:    code,
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
