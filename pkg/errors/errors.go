// Package errors defines the structured error types used throughout the
// authcore service. Errors carry a stable machine-readable code, an HTTP
// status, optional metadata, and an underlying cause for error-chain support.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/octanews/authcore/pkg/constants"
)

// AppError is a structured application error.
type AppError struct {
	code       constants.ErrorCode
	httpStatus int
	message    string
	cause      error
	metadata   map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the stable error code.
func (e *AppError) Code() constants.ErrorCode { return e.code }

// HTTPStatus returns the HTTP status this error maps to.
func (e *AppError) HTTPStatus() int { return e.httpStatus }

// Message returns the human-readable message without the cause chain.
func (e *AppError) Message() string { return e.message }

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *AppError) Unwrap() error { return e.cause }

// WithCause attaches an underlying error and returns a copy.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.cause = cause
	return &clone
}

// WithMetadata attaches a metadata entry and returns a copy.
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	clone := *e
	clone.metadata = make(map[string]interface{}, len(e.metadata)+1)
	for k, v := range e.metadata {
		clone.metadata[k] = v
	}
	clone.metadata[key] = value
	return &clone
}

// Metadata returns the attached metadata, possibly nil.
func (e *AppError) Metadata() map[string]interface{} { return e.metadata }

// New creates a new AppError.
func New(code constants.ErrorCode, httpStatus int, message string) *AppError {
	return &AppError{
		code:       code,
		httpStatus: httpStatus,
		message:    message,
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrConfiguration creates a fatal configuration error. Surfaced at startup;
// never swallowed.
func ErrConfiguration(message string) *AppError {
	return New(constants.ErrCodeConfiguration, http.StatusInternalServerError, message)
}

// ErrTokenInvalid creates an error for a malformed token, a bad signature, or
// an algorithm mismatch.
func ErrTokenInvalid(reason string) *AppError {
	return New(constants.ErrCodeTokenInvalid, http.StatusUnauthorized,
		fmt.Sprintf("token is invalid: %s", reason))
}

// ErrTokenExpired creates an error for a well-signed token past its expiry.
func ErrTokenExpired(tokenType constants.TokenType) *AppError {
	return New(constants.ErrCodeTokenExpired, http.StatusUnauthorized,
		fmt.Sprintf("%s token has expired", tokenType)).
		WithMetadata("token_type", string(tokenType))
}

// ErrAuthenticationFailed creates a generic credential-rejection error. The
// message deliberately does not distinguish unknown user from wrong password.
func ErrAuthenticationFailed() *AppError {
	return New(constants.ErrCodeAuthenticationFailed, http.StatusUnauthorized,
		"invalid credentials")
}

// ErrCaptchaRequired creates a soft-block error instructing the client to
// solve a challenge before retrying.
func ErrCaptchaRequired() *AppError {
	return New(constants.ErrCodeCaptchaRequired, http.StatusForbidden,
		"captcha challenge required").
		WithMetadata("requires_captcha", true)
}

// ErrRateLimited creates a hard-block error with a remaining-seconds hint.
func ErrRateLimited(remainingSeconds int64) *AppError {
	return New(constants.ErrCodeRateLimited, http.StatusTooManyRequests,
		"too many attempts, try again later").
		WithMetadata("remaining_seconds", remainingSeconds)
}

// ErrStoreUnavailable creates a service-unavailable error for TTL-store
// outages. Limiter and blacklist checks fail closed with this error instead
// of treating an outage as "not limited".
func ErrStoreUnavailable(cause error) *AppError {
	return New(constants.ErrCodeStoreUnavailable, http.StatusServiceUnavailable,
		"backing store unavailable").WithCause(cause)
}

// ErrNotFound creates a missing-entity error.
func ErrNotFound(entity string) *AppError {
	return New(constants.ErrCodeNotFound, http.StatusNotFound,
		fmt.Sprintf("%s not found", entity))
}

// ErrInvalidRequest creates a malformed-request error.
func ErrInvalidRequest(message string) *AppError {
	return New(constants.ErrCodeInvalidRequest, http.StatusBadRequest, message)
}

// ErrInternal creates an unexpected-failure error.
func ErrInternal(message string) *AppError {
	return New(constants.ErrCodeInternal, http.StatusInternalServerError, message)
}

// ================================================================================
// Predicates
// ================================================================================

// AsAppError attempts to extract an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// CodeOf returns the error code of err, or ErrCodeInternal if err is not an
// AppError.
func CodeOf(err error) constants.ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code()
	}
	return constants.ErrCodeInternal
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code constants.ErrorCode) bool {
	return CodeOf(err) == code
}

// IsStoreUnavailable reports whether err indicates a TTL-store outage.
func IsStoreUnavailable(err error) bool {
	return IsCode(err, constants.ErrCodeStoreUnavailable)
}

// IsTokenExpired reports whether err indicates an expired token.
func IsTokenExpired(err error) bool {
	return IsCode(err, constants.ErrCodeTokenExpired)
}

// IsTokenInvalid reports whether err indicates a malformed or badly signed
// token.
func IsTokenInvalid(err error) bool {
	return IsCode(err, constants.ErrCodeTokenInvalid)
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts any error into an ErrorResponse. Non-AppError
// values collapse into a generic internal error so internals never leak.
func ToErrorResponse(err error) *ErrorResponse {
	if appErr, ok := AsAppError(err); ok {
		return &ErrorResponse{
			Error:            string(appErr.Code()),
			ErrorDescription: appErr.Message(),
			Metadata:         appErr.Metadata(),
		}
	}
	return &ErrorResponse{
		Error:            string(constants.ErrCodeInternal),
		ErrorDescription: "an unexpected error occurred",
	}
}

// HTTPStatusOf returns the HTTP status for err, defaulting to 500.
func HTTPStatusOf(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
