package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Webhook processing (WEBHOOK) ----

// ErrMalformedPayload covers unparseable bodies and missing required fields.
func ErrMalformedPayload(err error) *AppError {
	return Wrap("WEBHOOK_001", "Malformed payload", http.StatusBadRequest, err)
}

func ErrOrganizationNotFound() *AppError {
	return New("WEBHOOK_002", "Organization not found", http.StatusNotFound)
}

func ErrGatewayConfigNotFound() *AppError {
	return New("WEBHOOK_003", "Gateway configuration not found", http.StatusNotFound)
}

// ErrInvalidSignature never reveals which field mismatched.
func ErrInvalidSignature() *AppError {
	return New("WEBHOOK_004", "Invalid signature", http.StatusUnauthorized)
}

func ErrUnknownProvider() *AppError {
	return New("WEBHOOK_005", "Unknown provider", http.StatusBadRequest)
}

func ErrUnsupportedContentType() *AppError {
	return New("WEBHOOK_006", "Unsupported content type", http.StatusBadRequest)
}

// ---- Ops API (OPS) ----

func ErrInvalidToken() *AppError {
	return New("OPS_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrNotFound(entity string) *AppError {
	return New("OPS_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("OPS_003", message, http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrStoreFailure wraps persistence layer errors.
func ErrStoreFailure(err error) *AppError {
	return Wrap("SYS_001", "Internal storage error", http.StatusInternalServerError, err)
}

// InternalError wraps any other internal error.
func InternalError(err error) *AppError {
	return Wrap("SYS_002", "Internal server error", http.StatusInternalServerError, err)
}
