// Package errors provides custom error types for the platform.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes.
const (
	CodeInternal    = "INTERNAL_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeBadRequest  = "BAD_REQUEST"
	CodeConflict    = "CONFLICT"
	CodeValidation  = "VALIDATION_ERROR"
	CodeTimeout     = "TIMEOUT"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	CodeRateLimited = "RATE_LIMITED"
)

// Fee-resolution error codes.
const (
	CodeInvalidCoordinates   = "INVALID_COORDINATES"
	CodeGeocodingUnavailable = "GEOCODING_UNAVAILABLE"
	CodeDistanceUnavailable  = "DISTANCE_UNAVAILABLE"
	CodeZonesUnavailable     = "ZONES_UNAVAILABLE"
	CodeNoResolvableLocation = "NO_RESOLVABLE_LOCATION"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches another error.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Wrap wraps an error with an AppError.
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// New creates a new AppError.
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Common error constructors.

// Internal creates an internal server error.
func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

// InternalWrap wraps an error as an internal error.
func InternalWrap(err error, message string) *AppError {
	return Wrap(err, CodeInternal, message)
}

// NotFound creates a not found error.
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// BadRequest creates a bad request error.
func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

// Validation creates a validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// ValidationWithDetails creates a validation error with field details.
func ValidationWithDetails(message string, details map[string]string) *AppError {
	return New(CodeValidation, message).WithDetails(details)
}

// Timeout creates a timeout error.
func Timeout(message string) *AppError {
	return New(CodeTimeout, message)
}

// Unavailable creates a service unavailable error.
func Unavailable(message string) *AppError {
	return New(CodeUnavailable, message)
}

// RateLimited creates a rate limited error.
func RateLimited(message string) *AppError {
	return New(CodeRateLimited, message)
}

// Fee-resolution error constructors.

// InvalidCoordinates creates an invalid coordinates error.
func InvalidCoordinates(message string) *AppError {
	if message == "" {
		message = "coordinates are missing or out of range"
	}
	return New(CodeInvalidCoordinates, message)
}

// GeocodingUnavailable indicates that every geocoding provider failed.
func GeocodingUnavailable(err error) *AppError {
	return Wrap(err, CodeGeocodingUnavailable, "all geocoding providers failed")
}

// DistanceUnavailable indicates the distance provider failed. There is no
// fallback distance source; callers degrade to a zone-only estimate.
func DistanceUnavailable(err error) *AppError {
	return Wrap(err, CodeDistanceUnavailable, "distance provider unavailable")
}

// ZonesUnavailable indicates the zone configuration store could not be read.
func ZonesUnavailable(err error) *AppError {
	return Wrap(err, CodeZonesUnavailable, "shipping zones unavailable")
}

// NoResolvableLocation is the only hard failure of the fee pipeline: the
// customer has no coordinates, no geocodable address, and no fallback.
func NoResolvableLocation(err error) *AppError {
	return Wrap(err, CodeNoResolvableLocation, "customer location cannot be resolved")
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeValidation
	}
	return false
}

// IsInvalidCoordinates checks if the error is an invalid coordinates error.
func IsInvalidCoordinates(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeInvalidCoordinates
	}
	return false
}

// IsGeocodingUnavailable checks if the error means both providers failed.
func IsGeocodingUnavailable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeGeocodingUnavailable
	}
	return false
}

// IsDistanceUnavailable checks if the error is a distance provider failure.
func IsDistanceUnavailable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeDistanceUnavailable
	}
	return false
}

// IsZonesUnavailable checks if the error is a zone service failure.
func IsZonesUnavailable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeZonesUnavailable
	}
	return false
}

// IsNoResolvableLocation checks for the terminal fee-pipeline failure.
func IsNoResolvableLocation(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeNoResolvableLocation
	}
	return false
}

// Code returns the error code or empty string.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
