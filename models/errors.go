package models

import (
	"errors"
	"fmt"
)

// Error kinds shared by every lifecycle component. Match with errors.Is.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("not found")
	ErrPartialWrite      = errors.New("partial write failure")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrStaleRead         = errors.New("stale read")
	ErrValidation        = errors.New("validation failed")
)

// LifecycleError carries a human-readable reason next to its kind.
type LifecycleError struct {
	Code    string
	Message string
	Kind    error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LifecycleError) Unwrap() error { return e.Kind }

func newLifecycleError(kind error, code, format string, args ...any) error {
	return &LifecycleError{Code: code, Message: fmt.Sprintf(format, args...), Kind: kind}
}

func InvalidTransition(format string, args ...any) error {
	return newLifecycleError(ErrInvalidTransition, "invalidTransition", format, args...)
}

func NotFound(format string, args ...any) error {
	return newLifecycleError(ErrNotFound, "notFound", format, args...)
}

func PermissionDenied(format string, args ...any) error {
	return newLifecycleError(ErrPermissionDenied, "permissionDenied", format, args...)
}

func PartialWrite(format string, args ...any) error {
	return newLifecycleError(ErrPartialWrite, "partialWrite", format, args...)
}

func StaleRead(format string, args ...any) error {
	return newLifecycleError(ErrStaleRead, "staleRead", format, args...)
}

func Validation(format string, args ...any) error {
	return newLifecycleError(ErrValidation, "validation", format, args...)
}
