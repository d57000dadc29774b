package domain

import (
	"errors"
	"net/http"
)

// Kind classifies business errors. The set is closed; the HTTP boundary maps
// each kind to a status through statusByKind.
type Kind int

// Error kinds for business logic errors.
const (
	KindInternal Kind = iota
	KindNotFound
	KindAlreadyExists
	KindValidation
	KindInvalidRange
	KindUnauthorized
	KindForbidden
)

var kindNames = map[Kind]string{
	KindInternal:      "internal",
	KindNotFound:      "not_found",
	KindAlreadyExists: "already_exists",
	KindValidation:    "validation",
	KindInvalidRange:  "invalid_range",
	KindUnauthorized:  "unauthorized",
	KindForbidden:     "forbidden",
}

var statusByKind = map[Kind]int{
	KindInternal:      http.StatusInternalServerError,
	KindNotFound:      http.StatusNotFound,
	KindAlreadyExists: http.StatusConflict,
	KindValidation:    http.StatusBadRequest,
	KindInvalidRange:  http.StatusBadRequest,
	KindUnauthorized:  http.StatusUnauthorized,
	KindForbidden:     http.StatusForbidden,
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// AppError represents a business logic error with a kind, message, and optional wrapped error.
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined business errors.
//
// Use the Is* helpers rather than errors.Is to test for a category: the helpers
// compare kinds, so they also match freshly built errors from NewAppError.
var (
	ErrNotFound           = &AppError{Kind: KindNotFound, Message: "not found"}
	ErrAlreadyExists      = &AppError{Kind: KindAlreadyExists, Message: "already exists"}
	ErrValidation         = &AppError{Kind: KindValidation, Message: "validation error"}
	ErrInvalidRange       = &AppError{Kind: KindInvalidRange, Message: "max age can't be less than min age"}
	ErrUnauthorized       = &AppError{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden          = &AppError{Kind: KindForbidden, Message: "forbidden"}
	ErrInternal           = &AppError{Kind: KindInternal, Message: "internal error"}
	ErrMissingIDs         = &AppError{Kind: KindValidation, Message: "parameter ids is null"}
	ErrCollectionMismatch = &AppError{Kind: KindValidation, Message: "collection count mismatch comparing to ids"}
)

// NewAppError creates a new AppError with the given kind, message, and wrapped error.
func NewAppError(kind Kind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsNotFound reports whether err is or wraps an AppError of KindNotFound.
func IsNotFound(err error) bool {
	return hasKind(err, KindNotFound)
}

// IsAlreadyExists reports whether err is or wraps an AppError of KindAlreadyExists.
func IsAlreadyExists(err error) bool {
	return hasKind(err, KindAlreadyExists)
}

// IsValidation reports whether err is or wraps an AppError of KindValidation.
func IsValidation(err error) bool {
	return hasKind(err, KindValidation)
}

// IsInvalidRange reports whether err is or wraps an AppError of KindInvalidRange.
func IsInvalidRange(err error) bool {
	return hasKind(err, KindInvalidRange)
}

// IsUnauthorized reports whether err is or wraps an AppError of KindUnauthorized.
func IsUnauthorized(err error) bool {
	return hasKind(err, KindUnauthorized)
}

// IsForbidden reports whether err is or wraps an AppError of KindForbidden.
func IsForbidden(err error) bool {
	return hasKind(err, KindForbidden)
}

// IsInternal reports whether err is or wraps an AppError of KindInternal.
func IsInternal(err error) bool {
	return hasKind(err, KindInternal)
}

func hasKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code.
// Errors that are not *AppError, and kinds missing from the table, map to 500.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		if status, ok := statusByKind[appErr.Kind]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}
