package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the common failure classes. Services return these (or an
// *Error wrapping one) and the HTTP boundary maps them onto the response
// envelope; nothing below the boundary knows about status codes.
var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrValidation           = errors.New("validation failed")
)

// Error carries a failure class plus caller-facing context.
type Error struct {
	Kind    error             // one of the sentinels above
	Code    string            // stable machine-readable code, e.g. LOAN_NOT_FOUND
	Message string            // human-readable, safe for API responses
	Fields  map[string]string // field-level details for validation/conflict
	Err     error             // underlying cause, never sent to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

func (e *Error) Is(target error) bool { return errors.Is(e.Kind, target) }

func New(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Kind: ErrNotFound, Code: "NOT_FOUND", Message: resource + " not found"}
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "you do not have access to this resource"
	}
	return &Error{Kind: ErrForbidden, Code: "FORBIDDEN", Message: message}
}

func Unauthenticated() *Error {
	return &Error{Kind: ErrUnauthenticated, Code: "UNAUTHENTICATED", Message: "authentication required"}
}

// Conflict reports a duplicate unique field; the first conflicting field wins.
func Conflict(field string) *Error {
	return &Error{
		Kind:    ErrConflict,
		Code:    "CONFLICT",
		Message: field + " already in use",
		Fields:  map[string]string{field: "already in use"},
	}
}

func InvalidTransition(message string) *Error {
	return &Error{Kind: ErrInvalidTransition, Code: "INVALID_TRANSITION", Message: message}
}

func PayloadTooLarge(limit int64) *Error {
	return &Error{
		Kind:    ErrPayloadTooLarge,
		Code:    "PAYLOAD_TOO_LARGE",
		Message: fmt.Sprintf("file exceeds the maximum allowed size of %d bytes", limit),
	}
}

func UnsupportedMediaType(contentType string) *Error {
	return &Error{
		Kind:    ErrUnsupportedMediaType,
		Code:    "UNSUPPORTED_MEDIA_TYPE",
		Message: fmt.Sprintf("content type %q is not allowed", contentType),
	}
}

func Validation(fields map[string]string) *Error {
	return &Error{Kind: ErrValidation, Code: "VALIDATION_ERROR", Message: "invalid input", Fields: fields}
}

func ValidationMsg(field, message string) *Error {
	return Validation(map[string]string{field: message})
}

func Internal(err error) *Error {
	return &Error{Kind: nil, Code: "INTERNAL", Message: "internal server error", Err: err}
}

// HTTPStatus maps a failure to its response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// From extracts an *Error from err, wrapping unexpected failures as Internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
