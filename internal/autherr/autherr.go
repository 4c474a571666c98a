package autherr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a classified failure carrying the HTTP status it should be
// reported with plus the {message, description} payload body. Anything
// that is not an *Error is considered unclassified and must be converted
// to InternalServerError() by the outermost handler only.
type Error struct {
	Status      int    `json:"-"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Message, e.Description)
}

// New creates a classified error with an explicit status code.
func New(status int, message, description string) *Error {
	return &Error{Status: status, Message: message, Description: description}
}

func BadRequest(description string) *Error {
	return New(http.StatusBadRequest, "Bad request", description)
}

func Unauthorized(description string) *Error {
	return New(http.StatusUnauthorized, "Unauthorized", description)
}

func Forbidden(description string) *Error {
	return New(http.StatusForbidden, "Forbidden", description)
}

func NotFound(message, description string) *Error {
	return New(http.StatusNotFound, message, description)
}

func Conflict(description string) *Error {
	return New(http.StatusConflict, "Conflict", description)
}

// InternalServerError is the generic catch-all for unclassified failures.
func InternalServerError() *Error {
	return New(http.StatusInternalServerError, "Internal server error", "Unhandled error.")
}

// Classify returns err unchanged when it already carries a classification
// anywhere in its chain, otherwise the generic 500. Classified errors are
// never re-wrapped.
func Classify(err error) *Error {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}
	return InternalServerError()
}

// IsClassified reports whether err carries a classification in its chain.
func IsClassified(err error) bool {
	var authErr *Error
	return errors.As(err, &authErr)
}
