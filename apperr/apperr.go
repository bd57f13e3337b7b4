// Package apperr defines the error taxonomy shared by all handlers and
// stores, and the single error-to-response mapping every endpoint uses.
package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Error struct {
	status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Status() int { return e.status }

func Validation(message string) *Error {
	return &Error{status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{status: http.StatusUnauthorized, Message: message}
}

func NotFound(message string) *Error {
	return &Error{status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{status: http.StatusConflict, Message: message}
}

// Internal wraps an unexpected failure. The cause is kept for logging and
// never reaches the response body.
func Internal(cause error) *Error {
	return &Error{status: http.StatusInternalServerError, Message: "Server error", cause: cause}
}

func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.status == http.StatusNotFound
}

// Write maps err onto the uniform {"message": ...} response. Anything that
// is not an *Error is treated as internal. Internal detail goes to the log,
// not to the caller.
func Write(c *gin.Context, log *slog.Logger, err error) {
	var ae *Error
	if !errors.As(err, &ae) {
		ae = Internal(err)
	}
	if ae.status >= http.StatusInternalServerError {
		if log == nil {
			log = slog.Default()
		}
		log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", ae)
	}
	c.JSON(ae.status, gin.H{"message": ae.Message})
}
