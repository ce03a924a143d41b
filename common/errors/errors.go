package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an application error independently of its message.
type Kind string

const (
	KindNotFound    Kind = "NotFound"
	KindValidation  Kind = "ValidationError"
	KindInput       Kind = "InputError"
	KindCreation    Kind = "CreationError"
	KindAggregation Kind = "AggregationError"
	KindAuth        Kind = "AuthError"
	KindForbidden   Kind = "Forbidden"
	KindInternal    Kind = "InternalError"
)

var kindStatus = map[Kind]int{
	KindNotFound:    http.StatusNotFound,
	KindValidation:  http.StatusBadRequest,
	KindInput:       http.StatusBadRequest,
	KindCreation:    http.StatusBadRequest,
	KindAggregation: http.StatusBadRequest,
	KindAuth:        http.StatusUnauthorized,
	KindForbidden:   http.StatusForbidden,
	KindInternal:    http.StatusInternalServerError,
}

// Error represents an application error carrying the HTTP status it maps to.
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind, so errors.Is(err, ErrNotFound) holds for every
// not-found error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New creates a new Error of the given kind.
func New(kind Kind, message string, err error) *Error {
	code, ok := kindStatus[kind]
	if !ok {
		code = http.StatusInternalServerError
	}
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound    = New(KindNotFound, "not found", nil)
	ErrValidation  = New(KindValidation, "validation error", nil)
	ErrInput       = New(KindInput, "invalid input", nil)
	ErrCreation    = New(KindCreation, "creation failed", nil)
	ErrAggregation = New(KindAggregation, "aggregation failed", nil)
	ErrAuth        = New(KindAuth, "unauthorized", nil)
	ErrForbidden   = New(KindForbidden, "forbidden", nil)
	ErrInternal    = New(KindInternal, "Internal server error", nil)
)

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

func Validation(message string, err error) *Error {
	return New(KindValidation, message, err)
}

// Input reports a request that is missing something it needs, such as an
// uploaded file.
func Input(message string) *Error {
	return New(KindInput, message, nil)
}

func Creation(message string, err error) *Error {
	return New(KindCreation, message, err)
}

func Aggregation(message string, err error) *Error {
	return New(KindAggregation, message, err)
}

func Auth(message string) *Error {
	return New(KindAuth, message, nil)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message, nil)
}

func Internal(err error) *Error {
	return New(KindInternal, ErrInternal.Message, err)
}

// From converts any error into an *Error. Errors that are not application
// errors become a 500 with a generic message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsNotFound reports whether err is a not-found application error.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// ErrorMiddleware renders the last error attached with c.Error as the
// standard response envelope. Only the message is exposed, never the wrapped
// cause.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := From(c.Errors.Last().Err)
		c.AbortWithStatusJSON(appErr.Code, gin.H{
			"success": false,
			"error":   appErr.Message,
		})
	}
}
