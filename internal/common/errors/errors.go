package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies a domain error. Transports map a Kind to a status code;
// domain code never imports net/http semantics beyond this package.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindPaymentProvider Kind = "payment_provider"
	KindSerialization   Kind = "serialization"
	KindInternal        Kind = "internal"
)

// Error represents an application error
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

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(kind Kind, code int, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) *Error {
	return New(KindValidation, http.StatusBadRequest, message, nil)
}

func NotFound(message string) *Error {
	return New(KindNotFound, http.StatusNotFound, message, nil)
}

func Conflict(message string) *Error {
	return New(KindConflict, http.StatusConflict, message, nil)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, http.StatusForbidden, message, nil)
}

// PaymentProvider wraps a failure from the external payment API. The status
// depends on the cause: signature mismatches are the caller's fault, everything
// else is a 500.
func PaymentProvider(message string, err error) *Error {
	return New(KindPaymentProvider, http.StatusInternalServerError, message, err)
}

func InvalidSignature(err error) *Error {
	return New(KindPaymentProvider, http.StatusBadRequest, "Invalid webhook signature", err)
}

func Serialization(message string, err error) *Error {
	return New(KindSerialization, http.StatusInternalServerError, message, err)
}

func Internal(message string, err error) *Error {
	return New(KindInternal, http.StatusInternalServerError, message, err)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == kind
	}
	return false
}

// Respond writes the error to the gin context, translating unknown errors
// into a 500. Domain errors are surfaced with their own status and message.
func Respond(c *gin.Context, err error) {
	if e, ok := err.(*Error); ok {
		c.JSON(e.Code, gin.H{"error": e.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
