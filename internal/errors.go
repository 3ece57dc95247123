package internal

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
)

// StatusEnvPropertyInvalid is the non-standard status answered when the
// environment holds an unusable configuration value.
const StatusEnvPropertyInvalid = 519

// Fault kinds. Every fault raised by the framework wraps one of these, so
// errors.Is identifies the kind regardless of the message.
var (
	ErrRouteNotFound       = errors.New("route not found")
	ErrMethodNotAllowed    = errors.New("method not allowed")
	ErrMethodNotFound      = errors.New("method not found")
	ErrControllerNotFound  = errors.New("controller not found")
	ErrViewNotFound        = errors.New("view not found")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrEnvPropertyInvalid  = errors.New("env property invalid")
	ErrNoHandler           = errors.New("route has no handler")
)

// DefaultAuthorizationMessage is the message of AuthorizationDenied when none is given.
const DefaultAuthorizationMessage = "Access Denied: You are not authorized to perform this action."

// HTTPError represents an HTTP error with all data needed for rendering.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed in production).
	Err error

	// Message is the fault message. Production responses may replace it
	// with a fixed text for the fault kind.
	Message string

	// Detail is an optional extended description.
	Detail string

	// RequestID is the request tracking ID.
	RequestID string

	// Stack holds "function file:line" frames captured where the error was created.
	Stack []string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	if t := http.StatusText(e.Code); t != "" {
		return t
	}
	return strconv.Itoa(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
// The call stack of the caller is recorded.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
		Stack:   callers(3),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Fault constructors.

// RouteNotFound reports that no route pattern matches path.
func RouteNotFound(path string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, "Route Not Found: "+path, WithError(ErrRouteNotFound))
}

// MethodNotAllowed reports that path matched a route registered for another method.
func MethodNotAllowed(path, supported string) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed,
		"Method Not Allowed for "+path+" Supported Method: "+supported,
		WithError(ErrMethodNotAllowed))
}

// MethodNotFound reports a registered controller without the requested action.
func MethodNotFound(method string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, "'"+method+"' Method Not Found", WithError(ErrMethodNotFound))
}

// ControllerNotFound reports an action name naming an unknown controller.
func ControllerNotFound(controller string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError,
		fmt.Sprintf("Controller '%s' not found", controller),
		WithError(ErrControllerNotFound))
}

// ViewNotFound reports a view name missing from the registry.
func ViewNotFound(name string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, "View '"+name+"' Not Found", WithError(ErrViewNotFound))
}

// RateLimitExceeded reports a client over its request budget.
func RateLimitExceeded(client string) *HTTPError {
	return NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded for "+client, WithError(ErrRateLimitExceeded))
}

// AuthorizationDenied reports a refused request. An empty message uses
// DefaultAuthorizationMessage.
func AuthorizationDenied(message string) *HTTPError {
	if message == "" {
		message = DefaultAuthorizationMessage
	}
	return NewHTTPError(http.StatusUnauthorized, message, WithError(ErrAuthorizationDenied))
}

// EnvPropertyInvalid reports an unusable configuration value; cause is kept
// for errors.Is checks.
func EnvPropertyInvalid(cause error) *HTTPError {
	return NewHTTPError(StatusEnvPropertyInvalid, cause.Error(),
		WithError(errors.Join(ErrEnvPropertyInvalid, cause)))
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

// Helper functions for error inspection.

func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// AsHTTPError extracts the HTTPError from an error chain.
// Returns nil if there is none.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// callers formats the stack above skip frames.
func callers(skip int) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])
	out := make([]string, 0, n)
	for {
		f, more := frames.Next()
		out = append(out, fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}
	return out
}
