package middlewares

import (
	"errors"
	"fmt"
	"time"
)

// PanicError is a panic recovered by Recover.
type PanicError struct {
	Value any
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError reports a request that outlived the Timeout middleware.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return "request timeout after " + e.Duration.String()
}

// IsPanicError reports whether err carries a *PanicError.
func IsPanicError(err error) bool {
	_, ok := AsPanicError(err)
	return ok
}

// AsPanicError returns the *PanicError in err's chain.
func AsPanicError(err error) (*PanicError, bool) {
	return as[*PanicError](err)
}

// IsTimeoutError reports whether err carries a *TimeoutError.
func IsTimeoutError(err error) bool {
	_, ok := AsTimeoutError(err)
	return ok
}

// AsTimeoutError returns the *TimeoutError in err's chain.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	return as[*TimeoutError](err)
}

func as[E error](err error) (E, bool) {
	var target E
	ok := errors.As(err, &target)
	return target, ok
}
