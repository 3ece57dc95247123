package internal

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// faultClass maps a fault kind to its status. An empty message means the
// fault's own message is shown in production.
type faultClass struct {
	target  error
	message string
	status  int
}

var faultClasses = []faultClass{
	{target: ErrViewNotFound, status: http.StatusNotFound, message: "View Not Found"},
	{target: ErrRouteNotFound, status: http.StatusNotFound, message: "Route Not Found"},
	{target: ErrRateLimitExceeded, status: http.StatusTooManyRequests, message: "Too Many Requests"},
	{target: ErrEnvPropertyInvalid, status: StatusEnvPropertyInvalid},
	{target: ErrAuthorizationDenied, status: http.StatusUnauthorized, message: "Unauthorized"},
	{target: ErrMethodNotFound, status: http.StatusNotFound},
	{target: ErrMethodNotAllowed, status: http.StatusMethodNotAllowed},
}

// ExceptionOption configures the exception handler.
type ExceptionOption func(*exceptionHandler)

// WithTrace includes the fault message and stack trace in responses.
// The default handler of an App follows WithDebug.
func WithTrace(debug bool) ExceptionOption {
	return func(h *exceptionHandler) {
		h.debug = debug
	}
}

// WithErrorView sets the view rendered for HTML clients.
// Defaults to ErrorViewName.
func WithErrorView(name string) ExceptionOption {
	return func(h *exceptionHandler) {
		if name != "" {
			h.view = name
		}
	}
}

// WithErrorMapping answers errors matching target (errors.Is) with status.
// A 519 status shows the error message, others the standard status text.
// Mappings are checked after the built-in fault kinds.
func WithErrorMapping(target error, status int) ExceptionOption {
	return func(h *exceptionHandler) {
		if target != nil {
			h.mappings = append(h.mappings, faultClass{target: target, status: status})
		}
	}
}

type exceptionHandler struct {
	view     string
	mappings []faultClass
	debug    bool
}

// errorBody is the JSON shape of fault responses.
type errorBody struct {
	Message    string   `json:"message,omitempty"`
	Trace      []string `json:"trace,omitempty"`
	StatusCode int      `json:"statusCode"`
}

// NewExceptionHandler returns the error handler translating faults into
// HTTP responses.
//
// The status and production message come from the fault kind; other
// HTTPErrors keep their own, except that server errors only show the status
// text. Debug mode shows the fault message and its captured stack instead.
// The Accept header
// picks the format: JSON for application/json, an empty body typed
// multipart/form-data for multipart/form-data, otherwise the error view.
// Without an error view the response is plain text.
func NewExceptionHandler(opts ...ExceptionOption) ErrorHandler {
	h := &exceptionHandler{view: ErrorViewName}
	for _, opt := range opts {
		opt(h)
	}
	return h.handle
}

func (h *exceptionHandler) handle(c Context, err error) error {
	body := h.resolve(err)

	attrs := []any{
		slog.Int("status", body.StatusCode),
		slog.String("path", c.Request().URL.Path),
		slog.Any("error", err),
	}
	if body.StatusCode >= http.StatusInternalServerError {
		c.LogError("request failed", attrs...)
	} else {
		c.LogDebug("request rejected", attrs...)
	}

	accept := mediaTypes(c.Header("Accept"))
	switch {
	case accept["application/json"]:
		return c.JSON(body.StatusCode, body)
	case accept["multipart/form-data"]:
		c.SetHeader("Content-Type", "multipart/form-data")
		return c.NoContent(body.StatusCode)
	}

	page := ErrorPage{StatusCode: body.StatusCode, Message: body.Message, Trace: body.Trace}
	if err := c.View(body.StatusCode, h.view, page); err == nil || c.Written() {
		return err
	}

	text := strconv.Itoa(body.StatusCode) + " " + body.Message
	if len(body.Trace) > 0 {
		text += "\n\n" + strings.Join(body.Trace, "\n")
	}
	return c.String(body.StatusCode, text)
}

func (h *exceptionHandler) resolve(err error) errorBody {
	httpErr := AsHTTPError(err)

	body := errorBody{
		StatusCode: http.StatusInternalServerError,
		Message:    http.StatusText(http.StatusInternalServerError),
	}

	if class, ok := h.classify(err); ok {
		body.StatusCode = class.status
		body.Message = class.message
		if body.Message == "" {
			body.Message = faultMessage(err, httpErr)
		}
	} else if httpErr != nil {
		body.StatusCode = httpErr.Code
		body.Message = httpErr.Message
		if httpErr.Code >= http.StatusInternalServerError {
			body.Message = http.StatusText(httpErr.Code)
		}
	}

	if h.debug {
		body.Message = faultMessage(err, httpErr)
		if httpErr != nil {
			body.Trace = httpErr.Stack
		}
	}

	return body
}

func (h *exceptionHandler) classify(err error) (faultClass, bool) {
	for _, fc := range faultClasses {
		if errors.Is(err, fc.target) {
			return fc, true
		}
	}
	for _, fc := range h.mappings {
		if errors.Is(err, fc.target) {
			if fc.status != StatusEnvPropertyInvalid {
				fc.message = http.StatusText(fc.status)
			}
			return fc, true
		}
	}
	return faultClass{}, false
}

func faultMessage(err error, httpErr *HTTPError) string {
	if httpErr != nil && httpErr.Message != "" {
		return httpErr.Message
	}
	return err.Error()
}

// mediaTypes returns the media types listed in an Accept header,
// lower-cased and without parameters.
func mediaTypes(accept string) map[string]bool {
	out := make(map[string]bool)
	for part := range strings.SplitSeq(accept, ",") {
		mt, _, _ := strings.Cut(part, ";")
		mt = strings.ToLower(strings.TrimSpace(mt))
		if mt != "" {
			out[mt] = true
		}
	}
	return out
}
