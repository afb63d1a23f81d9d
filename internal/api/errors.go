package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/czarnick89/workout-tracker/internal/service"
	"github.com/czarnick89/workout-tracker/internal/validation"
)

// Envelope codes and fixed messages. Clients match on them.
const (
	CodeValidation     = "validation_error"
	CodeAuthentication = "authentication_failed"
	CodePermission     = "permission_denied"
	CodeNotFound       = "not_found"
	CodeServer         = "server_error"

	MsgAuthentication = "Authentication credentials were not provided or are invalid."
	MsgPermission     = "You do not have permission to perform this action."
	MsgNotFound       = "Not found."
	MsgServer         = "A server error occurred."
)

// ErrorBody is the inner object of every error response. Message is a
// string, or a field→messages map for validation errors.
type ErrorBody struct {
	Code    string `json:"code"`
	Message any    `json:"message"`
}

// ErrorEnvelope wraps every non-2xx response body.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// HTTPError is a failure raised by the HTTP layer itself (bad method,
// throttling, unsupported media type...). Without a Code the status is
// rendered as the code.
type HTTPError struct {
	Status int
	Code   string
	Detail any
}

func (e *HTTPError) Error() string {
	return strconv.Itoa(e.Status) + ": " + http.StatusText(e.Status)
}

var errInvalidPage = &HTTPError{Status: http.StatusNotFound, Code: CodeNotFound, Detail: "Invalid page."}

// handlerFunc is a gin handler that reports failure by returning it.
type handlerFunc func(c *gin.Context) error

// errorWriter renders errors as envelopes. It is the only place that
// decides the status and body of a failed request.
type errorWriter struct {
	logger hclog.Logger
}

// handle adapts fn to gin, rendering whatever error it returns.
func (w errorWriter) handle(fn handlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c); err != nil {
			w.write(c, err)
		}
	}
}

func (w errorWriter) write(c *gin.Context, err error) {
	status, body := w.classify(c, err)
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

func (w errorWriter) classify(c *gin.Context, err error) (int, ErrorBody) {
	var fieldErrs validation.Errors
	var httpErr *HTTPError

	switch {
	case errors.As(err, &fieldErrs):
		return http.StatusBadRequest, ErrorBody{Code: CodeValidation, Message: fieldErrs}
	case errors.Is(err, service.ErrAuthenticationFailed):
		return http.StatusUnauthorized, ErrorBody{Code: CodeAuthentication, Message: MsgAuthentication}
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, ErrorBody{Code: CodePermission, Message: MsgPermission}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: MsgNotFound}
	case errors.As(err, &httpErr):
		code := httpErr.Code
		if code == "" {
			code = strconv.Itoa(httpErr.Status)
		}
		return httpErr.Status, ErrorBody{Code: code, Message: httpErr.Detail}
	}

	w.logger.Error("unhandled error",
		"request_id", c.GetString(ContextRequestIDKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	)
	return http.StatusInternalServerError, ErrorBody{Code: CodeServer, Message: MsgServer}
}

// recovery turns panics into server_error envelopes.
func (w errorWriter) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		w.logger.Error("panic recovered",
			"request_id", c.GetString(ContextRequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorEnvelope{Error: ErrorBody{Code: CodeServer, Message: MsgServer}})
	})
}

func (w errorWriter) noRoute(c *gin.Context) {
	w.write(c, service.ErrNotFound)
}

func (w errorWriter) noMethod(c *gin.Context) {
	w.write(c, &HTTPError{
		Status: http.StatusMethodNotAllowed,
		Detail: `Method "` + c.Request.Method + `" not allowed.`,
	})
}
