package errors

import (
	"maps"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Report every failure with errors.Abort(c, err) and return
//   - Build expected failures as *SafeError (errors.NewSafe, NewExternalServiceError, ...)
//   - Anything else is treated as unexpected: logged in full, answered with E5002
//   - Never write an error body directly; the normalizer middleware is the only writer
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to translate them
//   - Do not log errors in non-handler code (avoid double logging)

const (
	// fixed hint returned with every external service failure
	RetryAfterSeconds = 30

	defaultStatus = http.StatusBadRequest
)

// configures a SafeError at construction
type Option func(*SafeError)

// overrides the catalog message
func WithMessage(msg string) Option {
	return func(e *SafeError) { e.Message = msg }
}

// overrides the default 400 status
func WithStatus(status int) Option {
	return func(e *SafeError) { e.Status = status }
}

// adds one safe detail
func WithDetail(key string, value any) Option {
	return func(e *SafeError) {
		if e.Details == nil {
			e.Details = make(map[string]any, 1)
		}

		e.Details[key] = value
	}
}

// merges safe details
func WithDetails(details map[string]any) Option {
	return func(e *SafeError) {
		if len(details) == 0 {
			return
		}

		if e.Details == nil {
			e.Details = make(map[string]any, len(details))
		}

		maps.Copy(e.Details, details)
	}
}

// records the underlying error for server-side logs
func WithCause(err error) Option {
	return func(e *SafeError) { e.cause = err }
}

// builds a SafeError; message defaults to the catalog entry and status to 400
func NewSafe(code Code, opts ...Option) *SafeError {
	e := &SafeError{
		Code:    code,
		Message: Message(code),
		Status:  defaultStatus,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.Message == "" {
		e.Message = Message(code)
	}

	return e
}

// builds the 503 returned when an external service fails or times out
func NewExternalServiceError(service string, isTimeout bool, opts ...Option) *SafeError {
	code := CodeExternalUnavailable
	if isTimeout {
		code = CodeExternalTimeout
	}

	base := []Option{
		WithStatus(http.StatusServiceUnavailable),
		WithDetail("retry", true),
		WithDetail("retry_after", RetryAfterSeconds),
	}

	e := NewSafe(code, append(base, opts...)...)
	if e.cause == nil {
		e.cause = serviceError(service)
	}

	return e
}

// builds the 500 returned when the server is misconfigured; only the key name is exposed
func NewConfigurationError(key string, opts ...Option) *SafeError {
	base := []Option{WithStatus(http.StatusInternalServerError)}
	if key != "" {
		base = append(base, WithDetail("config_key", key))
	}

	return NewSafe(CodeConfiguration, append(base, opts...)...)
}

// names the failing service in logs without exposing it in the response
type serviceError string

func (s serviceError) Error() string {
	return "external service: " + string(s)
}

// framework-level failures

// returns a 401 for requests without usable credentials
func Unauthenticated() *HTTPError {
	return &HTTPError{
		Status:  http.StatusUnauthorized,
		Detail:  "Not authenticated",
		Headers: map[string]string{"WWW-Authenticate": "Bearer"},
	}
}

// returns a 403
func Forbidden(message string) *HTTPError {
	if message == "" {
		message = "Forbidden"
	}

	return &HTTPError{Status: http.StatusForbidden, Detail: message}
}

// returns a 404
func NotFound(resource string) *HTTPError {
	message := "Not found"
	if resource != "" {
		message = resource + " not found"
	}

	return &HTTPError{Status: http.StatusNotFound, Detail: message}
}

// returns a 405
func MethodNotAllowed() *HTTPError {
	return &HTTPError{Status: http.StatusMethodNotAllowed, Detail: "Method not allowed"}
}

// records err on the request and stops the handler chain; the normalizer
// middleware turns it into the response
func Abort(c *gin.Context, err error) {
	if err == nil {
		return
	}

	_ = c.Error(err) //nolint:errcheck // c.Error returns its argument
	c.Abort()
}
