package errors

import (
	"fmt"
	"maps"
	"net/http"
)

// standardized error body emitted for every failed request
type Response struct {
	Error         bool           `json:"error"`
	ErrorCode     Code           `json:"error_code,omitempty"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}

// SafeError is an error built by application code whose code, message and
// details are safe to show to the caller. Details must never carry secrets,
// stack frames, file paths or identifiers the caller does not already know.
type SafeError struct {
	Code    Code
	Message string
	Status  int
	Details map[string]any

	// for server-side logs only
	cause error
}

func (e *SafeError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
}

func (e *SafeError) Unwrap() error {
	return e.cause
}

// renders the error as a response body; pure and deterministic
func (e *SafeError) ToResponse() Response {
	resp := Response{
		Error:     true,
		ErrorCode: e.Code,
		Message:   e.Message,
	}

	if len(e.Details) > 0 {
		resp.Details = maps.Clone(e.Details)
	}

	return resp
}

// HTTPError is a plain HTTP failure raised by routing or middleware (missing
// credentials, unknown route, wrong method). It carries no catalog code.
type HTTPError struct {
	Status int

	// a string becomes the message; a map is exposed as details
	Detail any

	// extra response headers, e.g. WWW-Authenticate
	Headers map[string]string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %v", e.Status, e.Detail)
}

func (e *HTTPError) message() string {
	if s, ok := e.Detail.(string); ok && s != "" {
		return s
	}

	if text := http.StatusText(e.Status); text != "" {
		return text
	}

	return "Request failed"
}

// one field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// RequestValidationError reports a request that could not be bound or
// validated. Fields are safe to return to the caller.
type RequestValidationError struct {
	Fields []FieldError

	// original binding error, for logs only
	cause error
}

func (e *RequestValidationError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("request validation failed: %d field error(s)", len(e.Fields))
	}

	return fmt.Sprintf("request validation failed: %v", e.cause)
}

func (e *RequestValidationError) Unwrap() error {
	return e.cause
}

// PanicError carries a recovered panic and the stack captured at recovery
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// exposes a panicked error value to errors.Is/As
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}
