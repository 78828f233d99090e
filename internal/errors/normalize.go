package errors

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"runtime/debug"
	"strconv"

	"codeberg.org/gamevault/server/internal/correlation"
	"codeberg.org/gamevault/server/internal/logger"
	"codeberg.org/gamevault/server/internal/metrics"
	"codeberg.org/gamevault/server/internal/upstream"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// failure categories, in the order they are checked
type Category string

const (
	CategorySafe            Category = "safe_error"
	CategoryHTTP            Category = "http_error"
	CategoryValidation      Category = "validation_error"
	CategoryUpstreamTimeout Category = "upstream_timeout"
	CategoryUpstreamStatus  Category = "upstream_error"
	CategoryUnclassified    Category = "unclassified"
)

// the normalized outcome of one failed request
type Result struct {
	Category Category
	Status   int
	Body     Response
	Headers  map[string]string
}

// Normalize maps any failure raised while handling a request to exactly one
// response, and writes exactly one log record tagged with the correlation id.
// It never panics: anything it cannot classify, including a fault inside
// classification itself, becomes a generic E5002 with no internal detail.
func Normalize(ctx context.Context, err error) Result {
	id, ok := correlation.FromContext(ctx)
	if !ok {
		id = correlation.New()
	}

	res, fault := classifyProtected(err)
	res.Body.CorrelationID = id

	if retryAfter, ok := res.Body.Details["retry_after"]; ok {
		if res.Headers == nil {
			res.Headers = make(map[string]string, 1)
		}

		if n, ok := retryAfter.(int); ok {
			res.Headers["Retry-After"] = strconv.Itoa(n)
		}
	}

	reportProtected(ctx, id, err, res, fault)
	metrics.ObserveError(string(res.Category), string(res.Body.ErrorCode))

	return res
}

// runs classify, turning a panic into the unclassified result
func classifyProtected(err error) (res Result, fault *PanicError) {
	defer func() {
		if r := recover(); r != nil {
			res = unclassified()
			fault = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	return classify(err), nil
}

// first match wins; do not reorder
func classify(err error) Result {
	var safeErr *SafeError
	if errors.As(err, &safeErr) && safeErr != nil {
		return Result{
			Category: CategorySafe,
			Status:   errorStatus(safeErr.Status, defaultStatus),
			Body:     safeErr.ToResponse(),
		}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		body := Response{Error: true, Message: httpErr.message()}
		if detail, ok := httpErr.Detail.(map[string]any); ok && len(detail) > 0 {
			body.Details = maps.Clone(detail)
		}

		return Result{
			Category: CategoryHTTP,
			Status:   errorStatus(httpErr.Status, http.StatusInternalServerError),
			Body:     body,
			Headers:  maps.Clone(httpErr.Headers),
		}
	}

	var validationErr *RequestValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return validationResult(validationErr.Fields)
	}

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		return validationResult(fieldErrors(validatorErrs))
	}

	var timeoutErr *upstream.TimeoutError
	if errors.As(err, &timeoutErr) && timeoutErr != nil {
		return Result{
			Category: CategoryUpstreamTimeout,
			Status:   http.StatusServiceUnavailable,
			Body:     NewExternalServiceError(timeoutErr.Service, true).ToResponse(),
		}
	}

	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) && statusErr != nil {
		return Result{
			Category: CategoryUpstreamStatus,
			Status:   http.StatusServiceUnavailable,
			Body:     NewExternalServiceError(statusErr.Service, false).ToResponse(),
		}
	}

	return unclassified()
}

func validationResult(fields []FieldError) Result {
	if fields == nil {
		fields = []FieldError{}
	}

	return Result{
		Category: CategoryValidation,
		Status:   http.StatusUnprocessableEntity,
		Body: Response{
			Error:     true,
			ErrorCode: CodeValidationFailed,
			Message:   Message(CodeValidationFailed),
			Details:   map[string]any{"errors": fields},
		},
	}
}

// the only body an unexpected failure ever produces
func unclassified() Result {
	return Result{
		Category: CategoryUnclassified,
		Status:   http.StatusInternalServerError,
		Body: Response{
			Error:     true,
			ErrorCode: CodeInternal,
			Message:   Message(CodeInternal),
		},
	}
}

// keeps error responses in the 4xx/5xx range
func errorStatus(status, fallback int) int {
	if status < 400 || status > 599 {
		return fallback
	}

	return status
}

// falls back to a minimal record when the error misbehaves while being described
func reportProtected(ctx context.Context, id string, err error, res Result, fault *PanicError) {
	defer func() {
		if r := recover(); r != nil {
			logger.Default().Errorw("unhandled error",
				"correlation_id", id,
				"category", res.Category,
				"status", res.Status,
				"error_type", fmt.Sprintf("%T", err),
				"classifier_fault", fmt.Sprint(r),
				zap.String("stacktrace", string(debug.Stack())),
			)
		}
	}()

	report(ctx, id, err, res, fault)
}

// writes the single log record for a normalized failure
func report(ctx context.Context, id string, err error, res Result, fault *PanicError) {
	// the request logger already carries the id
	log, ok := logger.Lookup(ctx)
	if !ok {
		log = logger.With("correlation_id", id)
	}

	fields := []any{
		"category", res.Category,
		"status", res.Status,
	}

	if res.Body.ErrorCode != "" {
		fields = append(fields, "error_code", res.Body.ErrorCode)
	}

	switch res.Category {
	case CategorySafe:
		log.Warnw("request failed", append(fields, "error", errorText(err))...)

	case CategoryHTTP:
		log.Infow("request rejected", append(fields, "error", errorText(err))...)

	case CategoryValidation:
		log.Warnw("request validation failed", append(fields, "details", res.Body.Details["errors"], "error", errorText(err))...)

	case CategoryUpstreamTimeout, CategoryUpstreamStatus:
		fields = append(fields, "error", errorText(err))

		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) {
			fields = append(fields, "upstream_status", statusErr.StatusCode, "upstream_body", statusErr.Body)
		}

		log.Errorw("upstream call failed", fields...)

	default:
		diag := BuildDiagnostics(err)
		if fault != nil {
			diag.ClassifierFault = fault.Error()
			diag.Stack = string(fault.Stack)
		}

		log.Errorw("unhandled error",
			append(fields,
				"error", diag.Error,
				"error_type", diag.Type,
				"error_chain", diag.Chain,
				"error_category", diag.Category,
				"classifier_fault", diag.ClassifierFault,
				zap.String("stacktrace", diag.Stack),
			)...,
		)
	}
}

func errorText(err error) string {
	if err == nil {
		return "<nil>"
	}

	// fmt recovers from a panicking Error method
	return fmt.Sprint(err)
}
