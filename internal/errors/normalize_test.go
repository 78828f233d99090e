package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"codeberg.org/gamevault/server/internal/correlation"
	"codeberg.org/gamevault/server/internal/logger"
	"codeberg.org/gamevault/server/internal/upstream"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// swaps the default logger for an in-memory one for the duration of the test
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	previous := logger.Default().Desugar()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.SetDefault(zap.New(core))

	t.Cleanup(func() { logger.SetDefault(previous) })

	return logs
}

func withID(id string) context.Context {
	return correlation.WithID(context.Background(), id)
}

type depositRequest struct {
	Amount    int64  `validate:"required,gt=0"`
	Reference string `validate:"required"`
}

func validatorError(t *testing.T) error {
	t.Helper()

	err := validator.New().Struct(depositRequest{})
	require.Error(t, err)

	return err
}

func TestNormalize_SafeError(t *testing.T) {
	logs := observeLogs(t)

	res := Normalize(withID("req-1"), NewSafe(CodeInsufficientBalance, WithStatus(http.StatusConflict)))

	assert.Equal(t, CategorySafe, res.Category)
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.Equal(t, CodeInsufficientBalance, res.Body.ErrorCode)
	assert.Equal(t, Message(CodeInsufficientBalance), res.Body.Message)
	assert.Equal(t, "req-1", res.Body.CorrelationID)
	assert.True(t, res.Body.Error)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestNormalize_SafeErrorOutOfRangeStatus(t *testing.T) {
	observeLogs(t)

	res := Normalize(withID("req-1"), NewSafe(CodeInvalidAmount, WithStatus(http.StatusOK)))
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestNormalize_HTTPError(t *testing.T) {
	logs := observeLogs(t)

	res := Normalize(withID("req-2"), Unauthenticated())

	assert.Equal(t, CategoryHTTP, res.Category)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Empty(t, res.Body.ErrorCode)
	assert.Equal(t, "Not authenticated", res.Body.Message)
	assert.Nil(t, res.Body.Details)
	assert.Equal(t, "Bearer", res.Headers["WWW-Authenticate"])
	assert.Equal(t, "req-2", res.Body.CorrelationID)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)

	raw, err := json.Marshal(res.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "error_code")
}

func TestNormalize_HTTPErrorMapDetail(t *testing.T) {
	observeLogs(t)

	res := Normalize(withID("req-3"), &HTTPError{
		Status: http.StatusBadRequest,
		Detail: map[string]any{"hint": "missing header"},
	})

	assert.Equal(t, "Bad Request", res.Body.Message)
	assert.Equal(t, map[string]any{"hint": "missing header"}, res.Body.Details)
}

func TestNormalize_ValidatorErrors(t *testing.T) {
	logs := observeLogs(t)

	res := Normalize(withID("req-4"), validatorError(t))

	assert.Equal(t, CategoryValidation, res.Category)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.Equal(t, CodeValidationFailed, res.Body.ErrorCode)

	fields, ok := res.Body.Details["errors"].([]FieldError)
	require.True(t, ok)
	require.Len(t, fields, 2)
	assert.Equal(t, "Amount", fields[0].Field)
	assert.Equal(t, "required", fields[0].Rule)
	assert.Equal(t, "Reference", fields[1].Field)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestNormalize_WrappedValidationErrorStaysValidation(t *testing.T) {
	observeLogs(t)

	err := fmt.Errorf("binding deposit: %w", NewRequestValidationError(validatorError(t)))
	res := Normalize(withID("req-5"), err)

	assert.Equal(t, CategoryValidation, res.Category)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
}

func TestNormalize_MalformedJSONBody(t *testing.T) {
	observeLogs(t)

	var syntaxErr *json.SyntaxError
	err := json.Unmarshal([]byte("{"), &map[string]any{})
	require.ErrorAs(t, err, &syntaxErr)

	res := Normalize(withID("req-6"), NewRequestValidationError(err))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.Equal(t, []FieldError{{Field: "body", Rule: "json", Message: "request body must be valid JSON"}}, res.Body.Details["errors"])
}

func TestNormalize_UpstreamTimeout(t *testing.T) {
	logs := observeLogs(t)

	err := fmt.Errorf("launch game: %w", &upstream.TimeoutError{
		Service: "games provider",
		Op:      "launch",
		Err:     context.DeadlineExceeded,
	})
	res := Normalize(withID("req-7"), err)

	assert.Equal(t, CategoryUpstreamTimeout, res.Category)
	assert.Equal(t, http.StatusServiceUnavailable, res.Status)
	assert.Equal(t, CodeExternalTimeout, res.Body.ErrorCode)
	assert.Equal(t, true, res.Body.Details["retry"])
	assert.Equal(t, 30, res.Body.Details["retry_after"])
	assert.Equal(t, "30", res.Headers["Retry-After"])

	raw, mErr := json.Marshal(res.Body)
	require.NoError(t, mErr)
	assert.NotContains(t, string(raw), "games provider")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestNormalize_UpstreamStatus(t *testing.T) {
	logs := observeLogs(t)

	res := Normalize(withID("req-8"), &upstream.StatusError{
		Service:    "games provider",
		Op:         "list games",
		StatusCode: http.StatusBadGateway,
		Body:       "bad gateway",
	})

	assert.Equal(t, CategoryUpstreamStatus, res.Category)
	assert.Equal(t, http.StatusServiceUnavailable, res.Status)
	assert.Equal(t, CodeExternalUnavailable, res.Body.ErrorCode)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, http.StatusBadGateway, int(logs.All()[0].ContextMap()["upstream_status"].(int64)))
}

func TestNormalize_SafeErrorWinsOverWrappedCause(t *testing.T) {
	observeLogs(t)

	timeout := &upstream.TimeoutError{Service: "telegram", Op: "send", Err: context.DeadlineExceeded}
	err := NewSafe(CodeNotificationFailed, WithStatus(http.StatusBadGateway), WithCause(timeout))

	res := Normalize(withID("req-9"), err)

	assert.Equal(t, CategorySafe, res.Category)
	assert.Equal(t, CodeNotificationFailed, res.Body.ErrorCode)
}

func TestNormalize_UnexpectedErrorExactBody(t *testing.T) {
	logs := observeLogs(t)

	res := Normalize(withID("req-10"), stderrors.New(`Traceback: File "/srv/app/wallet.py", line 3`))

	assert.Equal(t, CategoryUnclassified, res.Category)
	assert.Equal(t, http.StatusInternalServerError, res.Status)

	raw, err := json.Marshal(res.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"error": true,
		"error_code": "E5002",
		"message": "An internal error occurred. Please try again later.",
		"correlation_id": "req-10"
	}`, string(raw))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "req-10", entry.ContextMap()["correlation_id"])
	assert.Equal(t, "*errors.errorString", entry.ContextMap()["error_type"])
	assert.Contains(t, entry.ContextMap()["stacktrace"], "goroutine")
}

func TestNormalize_GeneratesCorrelationIDWhenMissing(t *testing.T) {
	logs := observeLogs(t)

	res := Normalize(context.Background(), stderrors.New("boom"))

	assert.True(t, correlation.Valid(res.Body.CorrelationID))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, res.Body.CorrelationID, logs.All()[0].ContextMap()["correlation_id"])
}

func TestNormalize_NilError(t *testing.T) {
	observeLogs(t)

	var res Result
	assert.NotPanics(t, func() { res = Normalize(withID("req-11"), nil) })
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, CodeInternal, res.Body.ErrorCode)
}

// an error whose inspection methods panic
type hostileError struct{}

func (hostileError) Error() string { panic("error text exploded") }
func (hostileError) As(any) bool { panic("as exploded") }
func (hostileError) Is(error) bool { panic("is exploded") }
func (hostileError) Unwrap() error { panic("unwrap exploded") }

func TestNormalize_NeverPanics(t *testing.T) {
	logs := observeLogs(t)

	var typedNil *SafeError
	inputs := []error{
		hostileError{},
		fmt.Errorf("wrapped: %w", hostileError{}),
		typedNil,
		&PanicError{Value: "plain"},
		&PanicError{Value: stderrors.New("inner")},
	}

	for _, in := range inputs {
		var res Result
		require.NotPanics(t, func() { res = Normalize(withID("req-12"), in) }, "%T", in)
		assert.Equal(t, http.StatusInternalServerError, res.Status)
		assert.Equal(t, CodeInternal, res.Body.ErrorCode)
		assert.Equal(t, Message(CodeInternal), res.Body.Message)
	}

	assert.Equal(t, len(inputs), logs.Len())
}

// distinct error types for the leak check; each instantiation is its own type
type leakyError[T any] struct {
	payload T
	msg     string
}

func (e leakyError[T]) Error() string { return e.msg }

type (
	sqlFailure     struct{ n int }
	fileFailure    struct{ n int }
	secretFailure  struct{ n int }
	networkFailure struct{ n int }
)

func (e *sqlFailure) Error() string {
	return fmt.Sprintf("pq: relation users_%d does not exist; password=hunter%d", e.n, e.n)
}

func (e *fileFailure) Error() string {
	return fmt.Sprintf("Traceback (most recent call last):\n  File \"/srv/app/h%d.py\", line %d", e.n, e.n)
}

func (e *secretFailure) Error() string {
	return fmt.Sprintf("api_key=sk_live_%d rejected", e.n)
}

func (e networkFailure) Error() string {
	return fmt.Sprintf("dial tcp 10.0.0.%d:5432: connection refused", e.n)
}

func unexpectedErrors() []error {
	var out []error

	for i := range 25 {
		out = append(out,
			&sqlFailure{n: i},
			&fileFailure{n: i},
			&secretFailure{n: i},
			networkFailure{n: i},
		)
	}

	leaky := []error{
		leakyError[int]{payload: 1, msg: "int failure at /home/deploy/secrets.env"},
		leakyError[string]{payload: "x", msg: "string failure"},
		leakyError[bool]{msg: "bool failure"},
		leakyError[float64]{msg: "float failure"},
		leakyError[[]byte]{msg: "bytes failure"},
		leakyError[time.Duration]{msg: "duration failure"},
		leakyError[map[string]int]{msg: "map failure"},
		leakyError[struct{}]{msg: "struct failure"},
		leakyError[error]{msg: "error failure"},
		leakyError[*int]{msg: "pointer failure"},
	}
	out = append(out, leaky...)

	// the same failures one and two wrapping levels deep
	n := len(out)
	for i := range n {
		out = append(out, fmt.Errorf("handler: %w", out[i]))
		out = append(out, fmt.Errorf("service: %w", fmt.Errorf("repo: %w", out[i])))
	}

	out = append(out,
		stderrors.Join(&sqlFailure{n: 99}, &fileFailure{n: 99}),
		context.Canceled,
		context.DeadlineExceeded,
		&PanicError{Value: "runtime error: index out of range [3] with length 2"},
	)

	return out
}

func TestNormalize_UnexpectedErrorsNeverLeak(t *testing.T) {
	logs := observeLogs(t)

	inputs := unexpectedErrors()
	require.Greater(t, len(inputs), 100)

	for i, in := range inputs {
		res := Normalize(withID("leak-check"), in)

		raw, err := json.Marshal(res.Body)
		require.NoError(t, err)
		body := string(raw)

		assert.Equal(t, http.StatusInternalServerError, res.Status, "input %d", i)
		assert.JSONEq(t, `{
			"error": true,
			"error_code": "E5002",
			"message": "An internal error occurred. Please try again later.",
			"correlation_id": "leak-check"
		}`, body, "input %d (%T)", i, in)

		typeName := strings.TrimPrefix(fmt.Sprintf("%T", in), "*")
		assert.NotContains(t, body, typeName)
		assert.NotContains(t, strings.ToLower(body), "traceback")
		assert.NotContains(t, body, `File "`)
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "sk_live")
		assert.Empty(t, res.Headers)
	}

	// every failure is still fully described to operators
	require.Equal(t, len(inputs), logs.Len())
	for _, entry := range logs.All() {
		assert.NotEmpty(t, entry.ContextMap()["error_type"])
		assert.NotEmpty(t, entry.ContextMap()["stacktrace"])
	}
}

func TestBuildDiagnostics(t *testing.T) {
	inner := &sqlFailure{n: 1}
	err := fmt.Errorf("service: %w", fmt.Errorf("repo: %w", inner))

	diag := BuildDiagnostics(err)

	assert.Equal(t, "*fmt.wrapError", diag.Type)
	require.Len(t, diag.Chain, 2)
	assert.Contains(t, diag.Chain[1], "*errors.sqlFailure")
	assert.NotEmpty(t, diag.Stack)
}

func TestBuildDiagnostics_PanicStack(t *testing.T) {
	diag := BuildDiagnostics(&PanicError{Value: "boom", Stack: []byte("captured stack")})

	assert.Equal(t, DiagnosticPanic, diag.Category)
	assert.Equal(t, "captured stack", diag.Stack)
}

func TestDiagnosticCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, DiagnosticTimeout},
		{"network", networkFailure{n: 1}, DiagnosticNetwork},
		{"database text", stderrors.New("postgres: too many clients"), DiagnosticDatabase},
		{"not found text", stderrors.New("user not found"), DiagnosticNotFound},
		{"unknown", stderrors.New("boom"), DiagnosticUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diagnosticCategory(tt.err))
		})
	}
}
