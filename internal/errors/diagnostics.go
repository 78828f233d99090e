package errors

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// operator-side error categories, used in logs only
const (
	DiagnosticDatabase = "database"
	DiagnosticNetwork  = "network"
	DiagnosticNotFound = "not_found"
	DiagnosticTimeout  = "timeout"
	DiagnosticPanic    = "panic"
	DiagnosticUnknown  = "unknown"
)

const maxChainDepth = 20

// Diagnostics is the full description of an unexpected failure. It goes to
// the log sink and never into a response.
type Diagnostics struct {
	Error           string
	Type            string
	Chain           []string
	Category        string
	Stack           string
	ClassifierFault string
}

// collects type, cause chain, category and stack for an unexpected failure
func BuildDiagnostics(err error) Diagnostics {
	if err == nil {
		return Diagnostics{
			Error:    "<nil>",
			Type:     "<nil>",
			Category: DiagnosticUnknown,
			Stack:    string(debug.Stack()),
		}
	}

	d := Diagnostics{
		Error:    errorText(err),
		Type:     fmt.Sprintf("%T", err),
		Chain:    causeChain(err, maxChainDepth),
		Category: diagnosticCategory(err),
	}

	var panicErr *PanicError
	if errors.As(err, &panicErr) && len(panicErr.Stack) > 0 {
		d.Stack = string(panicErr.Stack)
	} else {
		d.Stack = string(debug.Stack())
	}

	return d
}

func causeChain(err error, maxDepth int) []string {
	out := make([]string, 0, 4)
	cur := errors.Unwrap(err)

	for i := 0; i < maxDepth && cur != nil; i++ {
		out = append(out, fmt.Sprintf("%T: %v", cur, cur))
		cur = errors.Unwrap(cur)
	}

	return out
}

// analyzes an error and returns its operator-facing category
func diagnosticCategory(err error) string {
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		return DiagnosticPanic
	}

	// database errors (pgx-specific)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return DiagnosticDatabase
	}

	// no rows found
	if errors.Is(err, pgx.ErrNoRows) {
		return DiagnosticNotFound
	}

	// context errors
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return DiagnosticTimeout
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(errorText(err))

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline") {
		return DiagnosticTimeout
	}

	if strings.Contains(errMsg, "database") || strings.Contains(errMsg, "sql") ||
		strings.Contains(errMsg, "postgres") || strings.Contains(errMsg, "pgx") {
		return DiagnosticDatabase
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial") {
		return DiagnosticNetwork
	}

	if strings.Contains(errMsg, "not found") || strings.Contains(errMsg, "no rows") {
		return DiagnosticNotFound
	}

	return DiagnosticUnknown
}
