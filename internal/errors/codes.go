package errors

// Code is a stable, append-only error identifier. Clients branch on it, never on
// the message text. The leading digit selects the range:
//
//	1xxx authentication
//	2xxx validation
//	3xxx business rule
//	4xxx external service
//	5xxx system
//
// Never change the meaning of an existing code; add a new one instead.
type Code string

// authentication
const (
	CodeInvalidCredentials Code = "E1001"
	CodeTokenExpired       Code = "E1002"
	CodeTokenInvalid       Code = "E1003"
	CodePermissionDenied   Code = "E1004"
	CodeAccountDisabled    Code = "E1005"
)

// validation
const (
	CodeValidationFailed  Code = "E2001"
	CodeInvalidAmount     Code = "E2002"
	CodeInvalidIdentifier Code = "E2003"
)

// business rule
const (
	CodeInsufficientBalance  Code = "E3001"
	CodeTransactionNotFound  Code = "E3002"
	CodeEmailTaken           Code = "E3003"
	CodeGameUnavailable      Code = "E3004"
	CodeRateLimited          Code = "E3005"
	CodeAmountLimitExceeded  Code = "E3006"
	CodeDuplicateTransaction Code = "E3007"
)

// external service
const (
	CodeExternalUnavailable Code = "E4001"
	CodeExternalTimeout     Code = "E4002"
	CodeNotificationFailed  Code = "E4003"
)

// system
const (
	CodeConfiguration Code = "E5001"
	CodeInternal      Code = "E5002"
	CodeDatabase      Code = "E5003"
)

// returned for codes missing from the catalog
const fallbackMessage = "An unexpected error occurred."

// read-only after init
var catalog = map[Code]string{
	CodeInvalidCredentials: "Invalid email or password.",
	CodeTokenExpired:       "Your session has expired. Please sign in again.",
	CodeTokenInvalid:       "The authentication token is invalid.",
	CodePermissionDenied:   "You do not have permission to perform this action.",
	CodeAccountDisabled:    "This account has been disabled.",

	CodeValidationFailed:  "Request validation failed.",
	CodeInvalidAmount:     "The amount is invalid.",
	CodeInvalidIdentifier: "The identifier is invalid.",

	CodeInsufficientBalance:  "Insufficient balance.",
	CodeTransactionNotFound:  "Transaction not found.",
	CodeEmailTaken:           "An account with this email already exists.",
	CodeGameUnavailable:      "This game is not available.",
	CodeRateLimited:          "Too many requests. Please slow down.",
	CodeAmountLimitExceeded:  "The amount exceeds the allowed limit.",
	CodeDuplicateTransaction: "A transaction with this reference already exists.",

	CodeExternalUnavailable: "An external service is temporarily unavailable. Please try again later.",
	CodeExternalTimeout:     "An external service did not respond in time. Please try again later.",
	CodeNotificationFailed:  "The notification could not be delivered.",

	CodeConfiguration: "The server is misconfigured. Please contact support.",
	CodeInternal:      "An internal error occurred. Please try again later.",
	CodeDatabase:      "A storage error occurred. Please try again later.",
}

// returns the safe message for a code, or a generic one for unknown codes
func Message(code Code) string {
	if msg, ok := catalog[code]; ok {
		return msg
	}

	return fallbackMessage
}

// reports whether the code is part of the catalog
func Known(code Code) bool {
	_, ok := catalog[code]
	return ok
}

// code ranges
const (
	RangeAuthentication  = "authentication"
	RangeValidation      = "validation"
	RangeBusinessRule    = "business_rule"
	RangeExternalService = "external_service"
	RangeSystem          = "system"
	RangeUnknown         = "unknown"
)

// returns the range a code belongs to, by leading digit
func RangeOf(code Code) string {
	if len(code) != 5 || code[0] != 'E' {
		return RangeUnknown
	}

	switch code[1] {
	case '1':
		return RangeAuthentication
	case '2':
		return RangeValidation
	case '3':
		return RangeBusinessRule
	case '4':
		return RangeExternalService
	case '5':
		return RangeSystem
	}

	return RangeUnknown
}

// returns every catalog code, in no particular order
func Codes() []Code {
	codes := make([]Code, 0, len(catalog))
	for code := range catalog {
		codes = append(codes, code)
	}

	return codes
}
