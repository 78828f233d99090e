package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var setupValidator sync.Once

// reports validation failures under the JSON field name instead of the Go one
// and registers the custom rules
func configureValidator() {
	setupValidator.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			if name == "" {
				return f.Name
			}

			return name
		})

		_ = v.RegisterValidation("maxbytes", maxBytes) //nolint:errcheck // only fails for an empty tag
	})
}

// like max, but counts bytes instead of runes (bcrypt stops at 72 bytes)
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	if fl.Field().Kind() != reflect.String {
		return false
	}

	return len(fl.Field().String()) <= limit
}

// binds the JSON body into obj; on failure reports a RequestValidationError
// through Abort and returns false
func BindJSON(c *gin.Context, obj any) bool {
	configureValidator()

	if err := c.ShouldBindJSON(obj); err != nil {
		Abort(c, NewRequestValidationError(err))
		return false
	}

	return true
}

// binds query parameters into obj, same contract as BindJSON
func BindQuery(c *gin.Context, obj any) bool {
	configureValidator()

	if err := c.ShouldBindQuery(obj); err != nil {
		Abort(c, NewRequestValidationError(err))
		return false
	}

	return true
}

// translates a binding error into safe field errors
func NewRequestValidationError(err error) *RequestValidationError {
	return &RequestValidationError{Fields: fieldErrors(err), cause: err}
}

func fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Message: ruleMessage(fe),
			})
		}

		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}

		return []FieldError{{
			Field:   field,
			Rule:    "type",
			Message: "must be of type " + jsonTypeName(typeErr.Type),
		}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []FieldError{{Field: "body", Rule: "json", Message: "request body must be valid JSON"}}
	}

	if errors.Is(err, io.EOF) {
		return []FieldError{{Field: "body", Rule: "required", Message: "request body is required"}}
	}

	return []FieldError{{Field: "body", Rule: "invalid", Message: "request could not be parsed"}}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}

		return "must be at least " + fe.Param()
	case "max":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}

		return "must be at most " + fe.Param()
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}

	return "is invalid"
}

func isLengthKind(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Slice || k == reflect.Map || k == reflect.Array
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}

	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}

	return "value"
}
