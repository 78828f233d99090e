package errors

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// UUID format: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx (36 characters)
var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// validates a UUID string format
func IsValidUUID(id string) bool {
	if id == "" {
		return false
	}

	return uuidRegex.MatchString(strings.ToLower(id))
}

// reads a UUID path parameter; a malformed id is reported as notFound so
// callers cannot probe which ids exist
func ValidatePathUUID(c *gin.Context, paramName string, notFound error) (string, bool) {
	id := c.Param(paramName)

	if !IsValidUUID(id) {
		Abort(c, notFound)
		return "", false
	}

	return strings.ToLower(id), true
}
