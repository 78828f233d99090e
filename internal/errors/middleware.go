package errors

import (
	"errors"
	"net/http"
	"runtime/debug"

	"codeberg.org/gamevault/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// recovers panics and renders the last error recorded on the request;
// it must run before any handler that can fail
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			// the client went away; nothing left to answer
			if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(r)
			}

			c.Abort()
			respond(c, &PanicError{Value: r, Stack: debug.Stack()})
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		respond(c, c.Errors.Last().Err)
	}
}

// normalizes err and writes the response once
func respond(c *gin.Context, err error) {
	// a handler that already started the body cannot be answered again, so the
	// error is neither normalized nor counted
	if c.Writer.Written() {
		logger.FromContext(c.Request.Context()).Warnw("error recorded after response was written",
			"status", c.Writer.Status(),
			"error", errorText(err),
		)
		return
	}

	res := Normalize(c.Request.Context(), err)

	for k, v := range res.Headers {
		c.Header(k, v)
	}

	c.JSON(res.Status, res.Body)
}

// gin NoRoute handler
func NoRoute(c *gin.Context) {
	Abort(c, NotFound(""))
}

// gin NoMethod handler
func NoMethod(c *gin.Context) {
	Abort(c, MethodNotAllowed())
}
