package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "codeberg.org/gamevault/server/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const keyPrefix = "gamevault:ratelimit"

// configures one limiter
type Options struct {
	// formatted rate, e.g. "100-M" or "10-S"
	Rate string

	// separates counters of limiters sharing a store
	Name string

	// shared store; nil keeps counters in process memory
	Redis *redis.Client

	// request paths never limited
	Exempt []string

	// trust X-Forwarded-For / X-Real-IP for the client key
	TrustForwardHeader bool
}

// builds a per-client-IP limiter middleware. Requests over the limit are
// reported as E3005 with a retry_after hint; X-RateLimit-* headers are always set.
func Middleware(opts Options) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(opts.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", opts.Rate, err)
	}

	name := opts.Name
	if name == "" {
		name = "default"
	}

	store, err := newStore(opts.Redis, keyPrefix+":"+name)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(store, rate, limiter.WithTrustForwardHeader(opts.TrustForwardHeader))

	handler := mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(limitReached),
		mgin.WithErrorHandler(storeFailed),
	)

	exempt := make(map[string]struct{}, len(opts.Exempt))
	for _, path := range opts.Exempt {
		exempt[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := exempt[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		handler(c)
	}, nil
}

func newStore(client *redis.Client, prefix string) (limiter.Store, error) {
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		}), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   prefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}

	return store, nil
}

func limitReached(c *gin.Context) {
	apperrors.Abort(c, apperrors.NewSafe(apperrors.CodeRateLimited,
		apperrors.WithStatus(http.StatusTooManyRequests),
		apperrors.WithDetail("retry_after", retryAfter(c.Writer.Header().Get("X-RateLimit-Reset"), time.Now())),
	))
}

// the shared store is down; callers may retry once it recovers
func storeFailed(c *gin.Context, err error) {
	apperrors.Abort(c, apperrors.NewExternalServiceError("rate limit store", false, apperrors.WithCause(err)))
}

// seconds until the window resets, at least 1
func retryAfter(reset string, now time.Time) int {
	ts, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		return 1
	}

	return max(1, int(ts-now.Unix()))
}
