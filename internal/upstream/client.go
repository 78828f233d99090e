package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultMaxRetries     = 2
	defaultInitialBackoff = 200 * time.Millisecond
	maxResponseBytes      = 1 << 20
	maxErrorBodyBytes     = 512
)

// calls a single external service with timeouts, client-side rate limiting and retries
type Client struct {
	service        string
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxRetries     uint64
	initialBackoff time.Duration
}

type Option func(*Client)

// caps the duration of a single attempt
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// limits outgoing requests per second
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// sets how many times a transient failure is retried
func WithRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// sets the first retry delay
func WithInitialBackoff(d time.Duration) Option {
	return func(c *Client) { c.initialBackoff = d }
}

func New(service string, opts ...Option) *Client {
	c := &Client{
		service: service,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		maxRetries:     defaultMaxRetries,
		initialBackoff: defaultInitialBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// returns the service name used in errors and logs
func (c *Client) Service() string {
	return c.service
}

// describes one upstream call
type Request struct {
	// short operation name for errors and logs, e.g. "list games"
	Op      string
	Method  string
	URL     string
	Headers map[string]string

	// marshalled as JSON when non-nil
	Body any
}

// performs the request and decodes a JSON response into out (when non-nil)
func (c *Client) DoJSON(ctx context.Context, r Request, out any) error {
	var payload []byte

	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("%s %s: encode request: %w", c.service, r.Op, err)
		}

		payload = data
	}

	var body []byte

	attempt := func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(c.classify(r.Op, err))
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%s %s: build request: %w", c.service, r.Op, err))
		}

		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		for k, v := range r.Headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			classified := c.classify(r.Op, err)

			var te *TimeoutError
			if errors.As(classified, &te) || ctx.Err() != nil {
				return backoff.Permanent(classified)
			}

			return classified
		}

		defer resp.Body.Close() //nolint:errcheck // read-only body

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return backoff.Permanent(c.classify(r.Op, err))
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			statusErr := &StatusError{
				Service:    c.service,
				Op:         r.Op,
				StatusCode: resp.StatusCode,
				Body:       truncate(data, maxErrorBodyBytes),
			}

			if retryableStatus(resp.StatusCode) {
				return statusErr
			}

			return backoff.Permanent(statusErr)
		}

		body = data
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialBackoff

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx))
	if err != nil {
		// the retry loop reports a bare context error when the deadline hits between attempts
		var te *TimeoutError
		if errors.Is(err, context.DeadlineExceeded) && !errors.As(err, &te) {
			return &TimeoutError{Service: c.service, Op: r.Op, Err: err}
		}

		return err
	}

	if out == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", c.service, r.Op, err)
	}

	return nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}

	return string(data[:n])
}
