package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// returned when an upstream call exceeds its deadline
type TimeoutError struct {
	Service string
	Op      string
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: timed out: %v", e.Service, e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// returned when an upstream answers with a non-2xx status
type StatusError struct {
	Service    string
	Op         string
	StatusCode int

	// truncated response body, for server-side logs only
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Service, e.Op, e.StatusCode)
}

// wraps a transport error, promoting deadline failures to TimeoutError
func (c *Client) classify(op string, err error) error {
	if err == nil {
		return nil
	}

	// *url.Error repeats the request URL, which may carry credentials
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}

	var te *TimeoutError
	if errors.As(err, &te) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Service: c.service, Op: op, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Service: c.service, Op: op, Err: err}
	}

	return fmt.Errorf("%s %s: %w", c.service, op, err)
}

// reports whether an upstream status is worth retrying
func retryableStatus(code int) bool {
	switch code {
	case 502, 503, 504:
		return true
	}

	return false
}
