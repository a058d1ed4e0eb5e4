package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the webhook API could not be reached or its
	// response could not be read. No upstream status code is available.
	ErrUnavailable = errors.New("upstream: unavailable")

	// ErrNotConfigured means no base URL was configured
	ErrNotConfigured = errors.New("upstream: base url not configured")
)

// ResponseError is returned by callers that need a successful payload when
// the webhook API answered with a failure. The Result is relayed as is.
type ResponseError struct {
	Result *Result
}

func (e *ResponseError) Error() string {
	env := e.Result.Envelope()
	if msg := env.Message(); msg != "" {
		return fmt.Sprintf("upstream: status %d: %s", e.Result.StatusCode, msg)
	}
	return fmt.Sprintf("upstream: status %d", e.Result.StatusCode)
}

// Reject wraps a failed result, or returns nil when res is a success
func Reject(res *Result) error {
	if res.OK() && res.Envelope().IsSuccess() {
		return nil
	}
	return &ResponseError{Result: res}
}
