package upstream

import (
	"errors"
	"fmt"
)

// ErrRetryExhausted is returned when every allowed attempt reported that the
// model is still loading.
var ErrRetryExhausted = errors.New("upstream still loading after all attempts")

// errModelLoading marks a single transient attempt inside the retry loop.
var errModelLoading = errors.New("upstream model is loading")

// StatusError is a non-retryable upstream response.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream request failed: status=%d body=%s", e.StatusCode, snippet(e.Body, 256))
}

func snippet(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
