package upstream

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// hintBackOff hands the retry loop whatever wait the last loading response
// asked for. One instance per CallWithRetry call.
type hintBackOff struct {
	next time.Duration
}

func (b *hintBackOff) NextBackOff() time.Duration { return b.next }

func (b *hintBackOff) Reset() { b.next = 0 }

var _ backoff.BackOff = (*hintBackOff)(nil)

type loadingBody struct {
	Error         string   `json:"error"`
	EstimatedTime *float64 `json:"estimated_time"`
}

// isLoading reports whether resp is the generator's "model is loading" reply
// rather than a real failure.
func isLoading(statusCode int, body []byte) bool {
	if statusCode != http.StatusServiceUnavailable {
		return false
	}
	var lb loadingBody
	if err := json.Unmarshal(body, &lb); err != nil {
		return false
	}
	return lb.EstimatedTime != nil || strings.Contains(strings.ToLower(lb.Error), "loading")
}

// waitHint extracts the server suggested delay: estimated_time in the body,
// then Retry-After, then def. The result is clamped to maxWait when maxWait > 0.
func waitHint(header http.Header, body []byte, def, maxWait time.Duration) time.Duration {
	wait := def

	var lb loadingBody
	if err := json.Unmarshal(body, &lb); err == nil && lb.EstimatedTime != nil && *lb.EstimatedTime > 0 {
		wait = time.Duration(*lb.EstimatedTime * float64(time.Second))
	} else if ra := strings.TrimSpace(header.Get("Retry-After")); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			wait = time.Duration(secs) * time.Second
		}
	}

	if maxWait > 0 && wait > maxWait {
		wait = maxWait
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}
