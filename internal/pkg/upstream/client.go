package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/TutorFox/internal/pkg/metrics"
)

const (
	DefaultMaxAttempts    = 3
	DefaultWait           = 10 * time.Second
	DefaultMaxWait        = 30 * time.Second
	DefaultAttemptTimeout = 60 * time.Second

	maxResponseBytes = 20 << 20
)

// Config bounds a retry sequence.
type Config struct {
	MaxAttempts    int
	DefaultWait    time.Duration
	MaxWait        time.Duration
	AttemptTimeout time.Duration
}

// Request describes one outbound call. Body is replayed on every attempt.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the final successful upstream reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Attempts   int
}

// Client calls an upstream generator and retries while it reports that the
// model is still loading.
type Client struct {
	HTTPClient *http.Client
	cfg        Config
}

// NewClient fills zero values in cfg with the package defaults.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.DefaultWait <= 0 {
		cfg.DefaultWait = DefaultWait
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{HTTPClient: httpClient, cfg: cfg}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// CallWithRetry issues req until it succeeds, fails fatally, the attempt cap
// is hit or ctx is done. Fatal statuses come back as *StatusError, the cap as
// ErrRetryExhausted and cancellation as ctx.Err().
func (c *Client) CallWithRetry(ctx context.Context, req Request) (*Response, error) {
	hint := &hintBackOff{}
	b := backoff.WithContext(backoff.WithMaxRetries(hint, uint64(c.cfg.MaxAttempts-1)), ctx)

	attempts := 0
	op := func() (*Response, error) {
		attempts++
		resp, err := c.do(ctx, req)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			resp.Attempts = attempts
			return resp, nil
		}
		if isLoading(resp.StatusCode, resp.Body) {
			hint.next = waitHint(resp.Header, resp.Body, c.cfg.DefaultWait, c.cfg.MaxWait)
			return nil, errModelLoading
		}
		return nil, backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: resp.Body})
	}
	notify := func(err error, wait time.Duration) {
		metrics.UpstreamRetries.Inc()
		fiberlog.Infof("upstream %s still loading (attempt %d/%d), retrying in %s", req.URL, attempts, c.cfg.MaxAttempts, wait)
	}

	resp, err := backoff.RetryNotifyWithData(op, b, notify)
	switch {
	case err == nil:
		metrics.UpstreamCalls.WithLabelValues("success").Inc()
		return resp, nil
	case errors.Is(err, errModelLoading):
		metrics.UpstreamCalls.WithLabelValues("exhausted").Inc()
		return nil, fmt.Errorf("%w (%d attempts)", ErrRetryExhausted, attempts)
	case ctx.Err() != nil:
		metrics.UpstreamCalls.WithLabelValues("canceled").Inc()
		return nil, ctx.Err()
	default:
		metrics.UpstreamCalls.WithLabelValues("fatal").Inc()
		return nil, err
	}
}

func (c *Client) do(ctx context.Context, r Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	method := r.Method
	if method == "" {
		method = http.MethodPost
	}
	req, err := http.NewRequestWithContext(ctx, method, r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return nil, err
	}
	for k, vals := range r.Header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header.Clone(), Body: body}, nil
}
