// Package httpx delivers JSON documents to external HTTP endpoints.
//
// The app's outbound HTTP traffic is Slack pings for the ops room and
// partner webhooks fired when offers go out, so the whole package is
// one verb. PostJSON marshals the payload and POSTs it with bounded
// retries: transport errors, 429 and 5xx responses are retried with
// doubling backoff, anything else the endpoint answers is final. An
// integer Retry-After header overrides the computed backoff.
//
//	err := httpx.PostJSON(ctx, hook, payload, nil, httpx.Policy{
//	    Timeout:  5 * time.Second,
//	    Attempts: 3,
//	})
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agriconnect-ug/agriconnect/pkg/logger"
)

const (
	// errBodyMax caps how much of an error response is kept for the
	// StatusError message. Webhook endpoints sometimes answer with
	// whole HTML pages.
	errBodyMax = 512

	// maxRetryAfter caps server-dictated waits. Deliveries run on a
	// bounded worker pool and must not park a worker for minutes.
	maxRetryAfter = 30 * time.Second
)

// client is shared by all deliveries so repeat posts to the same host
// (the Slack webhook, a partner endpoint) reuse connections.
var client = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
	},
}

// Policy controls delivery attempts for a single PostJSON call.
// The zero value means one attempt with a 10s timeout.
type Policy struct {
	Timeout  time.Duration // per attempt; default 10s
	Attempts int           // total tries; default 1
	Backoff  time.Duration // wait before the first retry, doubles each time; default 500ms
}

func (p Policy) withDefaults() Policy {
	if p.Timeout <= 0 {
		p.Timeout = 10 * time.Second
	}
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Backoff <= 0 {
		p.Backoff = 500 * time.Millisecond
	}
	return p
}

// StatusError reports a non-2xx answer from the endpoint.
type StatusError struct {
	Status     int
	Body       string        // response body, clipped to errBodyMax
	RetryAfter time.Duration // parsed Retry-After, 0 when absent
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("endpoint returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("endpoint returned HTTP %d: %s", e.Status, e.Body)
}

// PostJSON marshals payload and POSTs it to url. Extra headers are set
// on top of Content-Type: application/json. On a non-2xx answer the
// returned error unwraps to *StatusError.
func PostJSON(ctx context.Context, url string, payload any, headers map[string]string, p Policy) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("httpx: marshal payload for %s: %w", url, err)
	}
	p = p.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		lastErr = post(ctx, url, raw, headers, p.Timeout)
		if lastErr == nil {
			return nil
		}

		var se *StatusError
		if errors.As(lastErr, &se) && !retryable(se.Status) {
			// The endpoint understood the request and rejected it.
			return fmt.Errorf("httpx: POST %s: %w", url, lastErr)
		}
		if attempt == p.Attempts {
			break
		}

		wait := p.Backoff << (attempt - 1)
		if se != nil && se.RetryAfter > 0 {
			wait = min(se.RetryAfter, maxRetryAfter)
		}
		logger.Warn("httpx: delivery failed, will retry",
			"url", url, "attempt", attempt, "wait", wait, "error", lastErr)
		if err := sleep(ctx, wait); err != nil {
			return fmt.Errorf("httpx: POST %s: %w", url, err)
		}
	}

	return fmt.Errorf("httpx: POST %s: gave up after %d attempts: %w", url, p.Attempts, lastErr)
}

// post runs one attempt. A non-2xx answer comes back as *StatusError.
func post(parent context.Context, url string, body []byte, headers map[string]string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// Drain so the keep-alive connection goes back to the pool.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10)) //nolint:errcheck
		return nil
	}

	clip, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyMax))
	return &StatusError{
		Status:     resp.StatusCode,
		Body:       strings.TrimSpace(string(clip)),
		RetryAfter: retryAfter(resp.Header),
	}
}

// retryable reports whether a status is worth another attempt.
// Rate limits and server-side failures are transient, 4xx is not.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// retryAfter reads an integer Retry-After (seconds). The HTTP-date form
// is rare on webhook endpoints and is ignored.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// sleep waits for d unless ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
