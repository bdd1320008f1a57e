package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// StatusError represents a non-success HTTP status from a source.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Client opens streaming GET requests against download sources.
type Client struct {
	http        *http.Client
	readTimeout time.Duration

	// Decorate, when set, is applied to every outgoing request. Used for
	// trace-context header injection.
	Decorate func(*http.Request)
}

// NewClient builds a client for long-lived streaming downloads. There is no
// overall request timeout: a download is expected to run for minutes, so only
// the dial and the per-read stall timeouts bound it.
func NewClient(connectTimeout, readTimeout time.Duration) *Client {
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          8,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		http:        &http.Client{Transport: transport},
		readTimeout: readTimeout,
	}
}

// Open starts a streaming GET against url. The returned stream yields the
// response body; each Read is bounded by the configured read timeout so the
// caller's loop regains control even when a source stalls mid-stream.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	reqCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	if c.Decorate != nil {
		c.Decorate(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		cancel()
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	return newStream(url, resp, cancel, c.readTimeout), nil
}
