package cddb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 20 * time.Second
	// maxReplyBytes caps how much of a reply body is read.
	maxReplyBytes = 4 << 20
)

// Response is the HTTP reply handed to the reply parsers.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs a GET for the session.
type Transport interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, url string) (*Response, error)

// Get calls f.
func (f TransportFunc) Get(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}

// HTTPTransport is the net/http backed Transport.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) TransportOption {
	return func(t *HTTPTransport) {
		t.userAgent = agent
	}
}

// NewHTTPTransport returns a transport whose requests time out after
// timeout (DefaultTimeout when zero or negative).
func NewHTTPTransport(timeout time.Duration, opts ...TransportOption) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	t := &HTTPTransport{client: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get issues the request and reads at most maxReplyBytes of the body.
func (t *HTTPTransport) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	requestStart := time.Now()
	resp, err := t.client.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if len(body) > maxReplyBytes {
		return nil, errors.New("response body exceeds size limit")
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
