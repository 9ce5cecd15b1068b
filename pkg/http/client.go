package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	MethodGet  = http.MethodGet
	MethodPost = http.MethodPost
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 8 << 20

// ClientOption configures Client.
type ClientOption func(*Client)

// RequestOptions holds HTTP request parameters.
type RequestOptions struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string][]string
	Body        interface{}
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client represents an HTTP client with a per-call timeout and retry on transient failures.
type Client struct {
	timeout      time.Duration
	maxRetries   uint64
	initialDelay time.Duration
	userAgent    string
	client       *http.Client
}

// NewClient creates a new HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:      30 * time.Second,
		maxRetries:   2,
		initialDelay: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{Timeout: c.timeout}
	return c
}

// Do sends the request, retrying transient failures with exponential backoff,
// and returns the read body. Non-2xx statuses yield *StatusError together with the response.
func (c *Client) Do(ctx context.Context, opts *RequestOptions) (*Response, error) {
	var out *Response
	operation := func() error {
		resp, err := c.send(ctx, opts)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		out = resp
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			serr := &StatusError{StatusCode: resp.StatusCode, Body: snippet(resp.Body)}
			if serr.Temporary() {
				return serr
			}
			return backoff.Permanent(serr)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialDelay
	b.MaxElapsedTime = c.timeout * time.Duration(c.maxRetries+1)
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return out, err
	}
	return out, nil
}

// SendAndParse sends request and parses JSON response.
func (c *Client) SendAndParse(ctx context.Context, opts *RequestOptions, dest interface{}) error {
	resp, err := c.Do(ctx, opts)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, dest); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, opts *RequestOptions) (*Response, error) {
	req, err := c.buildRequest(ctx, opts)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, opts *RequestOptions) (*http.Request, error) {
	body, err := createRequestBody(opts)
	if err != nil {
		return nil, fmt.Errorf("create body: %w", err)
	}

	method := opts.Method
	if method == "" {
		method = MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, opts.URL, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	if len(opts.QueryParams) > 0 {
		q := req.URL.Query()
		for key, values := range opts.QueryParams {
			for _, value := range values {
				q.Add(key, value)
			}
		}
		req.URL.RawQuery = q.Encode()
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func createRequestBody(opts *RequestOptions) (io.Reader, error) {
	if opts.Body == nil {
		return nil, nil
	}
	switch v := opts.Body.(type) {
	case []byte:
		return bytes.NewReader(v), nil
	case string:
		return strings.NewReader(v), nil
	default:
		jsonBody, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return bytes.NewReader(jsonBody), nil
	}
}

func snippet(b []byte) string {
	const n = 200
	if len(b) > n {
		b = b[:n]
	}
	return strings.TrimSpace(string(b))
}

// StatusCode extracts the HTTP status from an error returned by Do, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetry sets the number of retries after the first attempt and the initial backoff.
func WithRetry(maxRetries int, initialDelay time.Duration) ClientOption {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = uint64(maxRetries)
		}
		if initialDelay > 0 {
			c.initialDelay = initialDelay
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}
