package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/portalcache/auth"
	"github.com/jonwraymond/portalcache/observe"
	"github.com/jonwraymond/portalcache/resilience"
)

// HeaderRequestID carries the per-call correlation id.
const HeaderRequestID = "X-Request-ID"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 10 << 20

// Accessor is the request surface consumed by the portal services.
type Accessor interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. Its Transport is
// wrapped when WithTokenSource is also given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource attaches bearer tokens from src to every request.
func WithTokenSource(src auth.TokenSource) Option {
	return func(c *Client) { c.tokens = src }
}

// WithTimeout bounds each attempt. Default: resilience.DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetry retries transient failures up to attempts total tries.
func WithRetry(attempts int) Option {
	return func(c *Client) { c.attempts = attempts }
}

// WithCircuitBreaker guards the backend with cb.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t observe.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithRequestIDs replaces the request id generator, mainly for tests.
func WithRequestIDs(next func() string) Option {
	return func(c *Client) {
		if next != nil {
			c.newID = next
		}
	}
}

// Client is the HTTP implementation of Accessor. It is safe for concurrent use.
type Client struct {
	base     *url.URL
	http     *http.Client
	tokens   auth.TokenSource
	timeout  time.Duration
	attempts int
	breaker  *resilience.CircuitBreaker
	exec     *resilience.Executor
	logger   observe.Logger
	metrics  observe.Metrics
	tracer   observe.Tracer
	newID    func() string
}

// New creates a Client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote: base url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		base:    base,
		http:    &http.Client{},
		logger:  observe.NoopLogger(),
		metrics: observe.NoopMetrics(),
		tracer:  observe.NoopTracer(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tokens != nil {
		hc := *c.http
		hc.Transport = auth.NewTransport(c.tokens, c.http.Transport)
		c.http = &hc
	}

	execOpts := []resilience.ExecutorOption{resilience.WithTimeout(c.timeout)}
	if c.attempts > 1 {
		execOpts = append(execOpts, resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts: c.attempts,
			Jitter:      true,
		})))
	}
	if c.breaker != nil {
		execOpts = append(execOpts, resilience.WithCircuitBreaker(c.breaker))
	}
	c.exec = resilience.NewExecutor(execOpts...)

	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Get fetches path and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body to path and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Patch sends body to path and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete deletes path. out may be nil.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do performs one logical call, which may span several attempts.
// body is JSON-encoded when non-nil; out receives the unwrapped data when
// non-nil and the response has a body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	target, err := c.resolve(path)
	if err != nil {
		return &Error{Method: method, Path: path, Message: "invalid path", Err: err}
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return &Error{Method: method, Path: path, Message: "encode request body", Err: err}
		}
	}

	requestID := c.newID()
	ctx, span := c.tracer.StartSpan(ctx, observe.OpMeta{
		Component: "remote",
		Operation: method,
		Attrs: []attribute.KeyValue{
			attribute.String("http.path", path),
			attribute.String("http.request_id", requestID),
		},
	})
	start := time.Now()

	err = c.exec.Execute(ctx, func(ctx context.Context) error {
		return c.attempt(ctx, method, path, target, requestID, payload, out)
	})
	err = c.classify(method, path, err)

	c.tracer.EndSpan(span, err)
	fields := []observe.Field{
		observe.F("http.method", method),
		observe.F("http.path", path),
		observe.F("http.request_id", requestID),
		observe.F("duration_ms", time.Since(start).Milliseconds()),
	}
	if err != nil {
		c.logger.Warn(ctx, "backend call failed", append(fields, observe.F("http.status", StatusCode(err)), observe.Err(err))...)
		return err
	}
	c.logger.Debug(ctx, "backend call completed", fields...)
	return nil
}

func (c *Client) attempt(ctx context.Context, method, path, target, requestID string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &Error{Method: method, Path: path, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		err = &Error{Method: method, Path: path, Message: transportMessage(err), Err: err}
		c.metrics.RecordRemoteCall(ctx, method, 0, time.Since(start), err)
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		err = &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Message: "read response body", Err: err}
		c.metrics.RecordRemoteCall(ctx, method, resp.StatusCode, time.Since(start), err)
		return err
	}

	err = decodeResponse(method, path, resp.StatusCode, data, out)
	c.metrics.RecordRemoteCall(ctx, method, resp.StatusCode, time.Since(start), err)
	return err
}

// classify turns executor failures into *Error.
func (c *Client) classify(method, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, resilience.ErrTimeout) {
		return &Error{Method: method, Path: path, Message: ErrTimeout.Error(), Err: fmt.Errorf("%w: %w", ErrTimeout, err)}
	}
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	return &Error{Method: method, Path: path, Message: err.Error(), Err: err}
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", err
	}
	if ref.IsAbs() || ref.Host != "" {
		return "", fmt.Errorf("path %q must be relative", path)
	}
	return c.base.ResolveReference(ref).String(), nil
}

func transportMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout.Error()
	default:
		return "backend unreachable"
	}
}

var _ Accessor = (*Client)(nil)
