// Package gateway is the single HTTP client used to reach the top-up backend.
//
// Every call attaches the persisted session credential when one exists,
// applies the 403 policy table to the reply, and normalizes all failures into
// *APIError so callers handle exactly one error shape.
package gateway

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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a reply is read.
const maxBody = 4 << 20

// SessionSource gives the gateway read access to the persisted session and a
// way to drop it when the backend rejects it.
type SessionSource interface {
	// Credential returns the authorization scheme and token. Empty values
	// mean no session.
	Credential(ctx context.Context) (scheme, token string, err error)
	// Invalidate clears the session and announces the logout with reason.
	Invalidate(ctx context.Context, reason string)
}

// Client talks JSON to the backend rooted at a base URL.
type Client struct {
	base      string
	http      *http.Client
	session   SessionSource
	policies  Policies
	timeout   time.Duration
	userAgent string
	log       zerolog.Logger
	tracer    trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Timeout is kept when
// set, otherwise DefaultTimeout applies.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithPolicies installs the 403 rule table.
func WithPolicies(p Policies) Option {
	return func(c *Client) { c.policies = p }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New builds a Client for baseURL. session may be nil for anonymous use.
func New(baseURL string, session SessionSource, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	c := &Client{
		base:      base,
		http:      &http.Client{Timeout: DefaultTimeout},
		session:   session,
		userAgent: "go-topup-portal",
		log:       log.Logger,
		tracer:    otel.Tracer("github.com/tbourn/go-topup-portal/internal/gateway"),
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 || c.http.Timeout <= 0 {
		hc := *c.http
		hc.Timeout = DefaultTimeout
		if c.timeout > 0 {
			hc.Timeout = c.timeout
		}
		c.http = &hc
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.base }

// Do sends body (JSON encoded when non-nil) to endpoint and decodes a 2xx
// reply into out (when non-nil). Every returned error is an *APIError.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "gateway "+method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("topup.endpoint", endpoint),
		),
	)
	defer span.End()

	start := time.Now()
	status, err := c.do(ctx, method, endpoint, body, out)
	observe(endpoint, method, status, time.Since(start))

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// do returns the status actually received (0 when none) alongside the
// normalized error.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fromLocal(fmt.Errorf("encode request: %w", err))
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(endpoint), rdr)
	if err != nil {
		return 0, fromLocal(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	c.authorize(ctx, req)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("endpoint", endpoint).Str("method", method).Msg("backend unreachable")
		return 0, fromTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, fromTransport(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode == http.StatusForbidden {
		c.forbidden(ctx, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fromResponse(resp.StatusCode, raw)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fromLocal(fmt.Errorf("decode response: %w", err))
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.base + "/" + strings.TrimLeft(endpoint, "/")
}

// authorize attaches the session credential. A broken session record is
// logged and the request goes out without one.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.session == nil {
		return
	}
	scheme, token, err := c.session.Credential(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("read persisted session")
		return
	}
	if scheme != "" && token != "" {
		req.Header.Set("Authorization", scheme+" "+token)
	}
}

func (c *Client) forbidden(ctx context.Context, endpoint string) {
	rule := c.policies.Lookup(endpoint)
	switch rule.OnForbidden {
	case ForbiddenInvalidate:
		c.log.Warn().Str("endpoint", endpoint).Msg("403 from backend, invalidating session")
		if c.session != nil {
			c.session.Invalidate(ctx, rule.Reason)
		}
	case ForbiddenIgnore:
		c.log.Debug().Str("endpoint", endpoint).Msg("403 from backend ignored for this endpoint")
	default:
		c.log.Warn().Str("endpoint", endpoint).Msg("403 from backend, session kept")
	}
}

// Get decodes the reply of a GET into T.
func Get[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	var out T
	if err := c.Do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Post sends body and decodes the reply into T.
func Post[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	var out T
	if err := c.Do(ctx, http.MethodPost, endpoint, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Put sends body and decodes the reply into T.
func Put[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	var out T
	if err := c.Do(ctx, http.MethodPut, endpoint, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Delete decodes the reply of a DELETE into T.
func Delete[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	var out T
	if err := c.Do(ctx, http.MethodDelete, endpoint, nil, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
