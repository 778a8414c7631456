// Package apiclient talks JSON to the remote asset API. Client performs raw
// calls; Authorized wraps it with bearer authentication and the one-shot
// refresh-and-replay interceptor.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/pkg/metrics"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
	userAgent      = "asset-console"
)

// Client is the raw asset API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New returns a Client for the API rooted at baseURL (e.g. http://localhost:8000/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.log = c.log.With().Str("component", "apiclient").Logger()
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request is a buffered outbound call that can be sent more than once.
type request struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

func newRequest(method, path string, query url.Values, payload any) (*request, error) {
	r := &request{method: method, path: path, query: query}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		r.body = body
	}
	return r, nil
}

func (r *request) url(base string) string {
	u := base + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	return u
}

// send performs one HTTP exchange. Transport failures come back as
// *domain.APIError of kind transport; any response, whatever its status, is
// returned to the caller.
func (c *Client) send(ctx context.Context, r *request, bearer string) (*http.Response, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url(c.baseURL), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", r.method, r.path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if rid := RequestIDFrom(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	dur := time.Since(start)
	metrics.UpstreamRequestDuration.WithLabelValues(r.method).Observe(dur.Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(r.method, "transport_error").Inc()
		c.log.Warn().Err(err).
			Str("method", r.method).
			Str("path", r.path).
			Dur("dur", dur).
			Msg("upstream request failed")
		return nil, &domain.APIError{Kind: domain.KindTransport, Err: err}
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(r.method, strconv.Itoa(resp.StatusCode)).Inc()
	c.log.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Bool("bearer", bearer != "").
		Dur("dur", dur).
		Msg("upstream")
	return resp, nil
}

// do sends r once and decodes the response into out.
func (c *Client) do(ctx context.Context, r *request, bearer string, out any) error {
	resp, err := c.send(ctx, r, bearer)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	r, err := newRequest(http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	return c.do(ctx, r, "", out)
}

// decode consumes resp. Non-2xx statuses become *domain.APIError; out may
// be nil when the body is irrelevant.
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &domain.APIError{Kind: domain.KindTransport, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp.StatusCode, body)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return nil
}

// discard drains and closes a response whose body is not needed.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}

type requestIDKey struct{}

// ContextWithRequestID makes outgoing calls carry id as X-Request-ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Ping reports whether the asset API answers at all. Any response below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	r, err := newRequest(http.MethodGet, "/", nil, nil)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, r, "")
	if err != nil {
		return err
	}
	defer discard(resp)
	if resp.StatusCode >= 500 {
		return apiError(resp.StatusCode, nil)
	}
	return nil
}
