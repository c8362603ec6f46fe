// Package backend is the typed HTTP client of the CareNet REST backend. It is
// the only place that knows endpoint paths and wire shapes; callers see
// domain types and the domain error taxonomy.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/ports"
	"github.com/carenet/portal/internal/infrastructure/metrics"
)

// HeaderRequestID carries the correlation id of every outgoing request.
const HeaderRequestID = "X-Request-ID"

const maxErrorBody = 4 << 10

type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client; its Timeout is left alone.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client implements ports.Backend over HTTP+JSON. The bearer token is shared
// by every request and swapped atomically by SetBearer.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger zerolog.Logger

	mu     sync.RWMutex
	bearer string
}

var _ ports.Backend = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{base: base, http: hc, logger: cfg.Logger}, nil
}

// SetBearer replaces the credential attached to later requests. An empty
// token removes the Authorization header.
func (c *Client) SetBearer(token string) {
	c.mu.Lock()
	c.bearer = token
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer
}

type requestIDKey struct{}

// WithRequestID makes outgoing requests issued with ctx reuse id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// call describes one endpoint invocation.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	out    any
	// auth marks the login and register endpoints, where 401 and 403 mean
	// bad credentials rather than an expired session.
	auth bool
}

func (c *Client) do(ctx context.Context, cl call) error {
	var body io.Reader
	contentType := ""
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", cl.op, err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.send(ctx, cl, body, contentType)
}

func (c *Client) send(ctx context.Context, cl call, body io.Reader, contentType string) error {
	u := c.base.JoinPath(cl.path)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rid := requestID(ctx)
	req.Header.Set(HeaderRequestID, rid)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(cl.op, "error").Observe(time.Since(start).Seconds())
		c.logger.Warn().Err(err).Str("op", cl.op).Str("request_id", rid).Msg("backend unreachable")
		return transportError(cl.op, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestDuration.WithLabelValues(cl.op, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	c.logger.Debug().
		Str("op", cl.op).
		Str("method", cl.method).
		Str("path", u.Path).
		Int("status", resp.StatusCode).
		Str("request_id", rid).
		Dur("latency", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(cl.op, resp.StatusCode, msg, cl.auth)
	}
	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(cl.op, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, cl.out); err != nil {
		return fmt.Errorf("%s: decode response: %w", cl.op, err)
	}
	return nil
}

// Ping reports whether the backend answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return transportError("ping", err)
	}
	resp.Body.Close()
	return nil
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout())
}
