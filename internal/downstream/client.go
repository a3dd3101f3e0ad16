// Package downstream talks to the downstream order API: enrichment lookups
// and order submission. A single Client, and the *http.Client inside it, is
// shared by every request.
package downstream

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/order-ingest/pkg/httpmiddleware"
)

// maxResponseBytes caps how much of a downstream response body is read.
const maxResponseBytes = 1 << 20

// errResponseTooLarge is returned by do when a response body exceeds
// maxResponseBytes. The body is never truncated.
var errResponseTooLarge = errors.Errorf("response body exceeds %d bytes", maxResponseBytes)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every outbound request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client is a downstream order API client. It implements order.Lookup and
// order.Gateway and is safe for concurrent use.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("base URL %q must be http or https", baseURL)
	}

	c := &Client{
		base: strings.TrimSuffix(u.String(), "/"),
	}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return c, nil
}

type response struct {
	status      int
	contentType string
	body        []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// do sends one request and reads the (bounded) response body. Any error
// other than errResponseTooLarge is a transport-level failure.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := httpmiddleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(httpmiddleware.RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if len(data) > maxResponseBytes {
		return nil, errors.Wrapf(errResponseTooLarge, "%s %s: status %d", method, path, resp.StatusCode)
	}
	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

// Ping reports whether the downstream API is reachable. Any HTTP response,
// whatever its status, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodHead, "/", nil)
	return err
}
