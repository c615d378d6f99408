// Package httpapi is the HTTP plumbing shared by the remote source fetcher and
// the external data collectors: request building, status classification,
// JSON decoding and retries.
package httpapi

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/retry"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// UserAgent identifies the builder to remote services.
const UserAgent = "landscape2-builder/1.0"

// maxBodySize bounds response bodies read into memory.
const maxBodySize = 32 << 20

// Client performs requests against one API root.
type Client struct {
	httpClient *http.Client
	baseURL    string
	policy     retry.Policy
	headers    map[string]string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the retry policy applied to retryable failures.
func WithRetry(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithHeader sets a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// New creates a client rooted at baseURL. An empty baseURL means endpoints
// passed to NewRequest are absolute URLs.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		policy:     retry.DefaultPolicy(),
		headers:    map[string]string{"User-Agent": UserAgent},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRequest builds a GET request for endpoint with the given query and the
// client's default headers.
func (c *Client) NewRequest(ctx context.Context, endpoint string, query url.Values) (*http.Request, error) {
	target := endpoint
	if c.baseURL != "" {
		u, err := url.Parse(c.baseURL)
		if err != nil {
			return nil, errors.ConfigError("invalid API URL").
				WithCause(err).
				WithContext("api_url", c.baseURL).
				Build()
		}
		u.Path = path.Join(strings.TrimSuffix(u.Path, "/"), strings.TrimPrefix(endpoint, "/"))
		target = u.String()
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, errors.ValidationError("failed to create request").
			WithCause(err).
			WithContext("url", target).
			Build()
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// Do executes req, retrying retryable failures, and returns the response body.
// The request must have no body so it can be re-sent.
func (c *Client) Do(ctx context.Context, req *http.Request) ([]byte, error) {
	var body []byte
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		b, err := c.once(req.Clone(ctx))
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

// DoJSON executes req and decodes the JSON response into result.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, result any) error {
	body, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return errors.ExternalError("failed to decode response").
			WithCause(err).
			WithRetry(errors.RetryNever).
			WithContext("url", redact(req.URL)).
			Build()
	}
	return nil
}

func (c *Client) once(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var ue *url.Error
		if stdErrors.As(err, &ue) {
			ue.URL = redact(req.URL)
		}
		return nil, errors.NetworkError("request failed").
			WithCause(err).
			WithContext("url", redact(req.URL)).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		limited, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, StatusError(resp.StatusCode, req.URL, string(limited))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.NetworkError("failed to read response").
			WithCause(err).
			WithContext("url", redact(req.URL)).
			Build()
	}
	return body, nil
}

// StatusError classifies a non-success HTTP status. 401 and 403 are auth
// errors, 404 is not-found, 429 and 5xx are retryable external errors, and
// anything else is a permanent external error.
func StatusError(code int, u *url.URL, body string) error {
	msg := fmt.Sprintf("unexpected status %d %s", code, http.StatusText(code))

	var b *errors.ErrorBuilder
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		b = errors.AuthError(msg)
	case code == http.StatusNotFound:
		b = errors.NotFoundError(msg)
	case code == http.StatusTooManyRequests:
		b = errors.ExternalError(msg).RateLimit()
	case code >= 500:
		b = errors.ExternalError(msg)
	default:
		b = errors.ExternalError(msg).WithRetry(errors.RetryNever)
	}

	b = b.WithContext("status", code)
	if u != nil {
		b = b.WithContext("url", redact(u))
	}
	if body = strings.TrimSpace(strings.ReplaceAll(body, "\n", " ")); body != "" {
		b = b.WithContext("response", body)
	}
	return b.Build()
}

// StatusCode returns the HTTP status recorded on err, or 0.
func StatusCode(err error) int {
	ce, ok := errors.AsClassified(err)
	if !ok {
		return 0
	}
	v, ok := ce.Context().Get("status")
	if !ok {
		return 0
	}
	code, _ := v.(int)
	return code
}

// redact drops query parameters, which may carry API keys.
func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	clean := *u
	clean.RawQuery = ""
	return clean.String()
}
