// Package remote implements service.Service against the to-do backend's HTTP API.
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
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"

	"todoctl/internal/logging"
	"todoctl/internal/service"
)

const (
	// RequestIDHeader carries a per-call correlation id.
	RequestIDHeader = "X-Request-ID"

	contentTypeJSON = "application/json"
)

// RawResult is a successful response before decoding.
type RawResult struct {
	Status    int
	Header    http.Header
	Body      []byte
	NoContent bool
}

// Decode unmarshals the JSON body into v. A 204 result decodes to nothing.
func (r RawResult) Decode(v any) error {
	if r.NoContent || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Text returns the body as trimmed text.
func (r RawResult) Text() string {
	return strings.TrimSpace(string(r.Body))
}

// Client is the thin HTTP wrapper over the backend.
// It attaches the session cookie and JSON headers to every call and
// translates failures into service.NetworkError and service.HTTPError.
type Client struct {
	baseURL string
	http    *http.Client
	probe   *http.Client
	jar     *sessionJar
	logger  *log.Logger
	newID   func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses hc's transport and timeout. Its Jar is replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		clone := *hc
		c.http = &clone
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSessionToken seeds the jar with a persisted session token.
func WithSessionToken(token string) Option {
	return func(c *Client) { c.SetSessionToken(token) }
}

// WithRequestIDs overrides the request id generator (for testing).
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) { c.newID = fn }
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", baseURL)
	}

	jar, err := newSessionJar()
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		jar:     jar,
		logger:  logging.Discard(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Jar = c.jar
	c.probe = &http.Client{Transport: c.http.Transport, Timeout: c.http.Timeout}
	return c, nil
}

// SetSessionToken replaces the session token sent with later calls.
func (c *Client) SetSessionToken(token string) {
	c.jar.SetToken(token)
}

// SessionToken returns the current session token and its expiry, if known.
func (c *Client) SessionToken() (string, time.Time) {
	return c.jar.Token()
}

// Call performs one request. body, when non-nil, is sent as JSON.
// There are no retries: a failed call surfaces immediately.
func (c *Client) Call(ctx context.Context, endpoint, method string, body any) (RawResult, error) {
	req, err := c.newRequest(ctx, endpoint, method, body)
	if err != nil {
		return RawResult{}, err
	}
	return c.do(c.http, req, endpoint)
}

func (c *Client) newRequest(ctx context.Context, endpoint, method string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(RequestIDHeader, c.newID())
	return req, nil
}

func (c *Client) do(hc *http.Client, req *http.Request, endpoint string) (RawResult, error) {
	start := time.Now()
	requestID := req.Header.Get(RequestIDHeader)
	op := req.Method + " " + endpoint

	res, err := hc.Do(req)
	if err != nil {
		c.logger.Debug("remote call failed", "op", op, "request_id", requestID, "err", err)
		return RawResult{}, &service.NetworkError{Op: op, Err: unwrapURLError(err)}
	}
	defer res.Body.Close()

	c.logger.Debug("remote call",
		"op", op,
		"status", res.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if err := googleapi.CheckResponse(res); err != nil {
		return RawResult{}, translateError(res, err)
	}

	if res.StatusCode == http.StatusNoContent {
		return RawResult{Status: res.StatusCode, Header: res.Header, NoContent: true}, nil
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return RawResult{}, &service.NetworkError{Op: op, Err: err}
	}
	return RawResult{Status: res.StatusCode, Header: res.Header, Body: data}, nil
}

// translateError converts the googleapi error for a non-2xx response.
func translateError(res *http.Response, err error) error {
	httpErr := &service.HTTPError{
		Status:     res.StatusCode,
		StatusText: statusText(res),
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		httpErr.Status = gErr.Code
		httpErr.Body = strings.TrimSpace(gErr.Body)
	}
	return httpErr
}

// statusText extracts "Not Found" from "404 Not Found".
func statusText(res *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
	if text == "" {
		text = http.StatusText(res.StatusCode)
	}
	return text
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

var _ service.Service = (*Client)(nil)
