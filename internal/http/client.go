// Package http is the retrying HTTP transport behind the Horizon client. It
// sends one-shot requests through go-retryablehttp and opens server-sent
// event streams on the same connection pool.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/horizon-client/internal/constants"
	"github.com/fivetwenty-io/horizon-client/internal/sse"
	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// Static errors for err113 compliance.
var (
	ErrNotEventStream = errors.New("response is not an event stream")
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client is an HTTP client for one Horizon instance. It implements
// horizon.Transport.
type Client struct {
	baseURL        string
	httpClient     *retryablehttp.Client
	logger         Logger
	debug          bool
	userAgent      string
	clientName     string
	clientVersion  string
	headers        map[string]string
	limiter        *rate.Limiter
	timeout        time.Duration
	connectTimeout time.Duration
	interceptors   *horizon.InterceptorChain
	chain          *horizon.InterceptorChain
}

// Option configures the HTTP client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithClientIdentity sets the X-Client-Name and X-Client-Version headers.
func WithClientIdentity(name, version string) Option {
	return func(c *Client) {
		c.clientName = name
		c.clientVersion = version
	}
}

// WithHeaders adds headers sent on every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for key, value := range headers {
			c.headers[key] = value
		}
	}
}

// WithRetryConfig sets retry configuration for one-shot requests. Streams
// never retry at this level; they reconnect on their own schedule.
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = retryWaitMin
		c.httpClient.RetryWaitMax = retryWaitMax
	}
}

// WithRateLimit throttles outgoing requests to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil

			return
		}

		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithInterceptors runs chain after the client's own interceptors.
func WithInterceptors(chain *horizon.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithTimeout bounds each one-shot request. Streams are not affected.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithConnectTimeout bounds dialing and the TLS handshake.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.connectTimeout = timeout
	}
}

// NewClient creates a new HTTP client.
func NewClient(baseURL string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil // Disable default logging
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.ExtendedRetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		httpClient:     retryClient,
		userAgent:      "horizon-client-go/" + constants.DefaultClientVersion,
		clientName:     constants.DefaultClientName,
		clientVersion:  constants.DefaultClientVersion,
		headers:        map[string]string{},
		timeout:        constants.DefaultHTTPTimeout,
		connectTimeout: constants.DefaultConnectTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	// No client-wide timeout: it would cut long-lived streams. One-shot
	// requests are bounded per call instead.
	transport := cleanhttp.DefaultPooledTransport()
	transport.DialContext = (&net.Dialer{
		Timeout:   client.connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = client.connectTimeout
	retryClient.HTTPClient = &http.Client{Transport: transport}
	client.chain = client.buildChain()

	return client
}

// buildChain assembles the interceptors every request passes through.
// Request headers win over client-wide headers, which win over the
// identity headers.
func (c *Client) buildChain() *horizon.InterceptorChain {
	chain := horizon.NewInterceptorChain()

	if len(c.headers) > 0 {
		chain.AddRequestInterceptor(horizon.HeaderInterceptor(c.headers))
	}

	chain.AddRequestInterceptor(horizon.ClientIdentityInterceptor(c.userAgent, c.clientName, c.clientVersion))
	chain.AddRequestInterceptor(horizon.RequestIDInterceptor())

	if c.limiter != nil {
		chain.AddRequestInterceptor(horizon.RateLimitInterceptor(c.limiter))
	}

	if c.debug && c.logger != nil {
		chain.AddRequestInterceptor(horizon.LoggingInterceptor(c.logger))
		chain.AddResponseInterceptor(horizon.LoggingResponseInterceptor(c.logger))
	}

	chain.Extend(c.interceptors)

	return chain
}

// prepare copies req so interceptors never touch the caller's headers.
func (c *Client) prepare(ctx context.Context, req *horizon.TransportRequest) (*horizon.TransportRequest, error) {
	prepared := *req
	prepared.Header = req.Header.Clone()

	err := c.chain.ExecuteRequestInterceptors(ctx, &prepared)
	if err != nil {
		return nil, err //nolint:wrapcheck // already names the failing interceptor
	}

	return &prepared, nil
}

// Send implements horizon.Transport. Non-2xx statuses are returned as
// responses, not errors.
func (c *Client) Send(ctx context.Context, req *horizon.TransportRequest) (*horizon.RawResponse, error) {
	req, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body interface{}
	if len(req.Body) > 0 {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, c.resolve(req.URL), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	copyHeader(httpReq.Header, req.Header)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	raw := &horizon.RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}

	err = c.chain.ExecuteResponseInterceptors(ctx, req, raw)
	if err != nil {
		return nil, err //nolint:wrapcheck // already names the failing interceptor
	}

	return raw, nil
}

// OpenStream implements horizon.Transport. The connection is opened once,
// without retries, and read until the server or the caller closes it.
func (c *Client) OpenStream(ctx context.Context, req *horizon.TransportRequest) (horizon.FrameReader, error) {
	req, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolve(req.URL), nil)
	if err != nil {
		return nil, fmt.Errorf("creating stream request: %w", err)
	}

	copyHeader(httpReq.Header, req.Header)

	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", constants.ContentTypeEventStream)
	}

	resp, err := c.httpClient.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}

	raw := &horizon.RawResponse{StatusCode: resp.StatusCode, Header: resp.Header}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()

		raw.Body, _ = io.ReadAll(io.LimitReader(resp.Body, constants.ErrorBodyPreview))
		_ = c.chain.ExecuteResponseInterceptors(ctx, req, raw)

		return nil, horizon.DecodeError(raw)
	}

	err = c.chain.ExecuteResponseInterceptors(ctx, req, raw)
	if err != nil {
		_ = resp.Body.Close()

		return nil, err //nolint:wrapcheck // already names the failing interceptor
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, constants.ContentTypeEventStream) {
		_ = resp.Body.Close()

		return nil, fmt.Errorf("%w: %s", ErrNotEventStream, contentType)
	}

	return newFrameReader(resp.Body), nil
}

// resolve makes a path relative to the base URL absolute. Absolute URLs
// are kept.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// copyHeader replaces dst's values with src's, key by key.
func copyHeader(dst, src http.Header) {
	for key, values := range src {
		dst.Del(key)

		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

// frameReader adapts the SSE parser to horizon.FrameReader.
type frameReader struct {
	body   io.ReadCloser
	parser *sse.Parser
}

func newFrameReader(body io.ReadCloser) *frameReader {
	return &frameReader{body: body, parser: sse.NewParser(body)}
}

func (r *frameReader) Next() (horizon.Frame, error) {
	event, err := r.parser.Next()
	if err != nil {
		return horizon.Frame{}, err //nolint:wrapcheck // io.EOF must reach the caller unwrapped
	}

	return horizon.Frame{
		ID:    event.ID,
		Event: event.Event,
		Data:  event.Data,
		Retry: event.Retry,
	}, nil
}

func (r *frameReader) Close() error {
	return r.body.Close()
}

var _ horizon.Transport = (*Client)(nil)

