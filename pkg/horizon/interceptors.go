package horizon

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/horizon-client/internal/constants"
)

// RequestInterceptor is called before a request is sent. It may modify the
// request's headers.
type RequestInterceptor func(ctx context.Context, req *TransportRequest) error

// ResponseInterceptor is called after a response is received. For event
// streams the response carries the status and headers only.
type ResponseInterceptor func(ctx context.Context, req *TransportRequest, resp *RawResponse) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// Extend appends the interceptors of other, in order.
func (c *InterceptorChain) Extend(other *InterceptorChain) {
	if other == nil {
		return
	}

	c.requestInterceptors = append(c.requestInterceptors, other.requestInterceptors...)
	c.responseInterceptors = append(c.responseInterceptors, other.responseInterceptors...)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *TransportRequest) error {
	if req.Header == nil {
		req.Header = http.Header{}
	}

	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *TransportRequest, resp *RawResponse) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// Common Interceptors

// HeaderInterceptor adds headers the request does not already carry.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(_ context.Context, req *TransportRequest) error {
		for key, value := range headers {
			if req.Header.Get(key) == "" {
				req.Header.Set(key, value)
			}
		}

		return nil
	}
}

// ClientIdentityInterceptor sends User-Agent, X-Client-Name and
// X-Client-Version. Empty values are skipped.
func ClientIdentityInterceptor(userAgent, name, version string) RequestInterceptor {
	headers := map[string]string{}

	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}

	if name != "" {
		headers[constants.HeaderClientName] = name
		headers[constants.HeaderClientVersion] = version
	}

	return HeaderInterceptor(headers)
}

// RequestIDInterceptor tags each request with a fresh X-Request-ID unless
// the caller chose one.
func RequestIDInterceptor() RequestInterceptor {
	return func(_ context.Context, req *TransportRequest) error {
		if req.Header.Get(constants.HeaderRequestID) == "" {
			req.Header.Set(constants.HeaderRequestID, uuid.NewString())
		}

		return nil
	}
}

// RateLimitInterceptor waits for limiter before each request.
func RateLimitInterceptor(limiter *rate.Limiter) RequestInterceptor {
	return func(ctx context.Context, _ *TransportRequest) error {
		err := limiter.Wait(ctx)
		if err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}

		return nil
	}
}

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(_ context.Context, req *TransportRequest) error {
		logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        req.URL,
			"request_id": req.Header.Get(constants.HeaderRequestID),
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses with the server's rate-limit
// budget. Error statuses are logged as warnings.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(_ context.Context, req *TransportRequest, resp *RawResponse) error {
		fields := map[string]interface{}{
			"method":     req.Method,
			"url":        req.URL,
			"status":     resp.StatusCode,
			"request_id": req.Header.Get(constants.HeaderRequestID),
		}

		if limit := ParseRateLimit(resp.Header); limit.Known {
			fields["rate_limit_remaining"] = limit.Remaining
			fields["rate_limit_reset"] = limit.Reset
		}

		if resp.StatusCode >= http.StatusBadRequest {
			logger.Warn("HTTP Response", fields)
		} else {
			logger.Debug("HTTP Response", fields)
		}

		return nil
	}
}
