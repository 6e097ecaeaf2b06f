package horizon

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// TransportRequest is a fully rendered request handed to a Transport.
type TransportRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// RawResponse is what a Transport returns for a one-shot request. Non-2xx
// statuses are not errors at this level.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Frame is one server-sent event.
type Frame struct {
	ID    string
	Event string
	Data  string
	Retry time.Duration
}

// FrameReader yields frames from one open stream connection. Next returns
// io.EOF when the server closes the connection.
type FrameReader interface {
	Next() (Frame, error)
	Close() error
}

// Transport sends requests and opens event streams. Implementations must be
// safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, req *TransportRequest) (*RawResponse, error)
	// OpenStream returns an error when the connection cannot be opened or the
	// server answers with a non-2xx status.
	OpenStream(ctx context.Context, req *TransportRequest) (FrameReader, error)
}

// Executor is what the generic operations need from a client.
type Executor interface {
	Transport() Transport
	BaseURL() *url.URL
	Logger() Logger
	StreamConfig() StreamConfig
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}

func loggerOf(exec Executor) Logger {
	if logger := exec.Logger(); logger != nil {
		return logger
	}

	return NopLogger{}
}
