package horizon

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://horizon.example/"

type testExecutor struct {
	transport Transport
	base      *url.URL
	logger    *recordingLogger
	stream    StreamConfig
}

func newTestExecutor(t *testing.T, transport Transport) *testExecutor {
	t.Helper()

	base, err := url.Parse(testBaseURL)
	require.NoError(t, err)

	return &testExecutor{transport: transport, base: base, logger: &recordingLogger{}}
}

func (e *testExecutor) Transport() Transport       { return e.transport }
func (e *testExecutor) BaseURL() *url.URL          { return e.base }
func (e *testExecutor) Logger() Logger             { return e.logger }
func (e *testExecutor) StreamConfig() StreamConfig { return e.stream }

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.add("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.add("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.add("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.add("error", msg, fields) }

func (l *recordingLogger) count(level, msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0

	for _, entry := range l.entries {
		if entry.level == level && entry.msg == msg {
			n++
		}
	}

	return n
}

// handlerTransport serves one-shot requests from an http.Handler.
type handlerTransport struct {
	handler http.Handler

	mu       sync.Mutex
	requests []*http.Request
}

func (h *handlerTransport) Send(ctx context.Context, req *TransportRequest) (*RawResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}

	httpReq.Header = req.Header.Clone()

	h.mu.Lock()
	h.requests = append(h.requests, httpReq)
	h.mu.Unlock()

	recorder := httptest.NewRecorder()
	h.handler.ServeHTTP(recorder, httpReq)

	return &RawResponse{
		StatusCode: recorder.Code,
		Header:     recorder.Header(),
		Body:       recorder.Body.Bytes(),
	}, nil
}

func (h *handlerTransport) OpenStream(context.Context, *TransportRequest) (FrameReader, error) {
	return nil, ErrNotStreamable
}

func (h *handlerTransport) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.requests)
}

// scriptedConn is one scripted stream connection: either a connect error or
// a list of frames followed by end. A nil end blocks until the reader is
// closed.
type scriptedConn struct {
	err    error
	frames []Frame
	end    error
}

type scriptedTransport struct {
	mu       sync.Mutex
	conns    []scriptedConn
	requests []*TransportRequest
	readers  []*scriptedReader
}

func (s *scriptedTransport) Send(context.Context, *TransportRequest) (*RawResponse, error) {
	return nil, io.ErrUnexpectedEOF
}

func (s *scriptedTransport) OpenStream(ctx context.Context, req *TransportRequest) (FrameReader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)

	conn := scriptedConn{}
	if len(s.conns) > 0 {
		conn = s.conns[0]
		s.conns = s.conns[1:]
	}

	if conn.err != nil {
		return nil, conn.err
	}

	reader := &scriptedReader{ctx: ctx, frames: conn.frames, end: conn.end, done: make(chan struct{})}
	s.readers = append(s.readers, reader)

	return reader, nil
}

func (s *scriptedTransport) streamRequests() []*TransportRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*TransportRequest(nil), s.requests...)
}

type scriptedReader struct {
	ctx    context.Context
	frames []Frame
	end    error

	once sync.Once
	done chan struct{}
}

func (r *scriptedReader) Next() (Frame, error) {
	if len(r.frames) > 0 {
		frame := r.frames[0]
		r.frames = r.frames[1:]

		return frame, nil
	}

	if r.end != nil {
		return Frame{}, r.end
	}

	select {
	case <-r.done:
	case <-r.ctx.Done():
	}

	return Frame{}, io.EOF
}

func (r *scriptedReader) Close() error {
	r.once.Do(func() { close(r.done) })

	return nil
}

func (r *scriptedReader) isClosed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
