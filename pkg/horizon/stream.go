package horizon

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/fivetwenty-io/horizon-client/internal/constants"
)

// StreamStatus is the state of an EventStream.
type StreamStatus int

const (
	StateConnecting StreamStatus = iota
	StateStreaming
	StateBackoff
	StateTerminated
)

func (s StreamStatus) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateBackoff:
		return "backoff"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// StreamState is the bookkeeping of one EventStream.
type StreamState struct {
	Status       StreamStatus
	LastCursor   Cursor
	RetryCount   int
	BackoffUntil time.Time
}

// StreamWarning reports a frame that was skipped because it could not be
// decoded.
type StreamWarning struct {
	Frame Frame
	Err   error
}

// StreamOption configures one stream.
type StreamOption func(*streamOptions)

type streamOptions struct {
	config    StreamConfig
	onWarning func(StreamWarning)
	cursor    Cursor
}

// WithBackoff overrides the reconnect delays of one stream.
func WithBackoff(initial, maxDelay time.Duration) StreamOption {
	return func(o *streamOptions) {
		o.config.InitialBackoff = initial
		o.config.MaxBackoff = maxDelay
	}
}

// WithStableAfter overrides how long a connection must last before the
// reconnect delay resets.
func WithStableAfter(d time.Duration) StreamOption {
	return func(o *streamOptions) {
		o.config.StableAfter = d
	}
}

// WithWarningHandler receives frames that were skipped.
func WithWarningHandler(fn func(StreamWarning)) StreamOption {
	return func(o *streamOptions) {
		o.onWarning = fn
	}
}

// WithResumeCursor starts the stream after cursor, overriding the
// request's own cursor parameter.
func WithResumeCursor(cursor Cursor) StreamOption {
	return func(o *streamOptions) {
		o.cursor = cursor
	}
}

// EventStream delivers resources pushed by the service. It connects lazily
// on the first call to Next and reconnects after every failure, resuming
// after the last delivered cursor. It ends only when Close is called or its
// context is cancelled.
//
// Next must be called from a single goroutine. Close may be called from any
// goroutine.
type EventStream[T any] struct {
	exec       Executor
	logger     Logger
	collection Collection
	target     *url.URL
	resumable  bool
	opts       streamOptions
	policy     *backoff.ExponentialBackOff

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	reader FrameReader
	closed bool

	state       StreamState
	connectedAt time.Time
	retryHint   time.Duration
	attempts    int
	lastErr     error

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// StreamCollection streams a collection. It fails with ErrNotStreamable
// before any network call when the collection has no push feed.
func StreamCollection[T any](ctx context.Context, exec Executor, req CollectionRequest[T], opts ...StreamOption) (*EventStream[T], error) {
	return newEventStream[T](ctx, exec, req, req.Cursor(), true, opts)
}

// StreamResource streams updates of a single resource such as an order book.
func StreamResource[T any](ctx context.Context, exec Executor, req ResourceRequest[T], opts ...StreamOption) (*EventStream[T], error) {
	return newEventStream[T](ctx, exec, req, "", false, opts)
}

func newEventStream[T any](ctx context.Context, exec Executor, req Request, cursor Cursor, resumable bool, opts []StreamOption) (*EventStream[T], error) {
	if !req.Streamable() {
		return nil, fmt.Errorf("streaming %s: %w", req.Collection(), ErrNotStreamable)
	}

	target, err := req.URL(exec.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("streaming %s: %w", req.Collection(), err)
	}

	options := streamOptions{config: exec.StreamConfig(), cursor: cursor}
	for _, opt := range opts {
		opt(&options)
	}

	options.config = options.config.WithDefaults()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = options.config.InitialBackoff
	policy.MaxInterval = options.config.MaxBackoff
	policy.Multiplier = constants.StreamBackoffMultiplier
	policy.RandomizationFactor = 0
	policy.Reset()

	streamCtx, cancel := context.WithCancel(ctx)

	return &EventStream[T]{
		exec:       exec,
		logger:     loggerOf(exec),
		collection: req.Collection(),
		target:     target,
		resumable:  resumable,
		opts:       options,
		policy:     policy,
		ctx:        streamCtx,
		cancel:     cancel,
		state:      StreamState{Status: StateConnecting, LastCursor: options.cursor},
		sleep:      sleepContext,
		now:        time.Now,
	}, nil
}

// Next blocks until the next resource arrives. After Close or context
// cancellation it returns an error wrapping ErrStreamClosed.
func (s *EventStream[T]) Next() (T, error) {
	var zero T

	for {
		if s.ctx.Err() != nil {
			s.terminate()
		}

		switch s.state.Status {
		case StateTerminated:
			return zero, s.closedError()
		case StateConnecting:
			s.connect()
		case StateBackoff:
			s.wait()
		case StateStreaming:
			item, ok := s.read()
			if ok {
				return item, nil
			}
		}
	}
}

// All adapts the stream to a range-over-func sequence. Breaking out of the
// loop closes the stream.
func (s *EventStream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer s.Close() //nolint:errcheck // nothing to report after the consumer left

		for {
			item, err := s.Next()
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

// Close terminates the stream and closes the open connection, if any.
func (s *EventStream[T]) Close() error {
	s.mu.Lock()
	s.closed = true
	reader := s.reader
	s.reader = nil
	s.mu.Unlock()

	s.cancel()

	if reader != nil {
		err := reader.Close()
		if err != nil {
			return fmt.Errorf("closing %s stream: %w", s.collection, err)
		}
	}

	return nil
}

// State returns a snapshot of the stream's bookkeeping.
func (s *EventStream[T]) State() StreamState {
	return s.state
}

// LastCursor returns the cursor of the last delivered resource.
func (s *EventStream[T]) LastCursor() Cursor {
	return s.state.LastCursor
}

// Attempts returns how many connections have been attempted.
func (s *EventStream[T]) Attempts() int {
	return s.attempts
}

// LastError returns the failure that caused the most recent reconnect.
func (s *EventStream[T]) LastError() error {
	return s.lastErr
}

func (s *EventStream[T]) closedError() error {
	if err := context.Cause(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrStreamClosed, err)
	}

	return ErrStreamClosed
}

func (s *EventStream[T]) connect() {
	header := http.Header{}
	header.Set("Accept", constants.ContentTypeEventStream)
	header.Set("Cache-Control", "no-cache")

	if s.state.LastCursor != "" {
		header.Set(constants.HeaderLastEventID, string(s.state.LastCursor))
	}

	s.attempts++

	reader, err := s.exec.Transport().OpenStream(s.ctx, &TransportRequest{
		Method: http.MethodGet,
		URL:    s.url(),
		Header: header,
	})
	if err != nil {
		s.disconnect(err)

		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = reader.Close()
		s.terminate()

		return
	}

	s.reader = reader
	s.mu.Unlock()

	s.connectedAt = s.now()
	s.state.Status = StateStreaming

	s.logger.Info("stream connected", map[string]interface{}{
		"collection": s.collection,
		"url":        s.url(),
		"attempt":    s.attempts,
		"cursor":     string(s.state.LastCursor),
	})
}

// url renders the connection URL. Collection streams carry the last
// delivered cursor as their cursor parameter so the query agrees with
// Last-Event-ID.
func (s *EventStream[T]) url() string {
	if !s.resumable || s.state.LastCursor == "" {
		return s.target.String()
	}

	target := *s.target
	query := target.Query()
	query.Set("cursor", string(s.state.LastCursor))
	target.RawQuery = query.Encode()

	return target.String()
}

func (s *EventStream[T]) read() (T, bool) {
	var zero T

	s.mu.Lock()
	reader := s.reader
	s.mu.Unlock()

	if reader == nil {
		s.terminate()

		return zero, false
	}

	frame, err := reader.Next()
	if err != nil {
		s.disconnect(err)

		return zero, false
	}

	if frame.Retry > 0 {
		s.retryHint = frame.Retry
	}

	if !isMessage(frame) {
		return zero, false
	}

	item, err := decodeFrame[T](frame.Data)
	if err != nil {
		s.warn(StreamWarning{Frame: frame, Err: err})

		return zero, false
	}

	cursor := Cursor(frame.ID)
	if cursor == "" {
		if pageable, ok := any(item).(Pageable); ok {
			cursor = Cursor(pageable.PagingToken())
		}
	}

	if cursor != "" {
		if !cursor.After(s.state.LastCursor) {
			s.logger.Debug("stream skipped replayed event", map[string]interface{}{
				"collection": s.collection,
				"cursor":     string(cursor),
				"last":       string(s.state.LastCursor),
			})

			return zero, false
		}

		s.state.LastCursor = cursor
	}

	return item, true
}

// isMessage filters out named control events and keep-alive payloads.
func isMessage(frame Frame) bool {
	if frame.Event != "" && frame.Event != "message" {
		return false
	}

	switch frame.Data {
	case "", `"hello"`, `"byebye"`:
		return false
	}

	return true
}

func (s *EventStream[T]) warn(warning StreamWarning) {
	s.logger.Warn("stream skipped malformed event", map[string]interface{}{
		"collection": s.collection,
		"id":         warning.Frame.ID,
		"error":      warning.Err.Error(),
	})

	if s.opts.onWarning != nil {
		s.opts.onWarning(warning)
	}
}

// disconnect moves the stream to Backoff after a failed connect or a drop.
func (s *EventStream[T]) disconnect(cause error) {
	s.closeReader()

	if s.ctx.Err() != nil {
		s.terminate()

		return
	}

	if !s.connectedAt.IsZero() && s.now().Sub(s.connectedAt) >= s.opts.config.StableAfter {
		s.policy.Reset()
		s.state.RetryCount = 0
	}

	s.connectedAt = time.Time{}

	delay := s.nextDelay(cause)

	s.lastErr = cause
	s.state.RetryCount++
	s.state.BackoffUntil = s.now().Add(delay)
	s.state.Status = StateBackoff

	s.logger.Warn("stream disconnected", map[string]interface{}{
		"collection": s.collection,
		"error":      cause.Error(),
		"retry":      s.state.RetryCount,
		"delay":      delay.String(),
	})
}

// nextDelay applies the exponential policy, raised to any server hint and
// capped at MaxBackoff.
func (s *EventStream[T]) nextDelay(cause error) time.Duration {
	delay := s.policy.NextBackOff()
	if delay == backoff.Stop {
		delay = s.opts.config.MaxBackoff
	}

	floor := s.retryHint

	if svcErr, ok := AsServiceError(cause); ok && svcErr.RetryAfter > floor {
		floor = svcErr.RetryAfter
	}

	if floor > s.opts.config.MaxBackoff {
		floor = s.opts.config.MaxBackoff
	}

	if floor > delay {
		delay = floor
	}

	return delay
}

func (s *EventStream[T]) wait() {
	err := s.sleep(s.ctx, s.state.BackoffUntil.Sub(s.now()))
	if err != nil {
		s.terminate()

		return
	}

	s.state.Status = StateConnecting
}

func (s *EventStream[T]) closeReader() {
	s.mu.Lock()
	reader := s.reader
	s.reader = nil
	s.mu.Unlock()

	if reader != nil {
		_ = reader.Close()
	}
}

func (s *EventStream[T]) terminate() {
	if s.state.Status == StateTerminated {
		return
	}

	s.closeReader()
	s.cancel()
	s.state.Status = StateTerminated

	s.logger.Debug("stream terminated", map[string]interface{}{
		"collection": s.collection,
		"cursor":     string(s.state.LastCursor),
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
