// Package relay republishes streamed Horizon resources to NATS subjects.
package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// DefaultSubjectPrefix is prepended to the collection name.
const DefaultSubjectPrefix = "horizon"

// Static errors for err113 compliance.
var (
	ErrPublisherRequired = errors.New("publisher is required")
	ErrNATSURLRequired   = errors.New("NATS URL is required")
)

// Publisher is the subset of *nats.Conn the relay needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Config configures a NATS connection for the relay.
type Config struct {
	// URL of the NATS server (e.g., "nats://127.0.0.1:4222").
	URL string
	// Name is reported to the server as the connection name.
	Name string
	// SubjectPrefix defaults to DefaultSubjectPrefix.
	SubjectPrefix string
	// Timeout bounds the initial connect.
	Timeout time.Duration
}

// Envelope is the message body published for every resource.
type Envelope struct {
	Collection horizon.Collection `json:"collection"`
	Cursor     horizon.Cursor     `json:"cursor,omitempty"`
	ReceivedAt time.Time          `json:"received_at"`
	Record     json.RawMessage    `json:"record"`
}

// Relay publishes resources to "<prefix>.<collection>".
type Relay struct {
	publisher Publisher
	prefix    string
	logger    horizon.Logger
	now       func() time.Time

	mu        sync.Mutex
	published map[horizon.Collection]int
}

// Connect dials NATS with the relay's connection options.
func Connect(config Config) (*nats.Conn, error) {
	if config.URL == "" {
		return nil, ErrNATSURLRequired
	}

	opts := []nats.Option{nats.MaxReconnects(-1)}
	if config.Name != "" {
		opts = append(opts, nats.Name(config.Name))
	}

	if config.Timeout > 0 {
		opts = append(opts, nats.Timeout(config.Timeout))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return conn, nil
}

// New creates a relay. A nil logger discards output.
func New(publisher Publisher, prefix string, logger horizon.Logger) (*Relay, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}

	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	if logger == nil {
		logger = horizon.NopLogger{}
	}

	return &Relay{
		publisher: publisher,
		prefix:    prefix,
		logger:    logger,
		now:       time.Now,
		published: make(map[horizon.Collection]int),
	}, nil
}

// Subject returns the subject resources of collection are published on.
func (r *Relay) Subject(collection horizon.Collection) string {
	return r.prefix + "." + string(collection)
}

// Publish encodes record in an Envelope and publishes it.
func (r *Relay) Publish(collection horizon.Collection, cursor horizon.Cursor, record interface{}) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", collection, err)
	}

	data, err := json.Marshal(Envelope{
		Collection: collection,
		Cursor:     cursor,
		ReceivedAt: r.now().UTC(),
		Record:     body,
	})
	if err != nil {
		return fmt.Errorf("encoding %s envelope: %w", collection, err)
	}

	subject := r.Subject(collection)

	err = r.publisher.Publish(subject, data)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}

	r.mu.Lock()
	r.published[collection]++
	r.mu.Unlock()

	return nil
}

// Published returns how many records were published for collection.
func (r *Relay) Published(collection horizon.Collection) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.published[collection]
}

// Forward publishes every resource delivered by stream until the stream is
// closed or ctx is done. The stream is closed on return. A clean shutdown
// returns nil.
func Forward[T any](ctx context.Context, r *Relay, collection horizon.Collection, stream *horizon.EventStream[T]) error {
	stop := context.AfterFunc(ctx, func() { _ = stream.Close() })
	defer stop()

	for item, err := range stream.All() {
		if err != nil {
			if errors.Is(err, horizon.ErrStreamClosed) {
				return nil
			}

			return fmt.Errorf("forwarding %s: %w", collection, err)
		}

		err = r.Publish(collection, stream.LastCursor(), item)
		if err != nil {
			r.logger.Warn("relay publish failed", map[string]interface{}{
				"collection": string(collection),
				"error":      err.Error(),
			})

			return err
		}
	}

	return nil
}
