package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/horizon-client/internal/relay"
	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// tailTarget follows one collection from cursor, writing to out.
type tailTarget func(ctx context.Context, client horizon.Client, cursor horizon.Cursor, out *tailWriter) error

var tailTargets = map[horizon.Collection]tailTarget{
	horizon.CollectionLedgers: func(ctx context.Context, client horizon.Client, cursor horizon.Cursor, out *tailWriter) error {
		return tailCollection(ctx, client, ledgersCollection(), cursor, out)
	},
	horizon.CollectionTransactions: func(ctx context.Context, client horizon.Client, cursor horizon.Cursor, out *tailWriter) error {
		return tailCollection(ctx, client, transactionsCollection(), cursor, out)
	},
	horizon.CollectionOperations: func(ctx context.Context, client horizon.Client, cursor horizon.Cursor, out *tailWriter) error {
		return tailCollection(ctx, client, operationsCollection(), cursor, out)
	},
	horizon.CollectionPayments: func(ctx context.Context, client horizon.Client, cursor horizon.Cursor, out *tailWriter) error {
		return tailCollection(ctx, client, paymentsCollection(), cursor, out)
	},
	horizon.CollectionEffects: func(ctx context.Context, client horizon.Client, cursor horizon.Cursor, out *tailWriter) error {
		return tailCollection(ctx, client, effectsCollection(), cursor, out)
	},
	horizon.CollectionTrades: func(ctx context.Context, client horizon.Client, cursor horizon.Cursor, out *tailWriter) error {
		return tailCollection(ctx, client, tradesCollection(), cursor, out)
	},
}

func tailCollectionNames() string {
	names := make([]string, 0, len(tailTargets))
	for name := range tailTargets {
		names = append(names, string(name))
	}

	sort.Strings(names)

	return strings.Join(names, ", ")
}

// parseTailCollections resolves and de-duplicates collection names.
func parseTailCollections(args []string) ([]horizon.Collection, error) {
	seen := make(map[horizon.Collection]bool, len(args))
	collections := make([]horizon.Collection, 0, len(args))

	for _, arg := range args {
		collection := horizon.Collection(strings.ToLower(strings.TrimSpace(arg)))
		if _, ok := tailTargets[collection]; !ok {
			return nil, fmt.Errorf("%w: %q (one of %s)", ErrUnknownCollection, arg, tailCollectionNames())
		}

		if seen[collection] {
			continue
		}

		seen[collection] = true
		collections = append(collections, collection)
	}

	return collections, nil
}

// parseTailCursors picks the start cursor of every collection. Paging
// tokens belong to one collection, so value is either "now" (or empty) for
// all of them or comma-separated collection=cursor pairs. Collections
// without a pair start now.
func parseTailCursors(value string, collections []horizon.Collection) (map[horizon.Collection]horizon.Cursor, error) {
	cursors := make(map[horizon.Collection]horizon.Cursor, len(collections))
	for _, collection := range collections {
		cursors[collection] = horizon.CursorNow
	}

	value = strings.TrimSpace(value)
	if value == "" || value == string(horizon.CursorNow) {
		return cursors, nil
	}

	for _, pair := range strings.Split(value, ",") {
		name, cursor, ok := strings.Cut(strings.TrimSpace(pair), "=")
		cursor = strings.TrimSpace(cursor)

		if !ok || cursor == "" {
			return nil, fmt.Errorf("%w: %q (use now or collection=cursor)", ErrInvalidTailCursor, pair)
		}

		collection := horizon.Collection(strings.ToLower(strings.TrimSpace(name)))
		if _, followed := cursors[collection]; !followed {
			return nil, fmt.Errorf("%w: %q is not followed", ErrInvalidTailCursor, name)
		}

		cursors[collection] = horizon.Cursor(cursor)
	}

	return cursors, nil
}

// tailRecord is one line of JSON or YAML tail output.
type tailRecord struct {
	Collection horizon.Collection `json:"collection"       yaml:"collection"`
	Cursor     horizon.Cursor     `json:"cursor,omitempty" yaml:"cursor,omitempty"`
	Record     any                `json:"record"           yaml:"record"`
}

// tailWriter serializes output of concurrently followed collections.
type tailWriter struct {
	mu     sync.Mutex
	w      io.Writer
	format string
	quiet  bool
	sink   *relay.Relay
}

func (t *tailWriter) write(collection horizon.Collection, cursor horizon.Cursor, line string, record any) error {
	if t.sink != nil {
		err := t.sink.Publish(collection, cursor, record)
		if err != nil {
			return err //nolint:wrapcheck // already names the subject
		}
	}

	if t.quiet {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.format {
	case streamFormatRows:
		_, err := fmt.Fprintf(t.w, "%-13s %s\n", collection, line)
		if err != nil {
			return fmt.Errorf("writing record: %w", err)
		}

		return nil
	case OutputFormatYAML:
		_, err := fmt.Fprintln(t.w, "---")
		if err != nil {
			return fmt.Errorf("writing record: %w", err)
		}

		return StandardYAMLRenderer(t.w, tailRecord{Collection: collection, Cursor: cursor, Record: record})
	default:
		data, err := json.Marshal(tailRecord{Collection: collection, Cursor: cursor, Record: record})
		if err != nil {
			return fmt.Errorf("encoding record to JSON: %w", err)
		}

		_, err = fmt.Fprintln(t.w, string(data))
		if err != nil {
			return fmt.Errorf("writing record: %w", err)
		}

		return nil
	}
}

func tailCollection[T any](ctx context.Context, client horizon.Client, c *collectionCommand[T], cursor horizon.Cursor, out *tailWriter) error {
	stream, err := c.client(client).Stream(ctx, c.all().WithCursor(cursor))
	if err != nil {
		return fmt.Errorf("failed to stream %s: %w", c.noun, err)
	}

	if out.quiet && out.sink != nil {
		return relay.Forward(ctx, out.sink, c.collection, stream)
	}

	stop := context.AfterFunc(ctx, func() { _ = stream.Close() })
	defer stop()

	for record, err := range stream.All() {
		if err != nil {
			if errors.Is(err, horizon.ErrStreamClosed) {
				return nil
			}

			return fmt.Errorf("streaming %s: %w", c.collection, err)
		}

		err = out.write(c.collection, stream.LastCursor(), c.table.line(record), record)
		if err != nil {
			return err
		}
	}

	return nil
}

// NewTailCommand creates the tail command.
func NewTailCommand() *cobra.Command {
	var (
		flags streamFlags
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "tail COLLECTION...",
		Short: "Follow several collections at once",
		Long: `Follow several collections at once, interleaving their records.

Supported collections: ` + tailCollectionNames() + `.

With --publish every record is also published to NATS on
"<subject-prefix>.<collection>". Add --quiet to only publish.`,
		Example: `  horizon tail ledgers payments
  horizon tail trades effects --cursor now -o json
  horizon tail ledgers payments --cursor ledgers=52000000,payments=223338723934998529
  horizon tail payments --publish --nats-url nats://127.0.0.1:4222 --quiet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collections, err := parseTailCollections(args)
			if err != nil {
				return err
			}

			cursors, err := parseTailCursors(flags.cursor, collections)
			if err != nil {
				return err
			}

			if quiet && !flags.publish {
				quiet = false
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			sink, closeSink, err := newStreamSink(&flags)
			if err != nil {
				return err
			}
			defer closeSink()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := &tailWriter{
				w:      cmd.OutOrStdout(),
				format: streamFormat(outputFormat(), isTerminal(cmd.OutOrStdout())),
				quiet:  quiet,
				sink:   sink,
			}

			return tailAll(ctx, client, collections, cursors, out)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "with --publish, do not write records to standard output")
	_ = cmd.Flags().MarkHidden("count")
	cmd.Flags().Lookup("cursor").Usage = "now, or comma-separated collection=cursor pairs (others start now)"

	return cmd
}

// tailAll follows every collection concurrently. The first failure cancels
// the others.
func tailAll(ctx context.Context, client horizon.Client, collections []horizon.Collection, cursors map[horizon.Collection]horizon.Cursor, out *tailWriter) error {
	p := pool.New().
		WithMaxGoroutines(len(collections)).
		WithErrors().
		WithContext(ctx).
		WithCancelOnError()

	for _, collection := range collections {
		target := tailTargets[collection]
		cursor := cursors[collection]

		p.Go(func(ctx context.Context) error {
			return target(ctx, client, cursor, out)
		})
	}

	err := p.Wait()
	if err != nil {
		return fmt.Errorf("tail: %w", err)
	}

	return nil
}
