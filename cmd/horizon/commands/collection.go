package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/horizon-client/internal/constants"
	"github.com/fivetwenty-io/horizon-client/internal/relay"
	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// scope narrows a collection to the records of one parent resource, e.g.
// --account for the payments of an account.
type scope[T any] struct {
	flag  string
	usage string
	build func(value string) (horizon.CollectionRequest[T], error)
}

// collectionCommand describes one collection for the generic list, stream
// and get subcommands.
type collectionCommand[T any] struct {
	collection horizon.Collection
	noun       string
	client     func(horizon.Client) horizon.CollectionClient[T]
	all        func() horizon.CollectionRequest[T]
	scopes     []scope[T]
	table      tableSpec[T]
	// failed adds --include-failed to list and stream.
	failed bool
}

func byID[T any](build func(string) horizon.CollectionRequest[T]) func(string) (horizon.CollectionRequest[T], error) {
	return func(value string) (horizon.CollectionRequest[T], error) {
		return build(value), nil
	}
}

func bySequence[T any](build func(uint32) horizon.CollectionRequest[T]) func(string) (horizon.CollectionRequest[T], error) {
	return func(value string) (horizon.CollectionRequest[T], error) {
		sequence, err := parseSequence(value)
		if err != nil {
			return horizon.CollectionRequest[T]{}, err
		}

		return build(sequence), nil
	}
}

func byAsset[T any](build func(horizon.Asset) horizon.CollectionRequest[T]) func(string) (horizon.CollectionRequest[T], error) {
	return func(value string) (horizon.CollectionRequest[T], error) {
		asset, err := horizon.ParseAsset(value)
		if err != nil {
			return horizon.CollectionRequest[T]{}, fmt.Errorf("parsing asset: %w", err)
		}

		return build(asset), nil
	}
}

// scopeValues holds the flag values of a command's scopes.
type scopeValues map[string]*string

func (c *collectionCommand[T]) registerScopes(cmd *cobra.Command) scopeValues {
	values := make(scopeValues, len(c.scopes))

	for _, s := range c.scopes {
		value := new(string)
		cmd.Flags().StringVar(value, s.flag, "", s.usage)
		values[s.flag] = value
	}

	return values
}

// request resolves the scope flags into a request. At most one scope may be
// set; with none the whole collection is addressed.
func (c *collectionCommand[T]) request(values scopeValues, includeFailed bool) (horizon.CollectionRequest[T], error) {
	var (
		req   horizon.CollectionRequest[T]
		found string
	)

	for _, s := range c.scopes {
		value := *values[s.flag]
		if value == "" {
			continue
		}

		if found != "" {
			return req, fmt.Errorf("%w: --%s and --%s", ErrConflictingScopes, found, s.flag)
		}

		scoped, err := s.build(value)
		if err != nil {
			return req, err
		}

		req, found = scoped, s.flag
	}

	if found == "" {
		req = c.all()
	}

	if includeFailed {
		req = req.WithIncludeFailed(true)
	}

	return req, nil
}

func (c *collectionCommand[T]) newListCommand() *cobra.Command {
	var (
		flags         listFlags
		includeFailed bool
		values        scopeValues
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + c.noun,
		Long:  "List " + c.noun + " one page at a time, or every page with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := c.request(values, includeFailed)
			if err != nil {
				return err
			}

			req, err = applyListFlags(req, &flags)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			return c.list(cmd.Context(), cmd.OutOrStdout(), c.client(client), req, &flags)
		},
	}

	flags.register(cmd)
	values = c.registerScopes(cmd)

	if c.failed {
		cmd.Flags().BoolVar(&includeFailed, "include-failed", false, "include failed transactions")
	}

	return cmd
}

func (c *collectionCommand[T]) list(ctx context.Context, w io.Writer, client horizon.CollectionClient[T], req horizon.CollectionRequest[T], flags *listFlags) error {
	var (
		records   []T
		rateLimit horizon.RateLimit
		more      bool
	)

	if flags.all {
		paginator := client.Paginate(req)

		collected, err := horizon.CollectPages(ctx, paginator, &horizon.PaginationOptions{
			MaxPages:        flags.maxPages,
			StopOnEmptyPage: true,
		})
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", c.noun, err)
		}

		records = collected

		if current := paginator.Current(); current != nil {
			rateLimit = current.RateLimit
		}
	} else {
		page, err := client.List(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", c.noun, err)
		}

		records = page.Records
		rateLimit = page.RateLimit
		more = page.Len() == req.Limit()
	}

	renderer := &OutputRenderer[[]T]{
		RenderTable: func(w io.Writer, records []T) error {
			if len(records) == 0 {
				_, _ = fmt.Fprintf(w, "No %s found\n", c.noun)

				return nil
			}

			err := c.table.renderRows(w, records)
			if err != nil {
				return err
			}

			if more {
				_, _ = fmt.Fprintln(w, "\nMore records may be available. Use --all or --cursor to continue.")
			}

			rateLimitFooter(w, rateLimit)

			return nil
		},
	}

	return renderer.Render(w, records, outputFormat())
}

func newGetCommand[T any](noun, arg string, table tableSpec[T], get func(ctx context.Context, client horizon.Client, id string) (*horizon.Response[T], error)) *cobra.Command {
	return &cobra.Command{
		Use:   "get " + arg,
		Short: "Get " + noun + " details",
		Long:  "Display detailed information about a specific " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := get(cmd.Context(), client, args[0])
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", noun, err)
			}

			renderer := &OutputRenderer[T]{RenderTable: table.renderDetail}

			return renderer.Render(cmd.OutOrStdout(), resp.Data, outputFormat())
		},
	}
}

// streamFlags are the flags shared by every stream command.
type streamFlags struct {
	cursor        string
	count         int
	publish       bool
	natsURL       string
	subjectPrefix string
}

func (f *streamFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.cursor, "cursor", string(horizon.CursorNow), "start after this paging token (\"now\" for new records only)")
	cmd.Flags().IntVar(&f.count, "count", 0, "stop after this many records (0 streams until interrupted)")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "also publish records to NATS")
	cmd.Flags().StringVar(&f.natsURL, "nats-url", "", "NATS server used with --publish (default from config nats_url)")
	cmd.Flags().StringVar(&f.subjectPrefix, "subject-prefix", "", "NATS subject prefix used with --publish (default \"horizon\")")
}

func (c *collectionCommand[T]) newStreamCommand() *cobra.Command {
	var (
		flags         streamFlags
		includeFailed bool
		values        scopeValues
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream " + c.noun,
		Long:  "Follow " + c.noun + " as they are ingested. Reconnects resume after the last record received.",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := c.request(values, includeFailed)
			if err != nil {
				return err
			}

			if flags.cursor != "" {
				req = req.WithCursor(horizon.Cursor(flags.cursor))
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			stream, err := c.client(client).Stream(ctx, req, horizon.WithWarningHandler(warnOnSkippedFrame(cmd.ErrOrStderr())))
			if err != nil {
				return fmt.Errorf("failed to stream %s: %w", c.noun, err)
			}

			sink, closeSink, err := newStreamSink(&flags)
			if err != nil {
				_ = stream.Close()

				return err
			}
			defer closeSink()

			return writeStream(ctx, cmd.OutOrStdout(), stream, c.collection, c.table, flags.count, sink)
		},
	}

	flags.register(cmd)
	values = c.registerScopes(cmd)

	if c.failed {
		cmd.Flags().BoolVar(&includeFailed, "include-failed", false, "include failed transactions")
	}

	return cmd
}

func warnOnSkippedFrame(w io.Writer) func(horizon.StreamWarning) {
	return func(warning horizon.StreamWarning) {
		_, _ = fmt.Fprintf(w, "warning: skipped event %s: %v\n", orNotAvailable(warning.Frame.ID), warning.Err)
	}
}

// newStreamSink connects to NATS when --publish is set. Unset flags fall
// back to the nats_url and subject_prefix configuration keys.
func newStreamSink(flags *streamFlags) (*relay.Relay, func(), error) {
	if !flags.publish {
		return nil, func() {}, nil
	}

	config := loadConfig()

	natsURL := flags.natsURL
	if natsURL == "" {
		natsURL = config.NATSURL
	}

	prefix := flags.subjectPrefix
	if prefix == "" {
		prefix = config.SubjectPrefix
	}

	conn, err := relay.Connect(relay.Config{URL: natsURL, Name: "horizon-cli", Timeout: constants.DefaultConnectTimeout})
	if err != nil {
		return nil, nil, err
	}

	sink, err := relay.New(conn, prefix, nil)
	if err != nil {
		conn.Close()

		return nil, nil, err
	}

	return sink, func() {
		_ = conn.Drain()
	}, nil
}

// writeStream writes records from stream until count records were written,
// ctx is done or the stream fails. An interrupted stream is not an error.
func writeStream[T any](ctx context.Context, w io.Writer, stream *horizon.EventStream[T], collection horizon.Collection, table tableSpec[T], count int, sink *relay.Relay) error {
	stop := context.AfterFunc(ctx, func() { _ = stream.Close() })
	defer stop()

	defer stream.Close() //nolint:errcheck // nothing to report once writing is done

	format := streamFormat(outputFormat(), isTerminal(w))
	written := 0

	for {
		record, err := stream.Next()
		if err != nil {
			if errors.Is(err, horizon.ErrStreamClosed) {
				return nil
			}

			return fmt.Errorf("streaming %s: %w", collection, err)
		}

		err = writeStreamRecord(w, format, table, record)
		if err != nil {
			return err
		}

		if sink != nil {
			err = sink.Publish(collection, stream.LastCursor(), record)
			if err != nil {
				return err
			}
		}

		written++
		if count > 0 && written >= count {
			return nil
		}
	}
}

func writeStreamRecord[T any](w io.Writer, format string, table tableSpec[T], record T) error {
	switch format {
	case streamFormatRows:
		_, err := fmt.Fprintln(w, table.line(record))
		if err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	case OutputFormatYAML:
		data, err := yaml.Marshal(record)
		if err != nil {
			return fmt.Errorf("encoding record to YAML: %w", err)
		}

		_, err = fmt.Fprintf(w, "---\n%s", data)
		if err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	default:
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encoding record to JSON: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))
		if err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	return nil
}
