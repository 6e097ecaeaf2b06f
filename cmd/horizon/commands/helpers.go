package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/horizon-client/internal/constants"
	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"

	// Stream line formats.
	streamFormatRows  = "rows"
	streamFormatLines = "lines"

	// JSON formatting.
	defaultJSONIndent = 2

	timeFormat = "2006-01-02 15:04:05"
)

// Common static errors used throughout the commands package.
var (
	ErrNoHorizonURL        = errors.New("no Horizon URL configured")
	ErrUnsupportedOutput   = errors.New("unsupported output format")
	ErrInvalidOrder        = errors.New("order must be asc or desc")
	ErrInvalidLimit        = errors.New("limit out of range")
	ErrConflictingScopes   = errors.New("only one scope flag may be set")
	ErrEnvelopeNotProvided = errors.New("no transaction envelope provided")
	ErrUnknownCollection   = errors.New("unknown collection")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrInvalidSequence     = errors.New("invalid ledger sequence")
	ErrInvalidResolution   = errors.New("invalid resolution")
	ErrInvalidTailCursor   = errors.New("invalid tail cursor")
)

func outputFormat() string {
	output := viper.GetString("output")
	if output == "" {
		return OutputFormatTable
	}

	return output
}

func validateOutputFormat(output string) error {
	switch output {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOutput, output)
	}
}

// StandardJSONRenderer writes data as indented JSON.
func StandardJSONRenderer(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes data as YAML.
func StandardYAMLRenderer(w io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(defaultJSONIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}

// OutputRenderer provides a generic renderer for different output formats.
type OutputRenderer[T any] struct {
	RenderTable func(w io.Writer, data T) error
}

// Render outputs data in the specified format.
func (o *OutputRenderer[T]) Render(w io.Writer, data T, format string) error {
	switch format {
	case OutputFormatJSON:
		return StandardJSONRenderer(w, data)
	case OutputFormatYAML:
		return StandardYAMLRenderer(w, data)
	case OutputFormatTable, "":
		return o.RenderTable(w, data)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOutput, format)
	}
}

func newTable(w io.Writer, headers ...any) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers...)

	return table
}

func renderTable(table *tablewriter.Table) error {
	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// tableSpec describes how records of one type appear as table rows.
type tableSpec[T any] struct {
	headers []any
	row     func(T) []any
}

func (s tableSpec[T]) renderRows(w io.Writer, records []T) error {
	table := newTable(w, s.headers...)

	for _, record := range records {
		_ = table.Append(s.row(record)...)
	}

	return renderTable(table)
}

// renderDetail pairs each header with its value in a Property/Value table.
func (s tableSpec[T]) renderDetail(w io.Writer, record T) error {
	table := newTable(w, "Property", "Value")
	values := s.row(record)

	for i, header := range s.headers {
		if i < len(values) {
			_ = table.Append(header, values[i])
		}
	}

	return renderTable(table)
}

// line renders one record as a single whitespace separated line.
func (s tableSpec[T]) line(record T) string {
	values := s.row(record)
	cells := make([]string, len(values))

	for i, value := range values {
		cells[i] = fmt.Sprint(value)
	}

	return strings.Join(cells, "  ")
}

// streamFormat picks how streamed records are written: aligned rows for a
// person at a terminal, one JSON document per line otherwise.
func streamFormat(output string, tty bool) string {
	if output == OutputFormatTable && tty {
		return streamFormatRows
	}

	if output == OutputFormatYAML {
		return OutputFormatYAML
	}

	return streamFormatLines
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)

	return ok && term.IsTerminal(int(file.Fd())) //nolint:gosec // file descriptors fit in int
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}

	return t.Format(timeFormat)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return NotAvailable
	}

	return formatTime(*t)
}

func orNotAvailable(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

// formatAmount renders an amount with the fixed seven-digit precision the
// service uses. Unparseable values are shown as received.
func formatAmount(value string) string {
	amount, err := horizon.ParseAmount(value)
	if err != nil {
		return orNotAvailable(value)
	}

	return horizon.FormatAmount(amount)
}

func shorten(value string, keep int) string {
	if len(value) <= 2*keep+3 {
		return value
	}

	return value[:keep] + "..." + value[len(value)-keep:]
}

func rateLimitFooter(w io.Writer, rateLimit horizon.RateLimit) {
	if !rateLimit.Known || !viper.GetBool("verbose") {
		return
	}

	_, _ = fmt.Fprintf(w, "\nRate limit: %d of %d remaining\n", rateLimit.Remaining, rateLimit.Limit)
}

// listFlags are the paging flags shared by every list command.
type listFlags struct {
	limit    int
	cursor   string
	order    string
	all      bool
	maxPages int
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.limit, "limit", constants.DefaultPageLimit, "records per page")
	cmd.Flags().StringVar(&f.cursor, "cursor", "", "start after this paging token")
	cmd.Flags().StringVar(&f.order, "order", "", "sort order (asc, desc)")
	cmd.Flags().BoolVar(&f.all, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&f.maxPages, "max-pages", 0, "stop after this many pages when --all is set")
}

func applyListFlags[T any](req horizon.CollectionRequest[T], f *listFlags) (horizon.CollectionRequest[T], error) {
	if f.limit < 1 || f.limit > constants.MaxPageLimit {
		return req, fmt.Errorf("%w: %d (1-%d)", ErrInvalidLimit, f.limit, constants.MaxPageLimit)
	}

	req = req.WithLimit(f.limit)

	if f.cursor != "" {
		req = req.WithCursor(horizon.Cursor(f.cursor))
	}

	switch horizon.Order(f.order) {
	case "":
	case horizon.OrderAsc, horizon.OrderDesc:
		req = req.WithOrder(horizon.Order(f.order))
	default:
		return req, fmt.Errorf("%w: %q", ErrInvalidOrder, f.order)
	}

	return req, nil
}

// stderrLogger implements horizon.Logger for --verbose output.
type stderrLogger struct {
	mu     sync.Mutex
	writer io.Writer
}

func newStderrLogger(w io.Writer) *stderrLogger {
	return &stderrLogger{writer: w}
}

func (l *stderrLogger) log(level, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var builder strings.Builder

	builder.WriteString("[" + level + "] " + msg)

	for _, key := range keys {
		fmt.Fprintf(&builder, " %s=%v", key, fields[key])
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.writer, builder.String())
}

func (l *stderrLogger) Debug(msg string, fields map[string]interface{}) { l.log("DEBUG", msg, fields) }
func (l *stderrLogger) Info(msg string, fields map[string]interface{})  { l.log("INFO", msg, fields) }
func (l *stderrLogger) Warn(msg string, fields map[string]interface{})  { l.log("WARN", msg, fields) }
func (l *stderrLogger) Error(msg string, fields map[string]interface{}) { l.log("ERROR", msg, fields) }
