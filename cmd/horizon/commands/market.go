package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// resolutions are the bucket sizes trade aggregation accepts.
var resolutions = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,  //nolint:mnd // bucket size
	"15m": 15 * time.Minute, //nolint:mnd // bucket size
	"1h":  time.Hour,
	"1d":  24 * time.Hour,     //nolint:mnd // bucket size
	"1w":  7 * 24 * time.Hour, //nolint:mnd // bucket size
}

func parseResolution(value string) (time.Duration, error) {
	resolution, ok := resolutions[strings.ToLower(value)]
	if !ok {
		return 0, fmt.Errorf("%w: %q (one of 1m, 5m, 15m, 1h, 1d, 1w)", ErrInvalidResolution, value)
	}

	return resolution, nil
}

var tradeAggregationTable = tableSpec[horizon.TradeAggregation]{
	headers: []any{"Start", "Trades", "Base Volume", "Counter Volume", "Open", "High", "Low", "Close", "Average"},
	row: func(bucket horizon.TradeAggregation) []any {
		return []any{
			formatTime(time.UnixMilli(int64(bucket.Timestamp)).UTC()),
			strconv.FormatInt(int64(bucket.TradeCount), 10),
			formatAmount(bucket.BaseVolume),
			formatAmount(bucket.CounterVolume),
			bucket.Open,
			bucket.High,
			bucket.Low,
			bucket.Close,
			bucket.Average,
		}
	},
}

var pathTable = tableSpec[horizon.Path]{
	headers: []any{"Source", "Source Amount", "Path", "Destination", "Destination Amount"},
	row: func(path horizon.Path) []any {
		hops := make([]string, 0, len(path.Path))
		for _, hop := range path.Path {
			hops = append(hops, assetLabel(hop))
		}

		via := "direct"
		if len(hops) > 0 {
			via = strings.Join(hops, " -> ")
		}

		return []any{
			tradeAssetLabel(path.SourceAssetType, path.SourceAssetCode),
			formatAmount(path.SourceAmount),
			via,
			tradeAssetLabel(path.DestinationAssetType, path.DestinationAssetCode),
			formatAmount(path.DestinationAmount),
		}
	},
}

// NewMarketCommand creates the market command group.
func NewMarketCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "market",
		Aliases: []string{"dex"},
		Short:   "Query market data",
		Long:    "Inspect order books, trade aggregations, payment paths and fee levels",
	}

	cmd.AddCommand(newOrderBookCommand())
	cmd.AddCommand(newTradeAggregationsCommand())
	cmd.AddCommand(newPathsCommand())
	cmd.AddCommand(newFeeStatsCommand())

	return cmd
}

func newOrderBookCommand() *cobra.Command {
	var (
		follow bool
		depth  int
	)

	cmd := &cobra.Command{
		Use:   "orderbook SELLING BUYING",
		Short: "Show the order book of an asset pair",
		Long: `Show the bids and asks of an asset pair.

Assets are given as "native" or CODE:ISSUER. With --follow the book is
redrawn whenever it changes.`,
		Args: cobra.ExactArgs(2), //nolint:mnd // selling and buying
		RunE: func(cmd *cobra.Command, args []string) error {
			selling, buying, err := parseAssetPair(args[0], args[1])
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			renderer := &OutputRenderer[horizon.OrderBookSummary]{
				RenderTable: func(w io.Writer, book horizon.OrderBookSummary) error {
					return renderOrderBook(w, book, depth)
				},
			}

			if !follow {
				resp, err := client.Market().OrderBook(cmd.Context(), selling, buying)
				if err != nil {
					return fmt.Errorf("failed to get order book: %w", err)
				}

				return renderer.Render(cmd.OutOrStdout(), resp.Data, outputFormat())
			}

			return followOrderBook(cmd, client, selling, buying, renderer)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "stream order book updates")
	cmd.Flags().IntVar(&depth, "depth", 10, "price levels shown per side") //nolint:mnd // default depth

	return cmd
}

func followOrderBook(cmd *cobra.Command, client horizon.Client, selling, buying horizon.Asset, renderer *OutputRenderer[horizon.OrderBookSummary]) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stream, err := client.Market().StreamOrderBook(ctx, selling, buying, horizon.WithWarningHandler(warnOnSkippedFrame(cmd.ErrOrStderr())))
	if err != nil {
		return fmt.Errorf("failed to stream order book: %w", err)
	}

	closeOnDone := context.AfterFunc(ctx, func() { _ = stream.Close() })
	defer closeOnDone()

	defer stream.Close() //nolint:errcheck // nothing to report once rendering is done

	for book, err := range stream.All() {
		if err != nil {
			if errors.Is(err, horizon.ErrStreamClosed) {
				return nil
			}

			return fmt.Errorf("streaming order book: %w", err)
		}

		err = renderer.Render(cmd.OutOrStdout(), book, outputFormat())
		if err != nil {
			return err
		}
	}

	return nil
}

// spread is the difference between the best ask and the best bid. It is
// zero when either side is empty.
func spread(book horizon.OrderBookSummary) decimal.Decimal {
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return decimal.Zero
	}

	return book.Asks[0].PriceR.Ratio().Sub(book.Bids[0].PriceR.Ratio())
}

func renderOrderBook(w io.Writer, book horizon.OrderBookSummary, depth int) error {
	_, _ = fmt.Fprintf(w, "Order book %s / %s\n", assetLabel(book.Base), assetLabel(book.Counter))

	table := newTable(w, "Bid Amount", "Bid Price", "Ask Price", "Ask Amount")

	rows := max(len(book.Bids), len(book.Asks))
	if depth > 0 {
		rows = min(rows, depth)
	}

	for i := range rows {
		row := []any{"", "", "", ""}

		if i < len(book.Bids) {
			row[0] = formatAmount(book.Bids[i].Amount)
			row[1] = book.Bids[i].Price
		}

		if i < len(book.Asks) {
			row[2] = book.Asks[i].Price
			row[3] = formatAmount(book.Asks[i].Amount)
		}

		_ = table.Append(row...)
	}

	err := renderTable(table)
	if err != nil {
		return err
	}

	if len(book.Bids) > 0 && len(book.Asks) > 0 {
		_, _ = fmt.Fprintf(w, "Spread: %s\n", horizon.FormatAmount(spread(book)))
	}

	return nil
}

func newTradeAggregationsCommand() *cobra.Command {
	var (
		resolution string
		since      time.Duration
		flags      listFlags
	)

	cmd := &cobra.Command{
		Use:     "aggregations BASE COUNTER",
		Aliases: []string{"ohlc"},
		Short:   "Show trade aggregations of an asset pair",
		Long:    "Show open, high, low and close prices of an asset pair bucketed by --resolution",
		Args:    cobra.ExactArgs(2), //nolint:mnd // base and counter
		RunE: func(cmd *cobra.Command, args []string) error {
			base, counter, err := parseAssetPair(args[0], args[1])
			if err != nil {
				return err
			}

			bucket, err := parseResolution(resolution)
			if err != nil {
				return err
			}

			end := time.Now().UTC().Truncate(bucket).Add(bucket)
			start := end.Add(-since).Truncate(bucket)

			req, err := applyListFlags(horizon.TradeAggregationsRequest(base, counter, start, end, bucket), &flags)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			page, err := client.Market().TradeAggregations(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("failed to get trade aggregations: %w", err)
			}

			return renderCollection(cmd.OutOrStdout(), "trade aggregations", tradeAggregationTable, page.Records)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&resolution, "resolution", "1h", "bucket size (1m, 5m, 15m, 1h, 1d, 1w)")
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "how far back to aggregate") //nolint:mnd // one day

	return cmd
}

func newPathsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Find payment paths",
		Long:  "Find conversion paths for strict-send and strict-receive payments",
	}

	cmd.AddCommand(newStrictSendCommand())
	cmd.AddCommand(newStrictReceiveCommand())

	return cmd
}

func newStrictSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send SOURCE_ASSET SOURCE_AMOUNT DESTINATION_ACCOUNT",
		Short: "Paths that send an exact amount",
		Args:  cobra.ExactArgs(3), //nolint:mnd // asset, amount and account
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := horizon.ParseAsset(args[0])
			if err != nil {
				return fmt.Errorf("parsing asset: %w", err)
			}

			amount, err := horizon.ParseAmount(args[1])
			if err != nil {
				return err //nolint:wrapcheck // already names the amount
			}

			return findPaths(cmd, horizon.StrictSendPaths(asset, horizon.FormatAmount(amount), args[2]))
		},
	}
}

func newStrictReceiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "receive SOURCE_ACCOUNT DESTINATION_ASSET DESTINATION_AMOUNT",
		Short: "Paths that deliver an exact amount",
		Args:  cobra.ExactArgs(3), //nolint:mnd // account, asset and amount
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := horizon.ParseAsset(args[1])
			if err != nil {
				return fmt.Errorf("parsing asset: %w", err)
			}

			amount, err := horizon.ParseAmount(args[2])
			if err != nil {
				return err //nolint:wrapcheck // already names the amount
			}

			return findPaths(cmd, horizon.StrictReceivePaths(args[0], asset, horizon.FormatAmount(amount)))
		},
	}
}

func findPaths(cmd *cobra.Command, req horizon.CollectionRequest[horizon.Path]) error {
	client, err := CreateClient(cmd.Context())
	if err != nil {
		return err
	}

	page, err := client.Market().Paths(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to find paths: %w", err)
	}

	return renderCollection(cmd.OutOrStdout(), "paths", pathTable, page.Records)
}

// renderCollection renders records that are not paged further.
func renderCollection[T any](w io.Writer, noun string, table tableSpec[T], records []T) error {
	renderer := &OutputRenderer[[]T]{
		RenderTable: func(w io.Writer, records []T) error {
			if len(records) == 0 {
				_, _ = fmt.Fprintf(w, "No %s found\n", noun)

				return nil
			}

			return table.renderRows(w, records)
		},
	}

	return renderer.Render(w, records, outputFormat())
}

func newFeeStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fees",
		Short: "Show recent fee levels",
		Long:  "Show the distribution of fees charged and offered over recent ledgers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.Market().FeeStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get fee stats: %w", err)
			}

			renderer := &OutputRenderer[horizon.FeeStats]{RenderTable: renderFeeStats}

			return renderer.Render(cmd.OutOrStdout(), resp.Data, outputFormat())
		},
	}
}

func renderFeeStats(w io.Writer, stats horizon.FeeStats) error {
	_, _ = fmt.Fprintf(w, "Last ledger: %d  base fee: %d  capacity usage: %s\n",
		stats.LastLedger, stats.LastLedgerBaseFee, orNotAvailable(stats.LedgerCapacityUsage))

	table := newTable(w, "Statistic", "Fee Charged", "Max Fee")

	rows := []struct {
		name    string
		charged horizon.FlexInt64
		offered horizon.FlexInt64
	}{
		{"min", stats.FeeCharged.Min, stats.MaxFee.Min},
		{"mode", stats.FeeCharged.Mode, stats.MaxFee.Mode},
		{"p10", stats.FeeCharged.P10, stats.MaxFee.P10},
		{"p50", stats.FeeCharged.P50, stats.MaxFee.P50},
		{"p90", stats.FeeCharged.P90, stats.MaxFee.P90},
		{"p95", stats.FeeCharged.P95, stats.MaxFee.P95},
		{"p99", stats.FeeCharged.P99, stats.MaxFee.P99},
		{"max", stats.FeeCharged.Max, stats.MaxFee.Max},
	}

	for _, row := range rows {
		_ = table.Append(row.name, strconv.FormatInt(int64(row.charged), 10), strconv.FormatInt(int64(row.offered), 10))
	}

	return renderTable(table)
}
