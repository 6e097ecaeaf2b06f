//go:build integration

package integration

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

func TestRoot(t *testing.T) {
	config := LoadTestConfig()
	client := config.NewClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	root, err := client.Root(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, root.Data.HorizonVersion)
	assert.NotEmpty(t, root.Data.NetworkPassphrase)
	assert.Positive(t, root.Data.HistoryLatestLedger)
}

func TestLedgers(t *testing.T) {
	config := LoadTestConfig()
	client := config.NewClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	t.Run("List descending", func(t *testing.T) {
		page, err := client.Ledgers().List(ctx, horizon.AllLedgers().WithLimit(3).WithOrder(horizon.OrderDesc))
		require.NoError(t, err)
		require.Len(t, page.Records, 3)

		for i := 1; i < len(page.Records); i++ {
			assert.Greater(t, page.Records[i-1].Sequence, page.Records[i].Sequence)
		}
	})

	t.Run("Get", func(t *testing.T) {
		page, err := client.Ledgers().List(ctx, horizon.AllLedgers().WithLimit(1).WithOrder(horizon.OrderDesc))
		require.NoError(t, err)
		require.NotEmpty(t, page.Records)

		latest := page.Records[0]

		ledger, err := client.Ledgers().Get(ctx, latest.Sequence)
		require.NoError(t, err)
		assert.Equal(t, latest.Hash, ledger.Data.Hash)
	})

	t.Run("Paginate", func(t *testing.T) {
		paginator := client.Ledgers().Paginate(horizon.AllLedgers().WithLimit(2))

		ledgers, err := horizon.CollectPages(ctx, paginator, &horizon.PaginationOptions{MaxPages: 2})
		require.NoError(t, err)
		require.Len(t, ledgers, 4)

		for i := 1; i < len(ledgers); i++ {
			assert.Equal(t, ledgers[i-1].Sequence+1, ledgers[i].Sequence)
		}
	})
}

func TestLedgerStream(t *testing.T) {
	config := LoadTestConfig()
	client := config.NewClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stream, err := client.Ledgers().Stream(ctx, horizon.AllLedgers().WithCursor(horizon.CursorNow))
	require.NoError(t, err)

	defer func() { _ = stream.Close() }()

	ledger, err := stream.Next()
	if errors.Is(err, context.DeadlineExceeded) {
		t.Skip("no ledger closed within a minute")
	}

	require.NoError(t, err)
	assert.Positive(t, ledger.Sequence)
	assert.Equal(t, horizon.Cursor(ledger.PagingToken()), stream.LastCursor())
}

func TestCLI(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingBinary(t)
	config.NewClient(t)

	runner := NewCommandRunner(config, t)

	t.Run("Info", func(t *testing.T) {
		stdout, stderr, err := runner.Run("info", "--output", "json")
		require.NoError(t, err, stderr)

		var root horizon.Root

		require.NoError(t, json.Unmarshal([]byte(stdout), &root))
		assert.NotEmpty(t, root.HorizonVersion)
	})

	t.Run("Ledgers list", func(t *testing.T) {
		stdout, stderr, err := runner.Run("ledgers", "list", "--limit", "2", "--order", "desc")
		require.NoError(t, err, stderr)
		assert.Contains(t, stdout, "Sequence")
	})

	t.Run("Ledgers get missing", func(t *testing.T) {
		_, stderr, err := runner.Run("ledgers", "get", strconv.Itoa(1<<31))
		require.Error(t, err)
		assert.True(t, strings.Contains(strings.ToLower(stderr), "not found"), stderr)
	})
}
