package horizon

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "GDUKMGUGDZQK6YHYA5Z6AY2G4XDSZPSZ3SW5UN3ARVMO6QSRDWP5YLEX"

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	return parsed
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestRequest_URL(t *testing.T) {
	t.Parallel()

	usd := CreditAsset("USD", testIssuer)

	tests := []struct {
		name     string
		base     string
		request  Request
		expected string
	}{
		{
			name:     "collection with paging parameters",
			base:     testBaseURL,
			request:  AllPayments().WithCursor(CursorNow).WithLimit(20).WithOrder(OrderDesc),
			expected: "https://horizon.example/payments?cursor=now&limit=20&order=desc",
		},
		{
			name:     "resource under a path prefix",
			base:     "https://proxy.example/horizon/",
			request:  LedgerRequest(42),
			expected: "https://proxy.example/horizon/ledgers/42",
		},
		{
			name:     "base without trailing slash",
			base:     "https://proxy.example/horizon",
			request:  AllLedgers(),
			expected: "https://proxy.example/horizon/ledgers",
		},
		{
			name:     "path segments are escaped",
			base:     testBaseURL,
			request:  AccountDataRequest("GA", "config key"),
			expected: "https://horizon.example/accounts/GA/data/config%20key",
		},
		{
			name:     "nested collection",
			base:     testBaseURL,
			request:  OperationsForLedger(7).WithIncludeFailed(true).WithJoinTransactions(),
			expected: "https://horizon.example/ledgers/7/operations?include_failed=true&join=transactions",
		},
		{
			name:    "asset pair filter",
			base:    testBaseURL,
			request: TradesForAssetPair(NativeAsset(), usd),
			expected: "https://horizon.example/trades?base_asset_type=native" +
				"&counter_asset_code=USD&counter_asset_issuer=" + testIssuer +
				"&counter_asset_type=credit_alphanum4",
		},
		{
			name:    "order book",
			base:    testBaseURL,
			request: OrderBookRequest(usd, NativeAsset()),
			expected: "https://horizon.example/order_book?buying_asset_type=native" +
				"&selling_asset_code=USD&selling_asset_issuer=" + testIssuer +
				"&selling_asset_type=credit_alphanum4",
		},
		{
			name:    "trade aggregations use milliseconds",
			base:    testBaseURL,
			request: TradeAggregationsRequest(NativeAsset(), NativeAsset(), time.UnixMilli(1000), time.UnixMilli(61000), time.Minute),
			expected: "https://horizon.example/trade_aggregations?base_asset_type=native" +
				"&counter_asset_type=native&end_time=61000&resolution=60000&start_time=1000",
		},
		{
			name:     "account filter",
			base:     testBaseURL,
			request:  AccountsForAsset(usd),
			expected: "https://horizon.example/accounts?asset=USD%3A" + testIssuer,
		},
		{
			name:     "service root",
			base:     testBaseURL,
			request:  RootRequest(),
			expected: "https://horizon.example/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			base := mustParseURL(t, tt.base)

			first, err := tt.request.URL(base)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, first.String())

			second, err := tt.request.URL(base)
			require.NoError(t, err)
			assert.Equal(t, first.String(), second.String(), "rendering is deterministic")
			assert.Equal(t, tt.base, base.String(), "base is not modified")
		})
	}
}

func TestRequest_URLRequiresBase(t *testing.T) {
	t.Parallel()

	_, err := AllLedgers().URL(nil)
	require.ErrorIs(t, err, ErrHorizonURLRequired)
}

func TestRequest_ModifiersCopy(t *testing.T) {
	t.Parallel()

	base := mustParseURL(t, testBaseURL)
	original := AllTrades().WithLimit(10)

	modified := original.WithLimit(50).WithCursor("12-3").WithOrder(OrderDesc)

	assert.Equal(t, 10, original.Limit())
	assert.Equal(t, Cursor(""), original.Cursor())
	assert.Equal(t, OrderAsc, original.Order())

	assert.Equal(t, 50, modified.Limit())
	assert.Equal(t, Cursor("12-3"), modified.Cursor())
	assert.Equal(t, OrderDesc, modified.Order())

	rendered, err := original.URL(base)
	require.NoError(t, err)
	assert.Equal(t, "https://horizon.example/trades?limit=10", rendered.String())

	cleared := modified.WithLimit(0).WithCursor("")
	assert.Zero(t, cleared.Limit())
	assert.Equal(t, 50, modified.Limit())
}

func TestRequest_Metadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		request    Request
		collection Collection
		shape      Shape
		streamable bool
	}{
		{"all ledgers", AllLedgers(), CollectionLedgers, ShapePage, true},
		{"one ledger", LedgerRequest(1), CollectionLedgers, ShapeResource, false},
		{"account payments", PaymentsForAccount("GA"), CollectionPayments, ShapePage, true},
		{"ledger payments", PaymentsForLedger(1), CollectionPayments, ShapePage, false},
		{"account effects", EffectsForAccount("GA"), CollectionEffects, ShapePage, true},
		{"offers", AllOffers(), CollectionOffers, ShapePage, false},
		{"order book", OrderBookRequest(NativeAsset(), NativeAsset()), CollectionOrderBook, ShapeResource, true},
		{"fee stats", FeeStatsRequest(), CollectionFeeStats, ShapeResource, false},
		{"paths", StrictSendPaths(NativeAsset(), "10", "GA"), CollectionPaths, ShapePage, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.collection, tt.request.Collection())
			assert.Equal(t, tt.shape, tt.request.Shape())
			assert.Equal(t, tt.streamable, tt.request.Streamable())
		})
	}
}

func TestPage_LinkRequests(t *testing.T) {
	t.Parallel()

	base := mustParseURL(t, testBaseURL)

	t.Run("templated link drops its template", func(t *testing.T) {
		t.Parallel()

		page := &Page[Operation]{
			Links:   PageLinks{Self: Link{Href: "https://horizon.example/accounts/GA/payments{?cursor,limit,order}", Templated: true}},
			request: PaymentsForAccount("GA"),
		}

		self, ok := page.SelfRequest()
		require.True(t, ok)
		assert.Equal(t, CollectionPayments, self.Collection())
		assert.True(t, self.Streamable())

		rendered, err := self.URL(base)
		require.NoError(t, err)
		assert.Equal(t, "https://horizon.example/accounts/GA/payments", rendered.String())
	})

	t.Run("relative link resolves against base", func(t *testing.T) {
		t.Parallel()

		page := &Page[Ledger]{
			Links:   PageLinks{Next: Link{Href: "/ledgers?order=asc&limit=2&cursor=8"}},
			request: AllLedgers(),
		}

		next, ok := page.NextRequest()
		require.True(t, ok)
		assert.Equal(t, Cursor("8"), next.Cursor())
		assert.Equal(t, 2, next.Limit())

		rendered, err := next.URL(base)
		require.NoError(t, err)
		assert.Equal(t, "https://horizon.example/ledgers?cursor=8&limit=2&order=asc", rendered.String())

		moved, err := next.WithCursor("9").URL(base)
		require.NoError(t, err)
		assert.Equal(t, "https://horizon.example/ledgers?cursor=9&limit=2&order=asc", moved.String())
	})

	t.Run("missing link", func(t *testing.T) {
		t.Parallel()

		page := &Page[Ledger]{request: AllLedgers()}

		_, ok := page.PrevRequest()
		assert.False(t, ok)
	})
}

func TestCursor_Compare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		left  Cursor
		right Cursor
		cmp   int
		ok    bool
		after bool
	}{
		{"numeric greater", "102", "101", 1, true, true},
		{"numeric by value not length", "99", "100", -1, true, false},
		{"equal", "7", "7", 0, true, false},
		{"composite", "7-2", "7-1", 1, true, true},
		{"composite major part", "8-1", "7-9", 1, true, true},
		{"empty other", "5", "", 0, false, true},
		{"opaque differs", "now", "101", 0, false, true},
		{"opaque equal", "now", "now", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmp, ok := tt.left.Compare(tt.right)
			assert.Equal(t, tt.ok, ok)

			if ok {
				assert.Equal(t, tt.cmp, cmp)
			}

			assert.Equal(t, tt.after, tt.left.After(tt.right))
		})
	}
}

func TestParseAsset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected Asset
		wantErr  bool
	}{
		{"native", "native", NativeAsset(), false},
		{"native upper case", "NATIVE", NativeAsset(), false},
		{"alphanum4", "USD:" + testIssuer, Asset{Type: AssetTypeCreditAlphanum4, Code: "USD", Issuer: testIssuer}, false},
		{"alphanum12", "LONGCODE:" + testIssuer, Asset{Type: AssetTypeCreditAlphanum12, Code: "LONGCODE", Issuer: testIssuer}, false},
		{"missing issuer", "USD:", Asset{}, true},
		{"no separator", "USD", Asset{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			asset, err := ParseAsset(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAssetString)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, asset)
		})
	}
}
