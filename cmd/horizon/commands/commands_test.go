package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// These tests share the global viper instance and must not run in parallel.

func useServer(t *testing.T, handler http.Handler, output string) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("url", server.URL)
	viper.Set("output", output)
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/hal+json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const notFoundProblem = `{"type":"https://stellar.org/horizon-errors/not_found","title":"Resource Missing","status":404}`

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	return parsed
}

func ledgerRecord(sequence int) string {
	return fmt.Sprintf(`{"id":"l%[1]d","paging_token":"%[1]d","hash":"hash%[1]d","sequence":%[1]d,"successful_transaction_count":3,"closed_at":"2024-01-02T03:04:05Z"}`, sequence)
}

func TestLedgersList(t *testing.T) {
	var query string

	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ledgers", r.URL.Path)

		query = r.URL.RawQuery

		writeJSON(w, http.StatusOK, `{"_links":{},"_embedded":{"records":[`+ledgerRecord(8)+`,`+ledgerRecord(7)+`]}}`)
	}), OutputFormatJSON)

	out, err := execute(t, NewLedgersCommand(), "list", "--limit", "2", "--order", "desc")
	require.NoError(t, err)

	assert.Contains(t, query, "limit=2")
	assert.Contains(t, query, "order=desc")
	assert.Contains(t, out, `"sequence": 8`)
	assert.Contains(t, out, `"sequence": 7`)
}

func TestLedgersList_Table(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"_links":{},"_embedded":{"records":[]}}`)
	}), OutputFormatTable)

	out, err := execute(t, NewLedgersCommand(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No ledgers found")
}

func TestLedgersGet_NotFound(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ledgers/99", r.URL.Path)
		writeJSON(w, http.StatusNotFound, notFoundProblem)
	}), OutputFormatJSON)

	_, err := execute(t, NewLedgersCommand(), "get", "99")
	require.Error(t, err)
	assert.True(t, horizon.IsNotFound(err))
}

func TestLedgersGet_InvalidSequence(t *testing.T) {
	useServer(t, http.NotFoundHandler(), OutputFormatJSON)

	_, err := execute(t, NewLedgersCommand(), "get", "zero")
	require.ErrorIs(t, err, ErrInvalidSequence)
}

func TestScopedList(t *testing.T) {
	var path string

	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path

		assert.Equal(t, "true", r.URL.Query().Get("include_failed"))
		writeJSON(w, http.StatusOK, `{"_links":{},"_embedded":{"records":[]}}`)
	}), OutputFormatJSON)

	_, err := execute(t, NewPaymentsCommand(), "list", "--account", "GACCOUNT", "--include-failed")
	require.NoError(t, err)
	assert.Equal(t, "/accounts/GACCOUNT/payments", path)
}

func TestScopedList_Conflicting(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}), OutputFormatJSON)

	_, err := execute(t, NewTransactionsCommand(), "list", "--account", "GACCOUNT", "--ledger", "5")
	require.ErrorIs(t, err, ErrConflictingScopes)
}

func TestCollectionRequest(t *testing.T) {
	c := effectsCollection()

	values := scopeValues{}
	for _, s := range c.scopes {
		values[s.flag] = new(string)
	}

	base := mustParseURL(t, "https://horizon.example/")

	req, err := c.request(values, false)
	require.NoError(t, err)

	target, err := req.URL(base)
	require.NoError(t, err)
	assert.Equal(t, "/effects", target.Path)

	*values["ledger"] = "12"

	req, err = c.request(values, false)
	require.NoError(t, err)

	target, err = req.URL(base)
	require.NoError(t, err)
	assert.Equal(t, "/ledgers/12/effects", target.Path)

	*values["ledger"] = "twelve"

	_, err = c.request(values, false)
	require.ErrorIs(t, err, ErrInvalidSequence)
}

func TestLedgersStream(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "now", r.URL.Query().Get("cursor"))

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "event: open\ndata: \"hello\"\n\n")

		for _, sequence := range []int{21, 22, 23} {
			_, _ = fmt.Fprintf(w, "id: %d\ndata: %s\n\n", sequence, ledgerRecord(sequence))
		}

		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}), OutputFormatJSON)

	out, err := execute(t, NewLedgersCommand(), "stream", "--count", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"sequence":21`)
	assert.Contains(t, lines[1], `"sequence":22`)
}

func TestTransactionsSubmit(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "AAAAenvelope", r.PostForm.Get("tx"))

		writeJSON(w, http.StatusOK, `{"id":"abc","hash":"abc","ledger":55,"successful":true,"fee_charged":"100"}`)
	}), OutputFormatJSON)

	out, err := execute(t, NewTransactionsCommand(), "submit", "AAAAenvelope")
	require.NoError(t, err)
	assert.Contains(t, out, `"hash": "abc"`)
}

func TestTransactionsSubmit_Rejected(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{
			"type": "https://stellar.org/horizon-errors/transaction_failed",
			"title": "Transaction Failed",
			"status": 400,
			"extras": {
				"envelope_xdr": "AAAAenvelope",
				"result_xdr": "AAAAresult",
				"result_codes": {"transaction": "tx_failed", "operations": ["op_underfunded"]}
			}
		}`)
	}), OutputFormatTable)

	out, err := execute(t, NewTransactionsCommand(), "submit", "--stdin")
	require.ErrorIs(t, err, ErrEnvelopeNotProvided)
	assert.Empty(t, out)

	out, err = execute(t, NewTransactionsCommand(), "submit", "AAAAenvelope")
	require.ErrorIs(t, err, horizon.ErrBadRequest)
	assert.Contains(t, err.Error(), "tx_failed")
	assert.Contains(t, out, "op_underfunded")
}

func TestInfo(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"_links": {"ledgers": {"href": "https://horizon.example/ledgers{?cursor,limit,order}", "templated": true}},
			"horizon_version": "2.30.0",
			"core_version": "stellar-core 21.0.0",
			"history_latest_ledger": 1234,
			"network_passphrase": "Test SDF Network ; September 2015"
		}`)
	}), OutputFormatTable)

	out, err := execute(t, NewInfoCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "2.30.0")
	assert.Contains(t, out, "1234")
	assert.Contains(t, out, "https://horizon.example/ledgers")
	assert.NotContains(t, out, "{?cursor")
}

func TestMarketOrderBook(t *testing.T) {
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order_book", r.URL.Path)
		assert.Equal(t, "native", r.URL.Query().Get("selling_asset_type"))
		assert.Equal(t, "USD", r.URL.Query().Get("buying_asset_code"))

		writeJSON(w, http.StatusOK, `{
			"bids": [{"price_r": {"n": 1, "d": 4}, "price": "0.2500000", "amount": "10.0000000"}],
			"asks": [{"price_r": {"n": 3, "d": 10}, "price": "0.3000000", "amount": "5.0000000"}],
			"base": {"asset_type": "native"},
			"counter": {"asset_type": "credit_alphanum4", "asset_code": "USD", "asset_issuer": "GISSUER"}
		}`)
	}), OutputFormatTable)

	out, err := execute(t, NewMarketCommand(), "orderbook", "native", "USD:GISSUER")
	require.NoError(t, err)
	assert.Contains(t, out, "0.2500000")
	assert.Contains(t, out, "Spread: 0.0500000")
}

func TestMarketAggregations_InvalidResolution(t *testing.T) {
	useServer(t, http.NotFoundHandler(), OutputFormatJSON)

	_, err := execute(t, NewMarketCommand(), "aggregations", "native", "USD:GISSUER", "--resolution", "3m")
	require.ErrorIs(t, err, ErrInvalidResolution)
}

func TestTail_UnknownCollection(t *testing.T) {
	useServer(t, http.NotFoundHandler(), OutputFormatJSON)

	_, err := execute(t, NewTailCommand(), "ledgers", "accounts")
	require.ErrorIs(t, err, ErrUnknownCollection)
}

func TestParseTailCollections(t *testing.T) {
	collections, err := parseTailCollections([]string{"Payments", "ledgers", "payments"})
	require.NoError(t, err)
	assert.Equal(t, []horizon.Collection{horizon.CollectionPayments, horizon.CollectionLedgers}, collections)
}

func TestParseTailCursors(t *testing.T) {
	collections := []horizon.Collection{horizon.CollectionLedgers, horizon.CollectionPayments}

	tests := []struct {
		value   string
		want    map[horizon.Collection]horizon.Cursor
		wantErr error
	}{
		{
			value: "",
			want:  map[horizon.Collection]horizon.Cursor{"ledgers": "now", "payments": "now"},
		},
		{
			value: "now",
			want:  map[horizon.Collection]horizon.Cursor{"ledgers": "now", "payments": "now"},
		},
		{
			value: "Ledgers=52000000, payments=223338723934998529",
			want:  map[horizon.Collection]horizon.Cursor{"ledgers": "52000000", "payments": "223338723934998529"},
		},
		{
			value: "payments=7",
			want:  map[horizon.Collection]horizon.Cursor{"ledgers": "now", "payments": "7"},
		},
		{value: "52000000", wantErr: ErrInvalidTailCursor},
		{value: "ledgers=", wantErr: ErrInvalidTailCursor},
		{value: "trades=5", wantErr: ErrInvalidTailCursor},
	}

	for _, tt := range tests {
		cursors, err := parseTailCursors(tt.value, collections)
		if tt.wantErr != nil {
			require.ErrorIs(t, err, tt.wantErr, tt.value)

			continue
		}

		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, cursors, tt.value)
	}
}

func TestTail_SharedCursorRejected(t *testing.T) {
	useServer(t, http.NotFoundHandler(), OutputFormatJSON)

	_, err := execute(t, NewTailCommand(), "ledgers", "payments", "--cursor", "52000000")
	require.ErrorIs(t, err, ErrInvalidTailCursor)
}

func TestTailWriter(t *testing.T) {
	var buf bytes.Buffer

	out := &tailWriter{w: &buf, format: streamFormatLines}

	require.NoError(t, out.write(horizon.CollectionLedgers, "42", "ignored", map[string]int{"sequence": 42}))
	assert.JSONEq(t, `{"collection":"ledgers","cursor":"42","record":{"sequence":42}}`, strings.TrimSpace(buf.String()))

	buf.Reset()
	out.format = streamFormatRows

	require.NoError(t, out.write(horizon.CollectionPayments, "43", "row text", nil))
	assert.Equal(t, "payments      row text\n", buf.String())
}

func TestCreateClient_NoURL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := CreateClient(context.Background())
	require.ErrorIs(t, err, ErrNoHorizonURL)
}

func subcommandNames(cmd *cobra.Command) []string {
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	return names
}

func TestCommandTree(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		use  string
		subs []string
	}{
		{NewLedgersCommand(), "ledgers", []string{"get", "list", "stream"}},
		{NewTransactionsCommand(), "transactions", []string{"get", "list", "stream", "submit"}},
		{NewOperationsCommand(), "operations", []string{"get", "list", "stream"}},
		{NewPaymentsCommand(), "payments", []string{"list", "stream"}},
		{NewEffectsCommand(), "effects", []string{"list", "stream"}},
		{NewTradesCommand(), "trades", []string{"list", "pair", "stream"}},
		{NewOffersCommand(), "offers", []string{"get", "list"}},
		{NewAccountsCommand(), "accounts", []string{"data", "get", "list"}},
		{NewAssetsCommand(), "assets", []string{"list"}},
		{NewClaimableBalancesCommand(), "claimable-balances", []string{"get", "list"}},
		{NewLiquidityPoolsCommand(), "liquidity-pools", []string{"get", "list"}},
		{NewMarketCommand(), "market", []string{"aggregations", "fees", "orderbook", "paths"}},
		{NewConfigCommand(), "config", []string{"clear", "set", "show", "unset"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.use, tt.cmd.Use)
		assert.ElementsMatch(t, tt.subs, subcommandNames(tt.cmd), tt.use)
	}

	list := findSubcommand(NewTransactionsCommand(), "list")
	require.NotNil(t, list)

	for _, flag := range []string{"limit", "cursor", "order", "all", "max-pages", "account", "ledger", "include-failed"} {
		assert.NotNil(t, list.Flags().Lookup(flag), "flag %s", flag)
	}

	stream := findSubcommand(NewPaymentsCommand(), "stream")
	require.NotNil(t, stream)
	assert.Equal(t, "now", stream.Flags().Lookup("cursor").DefValue)
	assert.NotNil(t, stream.Flags().Lookup("publish"))
	assert.NotNil(t, stream.Flags().Lookup("nats-url"))
}

func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == name {
			return sub
		}
	}

	return nil
}
