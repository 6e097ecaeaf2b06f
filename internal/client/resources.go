package client

import (
	"context"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// LedgersClient implements horizon.LedgersClient.
type LedgersClient struct {
	*CollectionClient[horizon.Ledger]

	exec horizon.Executor
}

// NewLedgersClient creates a new ledgers client.
func NewLedgersClient(exec horizon.Executor) *LedgersClient {
	return &LedgersClient{CollectionClient: NewCollectionClient[horizon.Ledger](exec), exec: exec}
}

// Get implements horizon.LedgersClient.Get.
func (c *LedgersClient) Get(ctx context.Context, sequence uint32) (*horizon.Response[horizon.Ledger], error) {
	return horizon.Fetch(ctx, c.exec, horizon.LedgerRequest(sequence))
}

// TransactionsClient implements horizon.TransactionsClient.
type TransactionsClient struct {
	*CollectionClient[horizon.Transaction]
	*ResourceClient[horizon.Transaction]

	exec horizon.Executor
}

// NewTransactionsClient creates a new transactions client.
func NewTransactionsClient(exec horizon.Executor) *TransactionsClient {
	return &TransactionsClient{
		CollectionClient: NewCollectionClient[horizon.Transaction](exec),
		ResourceClient:   NewResourceClient(exec, horizon.TransactionRequest),
		exec:             exec,
	}
}

// Submit implements horizon.TransactionsClient.Submit.
func (c *TransactionsClient) Submit(ctx context.Context, envelopeXDR string) (*horizon.SubmissionResult, error) {
	return horizon.Submit(ctx, c.exec, envelopeXDR)
}

// OperationsClient implements horizon.OperationsClient for operations and
// payments.
type OperationsClient struct {
	*CollectionClient[horizon.Operation]
	*ResourceClient[horizon.Operation]

	collection horizon.Collection
}

// NewOperationsClient creates a new operations client.
func NewOperationsClient(exec horizon.Executor, collection horizon.Collection) *OperationsClient {
	return &OperationsClient{
		CollectionClient: NewCollectionClient[horizon.Operation](exec),
		ResourceClient:   NewResourceClient(exec, horizon.OperationRequest),
		collection:       collection,
	}
}

// Collection reports whether the client serves operations or payments.
func (c *OperationsClient) Collection() horizon.Collection {
	return c.collection
}

// EffectsClient implements horizon.EffectsClient.
type EffectsClient struct {
	*CollectionClient[horizon.Effect]
}

// NewEffectsClient creates a new effects client.
func NewEffectsClient(exec horizon.Executor) *EffectsClient {
	return &EffectsClient{CollectionClient: NewCollectionClient[horizon.Effect](exec)}
}

// TradesClient implements horizon.TradesClient.
type TradesClient struct {
	*CollectionClient[horizon.Trade]
}

// NewTradesClient creates a new trades client.
func NewTradesClient(exec horizon.Executor) *TradesClient {
	return &TradesClient{CollectionClient: NewCollectionClient[horizon.Trade](exec)}
}

// AccountsClient implements horizon.AccountsClient.
type AccountsClient struct {
	*CollectionClient[horizon.Account]
	*ResourceClient[horizon.Account]

	exec horizon.Executor
}

// NewAccountsClient creates a new accounts client.
func NewAccountsClient(exec horizon.Executor) *AccountsClient {
	return &AccountsClient{
		CollectionClient: NewCollectionClient[horizon.Account](exec),
		ResourceClient:   NewResourceClient(exec, horizon.AccountRequest),
		exec:             exec,
	}
}

// Data implements horizon.AccountsClient.Data.
func (c *AccountsClient) Data(ctx context.Context, accountID, key string) (*horizon.Response[horizon.AccountData], error) {
	return horizon.Fetch(ctx, c.exec, horizon.AccountDataRequest(accountID, key))
}

// AssetsClient implements horizon.AssetsClient.
type AssetsClient struct {
	*CollectionClient[horizon.AssetStat]
}

// NewAssetsClient creates a new assets client.
func NewAssetsClient(exec horizon.Executor) *AssetsClient {
	return &AssetsClient{CollectionClient: NewCollectionClient[horizon.AssetStat](exec)}
}

// OffersClient implements horizon.OffersClient.
type OffersClient struct {
	*CollectionClient[horizon.Offer]
	*ResourceClient[horizon.Offer]
}

// NewOffersClient creates a new offers client.
func NewOffersClient(exec horizon.Executor) *OffersClient {
	return &OffersClient{
		CollectionClient: NewCollectionClient[horizon.Offer](exec),
		ResourceClient:   NewResourceClient(exec, horizon.OfferRequest),
	}
}

// ClaimableBalancesClient implements horizon.ClaimableBalancesClient.
type ClaimableBalancesClient struct {
	*CollectionClient[horizon.ClaimableBalance]
	*ResourceClient[horizon.ClaimableBalance]
}

// NewClaimableBalancesClient creates a new claimable balances client.
func NewClaimableBalancesClient(exec horizon.Executor) *ClaimableBalancesClient {
	return &ClaimableBalancesClient{
		CollectionClient: NewCollectionClient[horizon.ClaimableBalance](exec),
		ResourceClient:   NewResourceClient(exec, horizon.ClaimableBalanceRequest),
	}
}

// LiquidityPoolsClient implements horizon.LiquidityPoolsClient.
type LiquidityPoolsClient struct {
	*CollectionClient[horizon.LiquidityPool]
	*ResourceClient[horizon.LiquidityPool]
}

// NewLiquidityPoolsClient creates a new liquidity pools client.
func NewLiquidityPoolsClient(exec horizon.Executor) *LiquidityPoolsClient {
	return &LiquidityPoolsClient{
		CollectionClient: NewCollectionClient[horizon.LiquidityPool](exec),
		ResourceClient:   NewResourceClient(exec, horizon.LiquidityPoolRequest),
	}
}

// MarketClient implements horizon.MarketClient.
type MarketClient struct {
	exec horizon.Executor
}

// NewMarketClient creates a new market data client.
func NewMarketClient(exec horizon.Executor) *MarketClient {
	return &MarketClient{exec: exec}
}

// OrderBook implements horizon.MarketClient.OrderBook.
func (c *MarketClient) OrderBook(ctx context.Context, selling, buying horizon.Asset) (*horizon.Response[horizon.OrderBookSummary], error) {
	return horizon.Fetch(ctx, c.exec, horizon.OrderBookRequest(selling, buying))
}

// StreamOrderBook implements horizon.MarketClient.StreamOrderBook.
func (c *MarketClient) StreamOrderBook(ctx context.Context, selling, buying horizon.Asset, opts ...horizon.StreamOption) (*horizon.EventStream[horizon.OrderBookSummary], error) {
	return horizon.StreamResource(ctx, c.exec, horizon.OrderBookRequest(selling, buying), opts...)
}

// TradeAggregations implements horizon.MarketClient.TradeAggregations.
func (c *MarketClient) TradeAggregations(ctx context.Context, req horizon.CollectionRequest[horizon.TradeAggregation]) (*horizon.Page[horizon.TradeAggregation], error) {
	return horizon.FetchPage(ctx, c.exec, req)
}

// Paths implements horizon.MarketClient.Paths.
func (c *MarketClient) Paths(ctx context.Context, req horizon.CollectionRequest[horizon.Path]) (*horizon.Page[horizon.Path], error) {
	return horizon.FetchPage(ctx, c.exec, req)
}

// FeeStats implements horizon.MarketClient.FeeStats.
func (c *MarketClient) FeeStats(ctx context.Context) (*horizon.Response[horizon.FeeStats], error) {
	return horizon.Fetch(ctx, c.exec, horizon.FeeStatsRequest())
}
