package horizon

import (
	"strconv"
	"time"
)

func resource[T any](collection Collection, streamable bool, segments ...string) ResourceRequest[T] {
	return ResourceRequest[T]{newEndpoint(collection, streamable, segments...)}
}

func collection[T any](tag Collection, streamable bool, segments ...string) CollectionRequest[T] {
	return CollectionRequest[T]{newEndpoint(tag, streamable, segments...)}
}

// RootRequest fetches the service root document.
func RootRequest() ResourceRequest[Root] {
	return resource[Root](CollectionRoot, false)
}

// FeeStatsRequest fetches recent fee statistics.
func FeeStatsRequest() ResourceRequest[FeeStats] {
	return resource[FeeStats](CollectionFeeStats, false, "fee_stats")
}

// Ledgers

func LedgerRequest(sequence uint32) ResourceRequest[Ledger] {
	return resource[Ledger](CollectionLedgers, false, "ledgers", strconv.FormatUint(uint64(sequence), 10))
}

func AllLedgers() CollectionRequest[Ledger] {
	return collection[Ledger](CollectionLedgers, true, "ledgers")
}

// Transactions

func TransactionRequest(hash string) ResourceRequest[Transaction] {
	return resource[Transaction](CollectionTransactions, false, "transactions", hash)
}

func AllTransactions() CollectionRequest[Transaction] {
	return collection[Transaction](CollectionTransactions, true, "transactions")
}

func TransactionsForAccount(accountID string) CollectionRequest[Transaction] {
	return collection[Transaction](CollectionTransactions, false, "accounts", accountID, "transactions")
}

func TransactionsForLedger(sequence uint32) CollectionRequest[Transaction] {
	return collection[Transaction](CollectionTransactions, false, "ledgers", formatSequence(sequence), "transactions")
}

func TransactionsForClaimableBalance(balanceID string) CollectionRequest[Transaction] {
	return collection[Transaction](CollectionTransactions, false, "claimable_balances", balanceID, "transactions")
}

func TransactionsForLiquidityPool(poolID string) CollectionRequest[Transaction] {
	return collection[Transaction](CollectionTransactions, false, "liquidity_pools", poolID, "transactions")
}

// Operations

func OperationRequest(id string) ResourceRequest[Operation] {
	return resource[Operation](CollectionOperations, false, "operations", id)
}

func AllOperations() CollectionRequest[Operation] {
	return collection[Operation](CollectionOperations, true, "operations")
}

func OperationsForAccount(accountID string) CollectionRequest[Operation] {
	return collection[Operation](CollectionOperations, true, "accounts", accountID, "operations")
}

func OperationsForLedger(sequence uint32) CollectionRequest[Operation] {
	return collection[Operation](CollectionOperations, true, "ledgers", formatSequence(sequence), "operations")
}

func OperationsForTransaction(hash string) CollectionRequest[Operation] {
	return collection[Operation](CollectionOperations, false, "transactions", hash, "operations")
}

func OperationsForClaimableBalance(balanceID string) CollectionRequest[Operation] {
	return collection[Operation](CollectionOperations, true, "claimable_balances", balanceID, "operations")
}

func OperationsForLiquidityPool(poolID string) CollectionRequest[Operation] {
	return collection[Operation](CollectionOperations, true, "liquidity_pools", poolID, "operations")
}

// Payments are operations of the payment family.

func AllPayments() CollectionRequest[Operation] {
	return collection[Operation](CollectionPayments, true, "payments")
}

func PaymentsForAccount(accountID string) CollectionRequest[Operation] {
	return collection[Operation](CollectionPayments, true, "accounts", accountID, "payments")
}

func PaymentsForLedger(sequence uint32) CollectionRequest[Operation] {
	return collection[Operation](CollectionPayments, false, "ledgers", formatSequence(sequence), "payments")
}

func PaymentsForTransaction(hash string) CollectionRequest[Operation] {
	return collection[Operation](CollectionPayments, false, "transactions", hash, "payments")
}

// Effects

func AllEffects() CollectionRequest[Effect] {
	return collection[Effect](CollectionEffects, true, "effects")
}

func EffectsForAccount(accountID string) CollectionRequest[Effect] {
	return collection[Effect](CollectionEffects, true, "accounts", accountID, "effects")
}

func EffectsForLedger(sequence uint32) CollectionRequest[Effect] {
	return collection[Effect](CollectionEffects, true, "ledgers", formatSequence(sequence), "effects")
}

func EffectsForTransaction(hash string) CollectionRequest[Effect] {
	return collection[Effect](CollectionEffects, false, "transactions", hash, "effects")
}

func EffectsForOperation(operationID string) CollectionRequest[Effect] {
	return collection[Effect](CollectionEffects, false, "operations", operationID, "effects")
}

func EffectsForLiquidityPool(poolID string) CollectionRequest[Effect] {
	return collection[Effect](CollectionEffects, true, "liquidity_pools", poolID, "effects")
}

// Trades

func AllTrades() CollectionRequest[Trade] {
	return collection[Trade](CollectionTrades, true, "trades")
}

// TradesForAssetPair filters trades between base and counter.
func TradesForAssetPair(base, counter Asset) CollectionRequest[Trade] {
	return AllTrades().WithAsset("base", base).WithAsset("counter", counter)
}

func TradesForAccount(accountID string) CollectionRequest[Trade] {
	return collection[Trade](CollectionTrades, true, "accounts", accountID, "trades")
}

func TradesForOffer(offerID string) CollectionRequest[Trade] {
	return collection[Trade](CollectionTrades, false, "offers", offerID, "trades")
}

func TradesForLiquidityPool(poolID string) CollectionRequest[Trade] {
	return collection[Trade](CollectionTrades, true, "liquidity_pools", poolID, "trades")
}

// Accounts

func AccountRequest(accountID string) ResourceRequest[Account] {
	return resource[Account](CollectionAccounts, false, "accounts", accountID)
}

func AccountDataRequest(accountID, key string) ResourceRequest[AccountData] {
	return resource[AccountData](CollectionAccountData, false, "accounts", accountID, "data", key)
}

// AllAccounts lists accounts. Horizon requires one of the signer, asset,
// sponsor or liquidity_pool filters.
func AllAccounts() CollectionRequest[Account] {
	return collection[Account](CollectionAccounts, false, "accounts")
}

func AccountsForSigner(signer string) CollectionRequest[Account] {
	return AllAccounts().WithParam("signer", signer)
}

func AccountsForAsset(asset Asset) CollectionRequest[Account] {
	return AllAccounts().WithParam("asset", asset.String())
}

func AccountsForSponsor(sponsor string) CollectionRequest[Account] {
	return AllAccounts().WithParam("sponsor", sponsor)
}

func AccountsForLiquidityPool(poolID string) CollectionRequest[Account] {
	return AllAccounts().WithParam("liquidity_pool", poolID)
}

// Assets

func AllAssets() CollectionRequest[AssetStat] {
	return collection[AssetStat](CollectionAssets, false, "assets")
}

func AssetsForCode(code string) CollectionRequest[AssetStat] {
	return AllAssets().WithParam("asset_code", code)
}

func AssetsForIssuer(issuer string) CollectionRequest[AssetStat] {
	return AllAssets().WithParam("asset_issuer", issuer)
}

// Offers

func OfferRequest(offerID string) ResourceRequest[Offer] {
	return resource[Offer](CollectionOffers, false, "offers", offerID)
}

func AllOffers() CollectionRequest[Offer] {
	return collection[Offer](CollectionOffers, false, "offers")
}

func OffersForAccount(accountID string) CollectionRequest[Offer] {
	return collection[Offer](CollectionOffers, false, "accounts", accountID, "offers")
}

// Claimable balances

func ClaimableBalanceRequest(balanceID string) ResourceRequest[ClaimableBalance] {
	return resource[ClaimableBalance](CollectionClaimableBalances, false, "claimable_balances", balanceID)
}

func AllClaimableBalances() CollectionRequest[ClaimableBalance] {
	return collection[ClaimableBalance](CollectionClaimableBalances, false, "claimable_balances")
}

func ClaimableBalancesForClaimant(accountID string) CollectionRequest[ClaimableBalance] {
	return AllClaimableBalances().WithParam("claimant", accountID)
}

func ClaimableBalancesForSponsor(accountID string) CollectionRequest[ClaimableBalance] {
	return AllClaimableBalances().WithParam("sponsor", accountID)
}

func ClaimableBalancesForAsset(asset Asset) CollectionRequest[ClaimableBalance] {
	return AllClaimableBalances().WithParam("asset", asset.String())
}

// Liquidity pools

func LiquidityPoolRequest(poolID string) ResourceRequest[LiquidityPool] {
	return resource[LiquidityPool](CollectionLiquidityPools, false, "liquidity_pools", poolID)
}

func AllLiquidityPools() CollectionRequest[LiquidityPool] {
	return collection[LiquidityPool](CollectionLiquidityPools, false, "liquidity_pools")
}

// LiquidityPoolsForReserves filters pools holding all of the given assets.
func LiquidityPoolsForReserves(assets ...Asset) CollectionRequest[LiquidityPool] {
	reserves := ""

	for i, asset := range assets {
		if i > 0 {
			reserves += ","
		}

		reserves += asset.String()
	}

	return AllLiquidityPools().WithParam("reserves", reserves)
}

func LiquidityPoolsForAccount(accountID string) CollectionRequest[LiquidityPool] {
	return AllLiquidityPools().WithParam("account", accountID)
}

// Order book and market data

// OrderBookRequest fetches or streams the order book of selling/buying.
func OrderBookRequest(selling, buying Asset) ResourceRequest[OrderBookSummary] {
	req := resource[OrderBookSummary](CollectionOrderBook, true, "order_book")

	return ResourceRequest[OrderBookSummary]{req.withAsset("selling", selling).withAsset("buying", buying)}
}

// TradeAggregationsRequest buckets trades between base and counter.
// resolution must be one of the service's supported bucket sizes.
func TradeAggregationsRequest(base, counter Asset, start, end time.Time, resolution time.Duration) CollectionRequest[TradeAggregation] {
	return collection[TradeAggregation](CollectionTradeAggregations, false, "trade_aggregations").
		WithAsset("base", base).
		WithAsset("counter", counter).
		WithParam("start_time", strconv.FormatInt(start.UnixMilli(), 10)).
		WithParam("end_time", strconv.FormatInt(end.UnixMilli(), 10)).
		WithParam("resolution", strconv.FormatInt(resolution.Milliseconds(), 10))
}

// StrictReceivePaths finds paths that deliver destAmount of destAsset,
// paid from sourceAccount's balances.
func StrictReceivePaths(sourceAccount string, destAsset Asset, destAmount string) CollectionRequest[Path] {
	return collection[Path](CollectionPaths, false, "paths", "strict-receive").
		WithParam("source_account", sourceAccount).
		WithAsset("destination", destAsset).
		WithParam("destination_amount", destAmount)
}

// StrictSendPaths finds paths that send exactly sourceAmount of sourceAsset
// to destAccount.
func StrictSendPaths(sourceAsset Asset, sourceAmount, destAccount string) CollectionRequest[Path] {
	return collection[Path](CollectionPaths, false, "paths", "strict-send").
		WithAsset("source", sourceAsset).
		WithParam("source_amount", sourceAmount).
		WithParam("destination_account", destAccount)
}

func formatSequence(sequence uint32) string {
	return strconv.FormatUint(uint64(sequence), 10)
}
