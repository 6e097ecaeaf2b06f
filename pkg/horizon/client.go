package horizon

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fivetwenty-io/horizon-client/internal/constants"
)

// Config represents client configuration for building a horizon.Client.
type Config struct {
	// HorizonURL: base URL of the service (e.g., "https://horizon.stellar.org").
	// horizonclient.New trims a trailing slash and adds "https://" if no
	// scheme is present.
	HorizonURL string

	// ClientName and ClientVersion are sent as X-Client-Name and
	// X-Client-Version on every request.
	ClientName    string
	ClientVersion string
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Headers are added to every request.
	Headers map[string]string

	// HTTPTimeout bounds one-shot requests. Streams are bounded only by
	// their context.
	HTTPTimeout time.Duration
	// ConnectTimeout bounds dialing and the TLS handshake.
	ConnectTimeout time.Duration
	// RetryMax: transport-level retries for one-shot requests on 429, >=500
	// and connection errors. Zero, the default, surfaces every failure to
	// the caller.
	RetryMax int
	// RetryWaitMin: minimum backoff between transport retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between transport retries.
	RetryWaitMax time.Duration
	// RequestsPerSecond throttles requests on the client side. Zero disables it.
	RequestsPerSecond float64

	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// Interceptors run on every request after the built-in ones (client
	// headers, identity, request ID, throttling, debug logging).
	Interceptors *InterceptorChain

	// Stream configures event stream reconnection.
	Stream StreamConfig
}

// StreamConfig configures event stream reconnection.
type StreamConfig struct {
	// InitialBackoff is the first reconnect delay.
	InitialBackoff time.Duration
	// MaxBackoff caps the reconnect delay.
	MaxBackoff time.Duration
	// StableAfter is how long a connection must stay up before the delay
	// resets to InitialBackoff.
	StableAfter time.Duration
}

// WithDefaults fills zero fields.
func (c StreamConfig) WithDefaults() StreamConfig {
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = constants.DefaultStreamInitialBackoff
	}

	if c.MaxBackoff <= 0 {
		c.MaxBackoff = constants.DefaultStreamMaxBackoff
	}

	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}

	if c.StableAfter <= 0 {
		c.StableAfter = constants.DefaultStreamStableAfter
	}

	return c
}

// ResourceClient fetches single resources of one collection.
type ResourceClient[T any] interface {
	Get(ctx context.Context, id string) (*Response[T], error)
}

// CollectionClient lists, pages and streams one collection.
type CollectionClient[T any] interface {
	List(ctx context.Context, req CollectionRequest[T]) (*Page[T], error)
	Paginate(req CollectionRequest[T]) *Paginator[T]
	Stream(ctx context.Context, req CollectionRequest[T], opts ...StreamOption) (*EventStream[T], error)
}

// LedgersClient accesses ledgers.
type LedgersClient interface {
	CollectionClient[Ledger]
	Get(ctx context.Context, sequence uint32) (*Response[Ledger], error)
}

// TransactionsClient accesses transactions.
type TransactionsClient interface {
	CollectionClient[Transaction]
	ResourceClient[Transaction]
	Submit(ctx context.Context, envelopeXDR string) (*SubmissionResult, error)
}

// OperationsClient accesses operations and payments.
type OperationsClient interface {
	CollectionClient[Operation]
	ResourceClient[Operation]
}

// EffectsClient accesses effects.
type EffectsClient interface {
	CollectionClient[Effect]
}

// TradesClient accesses trades.
type TradesClient interface {
	CollectionClient[Trade]
}

// AccountsClient accesses accounts.
type AccountsClient interface {
	CollectionClient[Account]
	ResourceClient[Account]
	Data(ctx context.Context, accountID, key string) (*Response[AccountData], error)
}

// AssetsClient accesses asset statistics.
type AssetsClient interface {
	CollectionClient[AssetStat]
}

// OffersClient accesses offers.
type OffersClient interface {
	CollectionClient[Offer]
	ResourceClient[Offer]
}

// ClaimableBalancesClient accesses claimable balances.
type ClaimableBalancesClient interface {
	CollectionClient[ClaimableBalance]
	ResourceClient[ClaimableBalance]
}

// LiquidityPoolsClient accesses liquidity pools.
type LiquidityPoolsClient interface {
	CollectionClient[LiquidityPool]
	ResourceClient[LiquidityPool]
}

// MarketClient accesses order books, trade aggregations and paths.
type MarketClient interface {
	OrderBook(ctx context.Context, selling, buying Asset) (*Response[OrderBookSummary], error)
	StreamOrderBook(ctx context.Context, selling, buying Asset, opts ...StreamOption) (*EventStream[OrderBookSummary], error)
	TradeAggregations(ctx context.Context, req CollectionRequest[TradeAggregation]) (*Page[TradeAggregation], error)
	Paths(ctx context.Context, req CollectionRequest[Path]) (*Page[Path], error)
	FeeStats(ctx context.Context) (*Response[FeeStats], error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Ledgers() LedgersClient
	Transactions() TransactionsClient
	Operations() OperationsClient
	Payments() OperationsClient
	Effects() EffectsClient
	Trades() TradesClient
	Accounts() AccountsClient
	Assets() AssetsClient
	Offers() OffersClient
	ClaimableBalances() ClaimableBalancesClient
	LiquidityPools() LiquidityPoolsClient
	Market() MarketClient
}

// Client is the facade over one Horizon instance. It holds only immutable
// configuration and is safe for concurrent use.
type Client interface {
	Executor
	ResourceClients

	Root(ctx context.Context) (*Response[Root], error)
	Submit(ctx context.Context, envelopeXDR string) (*SubmissionResult, error)
}

func jsonRequest(target string) *TransportRequest {
	header := http.Header{}
	header.Set("Accept", constants.ContentTypeHAL+", "+constants.ContentTypeJSON)

	return &TransportRequest{Method: http.MethodGet, URL: target, Header: header}
}

// Fetch retrieves a single resource.
func Fetch[T any](ctx context.Context, exec Executor, req ResourceRequest[T]) (*Response[T], error) {
	target, err := req.URL(exec.BaseURL())
	if err != nil {
		return nil, err
	}

	raw, err := exec.Transport().Send(ctx, jsonRequest(target.String()))
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", req.Collection(), transportError(err))
	}

	resp, err := DecodeResponse[T](raw)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", req.Collection(), err)
	}

	return resp, nil
}

// FetchPage retrieves one page of a collection.
func FetchPage[T any](ctx context.Context, exec Executor, req CollectionRequest[T]) (*Page[T], error) {
	target, err := req.URL(exec.BaseURL())
	if err != nil {
		return nil, err
	}

	raw, err := exec.Transport().Send(ctx, jsonRequest(target.String()))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", req.Collection(), transportError(err))
	}

	page, err := DecodePage(raw, req)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", req.Collection(), err)
	}

	return page, nil
}
