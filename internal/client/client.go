package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/horizon-client/internal/constants"
	"github.com/fivetwenty-io/horizon-client/internal/http"
	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// Client implements the horizon.Client interface.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	logger     horizon.Logger
	stream     horizon.StreamConfig

	// Resource clients
	ledgers           *LedgersClient
	transactions      *TransactionsClient
	operations        *OperationsClient
	payments          *OperationsClient
	effects           *EffectsClient
	trades            *TradesClient
	accounts          *AccountsClient
	assets            *AssetsClient
	offers            *OffersClient
	claimableBalances *ClaimableBalancesClient
	liquidityPools    *LiquidityPoolsClient
	market            *MarketClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *horizon.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.ClientName != "" {
		version := config.ClientVersion
		if version == "" {
			version = constants.DefaultClientVersion
		}

		httpOpts = append(httpOpts, http.WithClientIdentity(config.ClientName, version))
	}

	if len(config.Headers) > 0 {
		httpOpts = append(httpOpts, http.WithHeaders(config.Headers))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.ConnectTimeout > 0 {
		httpOpts = append(httpOpts, http.WithConnectTimeout(config.ConnectTimeout))
	}

	if config.RequestsPerSecond > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RequestsPerSecond, 1))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new Horizon client. HorizonURL must already carry a scheme;
// horizonclient.New normalizes user input before calling it.
func New(_ context.Context, config *horizon.Config) (*Client, error) {
	if config.HorizonURL == "" {
		return nil, horizon.ErrHorizonURLRequired
	}

	baseURL, err := url.Parse(config.HorizonURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", horizon.ErrInvalidHorizonURL, err)
	}

	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("%w: %q", horizon.ErrInvalidHorizonURL, config.HorizonURL)
	}

	// Relative references resolve under the base path only with a trailing slash.
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	baseURL.RawQuery = ""
	baseURL.Fragment = ""

	httpClient := http.NewClient(strings.TrimSuffix(baseURL.String(), "/"), createHTTPClientOptions(config)...)

	var logger horizon.Logger = horizon.NopLogger{}
	if config.Logger != nil {
		logger = config.Logger
	}

	client := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
		stream:     config.Stream.WithDefaults(),
	}

	// Initialize resource clients
	client.initializeResourceClients()

	return client, nil
}

// Transport implements horizon.Executor.
func (c *Client) Transport() horizon.Transport {
	return c.httpClient
}

// BaseURL implements horizon.Executor. The returned URL is a copy.
func (c *Client) BaseURL() *url.URL {
	clone := *c.baseURL

	return &clone
}

// Logger implements horizon.Executor.
func (c *Client) Logger() horizon.Logger {
	return c.logger
}

// StreamConfig implements horizon.Executor.
func (c *Client) StreamConfig() horizon.StreamConfig {
	return c.stream
}

// Root implements horizon.Client.Root.
func (c *Client) Root(ctx context.Context) (*horizon.Response[horizon.Root], error) {
	return horizon.Fetch(ctx, c, horizon.RootRequest())
}

// Submit implements horizon.Client.Submit.
func (c *Client) Submit(ctx context.Context, envelopeXDR string) (*horizon.SubmissionResult, error) {
	start := time.Now()

	result, err := horizon.Submit(ctx, c, envelopeXDR)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"duration":   time.Since(start).String(),
		"successful": result.Successful(),
	}

	if result.Failure != nil {
		fields["result_code"] = result.Failure.ResultCodes.Transaction
	}

	c.logger.Info("transaction submitted", fields)

	return result, nil
}

// Resource client accessors

// Ledgers implements horizon.Client.Ledgers.
func (c *Client) Ledgers() horizon.LedgersClient {
	return c.ledgers
}

// Transactions implements horizon.Client.Transactions.
func (c *Client) Transactions() horizon.TransactionsClient {
	return c.transactions
}

// Operations implements horizon.Client.Operations.
func (c *Client) Operations() horizon.OperationsClient {
	return c.operations
}

// Payments implements horizon.Client.Payments.
func (c *Client) Payments() horizon.OperationsClient {
	return c.payments
}

// Effects implements horizon.Client.Effects.
func (c *Client) Effects() horizon.EffectsClient {
	return c.effects
}

// Trades implements horizon.Client.Trades.
func (c *Client) Trades() horizon.TradesClient {
	return c.trades
}

// Accounts implements horizon.Client.Accounts.
func (c *Client) Accounts() horizon.AccountsClient {
	return c.accounts
}

// Assets implements horizon.Client.Assets.
func (c *Client) Assets() horizon.AssetsClient {
	return c.assets
}

// Offers implements horizon.Client.Offers.
func (c *Client) Offers() horizon.OffersClient {
	return c.offers
}

// ClaimableBalances implements horizon.Client.ClaimableBalances.
func (c *Client) ClaimableBalances() horizon.ClaimableBalancesClient {
	return c.claimableBalances
}

// LiquidityPools implements horizon.Client.LiquidityPools.
func (c *Client) LiquidityPools() horizon.LiquidityPoolsClient {
	return c.liquidityPools
}

// Market implements horizon.Client.Market.
func (c *Client) Market() horizon.MarketClient {
	return c.market
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.ledgers = NewLedgersClient(c)
	c.transactions = NewTransactionsClient(c)
	c.operations = NewOperationsClient(c, horizon.CollectionOperations)
	c.payments = NewOperationsClient(c, horizon.CollectionPayments)
	c.effects = NewEffectsClient(c)
	c.trades = NewTradesClient(c)
	c.accounts = NewAccountsClient(c)
	c.assets = NewAssetsClient(c)
	c.offers = NewOffersClient(c)
	c.claimableBalances = NewClaimableBalancesClient(c)
	c.liquidityPools = NewLiquidityPoolsClient(c)
	c.market = NewMarketClient(c)
}

// loggerAdapter adapts horizon.Logger to http.Logger.
type loggerAdapter struct {
	logger horizon.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}

var _ horizon.Client = (*Client)(nil)
