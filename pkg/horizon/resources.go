package horizon

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// Pageable is implemented by resources that carry a paging token. The
// event stream falls back to it when a frame has no id.
type Pageable interface {
	PagingToken() string
}

// FlexInt64 accepts both JSON numbers and numeric strings. Horizon switched
// several fields from numbers to strings across releases.
type FlexInt64 int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0

		return nil
	}

	value, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err //nolint:wrapcheck // json.Unmarshaler contract
	}

	*f = FlexInt64(value)

	return nil
}

// Price is a rational price n/d.
type Price struct {
	N FlexInt64 `json:"n" yaml:"n"`
	D FlexInt64 `json:"d" yaml:"d"`
}

// Root is the service root document.
type Root struct {
	Links                        map[string]Link `json:"_links"                                yaml:"-"`
	HorizonVersion               string          `json:"horizon_version"                       yaml:"horizon_version"`
	CoreVersion                  string          `json:"core_version"                          yaml:"core_version"`
	IngestLatestLedger           uint32          `json:"ingest_latest_ledger"                  yaml:"ingest_latest_ledger"`
	HistoryLatestLedger          uint32          `json:"history_latest_ledger"                 yaml:"history_latest_ledger"`
	HistoryLatestLedgerClosedAt  time.Time       `json:"history_latest_ledger_closed_at"       yaml:"history_latest_ledger_closed_at"`
	HistoryElderLedger           uint32          `json:"history_elder_ledger"                  yaml:"history_elder_ledger"`
	CoreLatestLedger             uint32          `json:"core_latest_ledger"                    yaml:"core_latest_ledger"`
	NetworkPassphrase            string          `json:"network_passphrase"                    yaml:"network_passphrase"`
	CurrentProtocolVersion       int32           `json:"current_protocol_version"              yaml:"current_protocol_version"`
	SupportedProtocolVersion     int32           `json:"supported_protocol_version"            yaml:"supported_protocol_version"`
	CoreSupportedProtocolVersion int32           `json:"core_supported_protocol_version"       yaml:"core_supported_protocol_version"`
}

// Ledger is a closed ledger.
type Ledger struct {
	ID                         string    `json:"id"                           yaml:"id"`
	Token                      string    `json:"paging_token"                 yaml:"paging_token"`
	Hash                       string    `json:"hash"                         yaml:"hash"`
	PrevHash                   string    `json:"prev_hash"                    yaml:"prev_hash"`
	Sequence                   uint32    `json:"sequence"                     yaml:"sequence"`
	SuccessfulTransactionCount int32     `json:"successful_transaction_count" yaml:"successful_transaction_count"`
	FailedTransactionCount     int32     `json:"failed_transaction_count"     yaml:"failed_transaction_count"`
	OperationCount             int32     `json:"operation_count"              yaml:"operation_count"`
	TxSetOperationCount        int32     `json:"tx_set_operation_count"       yaml:"tx_set_operation_count"`
	ClosedAt                   time.Time `json:"closed_at"                    yaml:"closed_at"`
	TotalCoins                 string    `json:"total_coins"                  yaml:"total_coins"`
	FeePool                    string    `json:"fee_pool"                     yaml:"fee_pool"`
	BaseFeeInStroops           int32     `json:"base_fee_in_stroops"          yaml:"base_fee_in_stroops"`
	BaseReserveInStroops       int32     `json:"base_reserve_in_stroops"      yaml:"base_reserve_in_stroops"`
	MaxTxSetSize               int32     `json:"max_tx_set_size"              yaml:"max_tx_set_size"`
	ProtocolVersion            int32     `json:"protocol_version"             yaml:"protocol_version"`
	HeaderXDR                  string    `json:"header_xdr"                   yaml:"header_xdr"`
}

// PagingToken implements Pageable.
func (l Ledger) PagingToken() string { return l.Token }

// Transaction is a transaction applied to a ledger.
type Transaction struct {
	ID                    string    `json:"id"                      yaml:"id"`
	Token                 string    `json:"paging_token"            yaml:"paging_token"`
	Successful            bool      `json:"successful"              yaml:"successful"`
	Hash                  string    `json:"hash"                    yaml:"hash"`
	Ledger                uint32    `json:"ledger"                  yaml:"ledger"`
	CreatedAt             time.Time `json:"created_at"              yaml:"created_at"`
	SourceAccount         string    `json:"source_account"          yaml:"source_account"`
	AccountMuxed          string    `json:"account_muxed,omitempty" yaml:"account_muxed,omitempty"`
	SourceAccountSequence string    `json:"source_account_sequence" yaml:"source_account_sequence"`
	FeeAccount            string    `json:"fee_account"             yaml:"fee_account"`
	FeeCharged            FlexInt64 `json:"fee_charged"             yaml:"fee_charged"`
	MaxFee                FlexInt64 `json:"max_fee"                 yaml:"max_fee"`
	OperationCount        int32     `json:"operation_count"         yaml:"operation_count"`
	EnvelopeXDR           string    `json:"envelope_xdr"            yaml:"envelope_xdr"`
	ResultXDR             string    `json:"result_xdr"              yaml:"result_xdr"`
	ResultMetaXDR         string    `json:"result_meta_xdr"         yaml:"result_meta_xdr"`
	FeeMetaXDR            string    `json:"fee_meta_xdr"            yaml:"fee_meta_xdr"`
	MemoType              string    `json:"memo_type"               yaml:"memo_type"`
	Memo                  string    `json:"memo,omitempty"          yaml:"memo,omitempty"`
	Signatures            []string  `json:"signatures"              yaml:"signatures"`
}

// PagingToken implements Pageable.
func (t Transaction) PagingToken() string { return t.Token }

// AccountThresholds are the signature weight thresholds of an account.
type AccountThresholds struct {
	LowThreshold  uint8 `json:"low_threshold"  yaml:"low_threshold"`
	MedThreshold  uint8 `json:"med_threshold"  yaml:"med_threshold"`
	HighThreshold uint8 `json:"high_threshold" yaml:"high_threshold"`
}

// AccountFlags are the authorization flags of an issuing account.
type AccountFlags struct {
	AuthRequired        bool `json:"auth_required"         yaml:"auth_required"`
	AuthRevocable       bool `json:"auth_revocable"        yaml:"auth_revocable"`
	AuthImmutable       bool `json:"auth_immutable"        yaml:"auth_immutable"`
	AuthClawbackEnabled bool `json:"auth_clawback_enabled" yaml:"auth_clawback_enabled"`
}

// Balance is one trustline or the native balance of an account.
type Balance struct {
	Balance            string `json:"balance"                       yaml:"balance"`
	LiquidityPoolID    string `json:"liquidity_pool_id,omitempty"   yaml:"liquidity_pool_id,omitempty"`
	Limit              string `json:"limit,omitempty"               yaml:"limit,omitempty"`
	BuyingLiabilities  string `json:"buying_liabilities,omitempty"  yaml:"buying_liabilities,omitempty"`
	SellingLiabilities string `json:"selling_liabilities,omitempty" yaml:"selling_liabilities,omitempty"`
	Sponsor            string `json:"sponsor,omitempty"             yaml:"sponsor,omitempty"`
	LastModifiedLedger uint32 `json:"last_modified_ledger"          yaml:"last_modified_ledger"`
	IsAuthorized       *bool  `json:"is_authorized,omitempty"       yaml:"is_authorized,omitempty"`
	Asset              `yaml:",inline"`
}

// Signer is an account signer.
type Signer struct {
	Weight  int32  `json:"weight"            yaml:"weight"`
	Key     string `json:"key"               yaml:"key"`
	Type    string `json:"type"              yaml:"type"`
	Sponsor string `json:"sponsor,omitempty" yaml:"sponsor,omitempty"`
}

// Account is a ledger account.
type Account struct {
	ID                   string            `json:"id"                              yaml:"id"`
	AccountID            string            `json:"account_id"                      yaml:"account_id"`
	Sequence             string            `json:"sequence"                        yaml:"sequence"`
	SequenceLedger       uint32            `json:"sequence_ledger,omitempty"       yaml:"sequence_ledger,omitempty"`
	SubentryCount        int32             `json:"subentry_count"                  yaml:"subentry_count"`
	InflationDestination string            `json:"inflation_destination,omitempty" yaml:"inflation_destination,omitempty"`
	HomeDomain           string            `json:"home_domain,omitempty"           yaml:"home_domain,omitempty"`
	LastModifiedLedger   uint32            `json:"last_modified_ledger"            yaml:"last_modified_ledger"`
	LastModifiedTime     *time.Time        `json:"last_modified_time,omitempty"    yaml:"last_modified_time,omitempty"`
	Thresholds           AccountThresholds `json:"thresholds"                      yaml:"thresholds"`
	Flags                AccountFlags      `json:"flags"                           yaml:"flags"`
	Balances             []Balance         `json:"balances"                        yaml:"balances"`
	Signers              []Signer          `json:"signers"                         yaml:"signers"`
	Data                 map[string]string `json:"data"                            yaml:"data"`
	NumSponsoring        uint32            `json:"num_sponsoring"                  yaml:"num_sponsoring"`
	NumSponsored         uint32            `json:"num_sponsored"                   yaml:"num_sponsored"`
	Sponsor              string            `json:"sponsor,omitempty"               yaml:"sponsor,omitempty"`
	Token                string            `json:"paging_token"                    yaml:"paging_token"`
}

// PagingToken implements Pageable.
func (a Account) PagingToken() string { return a.Token }

// AccountData is one data entry of an account. Value is base64.
type AccountData struct {
	Value   string `json:"value"             yaml:"value"`
	Sponsor string `json:"sponsor,omitempty" yaml:"sponsor,omitempty"`
}

// OperationBase holds the fields every operation type shares.
type OperationBase struct {
	ID                    string       `json:"id"                     yaml:"id"`
	Token                 string       `json:"paging_token"           yaml:"paging_token"`
	TransactionSuccessful bool         `json:"transaction_successful" yaml:"transaction_successful"`
	SourceAccount         string       `json:"source_account"         yaml:"source_account"`
	Type                  string       `json:"type"                   yaml:"type"`
	TypeI                 int32        `json:"type_i"                 yaml:"type_i"`
	CreatedAt             time.Time    `json:"created_at"             yaml:"created_at"`
	TransactionHash       string       `json:"transaction_hash"       yaml:"transaction_hash"`
	Transaction           *Transaction `json:"transaction,omitempty"  yaml:"transaction,omitempty"`
}

// Operation is any operation. Type-specific fields are kept undecoded in
// Attributes and read with Attribute.
type Operation struct {
	OperationBase `yaml:",inline"`

	Attributes map[string]json.RawMessage `json:"-" yaml:"-"`
}

var operationBaseKeys = []string{
	"_links", "id", "paging_token", "transaction_successful", "source_account",
	"type", "type_i", "created_at", "transaction_hash", "transaction",
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Operation) UnmarshalJSON(data []byte) error {
	attrs, err := splitAttributes(data, &o.OperationBase, operationBaseKeys)
	if err != nil {
		return err
	}

	o.Attributes = attrs

	return nil
}

// MarshalJSON implements json.Marshaler.
func (o Operation) MarshalJSON() ([]byte, error) {
	return joinAttributes(o.OperationBase, o.Attributes)
}

// PagingToken implements Pageable.
func (o Operation) PagingToken() string { return o.Token }

// Attribute decodes a type-specific field into v.
func (o Operation) Attribute(key string, v interface{}) error {
	return decodeAttribute(o.Attributes, key, v)
}

// EffectBase holds the fields every effect type shares.
type EffectBase struct {
	ID        string    `json:"id"           yaml:"id"`
	Token     string    `json:"paging_token" yaml:"paging_token"`
	Account   string    `json:"account"      yaml:"account"`
	Type      string    `json:"type"         yaml:"type"`
	TypeI     int32     `json:"type_i"       yaml:"type_i"`
	CreatedAt time.Time `json:"created_at"   yaml:"created_at"`
}

// Effect is any effect. Type-specific fields are kept in Attributes.
type Effect struct {
	EffectBase `yaml:",inline"`

	Attributes map[string]json.RawMessage `json:"-" yaml:"-"`
}

var effectBaseKeys = []string{"_links", "id", "paging_token", "account", "type", "type_i", "created_at"}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Effect) UnmarshalJSON(data []byte) error {
	attrs, err := splitAttributes(data, &e.EffectBase, effectBaseKeys)
	if err != nil {
		return err
	}

	e.Attributes = attrs

	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Effect) MarshalJSON() ([]byte, error) {
	return joinAttributes(e.EffectBase, e.Attributes)
}

// PagingToken implements Pageable.
func (e Effect) PagingToken() string { return e.Token }

// Attribute decodes a type-specific field into v.
func (e Effect) Attribute(key string, v interface{}) error {
	return decodeAttribute(e.Attributes, key, v)
}

// Trade is a fill between an offer and an offer or liquidity pool.
type Trade struct {
	ID                     string    `json:"id"                                  yaml:"id"`
	Token                  string    `json:"paging_token"                        yaml:"paging_token"`
	LedgerCloseTime        time.Time `json:"ledger_close_time"                   yaml:"ledger_close_time"`
	OfferID                string    `json:"offer_id,omitempty"                  yaml:"offer_id,omitempty"`
	TradeType              string    `json:"trade_type"                          yaml:"trade_type"`
	LiquidityPoolFeeBP     uint32    `json:"liquidity_pool_fee_bp,omitempty"     yaml:"liquidity_pool_fee_bp,omitempty"`
	BaseLiquidityPoolID    string    `json:"base_liquidity_pool_id,omitempty"    yaml:"base_liquidity_pool_id,omitempty"`
	BaseOfferID            string    `json:"base_offer_id,omitempty"             yaml:"base_offer_id,omitempty"`
	BaseAccount            string    `json:"base_account,omitempty"              yaml:"base_account,omitempty"`
	BaseAmount             string    `json:"base_amount"                         yaml:"base_amount"`
	BaseAssetType          string    `json:"base_asset_type"                     yaml:"base_asset_type"`
	BaseAssetCode          string    `json:"base_asset_code,omitempty"           yaml:"base_asset_code,omitempty"`
	BaseAssetIssuer        string    `json:"base_asset_issuer,omitempty"         yaml:"base_asset_issuer,omitempty"`
	CounterLiquidityPoolID string    `json:"counter_liquidity_pool_id,omitempty" yaml:"counter_liquidity_pool_id,omitempty"`
	CounterOfferID         string    `json:"counter_offer_id,omitempty"          yaml:"counter_offer_id,omitempty"`
	CounterAccount         string    `json:"counter_account,omitempty"           yaml:"counter_account,omitempty"`
	CounterAmount          string    `json:"counter_amount"                      yaml:"counter_amount"`
	CounterAssetType       string    `json:"counter_asset_type"                  yaml:"counter_asset_type"`
	CounterAssetCode       string    `json:"counter_asset_code,omitempty"        yaml:"counter_asset_code,omitempty"`
	CounterAssetIssuer     string    `json:"counter_asset_issuer,omitempty"      yaml:"counter_asset_issuer,omitempty"`
	BaseIsSeller           bool      `json:"base_is_seller"                      yaml:"base_is_seller"`
	Price                  *Price    `json:"price,omitempty"                     yaml:"price,omitempty"`
}

// PagingToken implements Pageable.
func (t Trade) PagingToken() string { return t.Token }

// Offer is an open offer on the order book.
type Offer struct {
	ID                 string     `json:"id"                           yaml:"id"`
	Token              string     `json:"paging_token"                 yaml:"paging_token"`
	Seller             string     `json:"seller"                       yaml:"seller"`
	Selling            Asset      `json:"selling"                      yaml:"selling"`
	Buying             Asset      `json:"buying"                       yaml:"buying"`
	Amount             string     `json:"amount"                       yaml:"amount"`
	PriceR             Price      `json:"price_r"                      yaml:"price_r"`
	Price              string     `json:"price"                        yaml:"price"`
	LastModifiedLedger uint32     `json:"last_modified_ledger"         yaml:"last_modified_ledger"`
	LastModifiedTime   *time.Time `json:"last_modified_time,omitempty" yaml:"last_modified_time,omitempty"`
	Sponsor            string     `json:"sponsor,omitempty"            yaml:"sponsor,omitempty"`
}

// PagingToken implements Pageable.
func (o Offer) PagingToken() string { return o.Token }

// AssetStat summarizes one issued asset.
type AssetStat struct {
	Asset                   `yaml:",inline"`
	Token                   string `json:"paging_token"              yaml:"paging_token"`
	NumClaimableBalances    int32  `json:"num_claimable_balances"    yaml:"num_claimable_balances"`
	NumLiquidityPools       int32  `json:"num_liquidity_pools"       yaml:"num_liquidity_pools"`
	NumContracts            int32  `json:"num_contracts"             yaml:"num_contracts"`
	ClaimableBalancesAmount string `json:"claimable_balances_amount" yaml:"claimable_balances_amount"`
	LiquidityPoolsAmount    string `json:"liquidity_pools_amount"    yaml:"liquidity_pools_amount"`
	ContractsAmount         string `json:"contracts_amount"          yaml:"contracts_amount"`
	Accounts                struct {
		Authorized                      int32 `json:"authorized"                         yaml:"authorized"`
		AuthorizedToMaintainLiabilities int32 `json:"authorized_to_maintain_liabilities" yaml:"authorized_to_maintain_liabilities"`
		Unauthorized                    int32 `json:"unauthorized"                       yaml:"unauthorized"`
	} `json:"accounts" yaml:"accounts"`
	Balances struct {
		Authorized                      string `json:"authorized"                         yaml:"authorized"`
		AuthorizedToMaintainLiabilities string `json:"authorized_to_maintain_liabilities" yaml:"authorized_to_maintain_liabilities"`
		Unauthorized                    string `json:"unauthorized"                       yaml:"unauthorized"`
	} `json:"balances" yaml:"balances"`
	Flags AccountFlags `json:"flags" yaml:"flags"`
}

// PagingToken implements Pageable.
func (a AssetStat) PagingToken() string { return a.Token }

// Claimant may claim a balance when its predicate holds.
type Claimant struct {
	Destination string          `json:"destination" yaml:"destination"`
	Predicate   json.RawMessage `json:"predicate"   yaml:"-"`
}

// ClaimableBalance is a balance set aside for claimants.
type ClaimableBalance struct {
	ID                 string     `json:"id"                           yaml:"id"`
	Token              string     `json:"paging_token"                 yaml:"paging_token"`
	Asset              string     `json:"asset"                        yaml:"asset"`
	Amount             string     `json:"amount"                       yaml:"amount"`
	Sponsor            string     `json:"sponsor,omitempty"            yaml:"sponsor,omitempty"`
	LastModifiedLedger uint32     `json:"last_modified_ledger"         yaml:"last_modified_ledger"`
	LastModifiedTime   *time.Time `json:"last_modified_time,omitempty" yaml:"last_modified_time,omitempty"`
	Claimants          []Claimant `json:"claimants"                    yaml:"claimants"`
	Flags              struct {
		ClawbackEnabled bool `json:"clawback_enabled" yaml:"clawback_enabled"`
	} `json:"flags" yaml:"flags"`
}

// PagingToken implements Pageable.
func (c ClaimableBalance) PagingToken() string { return c.Token }

// Reserve is one side of a liquidity pool.
type Reserve struct {
	Asset  string `json:"asset"  yaml:"asset"`
	Amount string `json:"amount" yaml:"amount"`
}

// LiquidityPool is a constant-product pool.
type LiquidityPool struct {
	ID                 string     `json:"id"                           yaml:"id"`
	Token              string     `json:"paging_token"                 yaml:"paging_token"`
	FeeBP              uint32     `json:"fee_bp"                       yaml:"fee_bp"`
	Type               string     `json:"type"                         yaml:"type"`
	TotalTrustlines    FlexInt64  `json:"total_trustlines"             yaml:"total_trustlines"`
	TotalShares        string     `json:"total_shares"                 yaml:"total_shares"`
	Reserves           []Reserve  `json:"reserves"                     yaml:"reserves"`
	LastModifiedLedger uint32     `json:"last_modified_ledger"         yaml:"last_modified_ledger"`
	LastModifiedTime   *time.Time `json:"last_modified_time,omitempty" yaml:"last_modified_time,omitempty"`
}

// PagingToken implements Pageable.
func (l LiquidityPool) PagingToken() string { return l.Token }

// PriceLevel is one aggregated level of an order book.
type PriceLevel struct {
	PriceR Price  `json:"price_r" yaml:"price_r"`
	Price  string `json:"price"   yaml:"price"`
	Amount string `json:"amount"  yaml:"amount"`
}

// OrderBookSummary is the order book for one asset pair.
type OrderBookSummary struct {
	Bids    []PriceLevel `json:"bids"    yaml:"bids"`
	Asks    []PriceLevel `json:"asks"    yaml:"asks"`
	Base    Asset        `json:"base"    yaml:"base"`
	Counter Asset        `json:"counter" yaml:"counter"`
}

// FeeDistribution is a percentile breakdown of fees in stroops.
type FeeDistribution struct {
	Max  FlexInt64 `json:"max"  yaml:"max"`
	Min  FlexInt64 `json:"min"  yaml:"min"`
	Mode FlexInt64 `json:"mode" yaml:"mode"`
	P10  FlexInt64 `json:"p10"  yaml:"p10"`
	P20  FlexInt64 `json:"p20"  yaml:"p20"`
	P30  FlexInt64 `json:"p30"  yaml:"p30"`
	P40  FlexInt64 `json:"p40"  yaml:"p40"`
	P50  FlexInt64 `json:"p50"  yaml:"p50"`
	P60  FlexInt64 `json:"p60"  yaml:"p60"`
	P70  FlexInt64 `json:"p70"  yaml:"p70"`
	P80  FlexInt64 `json:"p80"  yaml:"p80"`
	P90  FlexInt64 `json:"p90"  yaml:"p90"`
	P95  FlexInt64 `json:"p95"  yaml:"p95"`
	P99  FlexInt64 `json:"p99"  yaml:"p99"`
}

// FeeStats reports recent fee levels.
type FeeStats struct {
	LastLedger          FlexInt64       `json:"last_ledger"           yaml:"last_ledger"`
	LastLedgerBaseFee   FlexInt64       `json:"last_ledger_base_fee"  yaml:"last_ledger_base_fee"`
	LedgerCapacityUsage string          `json:"ledger_capacity_usage" yaml:"ledger_capacity_usage"`
	FeeCharged          FeeDistribution `json:"fee_charged"           yaml:"fee_charged"`
	MaxFee              FeeDistribution `json:"max_fee"               yaml:"max_fee"`
}

// TradeAggregation is one OHLC bucket.
type TradeAggregation struct {
	Timestamp     FlexInt64 `json:"timestamp"      yaml:"timestamp"`
	TradeCount    FlexInt64 `json:"trade_count"    yaml:"trade_count"`
	BaseVolume    string    `json:"base_volume"    yaml:"base_volume"`
	CounterVolume string    `json:"counter_volume" yaml:"counter_volume"`
	Average       string    `json:"avg"            yaml:"avg"`
	High          string    `json:"high"           yaml:"high"`
	HighR         Price     `json:"high_r"         yaml:"high_r"`
	Low           string    `json:"low"            yaml:"low"`
	LowR          Price     `json:"low_r"          yaml:"low_r"`
	Open          string    `json:"open"           yaml:"open"`
	OpenR         Price     `json:"open_r"         yaml:"open_r"`
	Close         string    `json:"close"          yaml:"close"`
	CloseR        Price     `json:"close_r"        yaml:"close_r"`
}

// Path is one payment path found by a path search.
type Path struct {
	SourceAssetType        string  `json:"source_asset_type"                  yaml:"source_asset_type"`
	SourceAssetCode        string  `json:"source_asset_code,omitempty"        yaml:"source_asset_code,omitempty"`
	SourceAssetIssuer      string  `json:"source_asset_issuer,omitempty"      yaml:"source_asset_issuer,omitempty"`
	SourceAmount           string  `json:"source_amount"                      yaml:"source_amount"`
	DestinationAssetType   string  `json:"destination_asset_type"             yaml:"destination_asset_type"`
	DestinationAssetCode   string  `json:"destination_asset_code,omitempty"   yaml:"destination_asset_code,omitempty"`
	DestinationAssetIssuer string  `json:"destination_asset_issuer,omitempty" yaml:"destination_asset_issuer,omitempty"`
	DestinationAmount      string  `json:"destination_amount"                 yaml:"destination_amount"`
	Path                   []Asset `json:"path"                               yaml:"path"`
}

func splitAttributes(data []byte, base interface{}, known []string) (map[string]json.RawMessage, error) {
	err := json.Unmarshal(data, base)
	if err != nil {
		return nil, err //nolint:wrapcheck // json.Unmarshaler contract
	}

	var attrs map[string]json.RawMessage

	err = json.Unmarshal(data, &attrs)
	if err != nil {
		return nil, err //nolint:wrapcheck // json.Unmarshaler contract
	}

	for _, key := range known {
		delete(attrs, key)
	}

	return attrs, nil
}

func joinAttributes(base interface{}, attrs map[string]json.RawMessage) ([]byte, error) {
	encoded, err := json.Marshal(base)
	if err != nil {
		return nil, err //nolint:wrapcheck // json.Marshaler contract
	}

	if len(attrs) == 0 {
		return encoded, nil
	}

	merged := make(map[string]json.RawMessage, len(attrs))

	err = json.Unmarshal(encoded, &merged)
	if err != nil {
		return nil, err //nolint:wrapcheck // json.Marshaler contract
	}

	for key, value := range attrs {
		if _, exists := merged[key]; !exists {
			merged[key] = value
		}
	}

	return json.Marshal(merged)
}

func decodeAttribute(attrs map[string]json.RawMessage, key string, v interface{}) error {
	raw, ok := attrs[key]
	if !ok {
		return fmt.Errorf("attribute %q: %w", key, ErrNotFound)
	}

	err := json.Unmarshal(raw, v)
	if err != nil {
		return fmt.Errorf("parsing attribute %q: %w", key, err)
	}

	return nil
}
