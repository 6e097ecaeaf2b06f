package horizon

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Collection tags the resource collection a Request targets.
type Collection string

const (
	CollectionRoot              Collection = "root"
	CollectionLedgers           Collection = "ledgers"
	CollectionTransactions      Collection = "transactions"
	CollectionOperations        Collection = "operations"
	CollectionPayments          Collection = "payments"
	CollectionEffects           Collection = "effects"
	CollectionTrades            Collection = "trades"
	CollectionAccounts          Collection = "accounts"
	CollectionAccountData       Collection = "account_data"
	CollectionAssets            Collection = "assets"
	CollectionOffers            Collection = "offers"
	CollectionClaimableBalances Collection = "claimable_balances"
	CollectionLiquidityPools    Collection = "liquidity_pools"
	CollectionOrderBook         Collection = "order_book"
	CollectionTradeAggregations Collection = "trade_aggregations"
	CollectionFeeStats          Collection = "fee_stats"
	CollectionPaths             Collection = "paths"
)

// Shape is the response shape a Request expects.
type Shape int

const (
	ShapeResource Shape = iota + 1
	ShapePage
)

// Order is the sort direction of a collection request.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Query parameter names shared by collection requests.
const (
	ParamCursor        = "cursor"
	ParamLimit         = "limit"
	ParamOrder         = "order"
	ParamIncludeFailed = "include_failed"
	ParamJoin          = "join"
)

// Request is an immutable description of one call. The set of
// implementations is closed: ResourceRequest and CollectionRequest.
type Request interface {
	Collection() Collection
	Shape() Shape
	Streamable() bool
	// URL renders the request against base. It is pure and deterministic.
	URL(base *url.URL) (*url.URL, error)

	sealed()
}

// endpoint holds what both request shapes share. Values are never mutated
// after construction; every modifier copies.
type endpoint struct {
	collection Collection
	segments   []string
	query      url.Values
	streamable bool
	// link is set for requests derived from a page link.
	link *url.URL
}

func newEndpoint(collection Collection, streamable bool, segments ...string) endpoint {
	return endpoint{
		collection: collection,
		segments:   segments,
		query:      url.Values{},
		streamable: streamable,
	}
}

func (e endpoint) Collection() Collection { return e.collection }
func (e endpoint) Streamable() bool       { return e.streamable }
func (e endpoint) sealed()                {}

// Param returns a rendered query parameter.
func (e endpoint) Param(key string) string {
	return e.query.Get(key)
}

func (e endpoint) URL(base *url.URL) (*url.URL, error) {
	var target *url.URL

	switch {
	case e.link != nil && e.link.IsAbs():
		target = cloneURL(e.link)
	case e.link != nil:
		if base == nil {
			return nil, fmt.Errorf("rendering %s request: %w", e.collection, ErrHorizonURLRequired)
		}

		target = base.ResolveReference(e.link)
	default:
		if base == nil {
			return nil, fmt.Errorf("rendering %s request: %w", e.collection, ErrHorizonURLRequired)
		}

		escaped := make([]string, len(e.segments))
		for i, segment := range e.segments {
			escaped[i] = url.PathEscape(segment)
		}

		target = base.JoinPath(escaped...)
	}

	target.RawQuery = e.query.Encode()
	target.Fragment = ""

	return target, nil
}

func (e endpoint) with(key, value string) endpoint {
	next := e
	next.query = cloneValues(e.query)

	if value == "" {
		next.query.Del(key)
	} else {
		next.query.Set(key, value)
	}

	return next
}

func (e endpoint) withAsset(prefix string, asset Asset) endpoint {
	next := e
	for key, value := range asset.params(prefix) {
		next = next.with(key, value)
	}

	return next
}

// fromLink builds an endpoint that targets href, keeping the collection tag.
func (e endpoint) fromLink(link Link) (endpoint, bool) {
	href := link.Resolve()
	if href == "" {
		return endpoint{}, false
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return endpoint{}, false
	}

	query := parsed.Query()
	parsed.RawQuery = ""

	return endpoint{
		collection: e.collection,
		query:      query,
		streamable: e.streamable,
		link:       parsed,
	}, true
}

// ResourceRequest targets a single resource of type T.
type ResourceRequest[T any] struct {
	endpoint
}

// Shape implements Request.
func (ResourceRequest[T]) Shape() Shape { return ShapeResource }

// WithParam returns a copy with the query parameter set. An empty value
// removes it.
func (r ResourceRequest[T]) WithParam(key, value string) ResourceRequest[T] {
	return ResourceRequest[T]{r.with(key, value)}
}

// CollectionRequest targets a page of T.
type CollectionRequest[T any] struct {
	endpoint
}

// Shape implements Request.
func (CollectionRequest[T]) Shape() Shape { return ShapePage }

// WithParam returns a copy with the query parameter set. An empty value
// removes it.
func (r CollectionRequest[T]) WithParam(key, value string) CollectionRequest[T] {
	return CollectionRequest[T]{r.with(key, value)}
}

// WithCursor returns a copy positioned after cursor.
func (r CollectionRequest[T]) WithCursor(cursor Cursor) CollectionRequest[T] {
	return r.WithParam(ParamCursor, string(cursor))
}

// WithLimit returns a copy with the page size set. Non-positive values clear it.
func (r CollectionRequest[T]) WithLimit(limit int) CollectionRequest[T] {
	if limit <= 0 {
		return r.WithParam(ParamLimit, "")
	}

	return r.WithParam(ParamLimit, strconv.Itoa(limit))
}

// WithOrder returns a copy with the sort order set.
func (r CollectionRequest[T]) WithOrder(order Order) CollectionRequest[T] {
	return r.WithParam(ParamOrder, string(order))
}

// WithIncludeFailed includes failed transactions in operation, payment and
// transaction collections.
func (r CollectionRequest[T]) WithIncludeFailed(include bool) CollectionRequest[T] {
	if !include {
		return r.WithParam(ParamIncludeFailed, "")
	}

	return r.WithParam(ParamIncludeFailed, "true")
}

// WithJoinTransactions embeds the parent transaction in each operation.
func (r CollectionRequest[T]) WithJoinTransactions() CollectionRequest[T] {
	return r.WithParam(ParamJoin, "transactions")
}

// WithAsset sets an asset filter. prefix is "", "selling", "buying", "base"
// or "counter" depending on the collection.
func (r CollectionRequest[T]) WithAsset(prefix string, asset Asset) CollectionRequest[T] {
	return CollectionRequest[T]{r.withAsset(prefix, asset)}
}

// Cursor returns the cursor parameter, if any.
func (r CollectionRequest[T]) Cursor() Cursor {
	return Cursor(r.query.Get(ParamCursor))
}

// Limit returns the page size parameter, or 0 when unset.
func (r CollectionRequest[T]) Limit() int {
	limit, err := strconv.Atoi(r.query.Get(ParamLimit))
	if err != nil {
		return 0
	}

	return limit
}

// Order returns the sort order parameter, defaulting to ascending.
func (r CollectionRequest[T]) Order() Order {
	if Order(r.query.Get(ParamOrder)) == OrderDesc {
		return OrderDesc
	}

	return OrderAsc
}

func cloneValues(values url.Values) url.Values {
	clone := make(url.Values, len(values))
	for key, vals := range values {
		clone[key] = append([]string(nil), vals...)
	}

	return clone
}

func cloneURL(u *url.URL) *url.URL {
	clone := *u
	if u.User != nil {
		user := *u.User
		clone.User = &user
	}

	return &clone
}

// Cursor is an opaque position within one collection's order.
type Cursor string

// CursorNow asks the service to start from the latest entry.
const CursorNow Cursor = "now"

// Compare orders two cursors of the same collection. Paging tokens are
// decimal numbers, optionally joined by '-' (effects, trades). ok is false
// when either token has another form; only equality is meaningful then.
func (c Cursor) Compare(other Cursor) (cmp int, ok bool) {
	left, okLeft := tokenParts(string(c))
	right, okRight := tokenParts(string(other))

	if !okLeft || !okRight || len(left) != len(right) {
		return 0, false
	}

	for i := range left {
		switch {
		case left[i] < right[i]:
			return -1, true
		case left[i] > right[i]:
			return 1, true
		}
	}

	return 0, true
}

// After reports whether c is strictly past other. Every cursor is after the
// empty cursor.
func (c Cursor) After(other Cursor) bool {
	if other == "" {
		return true
	}

	cmp, ok := c.Compare(other)
	if !ok {
		return c != other
	}

	return cmp > 0
}

func tokenParts(token string) ([]uint64, bool) {
	if token == "" {
		return nil, false
	}

	fields := strings.Split(token, "-")
	parts := make([]uint64, len(fields))

	for i, field := range fields {
		value, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, false
		}

		parts[i] = value
	}

	return parts, true
}
