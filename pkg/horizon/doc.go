// Package horizon provides types, interfaces, and helpers for working with a
// Stellar Horizon ledger-indexing API.
//
// # Overview
//
// The horizon package defines the resource types (e.g., Ledger, Transaction,
// Operation, Effect, Account) and one request model shared by both ways of
// reading them: request/response pages and server-sent event streams. A
// concrete client is provided by the horizonclient package, which wires
// configuration and the HTTP transport. Most consumers should import
// horizonclient to construct a client and then use the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/horizon-client/pkg/horizon"
//	  "github.com/fivetwenty-io/horizon-client/pkg/horizonclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := horizonclient.New(ctx, &horizon.Config{HorizonURL: "https://horizon-testnet.stellar.org"})
//	  if err != nil { log.Fatal(err) }
//
//	  page, err := cli.Ledgers().List(ctx, horizon.AllLedgers().WithLimit(20).WithOrder(horizon.OrderDesc))
//	  if err != nil { log.Fatal(err) }
//	  _ = page
//	}
//
// # Requests
//
// A request is an immutable value built by a constructor such as
// AllTransactions or PaymentsForAccount. Modifiers (WithCursor, WithLimit,
// WithOrder, WithAsset, ...) return copies. Rendering a request to a URL is
// pure.
//
// # Pagination
//
// Paginate returns a lazy Paginator that follows each page's next link. It
// never ends on its own: an empty page only means nothing new exists yet.
//
//	p := horizon.Paginate(cli, horizon.AllLedgers().WithLimit(200))
//	for page, err := range p.Pages(ctx) {
//	  if err != nil || page.Len() == 0 { break }
//	  _ = page.Records
//	}
//
// # Streaming
//
// StreamCollection opens an EventStream on collections that have a push
// feed. The stream reconnects with exponential backoff and resumes after the
// last delivered cursor, so consumers see each event once and in order.
//
//	s, err := cli.Payments().Stream(ctx, horizon.AllPayments().WithCursor(horizon.CursorNow))
//	if err != nil { log.Fatal(err) }
//	defer s.Close()
//	for op, err := range s.All() {
//	  if err != nil { break }
//	  _ = op
//	}
//
// # Errors
//
// Every failed call returns a *ServiceError whose Kind tells not-found,
// bad-request, rate-limited, server-error, transport and decode failures
// apart. Helpers such as IsNotFound and IsRateLimited wrap errors.Is. Rate
// limit headers are parsed on every response, failed ones included.
package horizon
