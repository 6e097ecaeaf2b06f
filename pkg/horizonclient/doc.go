// Package horizonclient provides the primary entry point for constructing a
// Horizon API client that implements the horizon.Client interface.
//
// It layers configuration and HTTP transport on top of the resource
// interfaces, request builders and stream engine defined in the horizon
// package. Most applications import horizonclient to build a client, then use
// the returned horizon.Client to reach resource-specific clients such as
// Ledgers(), Payments() or Market().
//
// Quick start
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
//
//	  // Minimal: just a URL. The scheme defaults to https.
//	  cli, err := horizonclient.NewWithURL(ctx, "horizon-testnet.stellar.org")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with a full configuration:
//	  cli, err = horizonclient.New(ctx, &horizon.Config{
//	    HorizonURL:        horizonclient.PublicURL,
//	    ClientName:        "my-app",
//	    RequestsPerSecond: 5,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  page, err := cli.Ledgers().List(ctx, horizon.AllLedgers().WithLimit(10).WithOrder(horizon.OrderDesc))
//	  if err != nil { log.Fatal(err) }
//	  _ = page
//
//	  stream, err := cli.Payments().Stream(ctx, horizon.AllPayments().WithCursor(horizon.CursorNow))
//	  if err != nil { log.Fatal(err) }
//	  defer stream.Close()
//	}
//
// # Helpers
//
// The package also provides convenience constructors NewWithURL, NewPublic and
// NewTestnet.
package horizonclient
