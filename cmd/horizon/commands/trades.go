package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

var tradeTable = tableSpec[horizon.Trade]{
	headers: []any{"ID", "Type", "Base", "Base Amount", "Counter", "Counter Amount", "Price", "Closed"},
	row: func(trade horizon.Trade) []any {
		price := NotAvailable
		if trade.Price != nil {
			price = trade.Price.Ratio().StringFixed(7) //nolint:mnd // amount precision
		}

		return []any{
			trade.ID,
			trade.TradeType,
			tradeAssetLabel(trade.BaseAssetType, trade.BaseAssetCode),
			formatAmount(trade.BaseAmount),
			tradeAssetLabel(trade.CounterAssetType, trade.CounterAssetCode),
			formatAmount(trade.CounterAmount),
			price,
			formatTime(trade.LedgerCloseTime),
		}
	},
}

var offerTable = tableSpec[horizon.Offer]{
	headers: []any{"ID", "Seller", "Selling", "Buying", "Amount", "Price", "Last Modified"},
	row: func(offer horizon.Offer) []any {
		return []any{
			offer.ID,
			shorten(offer.Seller, 6),
			assetLabel(offer.Selling),
			assetLabel(offer.Buying),
			formatAmount(offer.Amount),
			offer.Price,
			formatTimePtr(offer.LastModifiedTime),
		}
	},
}

func tradeAssetLabel(assetType, code string) string {
	if assetType == horizon.AssetTypeNative {
		return horizon.AssetTypeNative
	}

	return orNotAvailable(code)
}

// assetLabel shows an asset with its issuer shortened.
func assetLabel(asset horizon.Asset) string {
	if asset.IsNative() {
		return horizon.AssetTypeNative
	}

	return asset.Code + ":" + shorten(asset.Issuer, 4)
}

func tradesCollection() *collectionCommand[horizon.Trade] {
	return &collectionCommand[horizon.Trade]{
		collection: horizon.CollectionTrades,
		noun:       "trades",
		client:     func(c horizon.Client) horizon.CollectionClient[horizon.Trade] { return c.Trades() },
		all:        horizon.AllTrades,
		table:      tradeTable,
		scopes: []scope[horizon.Trade]{
			{flag: "account", usage: "trades of this account", build: byID(horizon.TradesForAccount)},
			{flag: "offer", usage: "trades filling this offer", build: byID(horizon.TradesForOffer)},
			{flag: "liquidity-pool", usage: "trades against this liquidity pool", build: byID(horizon.TradesForLiquidityPool)},
		},
	}
}

func offersCollection() *collectionCommand[horizon.Offer] {
	return &collectionCommand[horizon.Offer]{
		collection: horizon.CollectionOffers,
		noun:       "offers",
		client:     func(c horizon.Client) horizon.CollectionClient[horizon.Offer] { return c.Offers() },
		all:        horizon.AllOffers,
		table:      offerTable,
		scopes: []scope[horizon.Offer]{
			{flag: "account", usage: "offers of this account", build: byID(horizon.OffersForAccount)},
		},
	}
}

// NewTradesCommand creates the trades command group.
func NewTradesCommand() *cobra.Command {
	trades := tradesCollection()

	cmd := &cobra.Command{
		Use:     "trades",
		Aliases: []string{"trade"},
		Short:   "Browse trades",
		Long:    "List and stream fills between offers and liquidity pools",
	}

	cmd.AddCommand(trades.newListCommand())
	cmd.AddCommand(trades.newStreamCommand())
	cmd.AddCommand(newTradesPairCommand(trades))

	return cmd
}

func newTradesPairCommand(trades *collectionCommand[horizon.Trade]) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "pair BASE COUNTER",
		Short: "List trades between two assets",
		Long: `List trades between two assets.

Assets are given as "native" or CODE:ISSUER.`,
		Args: cobra.ExactArgs(2), //nolint:mnd // base and counter
		RunE: func(cmd *cobra.Command, args []string) error {
			base, counter, err := parseAssetPair(args[0], args[1])
			if err != nil {
				return err
			}

			req, err := applyListFlags(horizon.TradesForAssetPair(base, counter), &flags)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			return trades.list(cmd.Context(), cmd.OutOrStdout(), client.Trades(), req, &flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func parseAssetPair(first, second string) (horizon.Asset, horizon.Asset, error) {
	a, err := horizon.ParseAsset(first)
	if err != nil {
		return horizon.Asset{}, horizon.Asset{}, fmt.Errorf("parsing asset: %w", err)
	}

	b, err := horizon.ParseAsset(second)
	if err != nil {
		return horizon.Asset{}, horizon.Asset{}, fmt.Errorf("parsing asset: %w", err)
	}

	return a, b, nil
}

// NewOffersCommand creates the offers command group.
func NewOffersCommand() *cobra.Command {
	offers := offersCollection()

	cmd := &cobra.Command{
		Use:     "offers",
		Aliases: []string{"offer"},
		Short:   "Browse offers",
		Long:    "List and inspect open offers",
	}

	cmd.AddCommand(offers.newListCommand())
	cmd.AddCommand(newGetCommand("offer", "OFFER_ID", offerTable,
		func(ctx context.Context, client horizon.Client, id string) (*horizon.Response[horizon.Offer], error) {
			return client.Offers().Get(ctx, id)
		}))

	return cmd
}
