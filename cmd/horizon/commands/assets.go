package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

var assetTable = tableSpec[horizon.AssetStat]{
	headers: []any{"Code", "Issuer", "Type", "Authorized Accounts", "Authorized Balance", "Pools", "Claimable Balances"},
	row: func(asset horizon.AssetStat) []any {
		return []any{
			orNotAvailable(asset.Code),
			orNotAvailable(asset.Issuer),
			asset.Type,
			strconv.Itoa(int(asset.Accounts.Authorized)),
			formatAmount(asset.Balances.Authorized),
			strconv.Itoa(int(asset.NumLiquidityPools)),
			strconv.Itoa(int(asset.NumClaimableBalances)),
		}
	},
}

var claimableBalanceTable = tableSpec[horizon.ClaimableBalance]{
	headers: []any{"ID", "Asset", "Amount", "Claimants", "Sponsor", "Last Modified"},
	row: func(balance horizon.ClaimableBalance) []any {
		claimants := make([]string, 0, len(balance.Claimants))
		for _, claimant := range balance.Claimants {
			claimants = append(claimants, shorten(claimant.Destination, 4))
		}

		return []any{
			shorten(balance.ID, 8),
			shortenAsset(balance.Asset),
			formatAmount(balance.Amount),
			strings.Join(claimants, ", "),
			orNotAvailable(shorten(balance.Sponsor, 6)),
			strconv.FormatUint(uint64(balance.LastModifiedLedger), 10),
		}
	},
}

var liquidityPoolTable = tableSpec[horizon.LiquidityPool]{
	headers: []any{"ID", "Fee (bp)", "Trustlines", "Shares", "Reserves", "Last Modified"},
	row: func(pool horizon.LiquidityPool) []any {
		reserves := make([]string, 0, len(pool.Reserves))
		for _, reserve := range pool.Reserves {
			reserves = append(reserves, formatAmount(reserve.Amount)+" "+shortenAsset(reserve.Asset))
		}

		return []any{
			shorten(pool.ID, 8),
			strconv.FormatUint(uint64(pool.FeeBP), 10),
			strconv.FormatInt(int64(pool.TotalTrustlines), 10),
			formatAmount(pool.TotalShares),
			strings.Join(reserves, " / "),
			strconv.FormatUint(uint64(pool.LastModifiedLedger), 10),
		}
	},
}

// shortenAsset shortens the issuer of a canonical "CODE:ISSUER" string.
func shortenAsset(value string) string {
	code, issuer, found := strings.Cut(value, ":")
	if !found {
		return value
	}

	return code + ":" + shorten(issuer, 4)
}

func assetsCollection() *collectionCommand[horizon.AssetStat] {
	return &collectionCommand[horizon.AssetStat]{
		collection: horizon.CollectionAssets,
		noun:       "assets",
		client:     func(c horizon.Client) horizon.CollectionClient[horizon.AssetStat] { return c.Assets() },
		all:        horizon.AllAssets,
		table:      assetTable,
		scopes: []scope[horizon.AssetStat]{
			{flag: "code", usage: "assets with this code", build: byID(horizon.AssetsForCode)},
			{flag: "issuer", usage: "assets issued by this account", build: byID(horizon.AssetsForIssuer)},
		},
	}
}

func claimableBalancesCollection() *collectionCommand[horizon.ClaimableBalance] {
	return &collectionCommand[horizon.ClaimableBalance]{
		collection: horizon.CollectionClaimableBalances,
		noun:       "claimable balances",
		client:     func(c horizon.Client) horizon.CollectionClient[horizon.ClaimableBalance] { return c.ClaimableBalances() },
		all:        horizon.AllClaimableBalances,
		table:      claimableBalanceTable,
		scopes: []scope[horizon.ClaimableBalance]{
			{flag: "claimant", usage: "balances claimable by this account", build: byID(horizon.ClaimableBalancesForClaimant)},
			{flag: "sponsor", usage: "balances sponsored by this account", build: byID(horizon.ClaimableBalancesForSponsor)},
			{flag: "asset", usage: "balances of this asset (native or CODE:ISSUER)", build: byAsset(horizon.ClaimableBalancesForAsset)},
		},
	}
}

func liquidityPoolsCollection() *collectionCommand[horizon.LiquidityPool] {
	return &collectionCommand[horizon.LiquidityPool]{
		collection: horizon.CollectionLiquidityPools,
		noun:       "liquidity pools",
		client:     func(c horizon.Client) horizon.CollectionClient[horizon.LiquidityPool] { return c.LiquidityPools() },
		all:        horizon.AllLiquidityPools,
		table:      liquidityPoolTable,
		scopes: []scope[horizon.LiquidityPool]{
			{flag: "account", usage: "pools this account holds shares in", build: byID(horizon.LiquidityPoolsForAccount)},
			{flag: "reserves", usage: "pools holding these comma separated assets", build: byReserves},
		},
	}
}

func byReserves(value string) (horizon.CollectionRequest[horizon.LiquidityPool], error) {
	parts := strings.Split(value, ",")
	assets := make([]horizon.Asset, 0, len(parts))

	for _, part := range parts {
		asset, err := horizon.ParseAsset(strings.TrimSpace(part))
		if err != nil {
			return horizon.CollectionRequest[horizon.LiquidityPool]{}, fmt.Errorf("parsing asset: %w", err)
		}

		assets = append(assets, asset)
	}

	return horizon.LiquidityPoolsForReserves(assets...), nil
}

// NewAssetsCommand creates the assets command group.
func NewAssetsCommand() *cobra.Command {
	assets := assetsCollection()

	cmd := &cobra.Command{
		Use:     "assets",
		Aliases: []string{"asset"},
		Short:   "Browse issued assets",
		Long:    "List statistics of issued assets",
	}

	cmd.AddCommand(assets.newListCommand())

	return cmd
}

// NewClaimableBalancesCommand creates the claimable-balances command group.
func NewClaimableBalancesCommand() *cobra.Command {
	balances := claimableBalancesCollection()

	cmd := &cobra.Command{
		Use:     "claimable-balances",
		Aliases: []string{"claimable-balance", "cb"},
		Short:   "Browse claimable balances",
		Long:    "List and inspect balances set aside for claimants",
	}

	cmd.AddCommand(balances.newListCommand())
	cmd.AddCommand(newGetCommand("claimable balance", "BALANCE_ID", claimableBalanceTable,
		func(ctx context.Context, client horizon.Client, id string) (*horizon.Response[horizon.ClaimableBalance], error) {
			return client.ClaimableBalances().Get(ctx, id)
		}))

	return cmd
}

// NewLiquidityPoolsCommand creates the liquidity-pools command group.
func NewLiquidityPoolsCommand() *cobra.Command {
	pools := liquidityPoolsCollection()

	cmd := &cobra.Command{
		Use:     "liquidity-pools",
		Aliases: []string{"liquidity-pool", "pools", "lp"},
		Short:   "Browse liquidity pools",
		Long:    "List and inspect constant-product liquidity pools",
	}

	cmd.AddCommand(pools.newListCommand())
	cmd.AddCommand(newLiquidityPoolsGetCommand())

	return cmd
}

func newLiquidityPoolsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get POOL_ID",
		Short: "Get liquidity pool details",
		Long:  "Display a liquidity pool with each of its reserves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.LiquidityPools().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get liquidity pool: %w", err)
			}

			renderer := &OutputRenderer[horizon.LiquidityPool]{RenderTable: renderLiquidityPool}

			return renderer.Render(cmd.OutOrStdout(), resp.Data, outputFormat())
		},
	}
}

func renderLiquidityPool(w io.Writer, pool horizon.LiquidityPool) error {
	table := newTable(w, "Property", "Value")
	_ = table.Append("ID", pool.ID)
	_ = table.Append("Type", pool.Type)
	_ = table.Append("Fee (bp)", strconv.FormatUint(uint64(pool.FeeBP), 10))
	_ = table.Append("Trustlines", strconv.FormatInt(int64(pool.TotalTrustlines), 10))
	_ = table.Append("Total Shares", formatAmount(pool.TotalShares))
	_ = table.Append("Last Modified", formatTimePtr(pool.LastModifiedTime))

	err := renderTable(table)
	if err != nil {
		return err
	}

	if len(pool.Reserves) == 0 {
		return nil
	}

	_, _ = fmt.Fprintln(w, "\nReserves:")

	reserves := newTable(w, "Asset", "Amount")
	for _, reserve := range pool.Reserves {
		_ = reserves.Append(reserve.Asset, formatAmount(reserve.Amount))
	}

	return renderTable(reserves)
}
