package commands

import (
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

var accountTable = tableSpec[horizon.Account]{
	headers: []any{"Account", "Sequence", "Balances", "Signers", "Subentries", "Home Domain", "Last Modified"},
	row: func(account horizon.Account) []any {
		return []any{
			account.AccountID,
			account.Sequence,
			strconv.Itoa(len(account.Balances)),
			strconv.Itoa(len(account.Signers)),
			strconv.Itoa(int(account.SubentryCount)),
			orNotAvailable(account.HomeDomain),
			strconv.FormatUint(uint64(account.LastModifiedLedger), 10),
		}
	},
}

var balanceTable = tableSpec[horizon.Balance]{
	headers: []any{"Asset", "Balance", "Limit", "Buying Liabilities", "Selling Liabilities"},
	row: func(balance horizon.Balance) []any {
		asset := balance.Asset.String()
		if balance.LiquidityPoolID != "" {
			asset = "pool:" + shorten(balance.LiquidityPoolID, 8)
		}

		return []any{
			asset,
			formatAmount(balance.Balance),
			formatAmount(balance.Limit),
			formatAmount(balance.BuyingLiabilities),
			formatAmount(balance.SellingLiabilities),
		}
	},
}

func accountsCollection() *collectionCommand[horizon.Account] {
	return &collectionCommand[horizon.Account]{
		collection: horizon.CollectionAccounts,
		noun:       "accounts",
		client:     func(c horizon.Client) horizon.CollectionClient[horizon.Account] { return c.Accounts() },
		all:        horizon.AllAccounts,
		table:      accountTable,
		scopes: []scope[horizon.Account]{
			{flag: "signer", usage: "accounts with this signer", build: byID(horizon.AccountsForSigner)},
			{flag: "asset", usage: "accounts holding this asset (CODE:ISSUER)", build: byAsset(horizon.AccountsForAsset)},
			{flag: "sponsor", usage: "accounts sponsored by this account", build: byID(horizon.AccountsForSponsor)},
			{flag: "liquidity-pool", usage: "accounts participating in this liquidity pool", build: byID(horizon.AccountsForLiquidityPool)},
		},
	}
}

// NewAccountsCommand creates the accounts command group.
func NewAccountsCommand() *cobra.Command {
	accounts := accountsCollection()

	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account", "acct"},
		Short:   "Browse accounts",
		Long:    "List and inspect accounts, their balances and data entries",
	}

	cmd.AddCommand(accounts.newListCommand())
	cmd.AddCommand(newAccountsGetCommand())
	cmd.AddCommand(newAccountsDataCommand())

	return cmd
}

func newAccountsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ACCOUNT_ID",
		Short: "Get account details",
		Long:  "Display an account with its balances, signers and data entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.Accounts().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}

			renderer := &OutputRenderer[horizon.Account]{RenderTable: renderAccount}

			return renderer.Render(cmd.OutOrStdout(), resp.Data, outputFormat())
		},
	}
}

func renderAccount(w io.Writer, account horizon.Account) error {
	err := accountTable.renderDetail(w, account)
	if err != nil {
		return err
	}

	if len(account.Balances) > 0 {
		_, _ = fmt.Fprintln(w, "\nBalances:")

		err = balanceTable.renderRows(w, account.Balances)
		if err != nil {
			return err
		}
	}

	if len(account.Signers) > 0 {
		_, _ = fmt.Fprintln(w, "\nSigners:")

		table := newTable(w, "Key", "Type", "Weight")
		for _, signer := range account.Signers {
			_ = table.Append(signer.Key, signer.Type, strconv.Itoa(int(signer.Weight)))
		}

		err = renderTable(table)
		if err != nil {
			return err
		}
	}

	if len(account.Data) > 0 {
		_, _ = fmt.Fprintln(w, "\nData:")

		keys := make([]string, 0, len(account.Data))
		for key := range account.Data {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		table := newTable(w, "Key", "Value")
		for _, key := range keys {
			_ = table.Append(key, decodeDataValue(account.Data[key]))
		}

		return renderTable(table)
	}

	return nil
}

// decodeDataValue shows a base64 data entry as text when it decodes.
func decodeDataValue(value string) string {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return value
	}

	return string(decoded)
}

func newAccountsDataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "data ACCOUNT_ID KEY",
		Short: "Get an account data entry",
		Long:  "Display one data entry of an account",
		Args:  cobra.ExactArgs(2), //nolint:mnd // account and key
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.Accounts().Data(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to get account data: %w", err)
			}

			renderer := &OutputRenderer[horizon.AccountData]{
				RenderTable: func(w io.Writer, data horizon.AccountData) error {
					table := newTable(w, "Property", "Value")
					_ = table.Append("Key", args[1])
					_ = table.Append("Value", decodeDataValue(data.Value))
					_ = table.Append("Raw", data.Value)
					_ = table.Append("Sponsor", orNotAvailable(data.Sponsor))

					return renderTable(table)
				},
			}

			return renderer.Render(cmd.OutOrStdout(), resp.Data, outputFormat())
		},
	}
}
