package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

var operationTable = tableSpec[horizon.Operation]{
	headers: []any{"ID", "Type", "Source", "Amount", "Transaction", "Successful", "Created"},
	row: func(op horizon.Operation) []any {
		return []any{
			op.ID,
			op.Type,
			shorten(op.SourceAccount, 6),
			operationAmount(op),
			shorten(op.TransactionHash, 8),
			boolString(op.TransactionSuccessful),
			formatTime(op.CreatedAt),
		}
	},
}

var effectTable = tableSpec[horizon.Effect]{
	headers: []any{"ID", "Type", "Account", "Amount", "Created"},
	row: func(effect horizon.Effect) []any {
		var amount string

		_ = effect.Attribute("amount", &amount)

		return []any{
			effect.ID,
			effect.Type,
			shorten(effect.Account, 6),
			formatAmount(amount),
			formatTime(effect.CreatedAt),
		}
	},
}

// operationAmount shows the amount moved by payment-like operations.
func operationAmount(op horizon.Operation) string {
	for _, key := range []string{"amount", "starting_balance", "source_amount"} {
		var amount string
		if op.Attribute(key, &amount) == nil {
			return formatAmount(amount)
		}
	}

	return NotAvailable
}

func boolString(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}

func operationsCollection() *collectionCommand[horizon.Operation] {
	return &collectionCommand[horizon.Operation]{
		collection: horizon.CollectionOperations,
		noun:       "operations",
		client:     func(c horizon.Client) horizon.CollectionClient[horizon.Operation] { return c.Operations() },
		all:        horizon.AllOperations,
		table:      operationTable,
		failed:     true,
		scopes: []scope[horizon.Operation]{
			{flag: "account", usage: "operations of this account", build: byID(horizon.OperationsForAccount)},
			{flag: "ledger", usage: "operations in this ledger", build: bySequence(horizon.OperationsForLedger)},
			{flag: "transaction", usage: "operations of this transaction", build: byID(horizon.OperationsForTransaction)},
			{flag: "claimable-balance", usage: "operations touching this claimable balance", build: byID(horizon.OperationsForClaimableBalance)},
			{flag: "liquidity-pool", usage: "operations touching this liquidity pool", build: byID(horizon.OperationsForLiquidityPool)},
		},
	}
}

func paymentsCollection() *collectionCommand[horizon.Operation] {
	return &collectionCommand[horizon.Operation]{
		collection: horizon.CollectionPayments,
		noun:       "payments",
		client:     func(c horizon.Client) horizon.CollectionClient[horizon.Operation] { return c.Payments() },
		all:        horizon.AllPayments,
		table:      operationTable,
		failed:     true,
		scopes: []scope[horizon.Operation]{
			{flag: "account", usage: "payments of this account", build: byID(horizon.PaymentsForAccount)},
			{flag: "ledger", usage: "payments in this ledger", build: bySequence(horizon.PaymentsForLedger)},
			{flag: "transaction", usage: "payments of this transaction", build: byID(horizon.PaymentsForTransaction)},
		},
	}
}

func effectsCollection() *collectionCommand[horizon.Effect] {
	return &collectionCommand[horizon.Effect]{
		collection: horizon.CollectionEffects,
		noun:       "effects",
		client:     func(c horizon.Client) horizon.CollectionClient[horizon.Effect] { return c.Effects() },
		all:        horizon.AllEffects,
		table:      effectTable,
		scopes: []scope[horizon.Effect]{
			{flag: "account", usage: "effects on this account", build: byID(horizon.EffectsForAccount)},
			{flag: "ledger", usage: "effects in this ledger", build: bySequence(horizon.EffectsForLedger)},
			{flag: "transaction", usage: "effects of this transaction", build: byID(horizon.EffectsForTransaction)},
			{flag: "operation", usage: "effects of this operation", build: byID(horizon.EffectsForOperation)},
			{flag: "liquidity-pool", usage: "effects on this liquidity pool", build: byID(horizon.EffectsForLiquidityPool)},
		},
	}
}

func getOperation(ctx context.Context, client horizon.Client, id string) (*horizon.Response[horizon.Operation], error) {
	return client.Operations().Get(ctx, id)
}

// NewOperationsCommand creates the operations command group.
func NewOperationsCommand() *cobra.Command {
	operations := operationsCollection()

	cmd := &cobra.Command{
		Use:     "operations",
		Aliases: []string{"operation", "ops", "op"},
		Short:   "Browse operations",
		Long:    "List, inspect and stream operations",
	}

	cmd.AddCommand(operations.newListCommand())
	cmd.AddCommand(operations.newStreamCommand())
	cmd.AddCommand(newGetCommand("operation", "OPERATION_ID", operationTable, getOperation))

	return cmd
}

// NewPaymentsCommand creates the payments command group.
func NewPaymentsCommand() *cobra.Command {
	payments := paymentsCollection()

	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"payment", "pay"},
		Short:   "Browse payments",
		Long:    "List and stream payment-like operations",
	}

	cmd.AddCommand(payments.newListCommand())
	cmd.AddCommand(payments.newStreamCommand())

	return cmd
}

// NewEffectsCommand creates the effects command group.
func NewEffectsCommand() *cobra.Command {
	effects := effectsCollection()

	cmd := &cobra.Command{
		Use:     "effects",
		Aliases: []string{"effect", "fx"},
		Short:   "Browse effects",
		Long:    "List and stream the effects operations had on accounts",
	}

	cmd.AddCommand(effects.newListCommand())
	cmd.AddCommand(effects.newStreamCommand())

	return cmd
}
