package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

var ledgerTable = tableSpec[horizon.Ledger]{
	headers: []any{"Sequence", "Hash", "Transactions", "Failed", "Operations", "Base Fee", "Protocol", "Closed"},
	row: func(ledger horizon.Ledger) []any {
		return []any{
			strconv.FormatUint(uint64(ledger.Sequence), 10),
			shorten(ledger.Hash, 8),
			strconv.Itoa(int(ledger.SuccessfulTransactionCount)),
			strconv.Itoa(int(ledger.FailedTransactionCount)),
			strconv.Itoa(int(ledger.OperationCount)),
			strconv.Itoa(int(ledger.BaseFeeInStroops)),
			strconv.Itoa(int(ledger.ProtocolVersion)),
			formatTime(ledger.ClosedAt),
		}
	},
}

func ledgersCollection() *collectionCommand[horizon.Ledger] {
	return &collectionCommand[horizon.Ledger]{
		collection: horizon.CollectionLedgers,
		noun:       "ledgers",
		client:     func(c horizon.Client) horizon.CollectionClient[horizon.Ledger] { return c.Ledgers() },
		all:        horizon.AllLedgers,
		table:      ledgerTable,
	}
}

// NewLedgersCommand creates the ledgers command group.
func NewLedgersCommand() *cobra.Command {
	ledgers := ledgersCollection()

	cmd := &cobra.Command{
		Use:     "ledgers",
		Aliases: []string{"ledger", "l"},
		Short:   "Browse ledgers",
		Long:    "List, inspect and stream closed ledgers",
	}

	cmd.AddCommand(ledgers.newListCommand())
	cmd.AddCommand(ledgers.newStreamCommand())
	cmd.AddCommand(newGetCommand("ledger", "SEQUENCE", ledgerTable,
		func(ctx context.Context, client horizon.Client, id string) (*horizon.Response[horizon.Ledger], error) {
			sequence, err := parseSequence(id)
			if err != nil {
				return nil, err
			}

			return client.Ledgers().Get(ctx, sequence)
		}))

	return cmd
}

func parseSequence(value string) (uint32, error) {
	sequence, err := strconv.ParseUint(value, 10, 32)
	if err != nil || sequence == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSequence, value)
	}

	return uint32(sequence), nil
}
