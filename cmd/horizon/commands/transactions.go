package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

var transactionTable = tableSpec[horizon.Transaction]{
	headers: []any{"Hash", "Ledger", "Source", "Operations", "Fee Charged", "Successful", "Memo", "Created"},
	row: func(tx horizon.Transaction) []any {
		return []any{
			tx.Hash,
			strconv.FormatUint(uint64(tx.Ledger), 10),
			shorten(tx.SourceAccount, 6),
			strconv.Itoa(int(tx.OperationCount)),
			strconv.FormatInt(int64(tx.FeeCharged), 10),
			strconv.FormatBool(tx.Successful),
			orNotAvailable(tx.Memo),
			formatTime(tx.CreatedAt),
		}
	},
}

func transactionsCollection() *collectionCommand[horizon.Transaction] {
	return &collectionCommand[horizon.Transaction]{
		collection: horizon.CollectionTransactions,
		noun:       "transactions",
		client:     func(c horizon.Client) horizon.CollectionClient[horizon.Transaction] { return c.Transactions() },
		all:        horizon.AllTransactions,
		table:      transactionTable,
		failed:     true,
		scopes: []scope[horizon.Transaction]{
			{flag: "account", usage: "transactions of this account", build: byID(horizon.TransactionsForAccount)},
			{flag: "ledger", usage: "transactions in this ledger", build: bySequence(horizon.TransactionsForLedger)},
			{flag: "claimable-balance", usage: "transactions touching this claimable balance", build: byID(horizon.TransactionsForClaimableBalance)},
			{flag: "liquidity-pool", usage: "transactions touching this liquidity pool", build: byID(horizon.TransactionsForLiquidityPool)},
		},
	}
}

// NewTransactionsCommand creates the transactions command group.
func NewTransactionsCommand() *cobra.Command {
	transactions := transactionsCollection()

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"transaction", "tx", "txs"},
		Short:   "Browse and submit transactions",
		Long:    "List, inspect, stream and submit transactions",
	}

	cmd.AddCommand(transactions.newListCommand())
	cmd.AddCommand(transactions.newStreamCommand())
	cmd.AddCommand(newGetCommand("transaction", "HASH", transactionTable,
		func(ctx context.Context, client horizon.Client, hash string) (*horizon.Response[horizon.Transaction], error) {
			return client.Transactions().Get(ctx, hash)
		}))
	cmd.AddCommand(newTransactionsSubmitCommand())

	return cmd
}

func newTransactionsSubmitCommand() *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "submit [ENVELOPE_XDR]",
		Short: "Submit a signed transaction",
		Long: `Submit a signed, base64-encoded transaction envelope.

The envelope is read from the argument, from standard input with --stdin, or
from a prompt that does not echo the input when none is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			envelope, err := readEnvelope(args, fromStdin, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Submit(cmd.Context(), envelope)
			if err != nil {
				return fmt.Errorf("failed to submit transaction: %w", err)
			}

			renderer := &OutputRenderer[*horizon.SubmissionResult]{RenderTable: renderSubmission}

			err = renderer.Render(cmd.OutOrStdout(), result, outputFormat())
			if err != nil {
				return err
			}

			if !result.Successful() {
				return fmt.Errorf("%w: %s", horizon.ErrBadRequest, result.Failure.ResultCodes.Transaction)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read the envelope from standard input")

	return cmd
}

// readEnvelope returns the envelope from args, stdin or an echo-free prompt.
func readEnvelope(args []string, fromStdin bool, in io.Reader, prompt io.Writer) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}

	if file, ok := in.(*os.File); ok && !fromStdin && term.IsTerminal(int(file.Fd())) { //nolint:gosec // file descriptors fit in int
		_, _ = fmt.Fprint(prompt, "Envelope XDR: ")

		envelope, err := term.ReadPassword(int(file.Fd())) //nolint:gosec // file descriptors fit in int

		_, _ = fmt.Fprintln(prompt)

		if err != nil {
			return "", fmt.Errorf("reading envelope: %w", err)
		}

		return nonEmptyEnvelope(string(envelope))
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading envelope: %w", err)
	}

	return nonEmptyEnvelope(string(data))
}

func nonEmptyEnvelope(envelope string) (string, error) {
	envelope = strings.TrimSpace(envelope)
	if envelope == "" {
		return "", ErrEnvelopeNotProvided
	}

	return envelope, nil
}

func renderSubmission(w io.Writer, result *horizon.SubmissionResult) error {
	table := newTable(w, "Property", "Value")

	if result.Successful() {
		tx := result.Transaction
		_ = table.Append("Status", "applied")
		_ = table.Append("Hash", tx.Hash)
		_ = table.Append("Ledger", strconv.FormatUint(uint64(tx.Ledger), 10))
		_ = table.Append("Fee Charged", strconv.FormatInt(int64(tx.FeeCharged), 10))

		return renderTable(table)
	}

	failure := result.Failure
	_ = table.Append("Status", "rejected")
	_ = table.Append("Title", failure.Problem.Title)
	_ = table.Append("Transaction Result", failure.ResultCodes.Transaction)

	if failure.ResultCodes.InnerTransaction != "" {
		_ = table.Append("Inner Result", failure.ResultCodes.InnerTransaction)
	}

	for i, code := range failure.ResultCodes.Operations {
		_ = table.Append(fmt.Sprintf("Operation %d", i), code)
	}

	return renderTable(table)
}
