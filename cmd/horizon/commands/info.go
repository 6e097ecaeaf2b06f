package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display server information",
		Long:  "Display the versions, network and ingestion progress of the Horizon server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.Root(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get server info: %w", err)
			}

			renderer := &OutputRenderer[horizon.Root]{RenderTable: renderRoot}

			err = renderer.Render(cmd.OutOrStdout(), resp.Data, outputFormat())
			if err != nil {
				return err
			}

			if outputFormat() == OutputFormatTable {
				rateLimitFooter(cmd.OutOrStdout(), resp.RateLimit)
			}

			return nil
		},
	}
}

func renderRoot(w io.Writer, root horizon.Root) error {
	table := newTable(w, "Property", "Value")

	_ = table.Append("Horizon Version", root.HorizonVersion)
	_ = table.Append("Core Version", root.CoreVersion)
	_ = table.Append("Network", root.NetworkPassphrase)
	_ = table.Append("Latest Ledger", strconv.FormatUint(uint64(root.HistoryLatestLedger), 10))
	_ = table.Append("Latest Ledger Closed", formatTime(root.HistoryLatestLedgerClosedAt))
	_ = table.Append("Oldest Ledger", strconv.FormatUint(uint64(root.HistoryElderLedger), 10))
	_ = table.Append("Ingested Ledger", strconv.FormatUint(uint64(root.IngestLatestLedger), 10))
	_ = table.Append("Core Ledger", strconv.FormatUint(uint64(root.CoreLatestLedger), 10))
	_ = table.Append("Protocol", fmt.Sprintf("%d (supported %d, core %d)",
		root.CurrentProtocolVersion, root.SupportedProtocolVersion, root.CoreSupportedProtocolVersion))

	if len(root.Links) > 0 {
		names := make([]string, 0, len(root.Links))
		for name := range root.Links {
			names = append(names, name)
		}

		sort.Strings(names)

		links := make([]string, 0, len(names))
		for _, name := range names {
			links = append(links, fmt.Sprintf("%s: %s", name, root.Links[name].Resolve()))
		}

		_ = table.Append("Links", strings.Join(links, "\n"))
	}

	return renderTable(table)
}
