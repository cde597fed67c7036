package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jon4hz/bixblion/internal/engine"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the key-value store",
}

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Long:  `Display the persisted entries and their size.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			stats, err := e.StoreStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to get store stats: %w", err)
			}

			accounts, err := e.Directory().Accounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Store Statistics:")
			fmt.Fprintf(out, "Backend: %s\n", e.Config().Store.Type)
			fmt.Fprintf(out, "Accounts: %d\n", len(accounts))

			var total uint64
			for _, s := range stats {
				if !s.Present {
					fmt.Fprintf(out, "  %-30s -\n", s.Key)
					continue
				}
				total += s.Size
				fmt.Fprintf(out, "  %-30s %s\n", s.Key, humanize.Bytes(s.Size))
			}
			fmt.Fprintf(out, "Total Size: %s\n", humanize.Bytes(total))
			return nil
		})
	},
}

func init() {
	storeCmd.AddCommand(storeStatsCmd)
	rootCmd.AddCommand(storeCmd)
}
