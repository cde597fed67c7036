package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bixblion/internal/engine"
	"github.com/spf13/cobra"
)

var resetCmdFlags struct {
	IncludeAccounts bool
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the session and the appearance state",
	Long:  `This command logs out, removes the appearance settings and the stored themes. With --include-accounts the account directory is wiped as well and reseeded with the demo account.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			log.Info("Starting reset...")

			deleted, err := e.Reset(ctx, resetCmdFlags.IncludeAccounts)
			if err != nil {
				return fmt.Errorf("failed to reset: %w", err)
			}
			for _, key := range deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", key)
			}

			log.Info("Reset completed successfully!")
			return nil
		})
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetCmdFlags.IncludeAccounts, "include-accounts", false, "Also delete all accounts")

	rootCmd.AddCommand(resetCmd)
}
