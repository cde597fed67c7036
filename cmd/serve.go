package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bixblion/internal/api"
	"github.com/jon4hz/bixblion/internal/config"
	"github.com/jon4hz/bixblion/internal/engine"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Bixblion server",
	Long:  `Start the Bixblion server with the account API and the automatic night mode.`,
	Example: `bixblion serve --config config.yml
bixblion serve -c /path/to/config.yml --log-level debug
`,
	Args: cobra.NoArgs,
	RunE: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close() //nolint:errcheck

	if err := engine.Init(ctx); err != nil {
		return err
	}

	server, err := api.New(cfg, engine, log.GetLevel() == log.DebugLevel)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(ctx)
	})
	g.Go(func() error {
		return server.Run(ctx)
	})

	log.Info("bixblion started successfully", "listen", cfg.Listen, "store", cfg.Store.Type)
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shut down gracefully")
	return nil
}
