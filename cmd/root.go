package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/jon4hz/bixblion/internal/config"
	"github.com/jon4hz/bixblion/internal/engine"
	"github.com/spf13/cobra"
)

var rootCmdPersistentFlags struct {
	LogFile    string
	ConfigFile string
	LogLevel   string
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogFile, "log-file", "", "File to write logs to")
	rootCmd.PersistentFlags().StringVarP(&rootCmdPersistentFlags.ConfigFile, "config", "c", "", "Path to config file (default: search for config.yml in current dir, ~/.bixblion, /etc/bixblion)")
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

var rootCmd = &cobra.Command{
	Use:   "bixblion",
	Short: "Bixblion is a local reading library with accounts and an automatic night mode",
	Long:  `Bixblion keeps a local account directory with a single active session and switches the reading theme to dark at night.`,
	Example: `bixblion serve --config config.yml
  bixblion login demo@bixblion.app
  bixblion appearance set --enabled`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		setLogLevel(rootCmdPersistentFlags.LogLevel)
		logToFile(cmd.ErrOrStderr())
	},
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "", "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Warnf("unknown log level %s, defaulting to info", level)
		log.SetLevel(log.InfoLevel)
	}
}

func logToFile(console io.Writer) {
	if rootCmdPersistentFlags.LogFile == "" {
		return
	}
	file, err := os.OpenFile(rootCmdPersistentFlags.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		log.Errorf("failed to open log file: %v", err)
		return
	}

	// Create a multi-writer that writes to both console and file
	log.SetOutput(io.MultiWriter(console, file))
	log.Debug("logging to both console and file", "file", rootCmdPersistentFlags.LogFile)
}

// withEngine loads the configuration, initializes an engine and runs fn with it.
// The engine is closed afterwards.
func withEngine(cmd *cobra.Command, fn func(ctx context.Context, e *engine.Engine) error) error {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	e, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer e.Close() //nolint:errcheck

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.Init(ctx); err != nil {
		return err
	}
	return fn(ctx, e)
}

func Execute(ctx context.Context, version string) error {
	return fang.Execute(ctx, rootCmd, fang.WithVersion(version))
}
