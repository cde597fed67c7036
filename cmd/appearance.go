package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jon4hz/bixblion/internal/appearance"
	"github.com/jon4hz/bixblion/internal/engine"
	"github.com/mergestat/timediff"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var appearanceCmd = &cobra.Command{
	Use:   "appearance",
	Short: "Manage the theme and the automatic night mode",
}

var appearanceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show theme and night mode settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			return printAppearance(ctx, cmd, e)
		})
	},
}

var appearanceSetCmdFlags struct {
	Enabled      bool
	AlwaysActive bool
}

var appearanceSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the night mode settings",
	Example: `bixblion appearance set --enabled
bixblion appearance set --always-active=false`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var update appearance.SettingsUpdate
		if cmd.Flags().Changed("enabled") {
			update.Enabled = lo.ToPtr(appearanceSetCmdFlags.Enabled)
		}
		if cmd.Flags().Changed("always-active") {
			update.AlwaysActive = lo.ToPtr(appearanceSetCmdFlags.AlwaysActive)
		}

		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			if _, err := e.Appearance().UpdateSettings(ctx, update); err != nil {
				return err
			}
			return printAppearance(ctx, cmd, e)
		})
	},
}

var appearanceThemeCmd = &cobra.Command{
	Use:       "theme <theme>",
	Short:     "Set the active theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: lo.Map(appearance.Themes(), func(t appearance.Theme, _ int) string { return t.String() }),
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := appearance.ParseTheme(args[0])
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			if err := e.Appearance().SetTheme(ctx, theme); err != nil {
				return err
			}
			return printAppearance(ctx, cmd, e)
		})
	},
}

func printAppearance(ctx context.Context, cmd *cobra.Command, e *engine.Engine) error {
	sched := e.Appearance()

	theme, err := sched.Theme(ctx)
	if err != nil {
		return err
	}
	settings, err := sched.LoadSettings(ctx)
	if err != nil {
		return err
	}
	saved, hasSaved, err := sched.SavedTheme(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Theme: %s\n", theme)
	if hasSaved {
		fmt.Fprintf(out, "Theme before night: %s\n", saved)
	}
	fmt.Fprintf(out, "Night mode: %s\n", nightMode(settings))
	fmt.Fprintf(out, "Night now: %t\n", sched.IsNightTime())

	cfg := e.Config().Appearance
	fmt.Fprintf(out, "Night window: %02d:00-%02d:00, checked every %s\n", cfg.NightStartHour, cfg.NightEndHour, cfg.CheckInterval)
	if settings.Enabled && !settings.AlwaysActive {
		// the job scheduler does not run in the cli, so estimate from the interval
		now := e.Scheduler().Clock().Now()
		fmt.Fprintf(out, "Next check: %s\n", timediff.TimeDiff(now.Add(cfg.CheckInterval), timediff.WithStartTime(now)))
	}
	return nil
}

func nightMode(s appearance.Settings) string {
	var modes []string
	if s.AlwaysActive {
		modes = append(modes, "always active")
	}
	if s.Enabled {
		modes = append(modes, "automatic")
	}
	if len(modes) == 0 {
		return "off"
	}
	return strings.Join(modes, ", ")
}

func init() {
	appearanceSetCmd.Flags().BoolVar(&appearanceSetCmdFlags.Enabled, "enabled", false, "Switch to the dark theme at night")
	appearanceSetCmd.Flags().BoolVar(&appearanceSetCmdFlags.AlwaysActive, "always-active", false, "Always use the dark theme")
	appearanceSetCmd.MarkFlagsOneRequired("enabled", "always-active")

	appearanceCmd.AddCommand(appearanceStatusCmd, appearanceSetCmd, appearanceThemeCmd)
	rootCmd.AddCommand(appearanceCmd)
}
