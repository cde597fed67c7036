package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/jon4hz/bixblion/internal/account"
	"github.com/jon4hz/bixblion/internal/engine"
	"github.com/spf13/cobra"
)

var loginCmdFlags struct {
	Secret string
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in with email and secret",
	Long:  `Log in to an existing account. The secret is prompted for unless --secret is given.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			secret := loginCmdFlags.Secret
			if secret == "" {
				var err error
				secret, err = readSecret("Secret: ", cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			identity, err := e.Directory().Login(ctx, args[0], secret)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", identity.Name, identity.Email)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			if err := e.Directory().Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account of the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(cmd, func(_ context.Context, e *engine.Engine) error {
			identity := e.Directory().CurrentSession()
			if identity == nil {
				return account.ErrNotAuthenticated
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", identity.Name, identity.Email, identity.ID)
			return nil
		})
	},
}

var registerCmdFlags struct {
	Name   string
	Email  string
	Secret string
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account and log in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			secret := registerCmdFlags.Secret
			if secret == "" {
				var err error
				secret, err = readSecret("Secret: ", cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				confirm, err := readSecret("Confirm secret: ", cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				if secret != confirm {
					return &account.ValidationError{Field: "confirm_secret", Message: "secrets do not match"}
				}
			}

			identity, err := e.Directory().Register(ctx, account.RegisterInput{
				Name:   registerCmdFlags.Name,
				Email:  registerCmdFlags.Email,
				Secret: secret,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s> (%s)\n", identity.Name, identity.Email, identity.ID)
			return nil
		})
	},
}

var profileCmdFlags struct {
	Name  string
	Email string
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Change name or email of the current account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			current := e.Directory().CurrentSession()
			if current == nil {
				return account.ErrNotAuthenticated
			}

			in := account.ProfileInput{Name: current.Name, Email: current.Email}
			if cmd.Flags().Changed("name") {
				in.Name = profileCmdFlags.Name
			}
			if cmd.Flags().Changed("email") {
				in.Email = profileCmdFlags.Email
			}

			identity, err := e.Directory().UpdateProfile(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s <%s>\n", identity.Name, identity.Email)
			return nil
		})
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage accounts",
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
			identities, err := e.Directory().Accounts(ctx)
			if err != nil {
				return err
			}

			current := e.Directory().CurrentSession()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tACTIVE")
			for _, identity := range identities {
				active := ""
				if current != nil && current.ID == identity.ID {
					active = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", identity.ID, identity.Name, identity.Email, active)
			}
			return w.Flush()
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginCmdFlags.Secret, "secret", "", "Secret of the account (prompted if empty)")

	registerCmd.Flags().StringVar(&registerCmdFlags.Name, "name", "", "Display name")
	registerCmd.Flags().StringVar(&registerCmdFlags.Email, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registerCmdFlags.Secret, "secret", "", "Secret of the account (prompted if empty)")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")

	profileCmd.Flags().StringVar(&profileCmdFlags.Name, "name", "", "New display name")
	profileCmd.Flags().StringVar(&profileCmdFlags.Email, "email", "", "New email address")
	profileCmd.MarkFlagsOneRequired("name", "email")

	accountsCmd.AddCommand(accountsListCmd)

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd, profileCmd, accountsCmd)
}
