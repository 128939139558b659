package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/briefdesk/briefdesk/internal/accounts"
	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/secure"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin users",
		Long:  "Create, list and remove the admin users who can sign in to the console.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())
	cmd.AddCommand(newAdminRemoveCmd())

	return cmd
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		email    string
		password string
		name     string
		super    bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new admin user",
		Example: `  briefdesk admin create --email ana@example.com --name Ana --password secret
  briefdesk admin create --email ana@example.com --name Ana  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := promptPassword()
				if err != nil {
					return err
				}
				password = pw
			}
			role := model.RoleAdmin
			if super {
				role = model.RoleSuperAdmin
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return runAdminCreate(cmd.Context(), cmd.OutOrStdout(), a, accounts.NewAdmin{
				Email:    email,
				Password: password,
				Name:     name,
				Role:     role,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.Flags().StringVar(&name, "name", "", "Admin display name (required)")
	cmd.Flags().BoolVar(&super, "super", false, "Grant super-admin rights (may manage other admins)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("name")

	return cmd
}

// promptPassword reads a password and its confirmation from the terminal.
func promptPassword() (string, error) {
	fmt.Print("Password: ")
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	fmt.Println()

	if string(pwBytes) != string(confirmBytes) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pwBytes), nil
}

func runAdminCreate(ctx context.Context, w io.Writer, a *app, in accounts.NewAdmin) error {
	if _, err := a.accounts.EnsureBootstrapAdmin(ctx); err != nil {
		return fmt.Errorf("ensure bootstrap admin: %w", err)
	}

	user, err := a.auth.AddUser(ctx, in)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(w, "Created %s %q (%s)\n", user.Role, user.Email, user.Name)
	fmt.Fprintf(w, "  Password strength: %s\n", secure.PasswordStrength(in.Password))
	return nil
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all admin users",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return runAdminList(cmd.Context(), cmd.OutOrStdout(), a, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runAdminList(ctx context.Context, w io.Writer, a *app, jsonOutput bool) error {
	admins, err := a.auth.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tNAME\tROLE\tLAST LOGIN")
	for _, u := range admins {
		last := "never"
		if u.LastLoginAt != nil {
			last = u.LastLoginAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Email, u.Name, u.Role, last)
	}
	return tw.Flush()
}

// ---------- admin remove ----------

func newAdminRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <email>",
		Aliases: []string{"rm"},
		Short:   "Remove an admin user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return runAdminRemove(cmd.Context(), cmd.OutOrStdout(), a, args[0])
		},
	}
	return cmd
}

func runAdminRemove(ctx context.Context, w io.Writer, a *app, email string) error {
	if err := a.auth.RemoveUser(ctx, email); err != nil {
		return fmt.Errorf("remove admin: %w", err)
	}
	fmt.Fprintf(w, "Removed admin %q\n", email)
	return nil
}
