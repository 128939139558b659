package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/briefdesk/briefdesk/internal/options"
)

func newOptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "options",
		Aliases: []string{"opt"},
		Short:   "Manage the request form option lists",
		Long: `Show and edit the option lists offered by the creative request form.

Lists: emails, clients, creative_types, differentials, triggers, intentions,
tones, awareness_levels.`,
	}

	cmd.AddCommand(newOptionsListCmd())
	cmd.AddCommand(newOptionsShowCmd())
	cmd.AddCommand(newOptionsAddCmd())
	cmd.AddCommand(newOptionsRemoveCmd())
	cmd.AddCommand(newOptionsResetCmd())

	return cmd
}

// withOptions opens the app for the duration of fn.
func withOptions(cmd *cobra.Command, fn func(ctx context.Context, w io.Writer, s *options.Store) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), cmd.OutOrStdout(), a.options)
}

// ---------- options list ----------

func newOptionsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every option list with its item count",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOptions(cmd, func(ctx context.Context, w io.Writer, s *options.Store) error {
				return runOptionsList(ctx, w, s, jsonOutput)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runOptionsList(ctx context.Context, w io.Writer, s *options.Store, jsonOutput bool) error {
	lists, err := s.All(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(lists)
	}

	for _, l := range lists {
		fmt.Fprintf(w, "%-18s %d items\n", l.Name, len(l.Items))
	}
	return nil
}

// ---------- options show ----------

func newOptionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <list>",
		Short: "Show the items of one option list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOptions(cmd, func(ctx context.Context, w io.Writer, s *options.Store) error {
				return runOptionsShow(ctx, w, s, args[0])
			})
		},
	}
}

func runOptionsShow(ctx context.Context, w io.Writer, s *options.Store, list string) error {
	items, err := s.Get(ctx, list)
	if err != nil {
		return err
	}
	for i, item := range items {
		fmt.Fprintf(w, "%3d  %s\n", i+1, item)
	}
	return nil
}

// ---------- options add ----------

func newOptionsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add <list> <item>",
		Short:   "Append an item to an option list",
		Example: `  briefdesk options add clients "ACME Corp"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOptions(cmd, func(ctx context.Context, w io.Writer, s *options.Store) error {
				items, err := s.Add(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Added %q to %s (%d items)\n", args[1], args[0], len(items))
				return nil
			})
		},
	}
}

// ---------- options remove ----------

func newOptionsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <list> <item>",
		Aliases: []string{"rm"},
		Short:   "Remove an item from an option list",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOptions(cmd, func(ctx context.Context, w io.Writer, s *options.Store) error {
				items, err := s.Remove(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Removed %q from %s (%d items)\n", args[1], args[0], len(items))
				return nil
			})
		},
	}
}

// ---------- options reset ----------

func newOptionsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <list>",
		Short: "Restore an option list to its defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOptions(cmd, func(ctx context.Context, w io.Writer, s *options.Store) error {
				items, err := s.Reset(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Reset %s to %d default items\n", args[0], len(items))
				return nil
			})
		},
	}
}
