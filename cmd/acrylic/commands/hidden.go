package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHiddenCommand(opts *rootOptions) *cobra.Command {
	hiddenCmd := &cobra.Command{
		Use:   "hidden",
		Short: "Manage hidden assignments",
	}

	hiddenCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List hidden assignments with their index",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app) error {
			w := tabwriter.NewWriter(hiddenCmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tCOURSE\tNAME\tURL")
			for i, h := range a.hidden.List() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, h.CourseName, h.Name, h.URL)
			}
			return w.Flush()
		}),
	})

	hiddenCmd.AddCommand(&cobra.Command{
		Use:   "hide <name> <url>",
		Short: "Hide a current assignment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, url := args[0], args[1]
			return withApp(opts, func(ctx context.Context, a *app) error {
				if _, err := a.assignments.Refresh(ctx); err != nil {
					return err
				}
				assignment, ok := a.assignments.Find(name, url)
				if !ok {
					return fmt.Errorf("no current assignment named %q at %s", name, url)
				}
				return a.hidden.Hide(ctx, assignment)
			})(cmd, args)
		},
	})

	hiddenCmd.AddCommand(&cobra.Command{
		Use:   "unhide <index>",
		Short: "Unhide the assignment at index (see hidden list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			return withApp(opts, func(ctx context.Context, a *app) error {
				removed, err := a.hidden.Unhide(ctx, index)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unhid %s\n", removed.Name)
				return nil
			})(cmd, args)
		},
	})

	hiddenCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Unhide everything",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app) error {
			return a.hidden.Clear(ctx)
		}),
	})

	return hiddenCmd
}
