package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/acrylic/tracker/internal/adapters/calendar"
	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/ports"
)

func newFetchCommand(opts *rootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch assignments and print them grouped",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&mode, "mode", "", "group by date or course (default from config)")

	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		sortMode, err := parseModeFlag(mode)
		if err != nil {
			return err
		}
		if _, err := a.assignments.Refresh(ctx); err != nil {
			return err
		}

		printGrouped(cmd.OutOrStdout(), a.assignments.Grouped(sortMode), a.assignments.Options().Location)
		return nil
	})
	return cmd
}

func newWidgetCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Print the next upcoming assignments",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of assignments (default from config)")

	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		if _, err := a.assignments.Refresh(ctx); err != nil {
			return err
		}

		loc := a.assignments.Options().Location
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, assignment := range a.assignments.Snapshot(limit) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", assignment.Due.In(loc).Format("Mon Jan 2 15:04"), assignment.CourseName, assignment.Name)
		}
		return w.Flush()
	})
	return cmd
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export visible assignments as an iCalendar file",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")

	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		if _, err := a.assignments.Refresh(ctx); err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}

		return calendar.WriteICS(w, a.assignments.Visible(), time.Now())
	})
	return cmd
}

func parseModeFlag(mode string) (entities.SortMode, error) {
	if mode == "" {
		return "", nil
	}
	return entities.ParseSortMode(mode)
}

func printGrouped(out io.Writer, grouped ports.GroupedAssignments, loc *time.Location) {
	if len(grouped.Groups) == 0 {
		fmt.Fprintln(out, "Nothing due.")
		return
	}

	for i, group := range grouped.Groups {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, group.Header)

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, a := range group.Assignments {
			if grouped.Mode == entities.SortByCourse {
				fmt.Fprintf(w, "  %s\t%s\n", a.Due.In(loc).Format("Mon Jan 2 15:04"), a.Name)
			} else {
				fmt.Fprintf(w, "  %s\t%s\t%s\n", a.Due.In(loc).Format("15:04"), a.CourseName, a.Name)
			}
		}
		w.Flush()
	}
}
