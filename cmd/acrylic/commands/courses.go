package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/ports"
)

func newCoursesCommand(opts *rootOptions) *cobra.Command {
	coursesCmd := &cobra.Command{
		Use:   "courses",
		Short: "Manage the course registry",
	}

	coursesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered courses in display order",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app) error {
			w := tabwriter.NewWriter(coursesCmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tCODE\tNAME\tTEACHER\tCOLOR")
			for _, c := range a.courses.List() {
				teacher := ""
				if c.Teacher != nil {
					teacher = *c.Teacher
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", c.Order, c.Code, c.Name, teacher, c.Color.Hex())
			}
			return w.Flush()
		}),
	})

	coursesCmd.AddCommand(newCourseAddCommand(opts))
	coursesCmd.AddCommand(newCourseEditCommand(opts))

	coursesCmd.AddCommand(&cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move the course at position from to position to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("from: %w", err)
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("to: %w", err)
			}
			return withApp(opts, func(ctx context.Context, a *app) error {
				_, err := a.courses.Move(ctx, from, to)
				return err
			})(cmd, args)
		},
	})

	coursesCmd.AddCommand(&cobra.Command{
		Use:   "delete <code>",
		Short: "Remove a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("code: %w", err)
			}
			return withApp(opts, func(ctx context.Context, a *app) error {
				return a.courses.Delete(ctx, code)
			})(cmd, args)
		},
	})

	coursesCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every course",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app) error {
			return a.courses.DeleteAll(ctx)
		}),
	})

	coursesCmd.AddCommand(newCourseImportCommand(opts))

	return coursesCmd
}

func newCourseAddCommand(opts *rootOptions) *cobra.Command {
	var (
		teacher string
		color   string
	)

	cmd := &cobra.Command{
		Use:   "add <code> <name>",
		Short: "Register a course",
		Args:  cobra.ExactArgs(2),
	}
	cmd.Flags().StringVar(&teacher, "teacher", "", "teacher name")
	cmd.Flags().StringVar(&color, "color", "", "color as #RRGGBB or #RRGGBBAA (default from palette)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		code, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("code: %w", err)
		}

		req := ports.CreateCourseRequest{Code: code, Name: args[1]}
		if teacher != "" {
			req.Teacher = &teacher
		}
		if color != "" {
			c, err := entities.ParseHexColor(color)
			if err != nil {
				return err
			}
			req.Color = &c
		}

		return withApp(opts, func(ctx context.Context, a *app) error {
			course, err := a.courses.Create(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d) at position %d\n", course.Name, course.Code, course.Order)
			return nil
		})(cmd, args)
	}
	return cmd
}

func newCourseEditCommand(opts *rootOptions) *cobra.Command {
	var (
		name    string
		teacher string
		color   string
	)

	cmd := &cobra.Command{
		Use:   "edit <code>",
		Short: "Edit a course",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&teacher, "teacher", "", "new teacher, empty string clears it")
	cmd.Flags().StringVar(&color, "color", "", "new color as #RRGGBB or #RRGGBBAA")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		code, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("code: %w", err)
		}

		var req ports.UpdateCourseRequest
		if cmd.Flags().Changed("name") {
			req.Name = &name
		}
		if cmd.Flags().Changed("teacher") {
			req.Teacher = &teacher
		}
		if cmd.Flags().Changed("color") {
			c, err := entities.ParseHexColor(color)
			if err != nil {
				return err
			}
			req.Color = &c
		}

		return withApp(opts, func(ctx context.Context, a *app) error {
			_, err := a.courses.Update(ctx, code, req)
			return err
		})(cmd, args)
	}
	return cmd
}

func newCourseImportCommand(opts *rootOptions) *cobra.Command {
	var req ports.ImportCoursesRequest

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import courses from every configured institution",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&req.FavoritesOnly, "favorites", false, "only import favorited courses")
	cmd.Flags().BoolVar(&req.CurrentTermOnly, "current-term", false, "only import courses whose term is running")

	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		result, err := a.courses.Import(ctx, a.config.Canvas.Prefixes, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, c := range result.Imported {
			fmt.Fprintf(out, "Imported %s (%d)\n", c.Name, c.Code)
		}
		fmt.Fprintf(out, "%d imported, %d skipped\n", len(result.Imported), result.Skipped)
		return nil
	})
	return cmd
}
