package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acrylic/tracker/internal/adapters/canvas"
	"github.com/acrylic/tracker/internal/adapters/repository"
	"github.com/acrylic/tracker/internal/application/services"
	"github.com/acrylic/tracker/internal/infrastructure/config"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/infrastructure/metrics"
	"github.com/acrylic/tracker/internal/ports"
)

// Version is overridden at build time with -ldflags
var Version = "dev"

type rootOptions struct {
	configPath string
}

// NewRootCommand builds the acrylic command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "acrylic",
		Short:         "Canvas assignment tracker",
		Long:          `Acrylic fetches your Canvas to-do list from every institution you attend, groups it by day or by course and serves it to the app and widget surfaces.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./config.yaml)")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newFetchCommand(opts))
	rootCmd.AddCommand(newWidgetCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newCoursesCommand(opts))
	rootCmd.AddCommand(newHiddenCommand(opts))
	rootCmd.AddCommand(newProfileCommand(opts))
	rootCmd.AddCommand(newLoginCommand(opts))
	rootCmd.AddCommand(newLogoutCommand(opts))
	rootCmd.AddCommand(newTokenCommand(opts))
	rootCmd.AddCommand(newMigrateCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFile(opts.configPath)
	}
	return config.Load()
}

// app bundles everything a command needs
type app struct {
	config      *config.Config
	logger      *logger.Logger
	metrics     *metrics.Metrics
	store       ports.Store
	auth        *services.AuthService
	courses     *services.CourseService
	hidden      *services.HiddenService
	assignments *services.AssignmentService
	profile     *services.ProfileService
}

// bootstrap loads configuration, opens the store and loads persisted state
func bootstrap(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	m := metrics.New()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		appLogger.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}

	assignmentOpts, err := services.OptionsFromConfig(cfg)
	if err != nil {
		store.Close()
		appLogger.Close()
		return nil, err
	}

	client := canvas.NewClient(cfg.Canvas, appLogger, m)
	auth := services.NewAuthService(store, cfg, appLogger)
	courses := services.NewCourseService(store, client, auth, appLogger, m)
	hidden := services.NewHiddenService(store, appLogger, m)

	a := &app{
		config:      cfg,
		logger:      appLogger,
		metrics:     m,
		store:       store,
		auth:        auth,
		courses:     courses,
		hidden:      hidden,
		assignments: services.NewAssignmentService(client, auth, courses, hidden, assignmentOpts, appLogger, m),
		profile:     services.NewProfileService(store, client, auth, cfg.Canvas.Prefixes, appLogger),
	}

	if err := courses.Load(ctx); err != nil {
		a.close()
		return nil, err
	}
	if err := hidden.Load(ctx); err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warnw("Failed to close store", "error", err)
	}
	a.logger.Close()
}

// withApp runs fn against a bootstrapped app and closes it afterwards
func withApp(opts *rootOptions, fn func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := bootstrap(ctx, opts)
		if err != nil {
			return err
		}
		defer a.close()

		return fn(ctx, a)
	}
}
