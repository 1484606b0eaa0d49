package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quadrantlab/quadrant/internal/app"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
)

type serveOptions struct {
	ConfigPath string
	Migrate    bool
}

// NewServeCommand creates the serve subcommand, an embedded API server.
func NewServeCommand(root *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the quadrant API server",
		Example: `  quadrant serve --config config.yaml
  QUADRANT_DATABASE_HOST=db quadrant serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "path to configuration file (default: environment only)")
	f.BoolVar(&opts.Migrate, "migrate", true, "run database migrations on startup")

	return cmd
}

func runServe(opts *serveOptions) error {
	cfg, err := app.LoadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logger.Info("starting quadrant api server",
		logging.Int("port", cfg.Server.Port),
		logging.String("log_level", cfg.Log.Level),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, cfg, logger, app.Options{Migrate: opts.Migrate})
}
