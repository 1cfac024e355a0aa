package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/adaptive/internal/app"
	"github.com/dmitrymomot/adaptive/pkg/httpserver"
	"github.com/dmitrymomot/adaptive/pkg/logger"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the adaptive HTTP server",
		Long: `Run the HTTP server.

Pages come from ADAPTIVE_UPSTREAM when set, otherwise from ADAPTIVE_STATIC_DIR.
Telemetry routes are mounted under ADAPTIVE_MOUNT_PATH. The server stops
gracefully on SIGINT or SIGTERM, saving every live session snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}

func serve(ctx context.Context, cfg app.Config) error {
	log := app.NewLogger(cfg, os.Stdout)
	slog.SetDefault(log)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start", logger.Error(err))
		return err
	}

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithCloser("app", a.Close),
	)
	return srv.Run(ctx, a.Handler())
}
