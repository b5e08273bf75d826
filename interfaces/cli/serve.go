package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/drawcal/domain/config"
	"github.com/felixgeelhaar/drawcal/infrastructure/logging"
	"github.com/felixgeelhaar/drawcal/interfaces/api"
)

type serveOptions struct {
	address string
}

// newServeCmd creates the serve command.
func (a *App) newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over HTTP",
		Long: `Serve the search API over HTTP until interrupted.

Examples:
  # Serve with defaults (SQLite drawcal.db, in-memory cache, :8080)
  drawcal serve

  # Serve with a configuration file on another port
  drawcal serve -c drawcal.yaml --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.address, "addr", "", "Listen address (overrides config)")

	return cmd
}

func (a *App) serve(ctx context.Context, opts *serveOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if opts.address != "" {
		cfg.Server.Address = opts.address
	}
	if a.logLevel == "" {
		logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: a.stderr})
	}

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.Close(closeCtx); err != nil {
			logging.Warn().Add(logging.ErrorField(err)).Msg("shutdown incomplete")
		}
	}()

	logging.Info().
		Add(logging.Str("storage", cfg.Storage.Driver), logging.Str("cache", cfg.Cache.Driver)).
		Msg("drawcal starting")

	server := api.New(rt.engine, serverConfig(cfg.Server, rt))
	if err := server.ListenAndServe(ctx, cfg.Server.ShutdownTimeout.Duration()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func serverConfig(cfg config.ServerConfig, rt *runtime) api.Config {
	out := api.Config{
		Address:        cfg.Address,
		ReadTimeout:    cfg.ReadTimeout.Duration(),
		WriteTimeout:   cfg.WriteTimeout.Duration(),
		IdleTimeout:    cfg.IdleTimeout.Duration(),
		AllowedOrigins: cfg.AllowedOrigins,
		Version:        Version,
		Metrics:        rt.metrics,
	}
	if cfg.RateLimit.Enabled {
		out.RateLimit = cfg.RateLimit.Rate
		out.RateBurst = cfg.RateLimit.Burst
	}
	return out
}
