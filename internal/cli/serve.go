package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/callviz/internal/api"
	"github.com/matzehuels/callviz/pkg/cache"
	"github.com/matzehuels/callviz/pkg/config"
	"github.com/matzehuels/callviz/pkg/observability"
	"github.com/matzehuels/callviz/pkg/pipeline"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command that exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the export pipeline over HTTP",
		Long: `Serve the export pipeline over HTTP.

Endpoints:
  GET  /healthz        build information
  POST /v1/export      annotated DOT (?format=svg|png for a rendered image)
  POST /v1/simplify    short labels for method signatures

Set cache.redis_url in the config file to share rendered images between
instances. Recently rendered images are also kept in memory
(cache.memory_entries).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			ctx := cmd.Context()
			runner, err := c.newServeRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			var opts []api.RouterOption
			if cfg.Server.Metrics {
				opts = append(opts, api.WithMetrics(registerMetrics()))
				defer observability.Reset()
			}
			handler := api.NewRouter(runner, pipelineOptions(cfg), c.Logger, opts...)
			return c.runServer(ctx, addr, handler)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// newServeRunner is newRunner with an in-memory LRU in front of the
// configured cache.
func (c *CLI) newServeRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	if !noCache && cfg.Cache.MemoryEntries > 0 {
		mem, err := cache.NewMemoryCache(cfg.Cache.MemoryEntries)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		store = cache.NewTiered(mem, store, cfg.Cache.TTL.Duration)
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// registerMetrics installs Prometheus hooks on a fresh registry and returns
// its HTTP handler.
func registerMetrics() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observability.NewPrometheusHooks(reg).Register()
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// runServer serves handler on addr until ctx is cancelled.
func (c *CLI) runServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	printSuccess("Listening on %s", StyleHighlight.Render(addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
