package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kimhsiao/blogai/cmd/blogd/handlers"
	"github.com/kimhsiao/blogai/internal/scheduler"
	"github.com/kimhsiao/blogai/internal/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the generation scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *configPath)
		},
	}
}

// runServe blocks until ctx is cancelled or the listener fails, then shuts
// the server, scheduler and event hub down.
func runServe(ctx context.Context, configPath string) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	hub := handlers.NewHub(cfg.AllowedOrigin(), a.logger)
	svc := a.service(services.WithEvents(hub))

	routes := handlers.RouterConfig{
		Articles:      svc,
		Hub:           hub,
		AllowedOrigin: cfg.AllowedOrigin(),
		Logger:        a.logger,
	}

	var sched *scheduler.Scheduler
	if cfg.Generation.Enabled {
		sched, err = scheduler.New(svc, &scheduler.Config{
			Schedule: cfg.Generation.Schedule,
			Topics:   cfg.Generation.Topics,
		}, a.logger)
		if err != nil {
			return err
		}
		routes.Scheduler = sched
	}

	if cfg.StaticDir != "" {
		root, err := handlers.StaticDir(cfg.StaticDir)
		if err != nil {
			return err
		}
		routes.Static = root
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewRouter(routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if sched != nil {
		sched.Start(gctx)
	}

	g.Go(func() error {
		a.logger.Info("server listening", map[string]interface{}{
			"addr":       srv.Addr,
			"env":        cfg.Env,
			"generation": cfg.Generation.Enabled,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		if sched != nil {
			sched.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
