package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/showreel"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site and admin console",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !strings.Contains(cfg.DatabaseURL, "://") {
			if err := os.MkdirAll(filepath.Dir(cfg.DatabaseURL), 0o755); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := showreel.New(cfg.siteConfig(),
			showreel.WithStaticDir(cfg.StaticDir),
			showreel.WithLogger(logger),
		)
		if err := app.Init(ctx); err != nil {
			return err
		}

		errc := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", cfg.Addr, "url", cfg.URL)
			errc <- app.Start()
		}()

		select {
		case err := <-errc:
			app.Close()
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return <-errc
	},
}
