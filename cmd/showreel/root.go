package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringen/showreel/content"
	"github.com/eringen/showreel/docstore"
)

var (
	cfgFile string
	cfg     config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "showreel",
	Short: "Showreel - a live videographer portfolio",
	Long: `Showreel serves a one-page videographer portfolio with a session-gated
admin console. Content edits are pushed to every open page as they happen.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		logger = newLogger(cfg.Log.Level)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the showreel version",
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "showreel %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./showreel.yaml)")
	rootCmd.AddCommand(serveCmd, adminCmd, seedCmd, versionCmd)
}

// openHub opens the store behind a hub for the maintenance commands. When
// Redis is configured, writes are announced so running servers refresh.
func openHub() (*docstore.Hub, *content.Editor, func(), error) {
	if !strings.Contains(cfg.DatabaseURL, "://") {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabaseURL), 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	store, err := docstore.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}

	var opts []docstore.HubOption
	var notifier *docstore.RedisNotifier
	if cfg.Redis.URL != "" {
		notifier, err = docstore.NewRedisNotifier(cfg.Redis.URL, cfg.Redis.Channel, logger)
		if err != nil {
			store.Close()
			return nil, nil, nil, err
		}
		opts = append(opts, docstore.WithNotifier(notifier))
	}
	hub := docstore.NewHub(store, logger, opts...)
	closeFn := func() {
		hub.Close()
		if notifier != nil {
			notifier.Close()
		}
		store.Close()
	}
	return hub, content.NewEditor(hub, logger), closeFn, nil
}
