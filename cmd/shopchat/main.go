// shopchat - storefront chat widget
//
// Serves the browser widget, or runs the same conversation in a terminal.
//
// Environment variables:
//   SHOPCHAT_CONFIG_JSON         - Full config JSON (alternative to config file)
//   SHOPCHAT_BACKEND_BASE_URL    - Chat/order API base URL
//   SHOPCHAT_LOG_LEVEL           - debug, info, warn or error

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/interlux/shopchat/pkg/config"
	"github.com/interlux/shopchat/pkg/logger"
	"github.com/interlux/shopchat/pkg/session"
	"github.com/interlux/shopchat/pkg/transport"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "shopchat",
		Short:         "Storefront chat widget",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "config file (JSON, YAML or TOML)")

	root.AddCommand(serveCmd(), chatCmd(), ordersCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".shopchat", "config.json")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger.Configure(os.Stderr, logger.ParseLevel(cfg.Log.Level), cfg.Log.JSON)
	return cfg, nil
}

func newClient(cfg *config.Config) *transport.Client {
	return transport.NewClient(transport.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.BackendTimeout(),
	})
}

// openStore returns the configured user id store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		return session.NewMemoryStore(""), func() {}, nil
	case config.SessionBackendSQLite:
		store, err := session.OpenSQLiteStore(ctx, filepath.Join(cfg.SessionPath(), "session.db"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.WarnCF("session", "Close failed", map[string]interface{}{"error": err.Error()})
			}
		}, nil
	default:
		return session.NewFileStore(cfg.SessionPath()), func() {}, nil
	}
}
