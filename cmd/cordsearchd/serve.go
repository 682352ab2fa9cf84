package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/wizenheimer/cordsearch"
	"github.com/wizenheimer/cordsearch/internal/httpapi"
)

var (
	serveConfigPath string
	adminSecret     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load an index and serve the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to a YAML config file")
	serveCmd.Flags().StringVar(&adminSecret, "admin-secret", os.Getenv("CORDSEARCH_ADMIN_SECRET"), "shared secret for admin-gated endpoints")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := cordsearch.LoadConfig(serveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := cordsearch.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	engine := cordsearch.NewEngine(cfg, log)

	ctx := context.Background()
	if err := engine.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload: %w", err)
	}
	defer engine.Close()

	admin := cordsearch.NewAdminAuth(adminSecret)
	feedback := cordsearch.NewFeedbackLog(cfg.IndexDir)
	srv := httpapi.NewServer(engine, admin, feedback, log)

	log.Info("cordsearchd listening", "addr", cfg.ListenAddr, "index_dir", cfg.IndexDir)
	return http.ListenAndServe(cfg.ListenAddr, srv)
}
