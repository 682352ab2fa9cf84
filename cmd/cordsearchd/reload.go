package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wizenheimer/cordsearch"
)

var reloadIndexDir string

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Force a manifest reload against an index directory",
	RunE:  runReload,
}

func init() {
	reloadCmd.Flags().StringVar(&reloadIndexDir, "index-dir", "./index", "index directory")
	rootCmd.AddCommand(reloadCmd)
}

func runReload(cmd *cobra.Command, args []string) error {
	cfg, err := cordsearch.LoadConfig("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.IndexDir = reloadIndexDir

	engine := cordsearch.NewEngine(cfg, nil)
	if err := engine.Reload(context.Background()); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	defer engine.Close()

	cmd.Printf("reloaded %d segments from %s\n", engine.NumSegments(), reloadIndexDir)
	return nil
}
