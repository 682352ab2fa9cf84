package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wizenheimer/cordsearch"
)

var (
	addDocIndexDir string
	addDocUID      string
	addDocTitle    string
	addDocTokens   []string
)

var addDocCmd = &cobra.Command{
	Use:   "add-doc",
	Short: "Append a single document as a new segment",
	RunE:  runAddDoc,
}

func init() {
	addDocCmd.Flags().StringVar(&addDocIndexDir, "index-dir", "./index", "index directory")
	addDocCmd.Flags().StringVar(&addDocUID, "uid", "", "cord_uid of the document")
	addDocCmd.Flags().StringVar(&addDocTitle, "title", "", "document title")
	addDocCmd.Flags().StringSliceVar(&addDocTokens, "tokens", nil, "pre-tokenized document body")
	rootCmd.AddCommand(addDocCmd)
}

func runAddDoc(cmd *cobra.Command, args []string) error {
	if addDocUID == "" {
		return fmt.Errorf("add-doc: %w: --uid is required", cordsearch.ErrBadInput)
	}
	cfg, err := cordsearch.LoadConfig("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.IndexDir = addDocIndexDir

	engine := cordsearch.NewEngine(cfg, nil)
	if err := engine.Reload(context.Background()); err != nil {
		return fmt.Errorf("reload before append: %w", err)
	}
	defer engine.Close()

	name, err := engine.AppendDocument(context.Background(), cordsearch.TokenDoc{
		CordUID: addDocUID, Title: addDocTitle, Tokens: addDocTokens,
	})
	if err != nil {
		return fmt.Errorf("add-doc failed: %w", err)
	}
	cmd.Printf("appended %s as segment %s\n", addDocUID, name)
	return nil
}
