package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wizenheimer/cordsearch"
)

var (
	buildIndexDir string
	buildDocsPath string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a segment from a CSV of cord_uid,title,text and append it to the index",
	Long: `Reads a CSV file with columns cord_uid,title,text, tokenizes the text
column with the same tokenizer used at query time, and writes the
result as one new segment appended to the index manifest.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildIndexDir, "index-dir", "./index", "index directory")
	buildCmd.Flags().StringVar(&buildDocsPath, "docs", "", "path to a cord_uid,title,text CSV file")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildDocsPath == "" {
		return fmt.Errorf("build: %w: --docs is required", cordsearch.ErrBadInput)
	}
	f, err := os.Open(buildDocsPath)
	if err != nil {
		return fmt.Errorf("open docs csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read docs csv: %w", err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("build: %w: docs csv has no data rows", cordsearch.ErrBadInput)
	}

	docs := make([]cordsearch.TokenDoc, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 3 {
			continue
		}
		docs = append(docs, cordsearch.TokenDoc{
			CordUID: row[0],
			Title:   row[1],
			Tokens:  cordsearch.Tokenize(row[2]),
		})
	}

	cfg, err := cordsearch.LoadConfig("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.IndexDir = buildIndexDir

	engine := cordsearch.NewEngine(cfg, nil)
	name, err := engine.BuildSegment(context.Background(), docs)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	defer engine.Close()

	cmd.Printf("built segment %s with %d documents\n", name, len(docs))
	return nil
}
