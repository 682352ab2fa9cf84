// Command cordsearchd serves and manages a cordsearch index: it can
// run the HTTP API, build a segment from a batch of documents, force a
// manifest reload, or append a single document, all as cobra
// subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cordsearchd",
	Short: "cordsearchd serves and manages a CORD-19 search index",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
