// Package cmd defines and implements the CLI commands for the bookmarkd
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarkd",
		Short: "Bookmark ingestion and storage service",
		Long: `bookmarkd ingests user-submitted URLs: it crawls the page for
metadata, enriches it with an AI-generated summary and tags, and stores
the resulting bookmark per user or guest partition.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (environment variables with the BOOKMARK prefix override it)")

	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
