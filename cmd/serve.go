package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sohee-an/smart-bookmark-app/internal/config"
	"github.com/sohee-an/smart-bookmark-app/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the bookmark HTTP server",
		Long: `Starts the HTTP server exposing URL ingestion and the bookmark
CRUD surface. The server runs until it receives SIGINT or SIGTERM and
then shuts down gracefully.`,
		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	app, err := server.Build(cmd.Context(), &cfg)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	if err := app.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run server: %w", err)
	}
	return nil
}
