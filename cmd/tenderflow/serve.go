package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atlas-conseil/tenderflow/internal/engine"
	"github.com/atlas-conseil/tenderflow/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the tenderflow HTTP API. The server exposes the tender pipeline,
the dashboard aggregates and, when an extraction provider is configured,
document field extraction.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Bool("debug", false, "enable debug mode")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.debug", cmd.Flags().Lookup("debug"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	extractor, err := initExtractor(store)
	if err != nil {
		return err
	}
	if extractor == nil {
		slog.Warn("No extraction provider configured, /api/extract is disabled")
	}

	srv := server.New(server.Config{
		Addr:  viper.GetString("server.addr"),
		Debug: viper.GetBool("server.debug"),
	}, engine.New(store), store, extractor)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", viper.GetString("server.addr"))
		errChan <- srv.Run()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
