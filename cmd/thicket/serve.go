package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/thicket/internal/cli"
	httpAdapter "github.com/aretw0/thicket/pkg/adapters/http"
	"github.com/aretw0/thicket/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Start the HTTP server",
	Long:  `Loads the automaton and exposes it as a JSON API over HTTP, with Prometheus metrics and session transcripts.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		opts := engineOptions(cmd, args)
		logger := cli.CreateLogger(opts.Debug)

		metrics := observability.NewMetrics(strings.TrimSuffix(filepath.Base(opts.Path), filepath.Ext(opts.Path)))
		engine, err := cli.CreateEngine(cmd.Context(), opts, logger, metrics.Hooks())
		if err != nil {
			return err
		}

		store, err := storeOptions(cmd)
		if err != nil {
			return err
		}
		sessions, closeStore, err := cli.OpenSessions(store, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := startSweeper(ctx, cmd, sessions, logger); err != nil {
			return err
		}

		handler, err := httpAdapter.NewHandler(engine,
			httpAdapter.WithSessions(sessions),
			httpAdapter.WithMetrics(metrics),
			httpAdapter.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Thicket Server on %s\n", srv.Addr)
			fmt.Printf("Serving automaton: %s\n", engine.Name)
			serverErrors <- srv.ListenAndServe()
		}()

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			fmt.Println("\nStart shutdown...")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Println("Thicket Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	addStoreFlags(serveCmd, cli.StoreMemory)
	addSweepFlags(serveCmd)
}
