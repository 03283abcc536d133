package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskdesk/internal/server"
	"taskdesk/internal/storage/sqlite"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "taskdesk",
		Short:   "Taskdesk - local-first task manager",
		Version: Version,
	}

	rootCmd.PersistentFlags().String("db", envOrDefault("TASKDESK_DB_PATH", "data/taskdesk.db"), "Path to sqlite database file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")

			logger, store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(store, logger)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: srv.Engine(),
			}

			go func() {
				logger.Info("starting server", slog.String("addr", httpServer.Addr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				logger.Error("failed to shutdown server", slog.String("error", err.Error()))
			}

			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().String("addr", envOrDefault("TASKDESK_ADDR", ":8080"), "HTTP listen address")
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a JSON backup of the whole store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ExportToFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			logger.Info("backup written", slog.String("path", args[0]))
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Merge a JSON backup into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")

			logger, store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			confirm := func() bool {
				if yes {
					return true
				}
				fmt.Print("Importing overwrites records with matching ids. Continue? [y/N] ")
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				return strings.EqualFold(strings.TrimSpace(line), "y")
			}

			if err := store.ImportFromFile(cmd.Context(), args[0], confirm); err != nil {
				return err
			}
			logger.Info("import finished", slog.String("path", args[0]))
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func openStore(cmd *cobra.Command) (*slog.Logger, *sqlite.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	store, err := sqlite.Open(dbPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return logger, store, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
