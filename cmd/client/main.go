package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/envdev/internal/client/api"
	"github.com/iudanet/envdev/internal/client/auth"
	"github.com/iudanet/envdev/internal/client/cli"
	"github.com/iudanet/envdev/internal/client/iocli"
	"github.com/iudanet/envdev/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", envOr("ENVDEV_SERVER", "http://localhost:8080"), "Server URL")
	dbPath := flag.String("db", envOr("ENVDEV_CLIENT_DB", "envdev-client.db"), "Path to local session database")
	apiKey := flag.String("api-key", os.Getenv("ENVDEV_API_KEY"), "Application API key for secrets commands")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	stdio := iocli.NewStdio()
	flag.Usage = func() {
		cli.New(stdio, nil, nil, "").PrintUsage()
	}

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*serverURL, *dbPath, *apiKey, stdio, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(serverURL, dbPath, apiKey string, stdio iocli.IO, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	apiClient := api.NewClient(serverURL)
	authService := auth.NewService(apiClient, boltStorage, apiClient.BaseURL())

	return cli.New(stdio, apiClient, authService, apiKey).Run(ctx, args)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printVersion() {
	fmt.Printf("envdev client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
