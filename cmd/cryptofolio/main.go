package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"cryptofolio/internal/adapter/coingecko"
	"cryptofolio/internal/adapter/storage"
	"cryptofolio/internal/cli"
	"cryptofolio/internal/config"
	"cryptofolio/internal/domain"
	"cryptofolio/internal/usecase/portfolio"
	"cryptofolio/internal/usecase/prices"
	"cryptofolio/internal/usecase/valuation"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "Path to the YAML config file.")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	// 1. Load configuration
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize durable storage
	var (
		blobs  domain.BlobStore
		closer interface{ Close() error }
	)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		store, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open sqlite storage: %v", err)
		}
		blobs = store
		closer = store
	default:
		blobs = storage.NewFileStore(cfg.Storage.Path)
	}

	// 3. Initialize services
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	store := portfolio.NewStore(blobs, nil)
	store.Load(ctx)

	client := coingecko.NewClient(cfg.Market.BaseURL, nil)
	source := coingecko.NewSource(client, cfg.Market.Currency)
	priceService := prices.NewService(source, time.Duration(cfg.Market.CacheTTLSec)*time.Second, nil)

	app := &cli.App{
		Store:    store,
		Engine:   valuation.NewEngine(),
		Prices:   priceService,
		Market:   client,
		Currency: cfg.Market.Currency,
		Out:      os.Stdout,
	}

	// 4. Execute the selected subcommand
	cli.Register(commander, app)
	status := commander.Execute(ctx)

	// Stop background goroutines and flush any pending portfolio write
	// before the process exits.
	cancel()
	store.Wait()
	if closer != nil {
		if err := closer.Close(); err != nil {
			log.Printf("Failed to close storage: %v", err)
		}
	}

	os.Exit(int(status))
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cryptofolio.yaml"
	}
	return filepath.Join(home, ".cryptofolio", "config.yaml")
}
