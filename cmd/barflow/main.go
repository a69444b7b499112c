package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"barflow/internal/app"
	"barflow/internal/infrastructure/config"
	"barflow/internal/infrastructure/logger"
)

var (
	configPath = flag.String("config", "", "Path to config file (default $BARFLOW_CONFIG or configs/config.yaml)")
	port       = flag.Int("port", 0, "Port number")
	helpFlag   = flag.Bool("help", false, "Show help")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printUsage()
		os.Exit(0)
	}

	os.Exit(run())
}

// run returns the process exit code. Deferred cleanup has finished by the time
// it returns.
func run() int {
	cfg, err := config.Load(resolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		return 1
	}

	log, err := logger.New(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	log.Info("starting barflow", "version", "1.0.0", "store", cfg.Store.Driver, "mode", cfg.Ingest.Mode, "symbols", len(cfg.Symbols))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, cleanup, err := app.InitializeApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", "error", err)
		return 1
	}
	defer cleanup()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Server.Start()
	}()

	shutdown := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
		cancel()
		a.Scheduler.Stop(shutdownCtx)
	}

	if err := a.Scheduler.Start(ctx); err != nil {
		log.Error("failed to start scheduler", "error", err)
		shutdown()
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	code := 0
	select {
	case sig := <-sigCh:
		log.Info("shutting down gracefully", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			log.Error("server error", "error", err)
			code = 1
		}
	}

	shutdown()
	log.Info("shutdown complete")
	return code
}

func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("BARFLOW_CONFIG"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  barflow [--config <path>] [--port <N>]")
	fmt.Println("  barflow --help")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config PATH  Config file (default $BARFLOW_CONFIG or configs/config.yaml)")
	fmt.Println("  --port N       Port number")
}
