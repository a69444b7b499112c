// Command barflow-ingest runs one ingestion pass over the configured symbols and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"barflow/internal/app"
	"barflow/internal/domain/model"
	"barflow/internal/infrastructure/config"
	"barflow/internal/infrastructure/logger"
)

var (
	configPath = flag.String("config", "", "Path to config file (default $BARFLOW_CONFIG or configs/config.yaml)")
	mode       = flag.String("mode", "", "Data mode override: live or test")
	symbols    = flag.String("symbols", "", "Comma-separated symbol override")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	path := *configPath
	if path == "" {
		path = os.Getenv("BARFLOW_CONFIG")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *mode != "" {
		cfg.Ingest.Mode = *mode
	}
	if *symbols != "" {
		list, err := model.NormalizeSymbols(strings.Split(*symbols, ","))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid symbols: %v\n", err)
			return 1
		}
		cfg.Symbols = list
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ing, cleanup, err := app.InitializeIngest(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize ingestion", "error", err)
		return 1
	}
	defer cleanup()

	report, err := ing.Ingestion.Run(ctx)
	if err != nil {
		log.Error("ingestion aborted", "error", err)
		return 1
	}

	for _, res := range report.Results {
		if res.OK() {
			log.Info("symbol done", "symbol", res.Symbol, "written", res.Written, "elapsed", res.Elapsed)
		} else {
			log.Warn("symbol failed", "symbol", res.Symbol, "error", res.Err)
		}
	}
	log.Info("ingestion complete", "run_id", report.RunID, "written", report.Written(), "failed", len(report.Failed()))
	return 0
}
