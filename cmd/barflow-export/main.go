// Command barflow-export writes a stored series to a csv, json or parquet file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"barflow/internal/adapter/export"
	"barflow/internal/app"
	"barflow/internal/infrastructure/config"
	"barflow/internal/infrastructure/logger"
)

var (
	configPath = flag.String("config", "", "Path to config file (default $BARFLOW_CONFIG or configs/config.yaml)")
	symbol     = flag.String("symbol", "", "Symbol to export (required)")
	rangeExpr  = flag.String("range", "-7d", "Range start: negative duration such as -7d, or RFC3339 time")
	format     = flag.String("format", "csv", "Output format: csv, json, parquet")
	out        = flag.String("out", "", "Output file (default data/export/<SYMBOL>.<ext>)")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	sym := strings.ToUpper(strings.TrimSpace(*symbol))
	if sym == "" {
		fmt.Fprintln(os.Stderr, "-symbol is required")
		flag.Usage()
		return 2
	}

	writer, err := export.NewSeriesWriter(*format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

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
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		return 1
	}

	log, err := logger.New(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	exp, cleanup, err := app.InitializeExport(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize export", "error", err)
		return 1
	}
	defer cleanup()

	rows, err := exp.Series.GetSeries(ctx, sym, *rangeExpr)
	if err != nil {
		log.Error("query failed", "symbol", sym, "error", err)
		return 1
	}

	dest := *out
	if dest == "" {
		dest = filepath.Join("data", "export", sym+"."+writer.Extension())
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		log.Error("failed to create output dir", "error", err)
		return 1
	}
	if err := writer.Write(rows, dest); err != nil {
		log.Error("export failed", "path", dest, "error", err)
		return 1
	}

	log.Info("export complete", "symbol", sym, "rows", len(rows), "path", dest)
	return 0
}
