package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/receiptdesk/receipt-pipeline/constants"
	"github.com/receiptdesk/receipt-pipeline/internal/common"
	"github.com/receiptdesk/receipt-pipeline/internal/extract"
	"github.com/receiptdesk/receipt-pipeline/internal/merchants"
	"github.com/receiptdesk/receipt-pipeline/internal/pipeline"
	"github.com/receiptdesk/receipt-pipeline/internal/preprocess"
	"github.com/receiptdesk/receipt-pipeline/internal/recognize"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		imagePath = flag.String("image", "", "receipt image to process (required)")
		rotation  = flag.Int("rotation", 0, "rotation angle for the first pass (0/90/180/270)")
		seedPath  = flag.String("merchants", "", "merchant seed JSON file (optional)")
		dbPath    = flag.String("merchants-db", "", "sqlite merchant database path (optional)")
		enhanced  = flag.Bool("enhanced", true, "exclude tax/subtotal lines and validate the merchant against the database")
		contrast  = flag.Float64("contrast", 0, "contrast factor override (default from PREP_CONTRAST or 1.5)")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *imagePath == "" {
		printError("Error: --image is required\n")
		os.Exit(1)
	}
	if !constants.IsSupportedImage(filepath.Ext(*imagePath)) {
		printError("Error: unsupported image extension %q\n", filepath.Ext(*imagePath))
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	cfg.Extraction.Enhanced = *enhanced
	if *contrast > 0 {
		cfg.Preprocess.ContrastFactor = *contrast
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var repo merchants.Repository
	if *dbPath != "" {
		store, err := merchants.OpenSQLite(ctx, *dbPath)
		if err != nil {
			logger.Error("open merchant db", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Error("close merchant db", "error", cerr)
			}
		}()
		repo = store
	} else {
		repo = merchants.NewStore()
	}
	if *seedPath != "" {
		n, err := merchants.LoadSeed(ctx, *seedPath, repo)
		if err != nil {
			logger.Error("load merchant seed", "path", *seedPath, "error", err)
			os.Exit(1)
		}
		logger.Info("merchant seed loaded", "path", *seedPath, "names", n)
	}

	proc := pipeline.NewProcessor(
		logger,
		cfg.Extraction,
		preprocess.New(cfg.Preprocess, logger),
		recognize.NewTesseract(cfg.Recognizer, logger),
		extract.NewAmount(cfg.Extraction, logger),
		extract.NewDateTime(cfg.Extraction, logger),
		extract.NewMerchant(cfg.Extraction, repo, logger),
	)

	res, err := proc.Process(ctx, *imagePath, *rotation)
	if err != nil {
		logger.Error("process receipt", "path", *imagePath, "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
