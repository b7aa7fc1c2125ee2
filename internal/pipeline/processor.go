// Package pipeline coordinates preprocessing, recognition, and the three
// field extractors for a single receipt-processing attempt.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/receiptdesk/receipt-pipeline/internal/common"
	"github.com/receiptdesk/receipt-pipeline/internal/entity"
	"github.com/receiptdesk/receipt-pipeline/internal/extract"
	"github.com/receiptdesk/receipt-pipeline/internal/preprocess"
	"github.com/receiptdesk/receipt-pipeline/internal/recognize"
)

// ImagePreprocessor is the preprocessing stage contract.
type ImagePreprocessor interface {
	Process(ctx context.Context, srcPath string, opts preprocess.Options) (preprocess.Result, error)
}

// Processor runs preprocess -> recognize -> extract and assembles one
// ExtractionResult. Extractors run concurrently against the same text; the
// merge has no ordering dependency between them.
type Processor struct {
	logger   *slog.Logger
	cfg      common.ExtractionConfig
	prep     ImagePreprocessor
	engine   recognize.Engine
	amount   *extract.AmountExtractor
	dates    *extract.DateTimeExtractor
	merchant *extract.MerchantExtractor
}

func NewProcessor(
	logger *slog.Logger,
	cfg common.ExtractionConfig,
	prep ImagePreprocessor,
	engine recognize.Engine,
	amount *extract.AmountExtractor,
	dates *extract.DateTimeExtractor,
	merchant *extract.MerchantExtractor,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:   logger,
		cfg:      cfg,
		prep:     prep,
		engine:   engine,
		amount:   amount,
		dates:    dates,
		merchant: merchant,
	}
}

// Process handles one receipt image. rotation is the caller-supplied angle
// for the first pass; when recognition quality comes back low, further
// passes retry the remaining right angles and the best-quality text wins.
// The result only ever carries suggestions — nothing is committed.
func (p *Processor) Process(ctx context.Context, imagePath string, rotation int) (*entity.ExtractionResult, error) {
	start := time.Now()
	attemptID := uuid.New()
	log := p.logger.With("attempt_id", attemptID.String())

	text, preprocessed, quality, err := p.recognizePass(ctx, imagePath, rotation, log)
	if err != nil {
		return nil, err
	}

	if quality < p.cfg.RetryQualityThreshold && preprocessed {
		for _, angle := range retryAngles(rotation) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			t, _, q, rerr := p.recognizePass(ctx, imagePath, angle, log)
			if rerr != nil {
				if errors.Is(rerr, context.Canceled) || errors.Is(rerr, context.DeadlineExceeded) {
					return nil, rerr
				}
				log.Warn("pipeline.retry.failed", "rotation", angle, "error", rerr)
				continue
			}
			log.Debug("pipeline.retry", "rotation", angle, "quality", q)
			if q > quality {
				text, quality = t, q
			}
			if quality >= p.cfg.RetryQualityThreshold {
				break
			}
		}
	}

	res := &entity.ExtractionResult{
		AttemptID:    attemptID,
		Preprocessed: preprocessed,
		Quality:      quality,
	}
	if strings.TrimSpace(text) == "" {
		res.Duration = time.Since(start)
		log.Warn("pipeline.no_text", "path", imagePath)
		return res, nil
	}

	now := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Amount = p.amount.Extract(text)
		return nil
	})
	g.Go(func() error {
		dt := p.dates.Extract(text, now)
		res.Date, res.Time = dt.Date, dt.Time
		return nil
	})
	g.Go(func() error {
		res.Merchant = p.merchant.Extract(gctx, text)
		return nil
	})
	_ = g.Wait()

	res.Duration = time.Since(start)
	log.Info("pipeline.ok",
		"amount_found", res.Amount.Found(), "amount_conf", res.Amount.Confidence,
		"date_found", res.Date.Found(), "date_conf", res.Date.Confidence,
		"merchant_found", res.Merchant.Found(), "merchant_conf", res.Merchant.Confidence,
		"quality", quality, "duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// recognizePass preprocesses and recognizes once. Preprocessing failure is
// degraded and non-fatal: recognition falls back to the unmodified original.
// The temporary file is removed before returning on every path.
func (p *Processor) recognizePass(ctx context.Context, imagePath string, rotation int, log *slog.Logger) (string, bool, float32, error) {
	path := imagePath
	preprocessed := false

	prepRes, err := p.prep.Process(ctx, imagePath, preprocess.Options{Rotation: rotation})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", false, 0, err
		}
		log.Warn("pipeline.preprocess.degraded", "path", imagePath, "error", err)
	} else {
		defer prepRes.Cleanup()
		path = prepRes.Path
		preprocessed = true
	}

	text, err := p.engine.Recognize(ctx, path)
	if err != nil {
		return "", preprocessed, 0, fmt.Errorf("recognize %s: %w", path, err)
	}
	return text, preprocessed, recognize.Quality(text), nil
}

// retryAngles are the right angles not yet tried on the first pass.
func retryAngles(first int) []int {
	var out []int
	for _, a := range []int{0, 90, 180, 270} {
		if a != first {
			out = append(out, a)
		}
	}
	return out
}
