// Package preprocess transforms a raw receipt photo into a form more legible
// to the downstream text-recognition engine: optional rotation, grayscale,
// contrast enhancement, then sharpening.
package preprocess

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"

	"github.com/receiptdesk/receipt-pipeline/internal/common"
)

// Options control a single preprocessing pass.
type Options struct {
	Rotation int     // 0, 90, 180 or 270 degrees; used for multi-pass retries
	Contrast float64 // 0 means the configured default
}

// Result points at the preprocessed image written to temporary storage.
// Cleanup must be called on every exit path once recognition has consumed
// the file; it is safe to call more than once.
type Result struct {
	Path    string
	Width   int
	Height  int
	Cleanup func()
}

type Preprocessor struct {
	cfg    common.PreprocessConfig
	logger *slog.Logger
}

func New(cfg common.PreprocessConfig, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ContrastFactor <= 0 {
		cfg.ContrastFactor = 1.5
	}
	return &Preprocessor{cfg: cfg, logger: logger}
}

// Process runs the full pipeline and writes the output as a PNG in temporary
// storage. Each stage replaces the previous buffer so peak memory stays
// bounded to two full-resolution frames. The context is checked between
// stages; cancellation leaves no temporary file behind.
func (p *Preprocessor) Process(ctx context.Context, srcPath string, opts Options) (Result, error) {
	src, err := imaging.Open(srcPath)
	if err != nil {
		return Result{}, common.NewAppError("PREP_DECODE",
			fmt.Sprintf("open %s: %v", srcPath, err), common.ErrDecode)
	}
	img := imaging.Clone(src)
	src = nil

	if err := checkCtx(ctx); err != nil {
		return Result{}, err
	}
	switch opts.Rotation {
	case 0:
	case 90:
		img = imaging.Rotate90(img)
	case 180:
		img = imaging.Rotate180(img)
	case 270:
		img = imaging.Rotate270(img)
	default:
		return Result{}, common.NewAppError("PREP_ROTATION",
			fmt.Sprintf("unsupported rotation %d", opts.Rotation), common.ErrInvalidInput)
	}

	if err := checkCtx(ctx); err != nil {
		return Result{}, err
	}
	img = imaging.Grayscale(img)

	if err := checkCtx(ctx); err != nil {
		return Result{}, err
	}
	k := opts.Contrast
	if k <= 0 {
		k = p.cfg.ContrastFactor
	}
	img = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: scaleContrast(c.R, k),
			G: scaleContrast(c.G, k),
			B: scaleContrast(c.B, k),
			A: c.A,
		}
	})

	if err := checkCtx(ctx); err != nil {
		return Result{}, err
	}
	img = Convolve(img, SharpenKernel)

	if err := checkCtx(ctx); err != nil {
		return Result{}, err
	}
	f, err := os.CreateTemp(p.cfg.TempDir, "receipt-prep-*.png")
	if err != nil {
		return Result{}, common.WrapError(err, "create temp image")
	}
	path := f.Name()
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return Result{}, common.WrapError(err, "encode preprocessed image")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return Result{}, common.WrapError(err, "close preprocessed image")
	}

	bounds := img.Bounds()
	p.logger.Debug("preprocess.ok",
		"src", srcPath, "out", path,
		"width", bounds.Dx(), "height", bounds.Dy(),
		"rotation", opts.Rotation, "contrast", k,
	)
	return Result{
		Path:    path,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Cleanup: func() { _ = os.Remove(path) },
	}, nil
}

// scaleContrast applies output = (input-128)*k + 128 clamped to [0,255].
func scaleContrast(in uint8, k float64) uint8 {
	return clampChannel((float64(in)-128)*k + 128)
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
