package recognize

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/receiptdesk/receipt-pipeline/internal/common"
)

// stray box-drawing noise some builds emit around tables
var reBoxNoise = regexp.MustCompile(`[|\x{2500}-\x{257F}]+`)

// Tesseract shells out to the tesseract binary. It satisfies Engine.
type Tesseract struct {
	cfg    common.RecognizerConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg common.RecognizerConfig, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Tesseract{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Recognize runs `tesseract <file> stdout -l <lang>` and returns the text.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", t.cfg.Language}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}

	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(errb), 512))
	}

	txt := reBoxNoise.ReplaceAllString(string(out), "")
	t.logger.Debug("recognize.ok", "path", imagePath, "bytes", len(txt))
	return txt, nil
}
