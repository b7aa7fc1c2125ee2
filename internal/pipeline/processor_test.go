package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receiptdesk/receipt-pipeline/internal/common"
	"github.com/receiptdesk/receipt-pipeline/internal/extract"
	"github.com/receiptdesk/receipt-pipeline/internal/merchants"
	"github.com/receiptdesk/receipt-pipeline/internal/preprocess"
)

// fakePrep records requested rotations and cleanup invocations. When failWith
// is set every call fails with that error.
type fakePrep struct {
	mu        sync.Mutex
	rotations []int
	cleanups  int
	failWith  error
}

func (f *fakePrep) Process(ctx context.Context, srcPath string, opts preprocess.Options) (preprocess.Result, error) {
	if err := ctx.Err(); err != nil {
		return preprocess.Result{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return preprocess.Result{}, f.failWith
	}
	f.rotations = append(f.rotations, opts.Rotation)
	return preprocess.Result{
		Path:   "prep-" + srcPath,
		Width:  10,
		Height: 20,
		Cleanup: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.cleanups++
		},
	}, nil
}

// fakeEngine returns queued texts in order, repeating the last one, and
// records every path it was asked to recognize.
type fakeEngine struct {
	mu    sync.Mutex
	texts []string
	paths []string
	err   error
}

func (f *fakeEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.paths = append(f.paths, imagePath)
	i := len(f.paths) - 1
	if i >= len(f.texts) {
		i = len(f.texts) - 1
	}
	return f.texts[i], nil
}

const goodReceipt = "Acme Trading Co\nDate: 17/10/2025 14:30\nSubtotal: $45.00\nTax: $3.60\nTOTAL: $48.60"

func newTestProcessor(t *testing.T, prep *fakePrep, engine *fakeEngine) *Processor {
	t.Helper()
	cfg := common.DefaultExtractionConfig()
	return NewProcessor(
		nil,
		cfg,
		prep,
		engine,
		extract.NewAmount(cfg, nil),
		extract.NewDateTime(cfg, nil),
		extract.NewMerchant(cfg, merchants.NewStoreWith("Acme Trading Co"), nil),
	)
}

func TestProcessorFullExtraction(t *testing.T) {
	t.Parallel()
	prep := &fakePrep{}
	engine := &fakeEngine{texts: []string{goodReceipt}}
	p := newTestProcessor(t, prep, engine)

	res, err := p.Process(context.Background(), "receipt.png", 0)
	require.NoError(t, err)

	require.True(t, res.Amount.Found())
	assert.True(t, res.Amount.Value.Equal(decimal.RequireFromString("48.60")), "got %s", res.Amount.Value)
	assert.GreaterOrEqual(t, res.Amount.Confidence, float32(0.9))

	require.True(t, res.Date.Found())
	assert.Equal(t, 2025, res.Date.Value.Year())
	require.True(t, res.Time.Found())
	assert.Equal(t, 14, res.Time.Value.Hour)

	require.True(t, res.Merchant.Found())
	assert.Equal(t, "Acme Trading Co", *res.Merchant.Value)

	assert.True(t, res.Preprocessed)
	assert.NotEqual(t, [16]byte{}, [16]byte(res.AttemptID))
	assert.Greater(t, res.Duration.Nanoseconds(), int64(0))

	// recognition consumed the preprocessed file, exactly once, then cleaned up
	assert.Equal(t, []string{"prep-receipt.png"}, engine.paths)
	assert.Equal(t, []int{0}, prep.rotations)
	assert.Equal(t, 1, prep.cleanups)
}

func TestProcessorDegradesWhenPreprocessFails(t *testing.T) {
	t.Parallel()
	prep := &fakePrep{failWith: errors.New("decode failed")}
	engine := &fakeEngine{texts: []string{"zz zz zz"}}
	p := newTestProcessor(t, prep, engine)

	res, err := p.Process(context.Background(), "receipt.png", 0)
	require.NoError(t, err)

	assert.False(t, res.Preprocessed)
	// no rotated retries without a working preprocessor
	assert.Equal(t, []string{"receipt.png"}, engine.paths)
}

func TestProcessorRetriesRotationsOnLowQuality(t *testing.T) {
	t.Parallel()
	prep := &fakePrep{}
	// first pass yields garbage, the 90-degree retry reads cleanly
	engine := &fakeEngine{texts: []string{"zz zz zz", goodReceipt}}
	p := newTestProcessor(t, prep, engine)

	res, err := p.Process(context.Background(), "receipt.png", 0)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 90}, prep.rotations, "stops once quality clears the threshold")
	assert.Equal(t, 2, prep.cleanups)

	require.True(t, res.Amount.Found())
	assert.True(t, res.Amount.Value.Equal(decimal.RequireFromString("48.60")), "got %s", res.Amount.Value)
}

func TestProcessorKeepsBestTextWhenAllPassesAreLow(t *testing.T) {
	t.Parallel()
	prep := &fakePrep{}
	engine := &fakeEngine{texts: []string{"zzzz", "total 1,00", "17/10/2025", "x"}}
	p := newTestProcessor(t, prep, engine)

	res, err := p.Process(context.Background(), "receipt.png", 0)
	require.NoError(t, err)

	// every right angle tried once
	assert.Equal(t, []int{0, 90, 180, 270}, prep.rotations)
	// the date-bearing pass scored highest and its text won
	assert.InDelta(t, 0.4, float64(res.Quality), 1e-6)
}

func TestProcessorRetryRespectsCallerRotation(t *testing.T) {
	t.Parallel()
	prep := &fakePrep{}
	engine := &fakeEngine{texts: []string{"zzzz"}}
	p := newTestProcessor(t, prep, engine)

	_, err := p.Process(context.Background(), "receipt.png", 180)
	require.NoError(t, err)
	assert.Equal(t, []int{180, 0, 90, 270}, prep.rotations)
}

func TestProcessorEmptyTextProducesEmptyResult(t *testing.T) {
	t.Parallel()
	prep := &fakePrep{}
	engine := &fakeEngine{texts: []string{""}}
	p := newTestProcessor(t, prep, engine)

	res, err := p.Process(context.Background(), "receipt.png", 0)
	require.NoError(t, err, "unreadable receipts are a result, not an error")

	assert.False(t, res.Amount.Found())
	assert.False(t, res.Date.Found())
	assert.False(t, res.Time.Found())
	assert.False(t, res.Merchant.Found())
	assert.Equal(t, float32(0), res.Quality)
	assert.Greater(t, res.Duration.Nanoseconds(), int64(0))
}

func TestProcessorEngineError(t *testing.T) {
	t.Parallel()
	prep := &fakePrep{}
	sentinel := errors.New("tesseract exploded")
	engine := &fakeEngine{texts: []string{""}, err: sentinel}
	p := newTestProcessor(t, prep, engine)

	_, err := p.Process(context.Background(), "receipt.png", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, prep.cleanups, "temp file removed on the error path too")
}

func TestProcessorCanceledContext(t *testing.T) {
	t.Parallel()
	prep := &fakePrep{}
	engine := &fakeEngine{texts: []string{goodReceipt}}
	p := newTestProcessor(t, prep, engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Process(ctx, "receipt.png", 0)
	assert.ErrorIs(t, err, context.Canceled)
}
