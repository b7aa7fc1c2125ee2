package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func uniformNRGBA(w, h int, v uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestConvolveUniformImageUnchanged(t *testing.T) {
	t.Parallel()

	// the sharpen kernel sums to 1, so flat regions pass through
	src := uniformNRGBA(5, 5, 100)
	dst := Convolve(src, SharpenKernel)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, color.NRGBA{R: 100, G: 100, B: 100, A: 255}, dst.NRGBAAt(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestConvolveSharpensCenterSpike(t *testing.T) {
	t.Parallel()

	src := uniformNRGBA(3, 3, 100)
	src.SetNRGBA(1, 1, color.NRGBA{R: 150, G: 150, B: 150, A: 255})

	dst := Convolve(src, SharpenKernel)

	// 5*150 - 4*100 = 350, clamped to 255
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, dst.NRGBAAt(1, 1))

	// borders are copied unchanged
	assert.Equal(t, color.NRGBA{R: 100, G: 100, B: 100, A: 255}, dst.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 100, G: 100, B: 100, A: 255}, dst.NRGBAAt(2, 0))
	assert.Equal(t, color.NRGBA{R: 100, G: 100, B: 100, A: 255}, dst.NRGBAAt(0, 2))
}

func TestConvolveClampsNegative(t *testing.T) {
	t.Parallel()

	// dark center surrounded by bright neighbors drives the sum below zero
	src := uniformNRGBA(3, 3, 200)
	src.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 10, B: 10, A: 255})

	dst := Convolve(src, SharpenKernel)

	// 5*10 - 4*200 = -750, clamped to 0
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 0, A: 255}, dst.NRGBAAt(1, 1))
}

func TestConvolvePreservesAlpha(t *testing.T) {
	t.Parallel()

	src := uniformNRGBA(3, 3, 100)
	src.SetNRGBA(1, 1, color.NRGBA{R: 100, G: 100, B: 100, A: 42})

	dst := Convolve(src, SharpenKernel)
	assert.Equal(t, uint8(42), dst.NRGBAAt(1, 1).A)
}

func TestClampChannel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint8(0), clampChannel(-1))
	assert.Equal(t, uint8(0), clampChannel(0))
	assert.Equal(t, uint8(128), clampChannel(127.6))
	assert.Equal(t, uint8(255), clampChannel(255))
	assert.Equal(t, uint8(255), clampChannel(1000))
}
