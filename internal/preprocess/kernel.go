package preprocess

import (
	"image"
	"image/color"
)

// Kernel is a 3x3 convolution matrix applied to interior pixels.
type Kernel [3][3]float64

// SharpenKernel is the standard sharpening matrix used before recognition.
var SharpenKernel = Kernel{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

// Convolve applies k to every interior pixel of src and returns a new image.
// The kernel is undefined at edges, so border pixels are copied unchanged.
// Each output channel is clamped to [0, 255]; alpha passes through.
func Convolve(src *image.NRGBA, k Kernel) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := src.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				dst.SetNRGBA(x, y, p)
				continue
			}
			var sr, sg, sb float64
			for ky := 0; ky < 3; ky++ {
				for kx := 0; kx < 3; kx++ {
					weight := k[ky][kx]
					if weight == 0 {
						continue
					}
					n := src.NRGBAAt(bounds.Min.X+x+kx-1, bounds.Min.Y+y+ky-1)
					sr += weight * float64(n.R)
					sg += weight * float64(n.G)
					sb += weight * float64(n.B)
				}
			}
			dst.SetNRGBA(x, y, color.NRGBA{
				R: clampChannel(sr),
				G: clampChannel(sg),
				B: clampChannel(sb),
				A: p.A,
			})
		}
	}
	return dst
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
