package raster

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

// GaussianBlur applies a Gaussian blur with the given sigma.
func GaussianBlur(src image.Image, sigma float64) *image.NRGBA {
	if sigma <= 0 {
		return NRGBA(src)
	}
	return imaging.Blur(src, sigma)
}

// GaussianBlurGray is GaussianBlur specialized for grayscale working
// images.
func GaussianBlurGray(g *image.Gray, sigma float64) *image.Gray {
	if sigma <= 0 {
		return CloneGray(g)
	}
	return Gray(imaging.Blur(g, sigma))
}

// SigmaForKernel converts an odd Gaussian kernel size to the sigma a
// zero-sigma OpenCV call would derive for it.
func SigmaForKernel(ksize int) float64 {
	if ksize < 3 {
		return 0.8
	}
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

// Median applies a ksize x ksize median filter per channel. ksize must
// be odd.
func Median(src *image.NRGBA, ksize int) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	r := ksize / 2
	n := ksize * ksize
	window := make([]uint8, 0, n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			di := dst.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				window = window[:0]
				for ky := -r; ky <= r; ky++ {
					sy := clampInt(y+ky, 0, h-1)
					for kx := -r; kx <= r; kx++ {
						sx := clampInt(x+kx, 0, w-1)
						window = append(window, src.Pix[src.PixOffset(b.Min.X+sx, b.Min.Y+sy)+ch])
					}
				}
				sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
				dst.Pix[di+ch] = window[n/2]
			}
			dst.Pix[di+3] = src.Pix[src.PixOffset(b.Min.X+x, b.Min.Y+y)+3]
		}
	}
	return dst
}

// MedianGray applies a ksize x ksize median filter to a grayscale image.
func MedianGray(g *image.Gray, ksize int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	r := ksize / 2
	n := ksize * ksize
	window := make([]uint8, 0, n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			window = window[:0]
			for ky := -r; ky <= r; ky++ {
				sy := clampInt(y+ky, 0, h-1)
				for kx := -r; kx <= r; kx++ {
					sx := clampInt(x+kx, 0, w-1)
					window = append(window, g.Pix[g.PixOffset(b.Min.X+sx, b.Min.Y+sy)])
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			dst.Pix[y*dst.Stride+x] = window[n/2]
		}
	}
	return dst
}

// Bilateral applies an edge-preserving bilateral filter: each output
// pixel is the spatially and photometrically weighted average of its
// d x d neighborhood. Color distance is measured across all three
// channels.
func Bilateral(src *image.NRGBA, d int, sigmaColor, sigmaSpace float64) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	r := d / 2
	spaceW := precomputeSpace(r, sigmaSpace)
	colorW := precomputeColor(sigmaColor)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ci := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			cr, cg, cb := int(src.Pix[ci]), int(src.Pix[ci+1]), int(src.Pix[ci+2])
			var sr, sg, sb, wSum float64
			for ky := -r; ky <= r; ky++ {
				sy := clampInt(y+ky, 0, h-1)
				for kx := -r; kx <= r; kx++ {
					sx := clampInt(x+kx, 0, w-1)
					si := src.PixOffset(b.Min.X+sx, b.Min.Y+sy)
					dr := int(src.Pix[si]) - cr
					dg := int(src.Pix[si+1]) - cg
					db := int(src.Pix[si+2]) - cb
					cd := abs(dr) + abs(dg) + abs(db)
					if cd > 765 {
						cd = 765
					}
					wt := spaceW[(ky+r)*(2*r+1)+kx+r] * colorW[cd]
					sr += wt * float64(src.Pix[si])
					sg += wt * float64(src.Pix[si+1])
					sb += wt * float64(src.Pix[si+2])
					wSum += wt
				}
			}
			di := dst.PixOffset(x, y)
			dst.Pix[di] = clampU8(sr / wSum)
			dst.Pix[di+1] = clampU8(sg / wSum)
			dst.Pix[di+2] = clampU8(sb / wSum)
			dst.Pix[di+3] = src.Pix[ci+3]
		}
	}
	return dst
}

// BilateralGray is Bilateral for grayscale images.
func BilateralGray(g *image.Gray, d int, sigmaColor, sigmaSpace float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	r := d / 2
	spaceW := precomputeSpace(r, sigmaSpace)
	colorW := precomputeColor(sigmaColor)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := int(g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)])
			var sum, wSum float64
			for ky := -r; ky <= r; ky++ {
				sy := clampInt(y+ky, 0, h-1)
				for kx := -r; kx <= r; kx++ {
					sx := clampInt(x+kx, 0, w-1)
					v := int(g.Pix[g.PixOffset(b.Min.X+sx, b.Min.Y+sy)])
					cd := abs(v - center)
					if cd > 765 {
						cd = 765
					}
					wt := spaceW[(ky+r)*(2*r+1)+kx+r] * colorW[cd]
					sum += wt * float64(v)
					wSum += wt
				}
			}
			dst.Pix[y*dst.Stride+x] = clampU8(sum / wSum)
		}
	}
	return dst
}

func precomputeSpace(r int, sigma float64) []float64 {
	size := 2*r + 1
	out := make([]float64, size*size)
	inv := -0.5 / (sigma * sigma)
	for ky := -r; ky <= r; ky++ {
		for kx := -r; kx <= r; kx++ {
			d2 := float64(kx*kx + ky*ky)
			out[(ky+r)*size+kx+r] = math.Exp(d2 * inv)
		}
	}
	return out
}

func precomputeColor(sigma float64) []float64 {
	out := make([]float64, 766)
	inv := -0.5 / (sigma * sigma)
	for d := range out {
		out[d] = math.Exp(float64(d*d) * inv)
	}
	return out
}

// Unsharp returns src + amount*(src - blur(src, sigma)), the classic
// unsharp mask.
func Unsharp(src *image.NRGBA, sigma, amount float64) *image.NRGBA {
	blurred := GaussianBlur(src, sigma)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		bi := blurred.PixOffset(0, y)
		di := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			for ch := 0; ch < 3; ch++ {
				v := float64(src.Pix[si+ch])
				bv := float64(blurred.Pix[bi+ch])
				dst.Pix[di+ch] = clampU8(v + amount*(v-bv))
			}
			dst.Pix[di+3] = src.Pix[si+3]
			si += 4
			bi += 4
			di += 4
		}
	}
	return dst
}

// UnsharpGray is Unsharp for grayscale images.
func UnsharpGray(g *image.Gray, sigma, amount float64) *image.Gray {
	blurred := GaussianBlurGray(g, sigma)
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		bi := blurred.PixOffset(0, y)
		di := y * dst.Stride
		for x := 0; x < w; x++ {
			v := float64(g.Pix[si])
			bv := float64(blurred.Pix[bi])
			dst.Pix[di] = clampU8(v + amount*(v-bv))
			si++
			bi++
			di++
		}
	}
	return dst
}

// Convolve3x3 runs a 3x3 convolution kernel over the image.
func Convolve3x3(src image.Image, kernel [9]float64) *image.NRGBA {
	return imaging.Convolve3x3(src, kernel, nil)
}

// Kernel constants for the fixed sharpening convolutions.
var (
	// SharpenCross boosts the center against the 4-neighborhood.
	SharpenCross = [9]float64{0, -1, 0, -1, 5, -1, 0, -1, 0}
	// SharpenFull boosts the center against the full 8-neighborhood.
	SharpenFull = [9]float64{-1, -1, -1, -1, 9, -1, -1, -1, -1}
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
