package raster

import (
	"image"
	"math"
)

// Threshold produces a binary mask: pixels with intensity > thresh become
// 255, the rest 0. Set invert to flip the polarity.
func Threshold(g *image.Gray, thresh uint8, invert bool) *image.Gray {
	b := g.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < b.Dx(); x++ {
			above := g.Pix[si] > thresh
			if above != invert {
				dst.Pix[di] = 255
			}
			si++
			di++
		}
	}
	return dst
}

// OtsuLevel computes the global threshold that maximizes between-class
// variance of the intensity histogram.
func OtsuLevel(g *image.Gray) uint8 {
	hist := Histogram(g)
	total := 0
	for _, c := range hist {
		total += c
	}
	if total == 0 {
		return 0
	}
	var sumAll float64
	for v, c := range hist {
		sumAll += float64(v) * float64(c)
	}
	var sumBg, wBg float64
	bestLevel, bestVar := 0, -1.0
	for t := 0; t < 256; t++ {
		wBg += float64(hist[t])
		if wBg == 0 {
			continue
		}
		wFg := float64(total) - wBg
		if wFg == 0 {
			break
		}
		sumBg += float64(t) * float64(hist[t])
		mBg := sumBg / wBg
		mFg := (sumAll - sumBg) / wFg
		between := wBg * wFg * (mBg - mFg) * (mBg - mFg)
		if between > bestVar {
			bestVar = between
			bestLevel = t
		}
	}
	return uint8(bestLevel)
}

// OtsuBinarize thresholds g at the Otsu level. With invert, foreground
// (dark ink) maps to 255.
func OtsuBinarize(g *image.Gray, invert bool) *image.Gray {
	return Threshold(g, OtsuLevel(g), invert)
}

// Invert flips every pixel value.
func Invert(g *image.Gray) *image.Gray {
	b := g.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[di] = 255 - g.Pix[si]
			si++
			di++
		}
	}
	return dst
}

// AdaptiveMean binarizes with a per-pixel threshold equal to the mean of
// the window x window neighborhood minus c. Pixels above the local
// threshold become 255. The window must be odd.
func AdaptiveMean(g *image.Gray, window int, c float64) *image.Gray {
	mean, _ := localMeanStd(g, window, false)
	return applyLocalThreshold(g, mean, nil, func(v float64, m, _ float64) bool {
		return v > m-c
	})
}

// AdaptiveGaussian binarizes against a Gaussian-weighted local mean minus
// c, matching the behavior of a Gaussian-window adaptive threshold.
func AdaptiveGaussian(g *image.Gray, window int, c float64) *image.Gray {
	mean := gaussianLocalMean(g, window)
	return applyLocalThreshold(g, mean, nil, func(v float64, m, _ float64) bool {
		return v > m-c
	})
}

// Sauvola binarizes with the Sauvola local threshold
//
//	t = mean * (1 + k*(stddev/128 - 1))
//
// computed over a window x window neighborhood via integral images.
// Pixels above the local threshold become 255 (background white, ink
// black in the usual document polarity).
func Sauvola(g *image.Gray, window int, k float64) *image.Gray {
	mean, std := localMeanStd(g, window, true)
	return applyLocalThreshold(g, mean, std, func(v float64, m, s float64) bool {
		t := m * (1 + k*(s/128-1))
		return v > t
	})
}

func applyLocalThreshold(g *image.Gray, mean, std []float64, above func(v, m, s float64) bool) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < w; x++ {
			idx := y*w + x
			s := 0.0
			if std != nil {
				s = std[idx]
			}
			if above(float64(g.Pix[si]), mean[idx], s) {
				dst.Pix[di] = 255
			}
			si++
			di++
		}
	}
	return dst
}

// localMeanStd computes per-pixel window means (and optionally standard
// deviations) using summed-area tables, clamping windows at the borders.
func localMeanStd(g *image.Gray, window int, wantStd bool) (mean, std []float64) {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	r := window / 2

	sum := make([]float64, (w+1)*(h+1))
	var sqSum []float64
	if wantStd {
		sqSum = make([]float64, (w+1)*(h+1))
	}
	for y := 0; y < h; y++ {
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		var rowSum, rowSq float64
		for x := 0; x < w; x++ {
			v := float64(g.Pix[si])
			rowSum += v
			sum[(y+1)*(w+1)+x+1] = sum[y*(w+1)+x+1] + rowSum
			if wantStd {
				rowSq += v * v
				sqSum[(y+1)*(w+1)+x+1] = sqSum[y*(w+1)+x+1] + rowSq
			}
			si++
		}
	}

	boxSum := func(tab []float64, x0, y0, x1, y1 int) float64 {
		return tab[y1*(w+1)+x1] - tab[y0*(w+1)+x1] - tab[y1*(w+1)+x0] + tab[y0*(w+1)+x0]
	}

	mean = make([]float64, w*h)
	if wantStd {
		std = make([]float64, w*h)
	}
	for y := 0; y < h; y++ {
		y0 := clampInt(y-r, 0, h)
		y1 := clampInt(y+r+1, 0, h)
		for x := 0; x < w; x++ {
			x0 := clampInt(x-r, 0, w)
			x1 := clampInt(x+r+1, 0, w)
			area := float64((x1 - x0) * (y1 - y0))
			m := boxSum(sum, x0, y0, x1, y1) / area
			mean[y*w+x] = m
			if wantStd {
				variance := boxSum(sqSum, x0, y0, x1, y1)/area - m*m
				if variance < 0 {
					variance = 0
				}
				std[y*w+x] = math.Sqrt(variance)
			}
		}
	}
	return mean, std
}

// gaussianLocalMean approximates a Gaussian-weighted window mean with two
// box passes, which is close enough for thresholding purposes.
func gaussianLocalMean(g *image.Gray, window int) []float64 {
	mean, _ := localMeanStd(g, window, false)
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	half := window/2 + 1
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		y0 := clampInt(y-half/2, 0, h-1)
		y1 := clampInt(y+half/2, 0, h-1)
		for x := 0; x < w; x++ {
			x0 := clampInt(x-half/2, 0, w-1)
			x1 := clampInt(x+half/2, 0, w-1)
			out[y*w+x] = (mean[y0*w+x0] + mean[y0*w+x1] + mean[y1*w+x0] + mean[y1*w+x1] + 4*mean[y*w+x]) / 8
		}
	}
	return out
}

// Normalize stretches the intensity range of g linearly to [lo, hi].
// A flat image maps to lo.
func Normalize(g *image.Gray, lo, hi uint8) *image.Gray {
	b := g.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	minV, maxV := 255, 0
	for y := 0; y < b.Dy(); y++ {
		i := g.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			v := int(g.Pix[i])
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
			i++
		}
	}
	span := maxV - minV
	for y := 0; y < b.Dy(); y++ {
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < b.Dx(); x++ {
			if span == 0 {
				dst.Pix[di] = lo
			} else {
				v := float64(int(g.Pix[si])-minV) / float64(span)
				dst.Pix[di] = clampU8(float64(lo) + v*float64(int(hi)-int(lo)))
			}
			si++
			di++
		}
	}
	return dst
}
