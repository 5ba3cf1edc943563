package raster

import (
	"image"
	"math"
)

// Mean returns the average intensity of g.
func Mean(g *image.Gray) float64 {
	m, _ := MeanStdDev(g)
	return m
}

// MeanStdDev returns the mean and population standard deviation of g.
func MeanStdDev(g *image.Gray) (mean, stddev float64) {
	b := g.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0, 0
	}
	var sum, sqSum float64
	for y := 0; y < b.Dy(); y++ {
		i := g.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			v := float64(g.Pix[i])
			sum += v
			sqSum += v * v
			i++
		}
	}
	mean = sum / float64(n)
	variance := sqSum/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// Histogram returns the 256-bin intensity histogram of g.
func Histogram(g *image.Gray) [256]int {
	var h [256]int
	b := g.Bounds()
	for y := 0; y < b.Dy(); y++ {
		i := g.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			h[g.Pix[i]]++
			i++
		}
	}
	return h
}

// FractionBelow returns the fraction of pixels with intensity < thresh.
func FractionBelow(g *image.Gray, thresh uint8) float64 {
	b := g.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	count := 0
	for y := 0; y < b.Dy(); y++ {
		i := g.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			if g.Pix[i] < thresh {
				count++
			}
			i++
		}
	}
	return float64(count) / float64(n)
}

// FractionAbove returns the fraction of pixels with intensity > thresh.
func FractionAbove(g *image.Gray, thresh uint8) float64 {
	b := g.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	count := 0
	for y := 0; y < b.Dy(); y++ {
		i := g.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			if g.Pix[i] > thresh {
				count++
			}
			i++
		}
	}
	return float64(count) / float64(n)
}

// NonZeroRatio returns the fraction of pixels that are not zero. On a
// binary mask this is the foreground coverage.
func NonZeroRatio(g *image.Gray) float64 {
	return FractionAbove(g, 0)
}

// LaplacianVariance measures focus as the variance of the 3x3 Laplacian
// response. Sharp, textured images score high; blurred ones score low.
func LaplacianVariance(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	at := func(x, y int) float64 {
		return float64(g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}
	var sum, sqSum float64
	n := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y)
			sum += v
			sqSum += v * v
			n++
		}
	}
	mean := sum / float64(n)
	variance := sqSum/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return variance
}

// MeanGradient returns the average Sobel gradient magnitude, a measure
// of high-frequency grain and edge density.
func MeanGradient(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	at := func(x, y int) float64 {
		return float64(g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}
	var sum float64
	n := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			sum += math.Hypot(gx, gy)
			n++
		}
	}
	return sum / float64(n)
}

// SobelMagnitude returns the per-pixel Sobel gradient magnitude clamped
// to 8 bits. Border pixels are zero.
func SobelMagnitude(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w < 3 || h < 3 {
		return dst
	}
	at := func(x, y int) float64 {
		return float64(g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			dst.Pix[y*dst.Stride+x] = clampU8(math.Hypot(gx, gy))
		}
	}
	return dst
}

// AbsDiff returns |a - b| per pixel. The images must share dimensions.
func AbsDiff(a, b *image.Gray) *image.Gray {
	ab := a.Bounds()
	dst := image.NewGray(image.Rect(0, 0, ab.Dx(), ab.Dy()))
	bb := b.Bounds()
	for y := 0; y < ab.Dy(); y++ {
		ai := a.PixOffset(ab.Min.X, ab.Min.Y+y)
		bi := b.PixOffset(bb.Min.X, bb.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < ab.Dx(); x++ {
			va, vb := int(a.Pix[ai]), int(b.Pix[bi])
			if va >= vb {
				dst.Pix[di] = uint8(va - vb)
			} else {
				dst.Pix[di] = uint8(vb - va)
			}
			ai++
			bi++
			di++
		}
	}
	return dst
}

// MeanAbsDiff returns the mean absolute intensity difference between two
// equally sized images.
func MeanAbsDiff(a, b *image.Gray) float64 {
	return Mean(AbsDiff(a, b))
}

// ChannelMeans returns the mean of the R, G and B channels of n.
func ChannelMeans(n *image.NRGBA) (r, g, b float64) {
	bounds := n.Bounds()
	cnt := bounds.Dx() * bounds.Dy()
	if cnt == 0 {
		return 0, 0, 0
	}
	var sr, sg, sb float64
	for y := 0; y < bounds.Dy(); y++ {
		i := n.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < bounds.Dx(); x++ {
			sr += float64(n.Pix[i])
			sg += float64(n.Pix[i+1])
			sb += float64(n.Pix[i+2])
			i += 4
		}
	}
	return sr / float64(cnt), sg / float64(cnt), sb / float64(cnt)
}

// RowProjection counts the non-zero pixels in every row of a binary
// image, top to bottom.
func RowProjection(bin *image.Gray) []int {
	b := bin.Bounds()
	proj := make([]int, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		i := bin.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			if bin.Pix[i] != 0 {
				proj[y]++
			}
			i++
		}
	}
	return proj
}

// ColProjection counts the non-zero pixels in every column of a binary
// image, left to right.
func ColProjection(bin *image.Gray) []int {
	b := bin.Bounds()
	proj := make([]int, b.Dx())
	for y := 0; y < b.Dy(); y++ {
		i := bin.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			if bin.Pix[i] != 0 {
				proj[x]++
			}
			i++
		}
	}
	return proj
}
