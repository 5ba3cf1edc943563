// Package raster implements the pixel-level primitives the preprocessing
// modules are built from: grayscale/color conversions, statistics,
// thresholding, morphology, connected components, contour analysis,
// geometric transforms, spatial filters and frequency-domain tools.
//
// All operations treat images as immutable inputs and allocate fresh
// output buffers. The working currencies are *image.Gray for single
// channel data and binary masks (0 or 255), and *image.NRGBA for color.
package raster

import (
	"image"
	"image/color"
)

// Gray converts any image to 8-bit grayscale using the Rec. 601 luma
// weights. If src is already *image.Gray a copy is returned.
func Gray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return CloneGray(g)
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			si := n.PixOffset(b.Min.X, b.Min.Y+y)
			di := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				r := n.Pix[si]
				g := n.Pix[si+1]
				bl := n.Pix[si+2]
				dst.Pix[di] = luma(r, g, bl)
				si += 4
				di++
			}
		}
		return dst
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			dst.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: luma(c.R, c.G, c.B)})
		}
	}
	return dst
}

// NRGBA converts any image to NRGBA. If src is already *image.NRGBA a
// copy is returned; grayscale input is replicated across the channels.
func NRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return CloneNRGBA(n)
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if g, ok := src.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			si := g.PixOffset(b.Min.X, b.Min.Y+y)
			di := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				v := g.Pix[si]
				dst.Pix[di] = v
				dst.Pix[di+1] = v
				dst.Pix[di+2] = v
				dst.Pix[di+3] = 0xff
				si++
				di += 4
			}
		}
		return dst
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return dst
}

// CloneGray returns a deep copy of g normalized to a zero origin.
func CloneGray(g *image.Gray) *image.Gray {
	b := g.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], g.Pix[si:si+b.Dx()])
	}
	return dst
}

// CloneNRGBA returns a deep copy of n normalized to a zero origin.
func CloneNRGBA(n *image.NRGBA) *image.NRGBA {
	b := n.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := n.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+4*b.Dx()], n.Pix[si:si+4*b.Dx()])
	}
	return dst
}

// Clone copies an image preserving its concrete channel layout: grayscale
// stays grayscale, everything else becomes NRGBA.
func Clone(src image.Image) image.Image {
	if g, ok := src.(*image.Gray); ok {
		return CloneGray(g)
	}
	return NRGBA(src)
}

// IsGray reports whether the image carries a single effective channel,
// either structurally (*image.Gray) or because all color samples agree.
func IsGray(src image.Image) bool {
	if _, ok := src.(*image.Gray); ok {
		return true
	}
	n, ok := src.(*image.NRGBA)
	if !ok {
		return false
	}
	b := n.Bounds()
	for y := 0; y < b.Dy(); y++ {
		i := n.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			if n.Pix[i] != n.Pix[i+1] || n.Pix[i+1] != n.Pix[i+2] {
				return false
			}
			i += 4
		}
	}
	return true
}

func luma(r, g, b uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
