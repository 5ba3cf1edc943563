package raster

import (
	"image"
	"math"
)

// D65 reference white for the sRGB to Lab round trip.
const (
	d65X = 0.95047
	d65Y = 1.00000
	d65Z = 1.08883
)

// RGBToLab converts an 8-bit sRGB triple to CIE Lab with all three
// channels rescaled into 0..255 (the usual 8-bit Lab encoding: L*255/100,
// a and b offset by 128).
func RGBToLab(r, g, b uint8) (float64, float64, float64) {
	lin := func(v uint8) float64 {
		f := float64(v) / 255
		if f > 0.04045 {
			return math.Pow((f+0.055)/1.055, 2.4)
		}
		return f / 12.92
	}
	rl, gl, bl := lin(r), lin(g), lin(b)
	x := (0.4124564*rl + 0.3575761*gl + 0.1804375*bl) / d65X
	y := (0.2126729*rl + 0.7151522*gl + 0.0721750*bl) / d65Y
	z := (0.0193339*rl + 0.1191920*gl + 0.9503041*bl) / d65Z

	f := func(t float64) float64 {
		if t > 0.008856 {
			return math.Cbrt(t)
		}
		return 7.787*t + 16.0/116.0
	}
	fx, fy, fz := f(x), f(y), f(z)
	L := 116.0*fy - 16.0
	a := 500.0 * (fx - fy)
	bb := 200.0 * (fy - fz)
	return L * 255.0 / 100.0, a + 128, bb + 128
}

// LabToRGB converts 8-bit-scaled Lab back to sRGB.
func LabToRGB(L, a, b float64) (uint8, uint8, uint8) {
	L = L * 100.0 / 255.0
	a -= 128
	b -= 128

	fy := (L + 16.0) / 116.0
	fx := a/500.0 + fy
	fz := fy - b/200.0
	fInv := func(t float64) float64 {
		if t > 0.206893 {
			return t * t * t
		}
		return (t - 16.0/116.0) / 7.787
	}
	x := d65X * fInv(fx)
	y := d65Y * fInv(fy)
	z := d65Z * fInv(fz)

	rl := 3.2404542*x - 1.5371385*y - 0.4985314*z
	gl := -0.9692660*x + 1.8760108*y + 0.0415560*z
	bl := 0.0556434*x - 0.2040259*y + 1.0572252*z
	unlin := func(v float64) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 0.0031308 {
			v = 1.055*math.Pow(v, 1.0/2.4) - 0.055
		} else {
			v *= 12.92
		}
		return clampU8(v * 255)
	}
	return unlin(rl), unlin(gl), unlin(bl)
}

// Lightness extracts the Lab L channel of n as an 8-bit grayscale image.
func Lightness(n *image.NRGBA) *image.Gray {
	b := n.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := n.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < b.Dx(); x++ {
			L, _, _ := RGBToLab(n.Pix[si], n.Pix[si+1], n.Pix[si+2])
			dst.Pix[di] = clampU8(L)
			si += 4
			di++
		}
	}
	return dst
}

// WithLightness rebuilds n with its Lab L channel replaced by l while
// keeping the original a/b chroma, so hue survives lightness editing.
func WithLightness(n *image.NRGBA, l *image.Gray) *image.NRGBA {
	b := n.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	lb := l.Bounds()
	for y := 0; y < h; y++ {
		si := n.PixOffset(b.Min.X, b.Min.Y+y)
		li := l.PixOffset(lb.Min.X, lb.Min.Y+y)
		di := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			_, a, bb := RGBToLab(n.Pix[si], n.Pix[si+1], n.Pix[si+2])
			r, g, blu := LabToRGB(float64(l.Pix[li]), a, bb)
			dst.Pix[di] = r
			dst.Pix[di+1] = g
			dst.Pix[di+2] = blu
			dst.Pix[di+3] = n.Pix[si+3]
			si += 4
			li++
			di += 4
		}
	}
	return dst
}

// RGBToHSV converts an 8-bit RGB triple to HSV with hue in 0..360 and
// saturation/value in 0..255, matching 8-bit HSV thresholds.
func RGBToHSV(r, g, b uint8) (hue, sat, val float64) {
	rf, gf, bf := float64(r), float64(g), float64(b)
	maxV := math.Max(rf, math.Max(gf, bf))
	minV := math.Min(rf, math.Min(gf, bf))
	val = maxV
	delta := maxV - minV
	if maxV > 0 {
		sat = delta / maxV * 255
	}
	if delta > 0 {
		switch maxV {
		case rf:
			hue = 60 * math.Mod((gf-bf)/delta, 6)
		case gf:
			hue = 60 * ((bf-rf)/delta + 2)
		default:
			hue = 60 * ((rf-gf)/delta + 4)
		}
		if hue < 0 {
			hue += 360
		}
	}
	return hue, sat, val
}

// HSVMask renders a binary mask of the pixels accepted by pred, which
// receives saturation and value in the 0..255 range.
func HSVMask(n *image.NRGBA, pred func(sat, val float64) bool) *image.Gray {
	b := n.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := n.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < b.Dx(); x++ {
			_, s, v := RGBToHSV(n.Pix[si], n.Pix[si+1], n.Pix[si+2])
			if pred(s, v) {
				dst.Pix[di] = 255
			}
			si += 4
			di++
		}
	}
	return dst
}

// GrayWorldBalance rescales each channel so all three share the global
// mean, neutralizing a color cast.
func GrayWorldBalance(n *image.NRGBA) *image.NRGBA {
	mr, mg, mb := ChannelMeans(n)
	if mr == 0 || mg == 0 || mb == 0 {
		return CloneNRGBA(n)
	}
	target := (mr + mg + mb) / 3
	sr, sg, sb := target/mr, target/mg, target/mb
	b := n.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := n.PixOffset(b.Min.X, b.Min.Y+y)
		di := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			dst.Pix[di] = clampU8(float64(n.Pix[si]) * sr)
			dst.Pix[di+1] = clampU8(float64(n.Pix[si+1]) * sg)
			dst.Pix[di+2] = clampU8(float64(n.Pix[si+2]) * sb)
			dst.Pix[di+3] = n.Pix[si+3]
			si += 4
			di += 4
		}
	}
	return dst
}
