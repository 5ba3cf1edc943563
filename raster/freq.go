package raster

import (
	"image"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum is a centered 2-D Fourier transform of a grayscale image:
// the DC component sits at (W/2, H/2), mirroring the usual fftshift
// layout so radial frequency masks can be expressed as distances from
// the center.
type Spectrum struct {
	W, H int
	Coef []complex128 // row-major
}

// FFT2 computes the centered 2-D Fourier transform of g. Centering is
// achieved by modulating the input with (-1)^(x+y), which is equivalent
// to shifting the spectrum by half its period in both axes.
func FFT2(g *image.Gray) *Spectrum {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	coef := make([]complex128, w*h)
	for y := 0; y < h; y++ {
		i := g.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			v := float64(g.Pix[i])
			if (x+y)&1 == 1 {
				v = -v
			}
			coef[y*w+x] = complex(v, 0)
			i++
		}
	}

	rowFFT := fourier.NewCmplxFFT(w)
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(row, coef[y*w:(y+1)*w])
		rowFFT.Coefficients(coef[y*w:(y+1)*w], row)
	}

	colFFT := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	out := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = coef[y*w+x]
		}
		colFFT.Coefficients(out, col)
		for y := 0; y < h; y++ {
			coef[y*w+x] = out[y]
		}
	}
	return &Spectrum{W: w, H: h, Coef: coef}
}

// Magnitude returns the per-coefficient magnitudes.
func (s *Spectrum) Magnitude() []float64 {
	out := make([]float64, len(s.Coef))
	for i, c := range s.Coef {
		out[i] = cmplx.Abs(c)
	}
	return out
}

// BandEnergyRatio returns the fraction of total spectral magnitude that
// falls inside the circular band rMin <= r < rMax around the center.
func (s *Spectrum) BandEnergyRatio(rMin, rMax float64) float64 {
	cx, cy := float64(s.W)/2, float64(s.H)/2
	var band, total float64
	for y := 0; y < s.H; y++ {
		dy := float64(y) - cy
		for x := 0; x < s.W; x++ {
			dx := float64(x) - cx
			m := cmplx.Abs(s.Coef[y*s.W+x])
			total += m
			r := math.Hypot(dx, dy)
			if r >= rMin && r < rMax {
				band += m
			}
		}
	}
	if total == 0 {
		return 0
	}
	return band / total
}

// ZeroAnnulus removes all energy in the circular band rMin <= r <= rMax.
func (s *Spectrum) ZeroAnnulus(rMin, rMax float64) {
	cx, cy := float64(s.W)/2, float64(s.H)/2
	for y := 0; y < s.H; y++ {
		dy := float64(y) - cy
		for x := 0; x < s.W; x++ {
			dx := float64(x) - cx
			r := math.Hypot(dx, dy)
			if r >= rMin && r <= rMax {
				s.Coef[y*s.W+x] = 0
			}
		}
	}
}

// ScaleRadial multiplies every coefficient by fn(r) where r is its
// distance from the spectrum center. Used for Gaussian low/high-pass
// and peak-suppression masks.
func (s *Spectrum) ScaleRadial(fn func(r float64) float64) {
	cx, cy := float64(s.W)/2, float64(s.H)/2
	for y := 0; y < s.H; y++ {
		dy := float64(y) - cy
		for x := 0; x < s.W; x++ {
			dx := float64(x) - cx
			f := fn(math.Hypot(dx, dy))
			s.Coef[y*s.W+x] *= complex(f, 0)
		}
	}
}

// IFFT2 inverts the transform and renders the magnitude of the spatial
// result stretched to the full 0..255 range.
func (s *Spectrum) IFFT2() *image.Gray {
	w, h := s.W, s.H
	tmp := make([]complex128, len(s.Coef))
	copy(tmp, s.Coef)

	colFFT := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	out := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = tmp[y*w+x]
		}
		colFFT.Sequence(out, col)
		for y := 0; y < h; y++ {
			tmp[y*w+x] = out[y]
		}
	}
	rowFFT := fourier.NewCmplxFFT(w)
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(row, tmp[y*w:(y+1)*w])
		rowFFT.Sequence(tmp[y*w:(y+1)*w], row)
	}

	// Sequence is unnormalized: divide by the total sample count. The
	// (-1)^(x+y) demodulation is immaterial because only the magnitude
	// is kept.
	scale := 1 / float64(w*h)
	vals := make([]float64, w*h)
	minV, maxV := math.Inf(1), math.Inf(-1)
	for i, c := range tmp {
		v := cmplx.Abs(c) * scale
		vals[i] = v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	span := maxV - minV
	for i, v := range vals {
		var p uint8
		if span > 0 {
			p = clampU8((v - minV) / span * 255)
		}
		dst.Pix[(i/w)*dst.Stride+i%w] = p
	}
	return dst
}

// MeanStd returns the mean and standard deviation of a value slice.
// Handy for spectral peak thresholds.
func MeanStd(vals []float64) (mean, std float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean = sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	std = math.Sqrt(sq / float64(len(vals)))
	return mean, std
}
