package raster

import (
	"image"
	"math"
	"testing"
)

// sinusoidGray renders cycles full periods of a horizontal sinusoid,
// which concentrates spectral energy at radius cycles from the center.
func sinusoidGray(w, h, cycles int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 128 + 100*math.Sin(2*math.Pi*float64(cycles)*float64(x)/float64(w))
			g.Pix[y*g.Stride+x] = clampU8(v)
		}
	}
	return g
}

func TestFFT2SinusoidPeaks(t *testing.T) {
	g := sinusoidGray(128, 128, 32)
	s := FFT2(g)

	band := s.BandEnergyRatio(28, 36)
	if band < 0.3 {
		t.Fatalf("band energy ratio = %v, want the sinusoid peaks inside", band)
	}
	outside := s.BandEnergyRatio(50, 64)
	if outside > 0.05 {
		t.Fatalf("outer band ratio = %v, want near zero", outside)
	}
}

func TestZeroAnnulusClearsBand(t *testing.T) {
	g := sinusoidGray(128, 128, 32)
	s := FFT2(g)
	s.ZeroAnnulus(28, 36)
	if band := s.BandEnergyRatio(28, 36); band > 1e-9 {
		t.Fatalf("band energy after zeroing = %v", band)
	}
}

func TestIFFT2RoundTrip(t *testing.T) {
	g := sinusoidGray(64, 64, 16)
	s := FFT2(g)
	out := s.IFFT2()

	if out.Bounds() != g.Bounds() {
		t.Fatalf("round trip changed bounds: %v", out.Bounds())
	}
	// The magnitude image is stretched to 0..255, so the crests map to
	// 255 and the troughs to 0. Sixteen cycles over 64 pixels puts a
	// crest at x=1 and a trough at x=3.
	if v := out.Pix[1]; v < 250 {
		t.Fatalf("crest reconstructed as %d, want near 255", v)
	}
	if v := out.Pix[3]; v > 5 {
		t.Fatalf("trough reconstructed as %d, want near 0", v)
	}
}

func TestScaleRadialSuppressesPeaks(t *testing.T) {
	g := sinusoidGray(128, 128, 32)
	s := FFT2(g)
	before := s.BandEnergyRatio(28, 36)
	s.ScaleRadial(func(r float64) float64 {
		if r >= 28 && r < 36 {
			return 0.1
		}
		return 1
	})
	after := s.BandEnergyRatio(28, 36)
	if after >= before {
		t.Fatalf("radial scaling did not reduce the band: %v -> %v", before, after)
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(mean-5) > 1e-9 {
		t.Fatalf("mean = %v, want 5", mean)
	}
	if math.Abs(std-2) > 1e-9 {
		t.Fatalf("std = %v, want 2", std)
	}
	if m, s := MeanStd(nil); m != 0 || s != 0 {
		t.Fatalf("empty input should give zeros")
	}
}
