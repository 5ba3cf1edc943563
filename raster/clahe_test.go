package raster

import (
	"image"
	"testing"
)

func TestCLAHEBoostsLocalContrast(t *testing.T) {
	// A muddy 32-level ramp repeated per tile. Equalization should
	// spread it over a wider range.
	g := image.NewGray(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			g.Pix[y*g.Stride+x] = uint8(110 + x%32)
		}
	}

	out := CLAHE(g, 2.0, 8, 8)
	if out.Bounds() != g.Bounds() {
		t.Fatalf("bounds changed: %v", out.Bounds())
	}

	_, stdIn := MeanStdDev(g)
	_, stdOut := MeanStdDev(out)
	if stdOut < stdIn*1.2 {
		t.Fatalf("contrast did not improve: std %v -> %v", stdIn, stdOut)
	}
}

func TestCLAHEFlatImageStaysFlat(t *testing.T) {
	g := grayFilled(128, 128, 90)
	out := CLAHE(g, 2.0, 8, 8)

	_, std := MeanStdDev(out)
	if std > 1.0 {
		t.Fatalf("flat input should stay nearly flat, std = %v", std)
	}
}
