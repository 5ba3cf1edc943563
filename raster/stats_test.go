package raster

import (
	"image"
	"math"
	"testing"
)

func TestMeanStdDev(t *testing.T) {
	g := grayFilled(10, 10, 100)
	fillRectGray(g, image.Rect(0, 0, 10, 5), 200)

	mean, std := MeanStdDev(g)
	if math.Abs(mean-150) > 1e-9 {
		t.Fatalf("mean = %v, want 150", mean)
	}
	if math.Abs(std-50) > 1e-9 {
		t.Fatalf("std = %v, want 50", std)
	}
}

func TestFractionBelowAbove(t *testing.T) {
	g := grayFilled(10, 10, 200)
	fillRectGray(g, image.Rect(0, 0, 10, 3), 20)

	if f := FractionBelow(g, 50); math.Abs(f-0.3) > 1e-9 {
		t.Fatalf("fraction below = %v, want 0.3", f)
	}
	if f := FractionAbove(g, 150); math.Abs(f-0.7) > 1e-9 {
		t.Fatalf("fraction above = %v, want 0.7", f)
	}
}

func TestLaplacianVarianceOrdersSharpness(t *testing.T) {
	flat := grayFilled(64, 64, 128)

	checker := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x+y)%2 == 0 {
				checker.Pix[y*checker.Stride+x] = 255
			}
		}
	}

	lv0 := LaplacianVariance(flat)
	lv1 := LaplacianVariance(checker)
	if lv0 != 0 {
		t.Fatalf("flat image should have zero laplacian variance, got %v", lv0)
	}
	if lv1 <= lv0 {
		t.Fatalf("checkerboard should out-score flat: %v <= %v", lv1, lv0)
	}
}

func TestMeanGradientOnEdge(t *testing.T) {
	g := grayFilled(40, 40, 0)
	fillRectGray(g, image.Rect(20, 0, 40, 40), 255)

	if mg := MeanGradient(g); mg <= 0 {
		t.Fatalf("vertical edge should produce positive mean gradient, got %v", mg)
	}
	if mg := MeanGradient(grayFilled(40, 40, 77)); mg != 0 {
		t.Fatalf("flat image should have zero gradient, got %v", mg)
	}
}

func TestProjections(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 20, 10))
	fillRectGray(bin, image.Rect(0, 4, 20, 6), 255) // two full rows

	rows := RowProjection(bin)
	if rows[4] != 20 || rows[5] != 20 {
		t.Fatalf("text rows should count 20 pixels, got %d and %d", rows[4], rows[5])
	}
	if rows[0] != 0 {
		t.Fatalf("empty row should count zero")
	}

	cols := ColProjection(bin)
	if cols[7] != 2 {
		t.Fatalf("column should count 2 pixels, got %d", cols[7])
	}
}

func TestChannelMeans(t *testing.T) {
	n := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := n.PixOffset(x, y)
			n.Pix[i] = 200
			n.Pix[i+1] = 100
			n.Pix[i+2] = 50
			n.Pix[i+3] = 255
		}
	}
	r, g, b := ChannelMeans(n)
	if r != 200 || g != 100 || b != 50 {
		t.Fatalf("channel means = %v %v %v", r, g, b)
	}
}
