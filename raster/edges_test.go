package raster

import (
	"image"
	"testing"
)

func TestCannyFindsStepEdge(t *testing.T) {
	g := grayFilled(60, 60, 0)
	fillRectGray(g, image.Rect(30, 0, 60, 60), 255)

	edges := Canny(g, 50, 150)
	if edges.Bounds() != g.Bounds() {
		t.Fatalf("bounds changed: %v", edges.Bounds())
	}

	// The edge should appear as a thin vertical line near x=30 and
	// nowhere else.
	hits := 0
	for y := 2; y < 58; y++ {
		for x := 0; x < 60; x++ {
			if edges.Pix[y*edges.Stride+x] != 0 {
				if x < 28 || x > 32 {
					t.Fatalf("edge pixel far from the step at (%d,%d)", x, y)
				}
				hits++
			}
		}
	}
	if hits < 40 {
		t.Fatalf("only %d edge pixels along a 60 px step", hits)
	}
}

func TestCannyFlatImageHasNoEdges(t *testing.T) {
	edges := Canny(grayFilled(40, 40, 128), 50, 150)
	if n := countNonZero(edges); n != 0 {
		t.Fatalf("flat image produced %d edge pixels", n)
	}
}

func TestCannyHysteresisDropsWeakIsolated(t *testing.T) {
	// A soft ramp produces gradients between the thresholds; without a
	// strong seed nothing should survive.
	g := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			v := x
			if v > 25 {
				v = 25
			}
			g.Pix[y*g.Stride+x] = uint8(v * 10)
		}
	}
	edges := Canny(g, 50, 1000)
	if n := countNonZero(edges); n != 0 {
		t.Fatalf("weak ramp produced %d edge pixels without a strong seed", n)
	}
}
