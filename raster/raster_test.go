package raster

import (
	"image"
	"image/color"
	"testing"
)

func nrgbaFilled(w, h int, c color.NRGBA) *image.NRGBA {
	n := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n.SetNRGBA(x, y, c)
		}
	}
	return n
}

func TestGrayLuma(t *testing.T) {
	n := nrgbaFilled(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	g := Gray(n)
	if g.Pix[0] != 255 {
		t.Fatalf("white should stay 255, got %d", g.Pix[0])
	}

	red := nrgbaFilled(2, 2, color.NRGBA{R: 255, A: 255})
	rg := Gray(red)
	// Rec. 601: pure red weighs in around 76.
	if rg.Pix[0] < 70 || rg.Pix[0] > 82 {
		t.Fatalf("red luma = %d, want near 76", rg.Pix[0])
	}
}

func TestGrayPassesThroughGray(t *testing.T) {
	g := grayFilled(8, 8, 99)
	out := Gray(g)
	if out.Pix[0] != 99 {
		t.Fatalf("gray input should be copied unchanged")
	}
	out.Pix[0] = 1
	if g.Pix[0] != 99 {
		t.Fatalf("conversion must not alias the source")
	}
}

func TestNRGBARoundTrip(t *testing.T) {
	g := grayFilled(6, 6, 130)
	n := NRGBA(g)
	i := n.PixOffset(3, 3)
	if n.Pix[i] != 130 || n.Pix[i+1] != 130 || n.Pix[i+2] != 130 || n.Pix[i+3] != 255 {
		t.Fatalf("gray to nrgba should replicate the value with opaque alpha")
	}
}

func TestCloneIsDeep(t *testing.T) {
	n := nrgbaFilled(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	c := CloneNRGBA(n)
	c.Pix[0] = 200
	if n.Pix[0] != 10 {
		t.Fatalf("clone should not share pixels with the source")
	}
}

func TestIsGray(t *testing.T) {
	if !IsGray(grayFilled(3, 3, 50)) {
		t.Fatalf("gray image should report gray")
	}
	colored := nrgbaFilled(3, 3, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	if IsGray(colored) {
		t.Fatalf("saturated image should not report gray")
	}
}
