package raster

import (
	"image"
	"image/color"
	"testing"
)

func TestDrawLineMask(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 50, 50))
	DrawLineMask(mask, 5, 25, 45, 25, 3)

	if mask.Pix[25*mask.Stride+20] != 255 {
		t.Fatalf("line body should be masked")
	}
	if mask.Pix[24*mask.Stride+20] != 255 {
		t.Fatalf("width 3 should cover the adjacent row")
	}
	if mask.Pix[10*mask.Stride+20] != 0 {
		t.Fatalf("far row should stay clear")
	}
}

func TestDrawLineMaskDiagonalIsConnected(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 30, 30))
	DrawLineMask(mask, 2, 2, 27, 22, 1)

	l := LabelComponents(mask)
	if len(l.Components) != 1 {
		t.Fatalf("diagonal stroke split into %d components", len(l.Components))
	}
}

func TestApplyMaskWhite(t *testing.T) {
	n := nrgbaFilled(20, 20, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 20, 20))
	fillRectGray(mask, image.Rect(0, 0, 20, 5), 255)

	out := ApplyMaskWhite(n, mask)
	if got := out.NRGBAAt(10, 2); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Fatalf("masked band should be white, got %+v", got)
	}
	if got := out.NRGBAAt(10, 10); got.R != 10 {
		t.Fatalf("unmasked pixel changed: %+v", got)
	}
}

func TestBlendMasked(t *testing.T) {
	base := nrgbaFilled(10, 10, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	overlay := nrgbaFilled(10, 10, color.NRGBA{R: 9, G: 9, B: 9, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 10, 10))
	fillRectGray(mask, image.Rect(5, 0, 10, 10), 255)

	out := BlendMasked(base, overlay, mask)
	if got := out.NRGBAAt(7, 5); got.R != 9 {
		t.Fatalf("masked side should come from overlay, got %+v", got)
	}
	if got := out.NRGBAAt(2, 5); got.R != 100 {
		t.Fatalf("unmasked side should come from base, got %+v", got)
	}
}

func TestSubPasteRoundTrip(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 30, 30))
	for i := range g.Pix {
		g.Pix[i] = uint8(i % 251)
	}
	region := image.Rect(5, 8, 20, 18)

	sub := SubGray(g, region)
	if sub.Bounds().Dx() != 15 || sub.Bounds().Dy() != 10 {
		t.Fatalf("sub bounds = %v", sub.Bounds())
	}

	dst := image.NewGray(image.Rect(0, 0, 30, 30))
	PasteGray(dst, sub, region)
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			if dst.Pix[y*dst.Stride+x] != g.Pix[y*g.Stride+x] {
				t.Fatalf("mismatch at (%d,%d)", x, y)
			}
		}
	}
	if dst.Pix[0] != 0 {
		t.Fatalf("outside the paste region should stay untouched")
	}
}
