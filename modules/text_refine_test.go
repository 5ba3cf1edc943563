package modules

import (
	"bytes"
	"context"
	"image"
	"testing"

	"github.com/wudi/scankit/raster"
)

// speckledPage scatters 2x2 ink dots across a light page; every
// component is below the speckle area cutoff.
func speckledPage() *image.Gray {
	g := grayCanvas(160, 160, 200)
	for row := 0; row < 5; row++ {
		for col := 0; col < 8; col++ {
			x, y := 12+col*18, 14+row*28
			fillGray(g, image.Rect(x, y, x+2, y+2), 30)
		}
	}
	return g
}

func TestTextRefineDetectsSpeckle(t *testing.T) {
	mod := NewTextRefine(nil)
	det, err := mod.Detect(context.Background(), speckledPage())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !det.ShouldCorrect {
		t.Fatalf("speckle not detected: %+v", det.Meta)
	}
	if ratio := det.Meta["speckle_ratio"].(float64); ratio <= speckleRatioThreshold {
		t.Fatalf("speckle_ratio = %v", ratio)
	}
}

func TestTextRefineSkipsHighContrastPage(t *testing.T) {
	mod := NewTextRefine(nil)
	page := grayCanvas(64, 64, 255)
	fillGray(page, image.Rect(0, 0, 32, 64), 0)

	det, err := mod.Detect(context.Background(), page)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if det.ShouldCorrect {
		t.Fatal("high-contrast page flagged for refinement")
	}
	if det.Meta["reason"] != "sufficient_contrast" {
		t.Fatalf("unexpected meta: %+v", det.Meta)
	}
}

// When every ink component is speckle-sized the cleanup would erase the
// whole page, so the module must fall back to the plain binarization.
func TestTextRefineRevertsOverAggressiveCleanup(t *testing.T) {
	mod := NewTextRefine(nil)
	page := speckledPage()

	det, err := mod.Detect(context.Background(), page)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	corr, err := mod.Correct(context.Background(), page, det.Meta)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if corr.Meta["reverted_cleanup"] != true {
		t.Fatalf("expected revert, meta %+v", corr.Meta)
	}
	want := NewSauvolaBinarizer().Binarize(page)
	got := raster.Gray(corr.Image)
	if !bytes.Equal(got.Pix, want.Pix) {
		t.Fatal("reverted output differs from plain binarization")
	}
}

func TestTextRefineCleansWithoutTouchingText(t *testing.T) {
	mod := NewTextRefine(nil)
	// Real text blocks plus a handful of speckles: cleanup should run
	// and keep the large components.
	page := grayCanvas(200, 200, 200)
	for line := 0; line < 3; line++ {
		y := 40 + line*30
		fillGray(page, image.Rect(30, y, 90, y+14), 30)
		fillGray(page, image.Rect(110, y, 170, y+14), 30)
	}
	for i := 0; i < 8; i++ {
		x := 20 + i*20
		fillGray(page, image.Rect(x, 160, x+2, 162), 30)
	}

	corr, err := mod.Correct(context.Background(), page, nil)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if corr.Meta["reverted_cleanup"] != false {
		t.Fatalf("unexpected revert: %+v", corr.Meta)
	}
	if kept := corr.Meta["components_kept"].(int); kept < 2 {
		t.Fatalf("text components lost, kept %d", kept)
	}
	if removed := corr.Meta["components_removed"].(int); removed == 0 {
		t.Fatal("speckles not removed")
	}
	out := raster.Gray(corr.Image)
	// Text stroke survives cleanup.
	if v := out.Pix[47*out.Stride+60]; v != 0 {
		t.Fatalf("text stroke erased, got %d", v)
	}
}
