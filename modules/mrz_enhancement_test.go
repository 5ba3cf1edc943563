package modules

import (
	"context"
	"image"
	"testing"

	"github.com/wudi/scankit/raster"
)

// passportPage carries two wide machine-readable lines near the bottom
// edge of a 400x400 page.
func passportPage() *image.Gray {
	g := grayCanvas(400, 400, 180)
	fillGray(g, image.Rect(20, 350, 380, 362), 30)
	fillGray(g, image.Rect(20, 370, 380, 382), 30)
	return g
}

func TestMRZDetectFindsBottomBand(t *testing.T) {
	mod := NewMRZEnhancement()
	det, err := mod.Detect(context.Background(), passportPage())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !det.ShouldCorrect {
		t.Fatalf("machine-readable zone not detected: %+v", det.Meta)
	}
	density := det.Meta["text_density"].(float64)
	if density <= mod.DensityMin || density >= mod.DensityMax {
		t.Fatalf("text_density = %v outside window", density)
	}
	bbox, ok := det.Meta["mrz_bbox"].([4]int)
	if !ok {
		t.Fatalf("missing mrz_bbox: %+v", det.Meta)
	}
	if bbox[2] <= 240 {
		t.Fatalf("located block too narrow: %v", bbox)
	}
	if bbox[1] < 320 {
		t.Fatalf("block outside the bottom band: %v", bbox)
	}
}

func TestMRZDetectSkipsBlankBottom(t *testing.T) {
	mod := NewMRZEnhancement()
	det, err := mod.Detect(context.Background(), grayCanvas(400, 400, 180))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if det.ShouldCorrect {
		t.Fatal("blank page flagged for MRZ enhancement")
	}
}

func TestMRZCorrectBinarizesOnlyTheZone(t *testing.T) {
	mod := NewMRZEnhancement()
	page := passportPage()

	det, err := mod.Detect(context.Background(), page)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	corr, err := mod.Correct(context.Background(), page, det.Meta)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if !corr.Mutated {
		t.Fatal("correction not applied")
	}
	if got := corr.Image.Bounds().Size(); got != image.Pt(400, 400) {
		t.Fatalf("dimensions changed: %v", got)
	}
	bbox := corr.Meta["mrz_bbox"].([4]int)
	box := image.Rect(bbox[0], bbox[1], bbox[0]+bbox[2], bbox[1]+bbox[3])

	out := raster.Gray(corr.Image)
	// Inside the zone every pixel is bilevel.
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			if v := out.Pix[y*out.Stride+x]; v != 0 && v != 255 {
				t.Fatalf("zone pixel (%d,%d) = %d, not bilevel", x, y, v)
			}
		}
	}
	// Outside the zone the tonal range is untouched.
	if v := out.Pix[100*out.Stride+200]; v != 180 {
		t.Fatalf("pixel above the zone changed: %d", v)
	}
	if v := out.Pix[355*out.Stride+5]; v != 180 {
		t.Fatalf("pixel beside the zone changed: %d", v)
	}
}

func TestMRZCorrectFallbackStrip(t *testing.T) {
	mod := NewMRZEnhancement()
	page := passportPage()

	corr, err := mod.Correct(context.Background(), page, nil)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if !corr.Mutated {
		t.Fatal("fallback correction not applied")
	}
	bbox := corr.Meta["mrz_bbox"].([4]int)
	// Bottom 12 percent of a 400px page.
	if bbox[1] != 352 || bbox[3] != 48 || bbox[2] != 400 {
		t.Fatalf("fallback box = %v", bbox)
	}
}
