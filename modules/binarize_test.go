package modules

import (
	"context"
	"image"
	"testing"

	"github.com/wudi/scankit/raster"
)

func TestBinarizeAlwaysTriggers(t *testing.T) {
	mod := NewBinarize(nil)
	for _, page := range []*image.Gray{
		grayCanvas(64, 64, 0),
		grayCanvas(64, 64, 255),
		docPage(160, 160),
	} {
		det, err := mod.Detect(context.Background(), page)
		if err != nil {
			t.Fatalf("detect: %v", err)
		}
		if !det.ShouldCorrect {
			t.Fatal("binarization must always trigger")
		}
		if _, ok := det.Meta["pre_binarize_contrast"]; !ok {
			t.Fatalf("missing contrast diagnostic: %+v", det.Meta)
		}
	}
}

func TestBinarizeOutputIsBilevel(t *testing.T) {
	for _, strategy := range []Binarizer{
		NewSauvolaBinarizer(),
		NewAdaptiveGaussianBinarizer(),
	} {
		mod := NewBinarize(strategy)
		page := docPage(160, 160)

		corr, err := mod.Correct(context.Background(), page, nil)
		if err != nil {
			t.Fatalf("%s correct: %v", strategy.Name(), err)
		}
		if !corr.Mutated {
			t.Fatalf("%s: correction not applied", strategy.Name())
		}
		if corr.Meta["method"] != strategy.Name() {
			t.Fatalf("method meta = %v, want %s", corr.Meta["method"], strategy.Name())
		}
		if got := corr.Image.Bounds().Size(); got != page.Bounds().Size() {
			t.Fatalf("%s changed dimensions: %v", strategy.Name(), got)
		}
		out := raster.Gray(corr.Image)
		for i, v := range out.Pix {
			if v != 0 && v != 255 {
				t.Fatalf("%s: pixel %d is %d, not bilevel", strategy.Name(), i, v)
			}
		}
	}
}

func TestBinarizeSeparatesTextFromBackground(t *testing.T) {
	mod := NewBinarize(NewSauvolaBinarizer())
	page := docPage(160, 160)

	corr, err := mod.Correct(context.Background(), page, nil)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	out := raster.Gray(corr.Image)
	// Center of a text block stays ink, far background stays paper.
	if v := out.Pix[24*out.Stride+25]; v != 0 {
		t.Fatalf("text center = %d, want 0", v)
	}
	if v := out.Pix[150*out.Stride+150]; v != 255 {
		t.Fatalf("background = %d, want 255", v)
	}
}
