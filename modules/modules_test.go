package modules

import (
	"context"
	"image"
	"math"
	"reflect"
	"testing"

	"github.com/wudi/scankit/pipeline"
)

func grayCanvas(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func fillGray(g *image.Gray, r image.Rectangle, v uint8) {
	b := g.Bounds()
	r = r.Intersect(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.Pix[y*g.Stride+x] = v
		}
	}
}

// docPage is a plausible document: light background with a few lines of
// dark "text" blocks.
func docPage(w, h int) *image.Gray {
	g := grayCanvas(w, h, 210)
	for line := 0; line < 4; line++ {
		y := 20 + line*25
		for word := 0; word < 3; word++ {
			x := 15 + word*40
			fillGray(g, image.Rect(x, y, x+28, y+8), 40)
		}
	}
	return g
}

func sinusoidPage(w, h, cycles int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 128 + 100*math.Sin(2*math.Pi*float64(cycles)*float64(x)/float64(w))
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			g.Pix[y*g.Stride+x] = uint8(v)
		}
	}
	return g
}

// TestShapePreservingModules runs detect+correct of every non-geometric
// module and checks the output dimensions never change.
func TestShapePreservingModules(t *testing.T) {
	mods := []pipeline.Module{
		NewDenoise(),
		NewBackgroundClean(),
		NewDeRaster(),
		NewArtifactRemoval(),
		NewEnhance(),
		NewTextRefine(nil),
		NewSharpen(),
		NewSmooth(),
		NewBinarize(nil),
		NewColorCorrection(),
		NewTextSegmentation(),
		NewDotsRemoval(),
		NewGuillocheRemoval(),
		NewWatermarkRemoval(),
		NewHologramRemoval(),
		NewMRZEnhancement(),
		NewEdgeMask(),
	}

	page := docPage(160, 160)
	ctx := context.Background()
	for _, mod := range mods {
		det, err := mod.Detect(ctx, page)
		if err != nil {
			t.Fatalf("%s detect: %v", mod.Name(), err)
		}
		corr, err := mod.Correct(ctx, page, det.Meta)
		if err != nil {
			t.Fatalf("%s correct: %v", mod.Name(), err)
		}
		if got, want := corr.Image.Bounds().Size(), page.Bounds().Size(); got != want {
			t.Fatalf("%s changed dimensions: %v -> %v", mod.Name(), want, got)
		}
	}
}

// TestDetectIsIdempotent calls detect twice against the same image and
// requires identical decisions.
func TestDetectIsIdempotent(t *testing.T) {
	mods := []pipeline.Module{
		NewEdgeMask(),
		NewPerspective(),
		NewDeskew(),
		NewDenoise(),
		NewBackgroundClean(),
		NewEnhance(),
		NewTextRefine(nil),
		NewBinarize(nil),
		NewGuillocheRemoval(),
		NewWatermarkRemoval(),
		NewMRZEnhancement(),
	}

	page := docPage(160, 160)
	ctx := context.Background()
	for _, mod := range mods {
		first, err := mod.Detect(ctx, page)
		if err != nil {
			t.Fatalf("%s detect: %v", mod.Name(), err)
		}
		second, err := mod.Detect(ctx, page)
		if err != nil {
			t.Fatalf("%s detect (again): %v", mod.Name(), err)
		}
		if first.ShouldCorrect != second.ShouldCorrect {
			t.Fatalf("%s detect not idempotent: %v then %v",
				mod.Name(), first.ShouldCorrect, second.ShouldCorrect)
		}
		if !reflect.DeepEqual(first.Meta, second.Meta) {
			t.Fatalf("%s detect meta differs between calls", mod.Name())
		}
	}
}

// TestDetectDoesNotMutate verifies detect leaves the page untouched.
func TestDetectDoesNotMutate(t *testing.T) {
	page := docPage(160, 160)
	before := make([]uint8, len(page.Pix))
	copy(before, page.Pix)

	ctx := context.Background()
	for _, mod := range []pipeline.Module{
		NewEdgeMask(), NewDenoise(), NewEnhance(), NewBinarize(nil),
		NewGuillocheRemoval(), NewMRZEnhancement(),
	} {
		if _, err := mod.Detect(ctx, page); err != nil {
			t.Fatalf("%s detect: %v", mod.Name(), err)
		}
	}
	for i := range page.Pix {
		if page.Pix[i] != before[i] {
			t.Fatalf("detect mutated pixel %d", i)
		}
	}
}
