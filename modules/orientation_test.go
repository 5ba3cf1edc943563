package modules

import (
	"context"
	"image"
	"testing"

	"github.com/wudi/scankit/textprobe"
)

func TestOrientationRotatesPerProbe(t *testing.T) {
	probe := &textprobe.Fixed{Rot: textprobe.Rotation{Degrees: 90, Confidence: 12.5, Script: "Latin"}}
	mod := NewOrientation(probe)
	page := docPage(200, 100)

	det, err := mod.Detect(context.Background(), page)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !det.ShouldCorrect {
		t.Fatalf("90 degree rotation not flagged: %+v", det.Meta)
	}
	if det.Meta["script"] != "Latin" {
		t.Fatalf("script meta = %v", det.Meta["script"])
	}

	corr, err := mod.Correct(context.Background(), page, det.Meta)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if !corr.Mutated {
		t.Fatal("rotation not applied")
	}
	// A quarter turn swaps the dimensions.
	if got := corr.Image.Bounds().Size(); got != image.Pt(100, 200) {
		t.Fatalf("rotated size = %v, want 100x200", got)
	}
}

func TestOrientationUprightPageSkipped(t *testing.T) {
	probe := &textprobe.Fixed{Rot: textprobe.Rotation{Degrees: 0, Confidence: 20}}
	mod := NewOrientation(probe)

	det, err := mod.Detect(context.Background(), docPage(100, 100))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if det.ShouldCorrect {
		t.Fatal("upright page flagged for rotation")
	}
}

func TestOrientationDegradesWithoutProbe(t *testing.T) {
	mod := NewOrientation(textprobe.Noop{})

	det, err := mod.Detect(context.Background(), docPage(100, 100))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if det.ShouldCorrect {
		t.Fatal("missing probe must not trigger rotation")
	}
	if det.Meta["reason"] != "tesseract_missing" {
		t.Fatalf("unexpected meta: %+v", det.Meta)
	}
}

func TestOrientation180KeepsDimensions(t *testing.T) {
	probe := &textprobe.Fixed{Rot: textprobe.Rotation{Degrees: 180}}
	mod := NewOrientation(probe)
	page := docPage(160, 120)

	det, err := mod.Detect(context.Background(), page)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	corr, err := mod.Correct(context.Background(), page, det.Meta)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if got := corr.Image.Bounds().Size(); got != image.Pt(160, 120) {
		t.Fatalf("size after half turn = %v", got)
	}
}
