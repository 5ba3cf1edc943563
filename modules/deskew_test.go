package modules

import (
	"context"
	"math"
	"testing"
)

func TestDeskewAxisAlignedBlockSkipped(t *testing.T) {
	mod := NewDeskew()
	page := docPage(300, 200)

	det, err := mod.Detect(context.Background(), page)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if det.ShouldCorrect {
		t.Fatalf("straight page flagged: %+v", det.Meta)
	}
	angle := det.Meta["angle"].(float64)
	if math.Abs(angle) > mod.MinAngle {
		t.Fatalf("skew estimate %v for an axis-aligned block", angle)
	}
}

func TestDeskewEmptyPage(t *testing.T) {
	mod := NewDeskew()
	det, err := mod.Detect(context.Background(), grayCanvas(200, 200, 255))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if det.ShouldCorrect {
		t.Fatal("empty page flagged for deskewing")
	}
	if det.Meta["reason"] != "no_text_pixels" {
		t.Fatalf("unexpected meta: %+v", det.Meta)
	}
}

func TestDeskewCorrectBelowThresholdIsNoop(t *testing.T) {
	mod := NewDeskew()
	page := docPage(200, 200)

	corr, err := mod.Correct(context.Background(), page, map[string]any{"angle": 0.2})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if corr.Mutated {
		t.Fatal("sub-threshold angle must not rotate")
	}
}

func TestDeskewCorrectRotates(t *testing.T) {
	mod := NewDeskew()
	page := docPage(200, 200)

	corr, err := mod.Correct(context.Background(), page, map[string]any{"angle": 3.5})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if !corr.Mutated {
		t.Fatal("rotation not applied")
	}
	if corr.Meta["deskew_angle"] != 3.5 {
		t.Fatalf("deskew_angle meta = %v", corr.Meta["deskew_angle"])
	}
	if got := corr.Image.Bounds().Size(); got != page.Bounds().Size() {
		t.Fatalf("in-place rotation changed dimensions: %v", got)
	}
}
