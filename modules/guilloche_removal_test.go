package modules

import (
	"context"
	"testing"

	"github.com/wudi/scankit/raster"
)

func TestGuillocheDetectsPeriodicPattern(t *testing.T) {
	mod := NewGuillocheRemoval()
	page := sinusoidPage(256, 256, 50)

	det, err := mod.Detect(context.Background(), page)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !det.ShouldCorrect {
		t.Fatalf("periodic pattern not detected: %+v", det.Meta)
	}
	if s := det.Meta["pattern_strength"].(float64); s <= mod.MinPatternStrength {
		t.Fatalf("pattern_strength = %v", s)
	}
}

func TestGuillocheIgnoresPlainPage(t *testing.T) {
	mod := NewGuillocheRemoval()
	det, err := mod.Detect(context.Background(), docPage(256, 256))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if det.ShouldCorrect {
		t.Fatalf("plain page flagged: %+v", det.Meta)
	}
}

func TestGuillocheRemovalSuppressesBand(t *testing.T) {
	mod := NewGuillocheRemoval()
	page := sinusoidPage(256, 256, 50)
	before := GuillochePatternStrength(page)

	corr, err := mod.Correct(context.Background(), page, map[string]any{"pattern_strength": before})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if !corr.Mutated {
		t.Fatal("correction not applied")
	}
	after := GuillochePatternStrength(raster.Gray(corr.Image))
	if after >= before/2 {
		t.Fatalf("band energy not suppressed: before %v after %v", before, after)
	}
	if got := corr.Image.Bounds().Size(); got != page.Bounds().Size() {
		t.Fatalf("dimensions changed: %v", got)
	}
}
