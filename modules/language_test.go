package modules

import (
	"context"
	"testing"

	"github.com/wudi/scankit/textprobe"
)

const englishSample = "The quick brown fox jumps over the lazy dog while the scanner hums along in the background."

func TestLanguageIdentifiesEnglishSample(t *testing.T) {
	probe := &textprobe.Fixed{Text: englishSample}
	mod := NewLanguage(probe, TrigramScorer{})
	page := docPage(160, 160)

	det, err := mod.Detect(context.Background(), page)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !det.ShouldCorrect {
		t.Fatalf("language not identified: %+v", det.Meta)
	}
	if det.Meta["language"] != "eng" {
		t.Fatalf("language = %v, want eng", det.Meta["language"])
	}

	corr, err := mod.Correct(context.Background(), page, det.Meta)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if corr.Mutated {
		t.Fatal("language module must never mutate the page")
	}
	if corr.Meta["language"] != "eng" {
		t.Fatalf("correct meta language = %v", corr.Meta["language"])
	}
}

func TestLanguageShortSampleSkipped(t *testing.T) {
	probe := &textprobe.Fixed{Text: "abc 123"}
	mod := NewLanguage(probe, TrigramScorer{})

	det, err := mod.Detect(context.Background(), docPage(160, 160))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if det.ShouldCorrect {
		t.Fatal("short sample should not classify")
	}
	if det.Meta["reason"] != "insufficient_text" {
		t.Fatalf("unexpected meta: %+v", det.Meta)
	}
}

func TestLanguageDegradesWithoutProbe(t *testing.T) {
	mod := NewLanguage(textprobe.Noop{}, nil)

	det, err := mod.Detect(context.Background(), docPage(160, 160))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if det.ShouldCorrect {
		t.Fatal("missing probe must not classify")
	}
	if det.Meta["reason"] != "tesseract_missing" {
		t.Fatalf("unexpected meta: %+v", det.Meta)
	}
}
