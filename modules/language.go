package modules

import (
	"context"
	"errors"
	"image"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
	"github.com/wudi/scankit/textprobe"
)

// LanguageScorer is the opaque language classifier behind the language
// module: text sample in, language code and confidence out.
type LanguageScorer interface {
	Score(sample string) (lang string, confidence float64, err error)
}

// TrigramScorer scores languages with whatlanggo's trigram profiles.
type TrigramScorer struct{}

func (TrigramScorer) Score(sample string) (string, float64, error) {
	info := whatlanggo.Detect(sample)
	if !info.IsReliable() && info.Confidence == 0 {
		return "", 0, errors.New("no prediction")
	}
	return info.Lang.Iso6393(), info.Confidence, nil
}

// Language is a probe-style module: it samples the page's text through
// the OCR probe, identifies the language and reports it as metadata. It
// never mutates pixels, so its step records always carry applied=false;
// "detected" here means a language was identified.
type Language struct {
	Probe   textprobe.Probe
	Scorer  LanguageScorer
	Timeout time.Duration
	// MaxWidth bounds the OCR working copy; large pages are downscaled
	// before sampling.
	MaxWidth int
}

// NewLanguage builds the module; nil arguments select the process
// default probe and the trigram scorer.
func NewLanguage(probe textprobe.Probe, scorer LanguageScorer) *Language {
	if probe == nil {
		probe = textprobe.Default()
	}
	if scorer == nil {
		scorer = TrigramScorer{}
	}
	return &Language{Probe: probe, Scorer: scorer, Timeout: 30 * time.Second, MaxWidth: 1600}
}

func (m *Language) Name() string { return NameLanguage }

func (m *Language) Detect(ctx context.Context, img image.Image) (pipeline.Detection, error) {
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	work := raster.ScaleToWidth(img, m.MaxWidth)
	sampleInput := asPage(raster.OtsuBinarize(raster.Gray(work), false))
	text, err := m.Probe.SampleText(ctx, sampleInput)
	if err != nil {
		reason := "ocr_failed"
		if errors.Is(err, textprobe.ErrUnavailable) {
			reason = "tesseract_missing"
		}
		return pipeline.Detection{Meta: pipeline.Meta{"reason": reason, "error": err.Error()}}, nil
	}

	cleaned := strings.Join(strings.Fields(text), " ")
	if len(cleaned) < 20 {
		return pipeline.Detection{Meta: pipeline.Meta{
			"reason": "insufficient_text",
			"length": len(cleaned),
		}}, nil
	}
	if len(cleaned) > 1000 {
		cleaned = cleaned[:1000]
	}
	lang, confidence, err := m.Scorer.Score(cleaned)
	if err != nil {
		return pipeline.Detection{Meta: pipeline.Meta{"reason": "prediction_failed", "error": err.Error()}}, nil
	}
	return pipeline.Detection{
		ShouldCorrect: true,
		Meta: pipeline.Meta{
			"language":           lang,
			"language_detected":  true,
			"probability":        confidence,
			"text_sample_length": len(cleaned),
		},
	}, nil
}

// Correct is a no-op: the module only contributes metadata.
func (m *Language) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	return pipeline.Correction{
		Image:   raster.Clone(img),
		Mutated: false,
		Meta: pipeline.Meta{
			"applied":  false,
			"language": detectMeta["language"],
		},
	}, nil
}
