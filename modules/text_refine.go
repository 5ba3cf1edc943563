package modules

import (
	"context"
	"image"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// Speckle cleanup thresholds.
const (
	speckleComponentMaxArea = 30
	speckleRatioThreshold   = 0.35
)

// TextRefine cleans speckle noise off low-contrast pages: it rebinarizes
// with the configured strategy, drops tiny connected components and
// smooths strokes morphologically. When the cleanup would discard most
// components it reverts to the unfiltered binarization instead of
// destroying legitimate text.
type TextRefine struct {
	strategy Binarizer
}

// NewTextRefine builds the module around the given strategy; nil
// selects Sauvola with the adaptive-mean parameters as the alternative
// construction.
func NewTextRefine(strategy Binarizer) *TextRefine {
	if strategy == nil {
		strategy = NewSauvolaBinarizer()
	}
	return &TextRefine{strategy: strategy}
}

func (m *TextRefine) Name() string { return NameTextRefine }

func (m *TextRefine) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)
	_, std := raster.MeanStdDev(gray)
	if std > 65 {
		return pipeline.Detection{Meta: pipeline.Meta{
			"reason":       "sufficient_contrast",
			"contrast_std": std,
		}}, nil
	}

	// Segment with text as foreground regardless of page polarity.
	otsu := raster.OtsuBinarize(gray, false)
	if raster.Mean(otsu) > 127 {
		otsu = raster.Invert(otsu)
	}
	labeling := raster.LabelComponents(otsu)
	total := len(labeling.Components)
	if total == 0 {
		return pipeline.Detection{Meta: pipeline.Meta{
			"num_components": 0,
			"contrast_std":   std,
		}}, nil
	}
	small := 0
	for _, c := range labeling.Components {
		if c.Area < speckleComponentMaxArea {
			small++
		}
	}
	ratio := float64(small) / float64(total)
	needs := ratio > speckleRatioThreshold && small > 5
	return pipeline.Detection{
		ShouldCorrect: needs,
		Meta: pipeline.Meta{
			"num_components":   total,
			"small_components": small,
			"speckle_ratio":    ratio,
			"contrast_std":     std,
			"threshold_used":   "otsu",
		},
	}, nil
}

func (m *TextRefine) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	gray := grayView(img)
	binary := m.strategy.Binarize(gray)

	// Drop tiny ink components; the binarization is white-background so
	// the filtering runs on the inverted image.
	filtered, kept, removed := raster.FilterArea(raster.Invert(binary), speckleComponentMaxArea)
	reverted := false
	cleaned := raster.Invert(filtered)
	if total := removed + kept; total > 0 && float64(removed)/float64(total) > 0.7 {
		// Over-aggressive: the "speckle" was the text.
		cleaned = binary
		reverted = true
	}
	if !reverted {
		kernel := raster.RectKernel(3, 3)
		cleaned = raster.Close(cleaned, kernel, 1)
		cleaned = raster.Open(cleaned, kernel, 1)
	}

	whiteRatio := raster.NonZeroRatio(cleaned)
	return pipeline.Correction{
		Image:   asPage(cleaned),
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":            true,
			"components_removed": removed,
			"components_kept":    kept,
			"pre_small_ratio":    detectMeta["speckle_ratio"],
			"white_pixel_ratio":  whiteRatio,
			"reverted_cleanup":   reverted,
			"method":             m.strategy.Name() + "_cleanup",
		},
	}, nil
}
