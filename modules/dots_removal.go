package modules

import (
	"context"
	"image"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// DotsRemoval clears fields of background speckle dots that confuse
// OCR, keeping anything big enough to be a glyph or legitimate
// punctuation.
type DotsRemoval struct {
	// MinDotArea/MaxDotArea bound the component size that counts as a
	// dot during detection.
	MinDotArea int
	MaxDotArea int
	// KeepArea is the smallest component kept by the cleanup.
	KeepArea int
}

// NewDotsRemoval returns the module with the (5, 20, 15) defaults.
func NewDotsRemoval() *DotsRemoval {
	return &DotsRemoval{MinDotArea: 5, MaxDotArea: 20, KeepArea: 15}
}

func (m *DotsRemoval) Name() string { return NameDotsRemoval }

func (m *DotsRemoval) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)
	binary := raster.Threshold(gray, 200, true)
	labeling := raster.LabelComponents(binary)

	dots := 0
	for _, c := range labeling.Components {
		if c.Area > m.MinDotArea && c.Area < m.MaxDotArea {
			dots++
		}
	}
	// Density per 100x100 pixel patch.
	density := float64(dots) / (float64(imageArea(img)) / 10000)
	hasDots := dots > 50 || density > 2.0

	return pipeline.Detection{
		ShouldCorrect: hasDots,
		Meta: pipeline.Meta{
			"small_components": dots,
			"dots_density":     density,
		},
	}, nil
}

func (m *DotsRemoval) Correct(_ context.Context, img image.Image, _ pipeline.Meta) (pipeline.Correction, error) {
	gray := grayView(img)

	thresh := raster.AdaptiveMean(gray, 25, 10)
	opened := raster.Open(thresh, raster.RectKernel(2, 2), 2)

	// Label the ink and keep only glyph-sized components.
	inverted := raster.Invert(opened)
	filtered, _, removed := raster.FilterArea(inverted, m.KeepArea)
	cleaned := raster.Invert(filtered)
	final := raster.MedianGray(cleaned, 3)

	return pipeline.Correction{
		Image:   asPage(final),
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":            true,
			"method":             "morphology + connected_components",
			"components_removed": removed,
			"min_area_kept":      m.KeepArea,
		},
	}, nil
}
