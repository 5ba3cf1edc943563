package modules

import (
	"context"
	"image"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// GuillochePatternStrength measures how much spectral energy sits in
// the circular frequency bands where guilloche line work concentrates:
// the strongest band between radius 30 and 120 (half-width 5) as a
// fraction of total magnitude.
func GuillochePatternStrength(gray *image.Gray) float64 {
	spec := raster.FFT2(gray)
	strength := 0.0
	for radius := 30.0; radius < 120; radius += 10 {
		ratio := spec.BandEnergyRatio(radius-5, radius+5)
		if ratio > strength {
			strength = ratio
		}
	}
	return strength
}

// GuillocheRemoval suppresses the fine repeating curved-line security
// pattern. The pattern lives in a well-defined annulus of the spectrum,
// so removal zeroes those bands, inverts the transform and re-sharpens
// the slightly softened text.
type GuillocheRemoval struct {
	// MinPatternStrength is the detection threshold.
	MinPatternStrength float64
}

// NewGuillocheRemoval returns the module with the 0.15 default
// threshold.
func NewGuillocheRemoval() *GuillocheRemoval {
	return &GuillocheRemoval{MinPatternStrength: 0.15}
}

func (m *GuillocheRemoval) Name() string { return NameGuillocheRemoval }

func (m *GuillocheRemoval) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	strength := GuillochePatternStrength(grayView(img))
	return pipeline.Detection{
		ShouldCorrect: strength > m.MinPatternStrength,
		Meta: pipeline.Meta{
			"pattern_strength": strength,
			"threshold":        m.MinPatternStrength,
		},
	}, nil
}

func (m *GuillocheRemoval) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	gray := grayView(img)
	spec := raster.FFT2(gray)
	spec.ZeroAnnulus(30, 120)
	restored := raster.Normalize(spec.IFFT2(), 0, 255)

	// The annulus removal softens strokes; a light 3x3 sharpen
	// restores them.
	sharpened := raster.Gray(raster.Convolve3x3(restored, [9]float64{
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0,
	}))

	return pipeline.Correction{
		Image:   asPage(sharpened),
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":              true,
			"pattern_strength":     detectMeta["pattern_strength"],
			"frequencies_filtered": "30-120px radius",
		},
	}, nil
}
