package modules

import (
	"context"
	"image"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// Denoise thresholds used by detection.
const (
	noiseLevelThreshold  = 12.0
	laplacianNoiseVarMin = 50.0
)

// Denoise always runs but keys its strength to a noise estimate: the
// mean absolute difference between the page and a light Gaussian blur.
// Correction binarizes with an adaptive-mean guide to lift text off the
// background, opens away speckle, medians, then finishes with an
// edge-preserving smoothing pass.
type Denoise struct{}

// NewDenoise returns the module.
func NewDenoise() *Denoise { return &Denoise{} }

func (m *Denoise) Name() string { return NameDenoise }

func (m *Denoise) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)
	lapVar := raster.LaplacianVariance(gray)
	blurred := raster.GaussianBlurGray(gray, raster.SigmaForKernel(3))
	noiseLevel := raster.MeanAbsDiff(gray, blurred)
	return pipeline.Detection{
		ShouldCorrect: true,
		Meta: pipeline.Meta{
			"laplacian_variance": lapVar,
			"noise_level":        noiseLevel,
			"high_noise":         noiseLevel > noiseLevelThreshold,
			"blurry":             lapVar < laplacianNoiseVarMin,
		},
	}, nil
}

func (m *Denoise) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	highNoise, _ := detectMeta["high_noise"].(bool)

	gray := grayView(img)
	guide := raster.AdaptiveMean(gray, 25, 10)
	opened := raster.Open(guide, raster.RectKernel(2, 2), 2)
	smoothed := raster.MedianGray(opened, 3)

	// Edge-preserving finish; heavier diameter for noisy pages.
	d, sigma := 9, 50.0
	if highNoise {
		d, sigma = 15, 75.0
	}
	final := raster.BilateralGray(smoothed, d, sigma, sigma)

	return pipeline.Correction{
		Image:   asPage(final),
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":      true,
			"method":       "adaptive_guide + dots_removal + bilateral",
			"high_noise":   highNoise,
			"dots_removed": true,
		},
	}, nil
}
