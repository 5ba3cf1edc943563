package modules

import (
	"context"
	"image"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// Enhancement thresholds.
const (
	lowContrastStdThreshold = 40.0
	laplacianSharpnessMin   = 120.0
	brightnessLowThreshold  = 80.0
	brightnessHighThreshold = 220.0
	claheClipLimit          = 2.0
	unsharpAmount           = 1.5
)

// Enhance always runs: CLAHE with a clip limit scaled down on already
// contrasty pages, brightness normalization when the mean is out of
// range, and unsharp masking with an adaptive amount.
type Enhance struct{}

// NewEnhance returns the module.
func NewEnhance() *Enhance { return &Enhance{} }

func (m *Enhance) Name() string { return NameEnhance }

func (m *Enhance) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)
	mean, std := raster.MeanStdDev(gray)
	lapVar := raster.LaplacianVariance(gray)
	return pipeline.Detection{
		ShouldCorrect: true,
		Meta: pipeline.Meta{
			"contrast_std":       std,
			"laplacian_variance": lapVar,
			"brightness_mean":    mean,
			"low_contrast":       std < lowContrastStdThreshold,
			"blurry":             lapVar < laplacianSharpnessMin,
			"bad_brightness":     mean < brightnessLowThreshold || mean > brightnessHighThreshold,
		},
	}, nil
}

func (m *Enhance) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	contrast, _ := detectMeta["contrast_std"].(float64)
	lowContrast, _ := detectMeta["low_contrast"].(bool)
	badBrightness, _ := detectMeta["bad_brightness"].(bool)

	clipLimit := claheClipLimit
	if contrast > 70 {
		clipLimit *= 0.6
	}
	gray := grayView(img)
	enhanced := raster.CLAHE(gray, clipLimit, 8, 8)
	if badBrightness {
		enhanced = raster.Normalize(enhanced, 0, 255)
	}

	amount := unsharpAmount
	if contrast > 70 && !lowContrast {
		amount = 1.1
	}
	sharpened := raster.UnsharpGray(enhanced, raster.SigmaForKernel(5), amount)

	_, postContrast := raster.MeanStdDev(sharpened)
	return pipeline.Correction{
		Image:   asPage(sharpened),
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":                 true,
			"pre_contrast":            contrast,
			"post_contrast":           postContrast,
			"adaptive_clip_limit":     clipLimit,
			"adaptive_unsharp_amount": amount,
		},
	}, nil
}
