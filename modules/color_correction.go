package modules

import (
	"context"
	"image"
	"math"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// ColorCorrection fixes color casts with a gray-world balance, restores
// faded ink by boosting lightness contrast in Lab space, and normalizes
// the lightness range. Grayscale pages are passed through untouched.
type ColorCorrection struct{}

// NewColorCorrection returns the module.
func NewColorCorrection() *ColorCorrection { return &ColorCorrection{} }

func (m *ColorCorrection) Name() string { return NameColorCorrection }

func (m *ColorCorrection) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	if raster.IsGray(img) {
		return pipeline.Detection{Meta: pipeline.Meta{"is_grayscale": true}}, nil
	}
	n := raster.NRGBA(img)
	r, g, b := raster.ChannelMeans(n)

	castSpread := math.Max(math.Abs(r-g), math.Max(math.Abs(r-b), math.Abs(g-b)))
	hasCast := castSpread > 30
	intensity := (r + g + b) / 3
	isFaded := intensity < 100

	return pipeline.Detection{
		ShouldCorrect: hasCast || isFaded,
		Meta: pipeline.Meta{
			"color_cast_detected": hasCast,
			"fading_detected":     isFaded,
			"r_mean":              r,
			"g_mean":              g,
			"b_mean":              b,
			"intensity":           intensity,
		},
	}, nil
}

func (m *ColorCorrection) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	result := raster.NRGBA(img)

	hasCast, _ := detectMeta["color_cast_detected"].(bool)
	isFaded, _ := detectMeta["fading_detected"].(bool)

	if hasCast {
		result = raster.GrayWorldBalance(result)
	}
	if isFaded {
		l := raster.Lightness(result)
		result = raster.WithLightness(result, raster.CLAHE(l, 3.0, 8, 8))
	}
	// Lightness normalization evens out residual level differences.
	result = raster.WithLightness(result, raster.Normalize(raster.Lightness(result), 0, 255))

	return pipeline.Correction{
		Image:   result,
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":             true,
			"white_balance_fixed": hasCast,
			"faded_ink_restored":  isFaded,
			"color_normalized":    true,
			"method":              "gray_world + clahe + normalize",
		},
	}, nil
}
