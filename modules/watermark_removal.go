package modules

import (
	"context"
	"image"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// WatermarkResidualRatio estimates how much of the page is covered by a
// broad background pattern: the fraction of pixels whose residual
// against a large-kernel morphological opening exceeds 10.
func WatermarkResidualRatio(gray *image.Gray) float64 {
	k := watermarkKernelSize(gray.Bounds())
	background := raster.Open(gray, raster.RectKernel(k, k), 1)
	diff := raster.AbsDiff(gray, background)
	return raster.FractionAbove(diff, 10)
}

func watermarkKernelSize(b image.Rectangle) int {
	k := b.Dy()
	if b.Dx() < k {
		k = b.Dx()
	}
	k /= 50
	if k < 15 {
		k = 15
	}
	return k
}

// WatermarkRemoval lifts semi-transparent watermarks off the page by
// estimating the background pattern on the lightness channel,
// subtracting half of it (conservative, to spare faint ink) and
// boosting text contrast with CLAHE.
type WatermarkRemoval struct {
	// MinWatermarkRatio is the detection threshold.
	MinWatermarkRatio float64
}

// NewWatermarkRemoval returns the module with the 0.20 default
// threshold.
func NewWatermarkRemoval() *WatermarkRemoval {
	return &WatermarkRemoval{MinWatermarkRatio: 0.20}
}

func (m *WatermarkRemoval) Name() string { return NameWatermarkRemoval }

func (m *WatermarkRemoval) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	ratio := WatermarkResidualRatio(grayView(img))
	return pipeline.Detection{
		ShouldCorrect: ratio > m.MinWatermarkRatio,
		Meta: pipeline.Meta{
			"watermark_ratio": ratio,
			"threshold":       m.MinWatermarkRatio,
		},
	}, nil
}

func (m *WatermarkRemoval) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	n := raster.NRGBA(img)
	l := raster.Lightness(n)

	k := watermarkKernelSize(l.Bounds())
	estimate := raster.Open(l, raster.RectKernel(k, k), 1)
	clean := image.NewGray(l.Bounds())
	for i := range l.Pix {
		v := int(l.Pix[i]) - int(estimate.Pix[i])/2
		if v < 0 {
			v = 0
		}
		clean.Pix[i] = uint8(v)
	}
	enhanced := raster.CLAHE(clean, 3.0, 8, 8)
	result := raster.WithLightness(n, enhanced)

	return pipeline.Correction{
		Image:   result,
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":           true,
			"watermark_ratio":   detectMeta["watermark_ratio"],
			"method":            "morphological_subtraction",
			"contrast_enhanced": true,
		},
	}, nil
}
