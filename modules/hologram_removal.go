package modules

import (
	"context"
	"image"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// HologramRemoval flattens hologram reflections: bright desaturated
// regions are inpainted from their surroundings, then re-sharpened only
// inside the inpainted mask so the rest of the page keeps its texture.
type HologramRemoval struct {
	// ReflectionThreshold is the brightness above which a pixel counts
	// as a reflection highlight.
	ReflectionThreshold uint8
}

// NewHologramRemoval returns the module with the 200 default threshold.
func NewHologramRemoval() *HologramRemoval {
	return &HologramRemoval{ReflectionThreshold: 200}
}

func (m *HologramRemoval) Name() string { return NameHologramRemoval }

func (m *HologramRemoval) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)
	total := float64(imageArea(img))

	bright := raster.Threshold(gray, m.ReflectionThreshold, false)
	reflectionPixels := 0
	for _, p := range bright.Pix {
		if p != 0 {
			reflectionPixels++
		}
	}
	reflectionRatio := float64(reflectionPixels) / total

	desaturatedRatio := 0.0
	if !raster.IsGray(img) {
		mask := m.reflectionMask(raster.NRGBA(img))
		desaturated := 0
		for _, p := range mask.Pix {
			if p != 0 {
				desaturated++
			}
		}
		desaturatedRatio = float64(desaturated) / total
	}

	return pipeline.Detection{
		ShouldCorrect: reflectionRatio > 0.02 || desaturatedRatio > 0.05,
		Meta: pipeline.Meta{
			"reflection_ratio":         reflectionRatio,
			"desaturated_bright_ratio": desaturatedRatio,
			"reflection_pixels":        reflectionPixels,
		},
	}, nil
}

func (m *HologramRemoval) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	n := raster.NRGBA(img)

	var mask *image.Gray
	if raster.IsGray(img) {
		mask = raster.Threshold(raster.Gray(img), m.ReflectionThreshold, false)
	} else {
		mask = m.reflectionMask(n)
	}
	mask = raster.Dilate(mask, raster.EllipseKernel(7, 7), 2)

	inpainted := 0
	for _, p := range mask.Pix {
		if p != 0 {
			inpainted++
		}
	}
	if inpainted == 0 {
		return pipeline.Correction{
			Image: raster.Clone(img),
			Meta:  pipeline.Meta{"applied": false, "reason": "empty_mask"},
		}, nil
	}

	result := raster.Inpaint(n, mask, 5)
	// Match the inpainted patch to the surrounding text sharpness, but
	// only inside the mask.
	sharpened := raster.Unsharp(result, 3.0, 0.5)
	result = raster.BlendMasked(result, sharpened, mask)

	return pipeline.Correction{
		Image:   result,
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":          true,
			"reflection_ratio": detectMeta["reflection_ratio"],
			"inpainted_pixels": inpainted,
			"method":           "inpaint + masked_sharpen",
		},
	}, nil
}

// reflectionMask marks the low-saturation, high-value pixels typical of
// hologram glare.
func (m *HologramRemoval) reflectionMask(n *image.NRGBA) *image.Gray {
	threshold := float64(m.ReflectionThreshold)
	return raster.HSVMask(n, func(sat, val float64) bool {
		return sat < 50 && val > threshold
	})
}
