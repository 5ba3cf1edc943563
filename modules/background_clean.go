package modules

import (
	"context"
	"image"
	"math"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// BackgroundClean flattens uneven illumination, inpaints shadows and
// removes bleed-through from the backside of the sheet. Each of the
// three defects is detected separately; correction applies only the
// ones that fired.
type BackgroundClean struct{}

// NewBackgroundClean returns the module.
func NewBackgroundClean() *BackgroundClean { return &BackgroundClean{} }

func (m *BackgroundClean) Name() string { return NameBackgroundClean }

func (m *BackgroundClean) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)
	b := gray.Bounds()
	h, w := b.Dy(), b.Dx()

	shadowRatio := raster.FractionBelow(gray, 50)

	// Corner-versus-center illumination difference.
	lightingDiff := 0.0
	if h >= 4 && w >= 4 {
		qh, qw := h/4, w/4
		corners := (raster.Mean(raster.SubGray(gray, image.Rect(0, 0, qw, qh))) +
			raster.Mean(raster.SubGray(gray, image.Rect(w-qw, 0, w, qh))) +
			raster.Mean(raster.SubGray(gray, image.Rect(0, h-qh, qw, h))) +
			raster.Mean(raster.SubGray(gray, image.Rect(w-qw, h-qh, w, h)))) / 4
		center := raster.Mean(raster.SubGray(gray, image.Rect(qw, qh, w-qw, h-qh)))
		lightingDiff = math.Abs(corners-center) / (center + 1e-6)
	}

	// Bleed-through shows up as faint mirrored print: compare the page
	// against its horizontal mirror.
	flipped := mirrorGray(gray)
	diff := raster.AbsDiff(gray, flipped)
	bleedRatio := raster.FractionAbove(diff, 10)

	hasShadows := shadowRatio > 0.1
	hasUneven := lightingDiff > 0.2
	hasBleed := bleedRatio > 0.15
	return pipeline.Detection{
		ShouldCorrect: hasShadows || hasUneven || hasBleed,
		Meta: pipeline.Meta{
			"shadow_ratio":        shadowRatio,
			"lighting_diff":       lightingDiff,
			"bleed_ratio":         bleedRatio,
			"has_shadows":         hasShadows,
			"has_uneven_lighting": hasUneven,
			"has_bleed_through":   hasBleed,
		},
	}, nil
}

func (m *BackgroundClean) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	result := raster.NRGBA(img)

	if v, _ := detectMeta["has_uneven_lighting"].(bool); v {
		result = asPage(flattenIllumination(raster.Gray(result)))
	}
	if v, _ := detectMeta["has_shadows"].(bool); v {
		result = removeShadows(result)
	}
	if v, _ := detectMeta["has_bleed_through"].(bool); v {
		result = removeBleedThrough(result)
	}

	return pipeline.Correction{
		Image:   result,
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":               true,
			"shadows_removed":       detectMeta["has_shadows"],
			"lighting_corrected":    detectMeta["has_uneven_lighting"],
			"bleed_through_removed": detectMeta["has_bleed_through"],
			"method":                "morphology + illumination + inpainting",
		},
	}, nil
}

// flattenIllumination estimates the background with a large morphological
// opening and divides it out, then restores local contrast with CLAHE.
func flattenIllumination(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	k := b.Dy()
	if b.Dx() < k {
		k = b.Dx()
	}
	k = k / 10
	if k < 51 {
		k = 51
	}
	if k%2 == 0 {
		k++
	}
	background := raster.Open(gray, raster.EllipseKernel(k, k), 1)
	background = raster.Normalize(background, 1, 255)

	divided := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for i := range gray.Pix {
		bg := float64(background.Pix[i])
		if bg < 1 {
			bg = 1
		}
		v := float64(gray.Pix[i]) / bg * 255
		if v > 255 {
			v = 255
		}
		divided.Pix[i] = uint8(v)
	}
	normalized := raster.Normalize(divided, 0, 255)
	return raster.CLAHE(normalized, 2.0, 8, 8)
}

// removeShadows inpaints the dark residual left by a wide opening.
func removeShadows(n *image.NRGBA) *image.NRGBA {
	gray := raster.Gray(n)
	opened := raster.Open(gray, raster.EllipseKernel(21, 21), 2)
	residual := raster.AbsDiff(gray, opened)
	mask := raster.Threshold(residual, 30, false)
	mask = raster.Dilate(mask, raster.EllipseKernel(11, 11), 1)
	return raster.Inpaint(n, mask, 3)
}

// removeBleedThrough filters tiny inverted components of an adaptive
// binarization and inpaints them away.
func removeBleedThrough(n *image.NRGBA) *image.NRGBA {
	gray := raster.Gray(n)
	binary := raster.AdaptiveGaussian(gray, 21, 10)
	closed := raster.Close(binary, raster.EllipseKernel(5, 5), 1)
	inverted := raster.Invert(closed)
	labeling := raster.LabelComponents(inverted)
	mask := labeling.MaskWhere(func(c raster.Component) bool { return c.Area < 10 })
	return raster.Inpaint(n, mask, 2)
}

// mirrorGray flips the image horizontally.
func mirrorGray(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		di := out.PixOffset(w-1, y)
		for x := 0; x < w; x++ {
			out.Pix[di] = g.Pix[si]
			si++
			di--
		}
	}
	return out
}
