package modules

import (
	"context"
	"image"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// EdgeMask detects dark scanner borders around the document and paints
// everything outside the document interior white. Masking instead of
// cropping keeps the page dimensions stable for the geometric stages
// that follow.
type EdgeMask struct {
	// AreaThreshold is the largest-contour area ratio below which a
	// border is assumed.
	AreaThreshold float64
}

// NewEdgeMask returns the module with the 0.90 default area threshold.
func NewEdgeMask() *EdgeMask { return &EdgeMask{AreaThreshold: 0.90} }

func (m *EdgeMask) Name() string { return NameEdgeMask }

func (m *EdgeMask) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)
	b := gray.Bounds()
	h, w := b.Dy(), b.Dx()
	area := h * w

	// Interior candidate: largest region brighter than near-black.
	bright := raster.Threshold(gray, 10, false)
	labeling := raster.LabelComponents(bright)
	var contourArea float64
	ratio := 0.0
	if largest, ok := labeling.Largest(); ok {
		contourArea = float64(largest.Area)
		if area > 0 {
			ratio = contourArea / float64(area)
		}
	}
	hasBorderContour := contourArea > 0 && ratio < m.AreaThreshold

	// Thin-border heuristic: sample the outer half of an adaptive band
	// at each edge and compare against the interior.
	band := min(h, w) / 70
	if band < 5 {
		band = 5
	}
	borderMean, darkFraction, borderN := edgeStripStats(gray, band)
	centerMean := 255.0
	if h > 2*band && w > 2*band {
		centerMean = raster.Mean(raster.SubGray(gray, image.Rect(band, band, w-band, h-band)))
	} else {
		centerMean = raster.Mean(gray)
	}
	if borderN == 0 {
		borderMean = 255
		darkFraction = 0
	}
	contrast := centerMean - borderMean
	thinBorder := (contrast > 20 && darkFraction > 0.15) || darkFraction > 0.35

	return pipeline.Detection{
		ShouldCorrect: hasBorderContour || thinBorder,
		Meta: pipeline.Meta{
			"image_area":           area,
			"contour_area":         contourArea,
			"area_ratio":           ratio,
			"has_border_contour":   hasBorderContour,
			"border_mean":          borderMean,
			"center_mean":          centerMean,
			"contrast":             contrast,
			"thin_border_detected": thinBorder,
			"dark_fraction":        darkFraction,
		},
	}, nil
}

func (m *EdgeMask) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	gray := grayView(img)
	bright := raster.Threshold(gray, 10, false)
	labeling := raster.LabelComponents(bright)
	largest, ok := labeling.Largest()
	if !ok {
		return pipeline.Correction{
			Image: raster.Clone(img),
			Meta:  pipeline.Meta{"applied": false, "reason": "no_contours"},
		}, nil
	}

	// Border mask = everything outside the filled interior contour.
	interior := fillHoles(labeling.Mask(largest.ID))
	border := raster.Invert(interior)
	out := raster.ApplyMaskWhite(raster.NRGBA(img), border)

	masked := 0
	for _, p := range border.Pix {
		if p != 0 {
			masked++
		}
	}
	return pipeline.Correction{
		Image:   out,
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":              true,
			"border_pixels_masked": masked,
			"area_ratio":           detectMeta["area_ratio"],
		},
	}, nil
}

// edgeStripStats samples the outer half of a band-wide strip along each
// image edge, returning the strip mean, its dark (<60) fraction and the
// sample count.
func edgeStripStats(gray *image.Gray, band int) (mean, darkFraction float64, n int) {
	b := gray.Bounds()
	h, w := b.Dy(), b.Dx()
	half := band / 2
	if half < 1 {
		half = band
	}
	var sum float64
	dark := 0
	add := func(r image.Rectangle) {
		r = r.Intersect(image.Rect(0, 0, w, h))
		for y := r.Min.Y; y < r.Max.Y; y++ {
			i := gray.PixOffset(b.Min.X+r.Min.X, b.Min.Y+y)
			for x := r.Min.X; x < r.Max.X; x++ {
				v := gray.Pix[i]
				sum += float64(v)
				if v < 60 {
					dark++
				}
				n++
				i++
			}
		}
	}
	add(image.Rect(0, 0, w, half))   // top
	add(image.Rect(0, h-half, w, h)) // bottom
	add(image.Rect(0, 0, half, h))   // left
	add(image.Rect(w-half, 0, w, h)) // right
	if n == 0 {
		return 255, 0, 0
	}
	return sum / float64(n), float64(dark) / float64(n), n
}

// fillHoles closes interior holes of a component mask so dark print
// inside the document is not mistaken for border: any background region
// not connected to the image frame is flooded to foreground.
func fillHoles(mask *image.Gray) *image.Gray {
	inv := raster.Invert(mask)
	labeling := raster.LabelComponents(inv)
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()

	touchesFrame := make(map[int32]bool)
	for _, c := range labeling.Components {
		r := c.Rect
		if r.Min.X == 0 || r.Min.Y == 0 || r.Max.X == w || r.Max.Y == h {
			touchesFrame[c.ID] = true
		}
	}
	out := raster.CloneGray(mask)
	for i, lbl := range labeling.Labels {
		if lbl != 0 && !touchesFrame[lbl] {
			out.Pix[i] = 255
		}
	}
	return out
}
