package modules

import (
	"context"
	"image"
	"math"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// ArtifactRemoval handles physical damage artifacts: fold and crease
// lines, tape and sticker residue, and repeated overlay patterns. Line
// and contour masks feed the inpainter; periodic patterns are damped in
// the frequency domain.
type ArtifactRemoval struct{}

// NewArtifactRemoval returns the module.
func NewArtifactRemoval() *ArtifactRemoval { return &ArtifactRemoval{} }

func (m *ArtifactRemoval) Name() string { return NameArtifactRemoval }

func (m *ArtifactRemoval) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)

	edges := raster.Canny(gray, 50, 150)
	lines := raster.HoughLinesP(edges, 50, 100, 20)
	foldMarks := len(lines) > 5

	tapeCount := countComponentsInRange(raster.Threshold(gray, 200, false), 100, 100000)

	patternRatio := spectralPeakRatio(gray)
	hasPatterns := patternRatio > 0.01

	return pipeline.Detection{
		ShouldCorrect: foldMarks || tapeCount > 1 || hasPatterns,
		Meta: pipeline.Meta{
			"fold_marks_detected": foldMarks,
			"fold_mark_count":     len(lines),
			"tape_count":          tapeCount,
			"patterns_detected":   hasPatterns,
			"pattern_ratio":       patternRatio,
		},
	}, nil
}

func (m *ArtifactRemoval) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	result := raster.NRGBA(img)

	foldMarks, _ := detectMeta["fold_marks_detected"].(bool)
	tapeCount, _ := detectMeta["tape_count"].(int)
	hasPatterns, _ := detectMeta["patterns_detected"].(bool)

	if foldMarks {
		result = removeFoldMarks(result)
	}
	if tapeCount > 1 {
		result = removeTape(result)
	}
	if hasPatterns {
		result = asPage(dampPatterns(raster.Gray(result)))
	}

	return pipeline.Correction{
		Image:   result,
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":             true,
			"fold_marks_removed":  foldMarks,
			"tape_removed":        tapeCount > 1,
			"patterns_suppressed": hasPatterns,
			"method":              "hough_lines + contours + fft_filtering",
		},
	}, nil
}

// removeFoldMarks masks detected long lines and inpaints them.
func removeFoldMarks(n *image.NRGBA) *image.NRGBA {
	gray := raster.Gray(n)
	edges := raster.Canny(gray, 50, 150)
	lines := raster.HoughLinesP(edges, 50, 100, 20)

	b := gray.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for _, l := range lines {
		raster.DrawLineMask(mask, l.X1, l.Y1, l.X2, l.Y2, 5)
	}
	mask = raster.Dilate(mask, raster.EllipseKernel(11, 11), 2)
	return raster.Inpaint(n, mask, 3)
}

// removeTape masks bright rectangular residue and inpaints it.
func removeTape(n *image.NRGBA) *image.NRGBA {
	binary := raster.Threshold(raster.Gray(n), 200, false)
	labeling := raster.LabelComponents(binary)
	mask := labeling.MaskWhere(func(c raster.Component) bool {
		return c.Area > 100 && c.Area < 100000
	})
	mask = raster.Dilate(mask, raster.EllipseKernel(9, 9), 2)
	return raster.Inpaint(n, mask, 3)
}

// dampPatterns halves the spectral energy away from the center with a
// radial mask 1 - 0.5*exp(-r^2 / 2 sigma^2), sigma = max(h, w) / 20.
func dampPatterns(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	sigma := math.Max(float64(b.Dx()), float64(b.Dy())) / 20
	spec := raster.FFT2(gray)
	spec.ScaleRadial(func(r float64) float64 {
		return 1 - 0.5*math.Exp(-(r*r)/(2*sigma*sigma))
	})
	return raster.Normalize(spec.IFFT2(), 0, 255)
}

// spectralPeakRatio measures the fraction of coefficients whose
// magnitude exceeds twice (mean + stddev), the signature of strong
// repeated patterns.
func spectralPeakRatio(gray *image.Gray) float64 {
	spec := raster.FFT2(gray)
	mag := spec.Magnitude()
	mean, std := raster.MeanStd(mag)
	threshold := 2 * (mean + std)
	peaks := 0
	for _, v := range mag {
		if v > threshold {
			peaks++
		}
	}
	return float64(peaks) / float64(len(mag))
}
