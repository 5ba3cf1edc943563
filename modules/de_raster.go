package modules

import (
	"context"
	"image"
	"math"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// DeRaster removes structured print artifacts: ruled grids inpainted
// from directional line masks, scanner stamps inpainted from
// area-filtered contours, and light digital watermarks attenuated with
// a frequency-domain high-pass.
type DeRaster struct{}

// NewDeRaster returns the module.
func NewDeRaster() *DeRaster { return &DeRaster{} }

func (m *DeRaster) Name() string { return NameDeRaster }

func (m *DeRaster) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)

	edges := raster.Canny(gray, 50, 150)
	lines := raster.HoughLinesP(edges, 50, 50, 10)
	gridDetected := len(lines) > 10

	stampCount := countComponentsInRange(raster.Threshold(gray, 127, false), 500, 50000)

	watermarkRatio := lowFrequencyRatio(gray)

	return pipeline.Detection{
		ShouldCorrect: gridDetected || stampCount > 2 || watermarkRatio > 0.3,
		Meta: pipeline.Meta{
			"grid_detected":   gridDetected,
			"grid_line_count": len(lines),
			"stamp_count":     stampCount,
			"watermark_ratio": watermarkRatio,
		},
	}, nil
}

func (m *DeRaster) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	result := raster.NRGBA(img)

	gridDetected, _ := detectMeta["grid_detected"].(bool)
	stampCount, _ := detectMeta["stamp_count"].(int)
	watermarkRatio, _ := detectMeta["watermark_ratio"].(float64)

	if gridDetected {
		result = removeGridLines(result)
	}
	if stampCount > 2 {
		result = removeStamps(result)
	}
	if watermarkRatio > 0.3 {
		result = asPage(suppressLowFrequencies(raster.Gray(result), 6))
	}

	return pipeline.Correction{
		Image:   result,
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":           true,
			"grid_removed":      gridDetected,
			"stamps_removed":    stampCount > 2,
			"watermark_removed": watermarkRatio > 0.3,
			"method":            "hough_lines + contours + fft",
		},
	}, nil
}

// removeGridLines opens the edge map with long directional kernels to
// isolate rulings and inpaints them.
func removeGridLines(n *image.NRGBA) *image.NRGBA {
	edges := raster.Canny(raster.Gray(n), 50, 150)
	horizontal := raster.Open(edges, raster.RectKernel(30, 1), 1)
	vertical := raster.Open(edges, raster.RectKernel(1, 30), 1)
	mask := orMasks(horizontal, vertical)
	return raster.Inpaint(n, mask, 3)
}

// removeStamps masks bright contours of stamp-typical area and inpaints.
func removeStamps(n *image.NRGBA) *image.NRGBA {
	binary := raster.Threshold(raster.Gray(n), 127, false)
	labeling := raster.LabelComponents(binary)
	mask := labeling.MaskWhere(func(c raster.Component) bool {
		return c.Area > 500 && c.Area < 50000
	})
	mask = raster.Dilate(mask, raster.EllipseKernel(7, 7), 2)
	return raster.Inpaint(n, mask, 3)
}

// suppressLowFrequencies applies a Gaussian high-pass in the frequency
// domain with sigma = max(h, w) / sigmaDiv.
func suppressLowFrequencies(gray *image.Gray, sigmaDiv float64) *image.Gray {
	b := gray.Bounds()
	sigma := math.Max(float64(b.Dx()), float64(b.Dy())) / sigmaDiv
	spec := raster.FFT2(gray)
	spec.ScaleRadial(func(r float64) float64 {
		return 1 - math.Exp(-(r*r)/(2*sigma*sigma))
	})
	return raster.Normalize(spec.IFFT2(), 0, 255)
}

// lowFrequencyRatio measures the spectral magnitude concentrated near
// the center (DC excluded) against everything but DC. Heavy
// low-frequency content indicates a broad background pattern.
func lowFrequencyRatio(gray *image.Gray) float64 {
	b := gray.Bounds()
	rLow := float64(b.Dx())
	if float64(b.Dy()) < rLow {
		rLow = float64(b.Dy())
	}
	rLow /= 8
	spec := raster.FFT2(gray)
	mag := spec.Magnitude()
	cx, cy := float64(spec.W)/2, float64(spec.H)/2
	var low, total float64
	for y := 0; y < spec.H; y++ {
		for x := 0; x < spec.W; x++ {
			r := math.Hypot(float64(x)-cx, float64(y)-cy)
			if r < 1 {
				continue // DC dominates every spectrum; skip it
			}
			v := mag[y*spec.W+x]
			total += v
			if r <= rLow {
				low += v
			}
		}
	}
	if total == 0 {
		return 0
	}
	return low / total
}

func countComponentsInRange(binary *image.Gray, minArea, maxArea int) int {
	labeling := raster.LabelComponents(binary)
	count := 0
	for _, c := range labeling.Components {
		if c.Area > minArea && c.Area < maxArea {
			count++
		}
	}
	return count
}

func orMasks(a, b *image.Gray) *image.Gray {
	out := raster.CloneGray(a)
	for i, v := range b.Pix {
		if v != 0 {
			out.Pix[i] = 255
		}
	}
	return out
}
