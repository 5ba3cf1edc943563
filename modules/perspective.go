package modules

import (
	"context"
	"image"
	"math"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// Perspective flattens keystone distortion: when the page boundary is a
// large quadrilateral that is not axis-aligned, its four corners are
// warped onto an upright rectangle. Output dimensions follow the longer
// of each pair of opposite edges.
type Perspective struct {
	// MinAreaRatio is the minimum quad area relative to the image.
	MinAreaRatio float64
	// SkewTolerance is how far the quad's fill ratio may fall short of
	// its bounding box before a warp is considered necessary.
	SkewTolerance float64
}

// NewPerspective returns the module with the 0.5 / 0.015 defaults.
func NewPerspective() *Perspective {
	return &Perspective{MinAreaRatio: 0.5, SkewTolerance: 0.015}
}

func (m *Perspective) Name() string { return NamePerspective }

func (m *Perspective) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)
	blurred := raster.GaussianBlurGray(gray, raster.SigmaForKernel(5))
	edges := raster.Canny(blurred, 50, 150)

	contour, ok := raster.LargestContour(edges)
	if !ok {
		return pipeline.Detection{Meta: pipeline.Meta{"reason": "no_contours"}}, nil
	}
	area := raster.PolygonArea(contour)
	imgArea := float64(imageArea(img))
	areaRatio := 0.0
	if imgArea > 0 {
		areaRatio = area / imgArea
	}
	approx := raster.ApproxPolygon(contour, 0.02*raster.Perimeter(contour))
	if len(approx) != 4 || areaRatio < m.MinAreaRatio {
		return pipeline.Detection{Meta: pipeline.Meta{
			"reason":     "not_quad_or_small",
			"area_ratio": areaRatio,
			"corners":    len(approx),
		}}, nil
	}

	box := raster.BoundingRect(approx)
	boxArea := float64(box.Dx() * box.Dy())
	if boxArea == 0 {
		return pipeline.Detection{Meta: pipeline.Meta{"reason": "zero_box"}}, nil
	}
	fillRatio := area / boxArea
	needs := fillRatio < 1-m.SkewTolerance

	quad := [4][2]float64{}
	for i, p := range approx {
		quad[i] = [2]float64{float64(p.X), float64(p.Y)}
	}
	return pipeline.Detection{
		ShouldCorrect: needs,
		Meta: pipeline.Meta{
			"area_ratio": areaRatio,
			"fill_ratio": fillRatio,
			"approx":     quad,
		},
	}, nil
}

func (m *Perspective) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	quad, ok := detectMeta["approx"].([4][2]float64)
	if !ok {
		return pipeline.Correction{
			Image: raster.Clone(img),
			Meta:  pipeline.Meta{"applied": false, "reason": "missing_corners"},
		}, nil
	}
	rect := raster.OrderQuad(quad)
	tl, tr, br, bl := rect[0], rect[1], rect[2], rect[3]

	widthA := math.Hypot(br[0]-bl[0], br[1]-bl[1])
	widthB := math.Hypot(tr[0]-tl[0], tr[1]-tl[1])
	outW := int(math.Max(widthA, widthB))
	heightA := math.Hypot(tr[0]-br[0], tr[1]-br[1])
	heightB := math.Hypot(tl[0]-bl[0], tl[1]-bl[1])
	outH := int(math.Max(heightA, heightB))
	if outW < 1 || outH < 1 {
		return pipeline.Correction{
			Image: raster.Clone(img),
			Meta:  pipeline.Meta{"applied": false, "reason": "degenerate_quad"},
		}, nil
	}

	warped, err := raster.WarpPerspective(raster.NRGBA(img), rect, outW, outH)
	if err != nil {
		return pipeline.Correction{
			Image: raster.Clone(img),
			Meta:  pipeline.Meta{"applied": false, "reason": "degenerate_quad"},
		}, nil
	}
	return pipeline.Correction{
		Image:   warped,
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":     true,
			"output_size": []int{outW, outH},
		},
	}, nil
}
