package modules

import (
	"context"
	"image"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// SkewDegreeMin is the absolute angle above which deskewing is applied.
const SkewDegreeMin = 0.5

// Deskew straightens small rotations: the minimum-area rectangle of the
// Otsu foreground gives the skew estimate, and the page is rotated back
// with replicate-border sampling so no artificial frame appears.
type Deskew struct {
	MinAngle float64
}

// NewDeskew returns the module with the 0.5 degree default threshold.
func NewDeskew() *Deskew { return &Deskew{MinAngle: SkewDegreeMin} }

func (m *Deskew) Name() string { return NameDeskew }

// EstimateSkew returns the skew angle of the text foreground in
// degrees, normalized into (-45, 45]. The second return is false when
// the page has no foreground pixels.
func EstimateSkew(gray *image.Gray) (float64, bool) {
	blurred := raster.GaussianBlurGray(gray, raster.SigmaForKernel(5))
	inverted := raster.OtsuBinarize(blurred, true)
	pts := raster.ForegroundPoints(inverted, 1)
	if len(pts) == 0 {
		return 0, false
	}
	rect, ok := raster.MinAreaRect(pts)
	if !ok {
		return 0, false
	}
	angle := rect.Angle
	if angle < -45 {
		angle += 90
	}
	return angle, true
}

func (m *Deskew) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	angle, ok := EstimateSkew(grayView(img))
	if !ok {
		return pipeline.Detection{Meta: pipeline.Meta{"reason": "no_text_pixels"}}, nil
	}
	needs := angle > m.MinAngle || angle < -m.MinAngle
	return pipeline.Detection{
		ShouldCorrect: needs,
		Meta:          pipeline.Meta{"angle": angle},
	}, nil
}

func (m *Deskew) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	angle, _ := detectMeta["angle"].(float64)
	if angle <= m.MinAngle && angle >= -m.MinAngle {
		return pipeline.Correction{
			Image: raster.Clone(img),
			Meta:  pipeline.Meta{"applied": false},
		}, nil
	}
	rotated := raster.RotateAbout(raster.NRGBA(img), angle)
	return pipeline.Correction{
		Image:   rotated,
		Mutated: true,
		Meta:    pipeline.Meta{"applied": true, "deskew_angle": angle},
	}, nil
}
