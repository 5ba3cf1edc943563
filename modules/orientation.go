package modules

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
	"github.com/wudi/scankit/textprobe"
)

// Orientation estimates the 0/90/180/270 degree rotation needed to make
// the page text upright from the probe's OSD capability and applies the
// matching quarter-turn. The probe's absence degrades the module to a
// no-op rather than failing the page.
type Orientation struct {
	Probe   textprobe.Probe
	Timeout time.Duration
}

// NewOrientation builds the module around probe; nil selects the
// process default.
func NewOrientation(probe textprobe.Probe) *Orientation {
	if probe == nil {
		probe = textprobe.Default()
	}
	return &Orientation{Probe: probe, Timeout: 30 * time.Second}
}

func (m *Orientation) Name() string { return NameOrientation }

func (m *Orientation) Detect(ctx context.Context, img image.Image) (pipeline.Detection, error) {
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}
	rot, err := m.Probe.EstimateRotation(ctx, img)
	if err != nil {
		reason := "osd_failed"
		if errors.Is(err, textprobe.ErrUnavailable) {
			reason = "tesseract_missing"
		}
		return pipeline.Detection{Meta: pipeline.Meta{"reason": reason, "error": err.Error()}}, nil
	}
	needs := rot.Degrees == 90 || rot.Degrees == 180 || rot.Degrees == 270
	return pipeline.Detection{
		ShouldCorrect: needs,
		Meta: pipeline.Meta{
			"angle":      rot.Degrees,
			"confidence": rot.Confidence,
			"script":     rot.Script,
		},
	}, nil
}

func (m *Orientation) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	angle, _ := detectMeta["angle"].(int)
	var rotated image.Image
	switch angle {
	case 90:
		rotated = raster.Rotate90CCW(img)
	case 180:
		rotated = raster.Rotate180(img)
	case 270:
		rotated = raster.Rotate90CW(img)
	default:
		return pipeline.Correction{
			Image: raster.Clone(img),
			Meta:  pipeline.Meta{"applied": false},
		}, nil
	}
	return pipeline.Correction{
		Image:   rotated,
		Mutated: true,
		Meta:    pipeline.Meta{"applied": true, "original_angle": angle},
	}, nil
}
