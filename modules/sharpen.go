package modules

import (
	"context"
	"image"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// Sharpen boosts edge clarity on blurry pages: unsharp masking followed
// by a mild high-pass add-back.
type Sharpen struct {
	// BlurThreshold is the Laplacian variance below which a page is
	// considered blurry.
	BlurThreshold float64
}

// NewSharpen returns the module with the 100 default threshold.
func NewSharpen() *Sharpen { return &Sharpen{BlurThreshold: 100} }

func (m *Sharpen) Name() string { return NameSharpen }

func (m *Sharpen) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	lapVar := raster.LaplacianVariance(grayView(img))
	blurry := lapVar < m.BlurThreshold
	return pipeline.Detection{
		ShouldCorrect: blurry,
		Meta: pipeline.Meta{
			"laplacian_variance": lapVar,
			"is_blurry":          blurry,
		},
	}, nil
}

func (m *Sharpen) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	gray := grayView(img)

	// Unsharp masking, then add half of the remaining high-pass back.
	sharpened := raster.UnsharpGray(gray, 1.0, 0.8)
	lowPass := raster.GaussianBlurGray(sharpened, raster.SigmaForKernel(5))
	detailed := image.NewGray(sharpened.Bounds())
	for i := range sharpened.Pix {
		hp := float64(sharpened.Pix[i]) - float64(lowPass.Pix[i])
		if hp < 0 {
			hp = 0
		}
		v := float64(sharpened.Pix[i]) + hp*0.5
		if v > 255 {
			v = 255
		}
		detailed.Pix[i] = uint8(v)
	}

	return pipeline.Correction{
		Image:   asPage(detailed),
		Mutated: true,
		Meta: pipeline.Meta{
			"applied":                  true,
			"edge_enhanced":            true,
			"details_refined":          true,
			"laplacian_variance_input": detectMeta["laplacian_variance"],
			"method":                   "unsharp_mask + high_pass",
		},
	}, nil
}
