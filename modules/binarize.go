package modules

import (
	"context"
	"image"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// Sauvola defaults shared by binarization and text refinement.
const (
	sauvolaWindowSize = 25
	sauvolaK          = 0.2
)

// Binarizer is the thresholding strategy behind the binarization
// stages. The variant is chosen at construction so the fallback path is
// observable instead of hiding behind a runtime error branch.
type Binarizer interface {
	Name() string
	Binarize(gray *image.Gray) *image.Gray
}

// SauvolaBinarizer is the primary strategy: a window-based local
// mean/variance threshold that holds up on stained and unevenly lit
// pages.
type SauvolaBinarizer struct {
	Window int
	K      float64
}

// NewSauvolaBinarizer returns the strategy with the (25, 0.2) defaults.
func NewSauvolaBinarizer() *SauvolaBinarizer {
	return &SauvolaBinarizer{Window: sauvolaWindowSize, K: sauvolaK}
}

func (s *SauvolaBinarizer) Name() string { return "sauvola" }

func (s *SauvolaBinarizer) Binarize(gray *image.Gray) *image.Gray {
	return raster.Sauvola(gray, s.Window, s.K)
}

// AdaptiveGaussianBinarizer is the simpler fallback strategy.
type AdaptiveGaussianBinarizer struct {
	Window int
	C      float64
}

// NewAdaptiveGaussianBinarizer returns the strategy with the (15, 10)
// defaults.
func NewAdaptiveGaussianBinarizer() *AdaptiveGaussianBinarizer {
	return &AdaptiveGaussianBinarizer{Window: 15, C: 10}
}

func (s *AdaptiveGaussianBinarizer) Name() string { return "adaptive_gaussian" }

func (s *AdaptiveGaussianBinarizer) Binarize(gray *image.Gray) *image.Gray {
	return raster.AdaptiveGaussian(gray, s.Window, s.C)
}

// Binarize is the terminal thresholding stage. Its detect is total: it
// always triggers and only reports the pre-binarization contrast as a
// diagnostic. The result is rendered back to three channels for
// pipeline uniformity.
type Binarize struct {
	strategy Binarizer
}

// NewBinarize builds the module around the given strategy; nil selects
// Sauvola.
func NewBinarize(strategy Binarizer) *Binarize {
	if strategy == nil {
		strategy = NewSauvolaBinarizer()
	}
	return &Binarize{strategy: strategy}
}

func (m *Binarize) Name() string { return NameBinarize }

func (m *Binarize) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	_, std := raster.MeanStdDev(grayView(img))
	return pipeline.Detection{
		ShouldCorrect: true,
		Meta:          pipeline.Meta{"pre_binarize_contrast": std},
	}, nil
}

func (m *Binarize) Correct(_ context.Context, img image.Image, _ pipeline.Meta) (pipeline.Correction, error) {
	binary := m.strategy.Binarize(grayView(img))
	return pipeline.Correction{
		Image:   asPage(binary),
		Mutated: true,
		Meta:    pipeline.Meta{"applied": true, "method": m.strategy.Name()},
	}, nil
}
