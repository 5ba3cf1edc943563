// Package security classifies scanned pages before preprocessing:
// document type, the security features printed on the page, and the
// risk of destroying them. The policy layer uses the result to pick a
// processing profile, and front ends surface it to callers.
package security

import (
	"image"

	"github.com/wudi/scankit/modules"
	"github.com/wudi/scankit/raster"
)

// DocumentType labels the kind of document on the page.
type DocumentType string

const (
	TypePassport    DocumentType = "passport"
	TypeIDCard      DocumentType = "id_card"
	TypeCertificate DocumentType = "certificate"
	TypeCurrency    DocumentType = "currency"
	TypeStandard    DocumentType = "standard"
)

// Feature is a printed security feature found on the page.
type Feature string

const (
	FeatureWatermark Feature = "watermark"
	FeatureMicrotext Feature = "microtext"
	FeatureGuilloche Feature = "guilloche"
	FeatureHologram  Feature = "hologram"
)

// RiskLevel grades how much damage aggressive preprocessing would do
// to the document's evidentiary value.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Result is the classification of one page.
type Result struct {
	DocumentType DocumentType `json:"document_type"`
	Features     []Feature    `json:"features"`
	SkewAngle    float64      `json:"skew_angle"`
	RiskLevel    RiskLevel    `json:"risk_level"`
	HasWarp      bool         `json:"has_warp"`
}

// HasFeature reports whether the named feature was detected.
func (r Result) HasFeature(f Feature) bool {
	for _, got := range r.Features {
		if got == f {
			return true
		}
	}
	return false
}

var riskByType = map[DocumentType]RiskLevel{
	TypePassport:    RiskHigh,
	TypeIDCard:      RiskMedium,
	TypeCertificate: RiskLow,
	TypeCurrency:    RiskCritical,
	TypeStandard:    RiskLow,
}

// Analyze classifies a page. It is a pure function of the pixels: the
// same image always yields the same result, and the input is never
// modified.
func Analyze(img image.Image) Result {
	gray := raster.Gray(img)
	rgb := raster.NRGBA(img)

	docType := classifyType(gray, rgb)
	skew, _ := modules.EstimateSkew(gray)

	return Result{
		DocumentType: docType,
		Features:     detectFeatures(gray, rgb),
		SkewAngle:    skew,
		RiskLevel:    riskByType[docType],
		HasWarp:      detectWarp(gray),
	}
}

// classifyType checks document signatures in priority order: a
// machine-readable zone outranks a hologram overlay, which outranks an
// embossed seal.
func classifyType(gray *image.Gray, rgb *image.NRGBA) DocumentType {
	if hasMRZBand(gray) {
		return TypePassport
	}
	if hasHologram(rgb) {
		return TypeIDCard
	}
	if hasEmbossedSeal(gray) {
		return TypeCertificate
	}
	return TypeStandard
}

// hasMRZBand tests the bottom 15% of the page for machine-text ink
// density between 30% and 80%.
func hasMRZBand(gray *image.Gray) bool {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	searchH := int(float64(h) * 0.15)
	if searchH < 1 {
		return false
	}
	band := raster.SubGray(gray, image.Rect(0, h-searchH, w, h))
	density := raster.NonZeroRatio(raster.OtsuBinarize(band, true))
	return density > 0.30 && density < 0.80
}

// hasHologram looks for the washed-out bright patches a holographic
// overlay leaves on a flatbed scan: low saturation, high value.
func hasHologram(rgb *image.NRGBA) bool {
	mask := raster.HSVMask(rgb, func(sat, val float64) bool {
		return sat < 50 && val > 200
	})
	return raster.NonZeroRatio(mask) > 0.05
}

// hasEmbossedSeal searches for circular high-gradient regions, the
// shadow ring an embossed certificate seal casts.
func hasEmbossedSeal(gray *image.Gray) bool {
	mag := raster.SobelMagnitude(gray)
	edges := raster.Threshold(mag, 30, false)
	circles := raster.HoughCircles(edges, 30, 30, 200, 50, 0.3)
	return len(circles) > 0
}

func detectFeatures(gray *image.Gray, rgb *image.NRGBA) []Feature {
	var features []Feature
	if hasWatermark(gray) {
		features = append(features, FeatureWatermark)
	}
	if raster.LaplacianVariance(gray) > 150 {
		features = append(features, FeatureMicrotext)
	}
	if modules.GuillochePatternStrength(gray) > 0.15 {
		features = append(features, FeatureGuilloche)
	}
	if hasHologram(rgb) {
		features = append(features, FeatureHologram)
	}
	return features
}

// hasWatermark measures how much of the page survives a 15x15 opening:
// a large residual means broad faint structure behind the text.
func hasWatermark(gray *image.Gray) bool {
	background := raster.Open(gray, raster.RectKernel(15, 15), 1)
	diff := raster.AbsDiff(gray, background)
	return raster.FractionAbove(diff, 10) > 0.20
}

// detectWarp flags pages where most detected line segments sit at odd
// angles, the signature of a curled or bowed page.
func detectWarp(gray *image.Gray) bool {
	edges := raster.Canny(gray, 50, 150)
	lines := raster.HoughLinesP(edges, 100, 100, 10)
	if len(lines) == 0 {
		return false
	}
	angled := 0
	for _, l := range lines {
		a := l.AngleDeg()
		if a > 90 {
			a = 180 - a
		}
		if a > 5 && a < 85 {
			angled++
		}
	}
	return float64(angled) > float64(len(lines))*0.3
}
