package security

import (
	"image"
	"testing"
)

func grayPage(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func fillRect(g *image.Gray, r image.Rectangle, v uint8) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.Pix[y*g.Stride+x] = v
		}
	}
}

func TestAnalyzePlainPageIsStandardLowRisk(t *testing.T) {
	page := grayPage(300, 300, 180)

	res := Analyze(page)
	if res.DocumentType != TypeStandard {
		t.Fatalf("plain page classified as %q", res.DocumentType)
	}
	if res.RiskLevel != RiskLow {
		t.Fatalf("standard document should be low risk, got %q", res.RiskLevel)
	}
	if res.HasWarp {
		t.Fatalf("plain page reported as warped")
	}
}

func TestAnalyzeMRZBandMeansPassport(t *testing.T) {
	page := grayPage(400, 400, 180)
	// Dense striped machine text across the bottom band.
	for y := 345; y < 400; y++ {
		for x := 0; x < 400; x++ {
			if (x/3)%2 == 0 {
				page.Pix[y*page.Stride+x] = 30
			}
		}
	}

	res := Analyze(page)
	if res.DocumentType != TypePassport {
		t.Fatalf("MRZ band should classify as passport, got %q", res.DocumentType)
	}
	if res.RiskLevel != RiskHigh {
		t.Fatalf("passport should be high risk, got %q", res.RiskLevel)
	}
}

func TestAnalyzeHologramPatchMeansIDCard(t *testing.T) {
	page := grayPage(300, 300, 150)
	// Washed-out overlay patch covering 16% of the page.
	fillRect(page, image.Rect(0, 0, 120, 120), 255)

	res := Analyze(page)
	if res.DocumentType != TypeIDCard {
		t.Fatalf("hologram page classified as %q", res.DocumentType)
	}
	if res.RiskLevel != RiskMedium {
		t.Fatalf("id card should be medium risk, got %q", res.RiskLevel)
	}
	if !res.HasFeature(FeatureHologram) {
		t.Fatalf("hologram feature missing from %v", res.Features)
	}
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	page := grayPage(200, 200, 180)
	fillRect(page, image.Rect(20, 20, 60, 60), 40)
	before := make([]uint8, len(page.Pix))
	copy(before, page.Pix)

	Analyze(page)
	for i := range page.Pix {
		if page.Pix[i] != before[i] {
			t.Fatalf("input pixel %d changed", i)
		}
	}
}
