package modules

import (
	"context"
	"image"
	"math"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// MRZEnhancement binarizes the machine-readable zone of passports and
// ID cards in place. The MRZ sits in the bottom band of the page as a
// wide, short block of dense OCR-B text; everything outside its
// bounding box is left untouched so the rest of the document keeps its
// tonal range.
type MRZEnhancement struct {
	// DensityMin and DensityMax bound the ink density of the bottom
	// band for it to read as machine text rather than blank margin or
	// solid artwork.
	DensityMin float64
	DensityMax float64
}

// NewMRZEnhancement returns the module with the 0.30 / 0.80 density
// window.
func NewMRZEnhancement() *MRZEnhancement {
	return &MRZEnhancement{DensityMin: 0.30, DensityMax: 0.80}
}

func (m *MRZEnhancement) Name() string { return NameMRZEnhancement }

func (m *MRZEnhancement) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()

	searchH := int(float64(h) * 0.15)
	if searchH < 1 {
		return pipeline.Detection{Meta: pipeline.Meta{"reason": "image_too_small"}}, nil
	}
	band := raster.SubGray(gray, image.Rect(0, h-searchH, w, h))
	binary := raster.OtsuBinarize(band, true)
	density := raster.NonZeroRatio(binary)

	meta := pipeline.Meta{
		"text_density":         density,
		"search_region_height": searchH,
	}
	if density <= m.DensityMin || density >= m.DensityMax {
		return pipeline.Detection{Meta: meta}, nil
	}

	box, ok := findMRZBox(gray)
	if !ok {
		meta["reason"] = "no_text_block"
		return pipeline.Detection{Meta: meta}, nil
	}
	meta["mrz_bbox"] = [4]int{box.Min.X, box.Min.Y, box.Dx(), box.Dy()}
	return pipeline.Detection{ShouldCorrect: true, Meta: meta}, nil
}

// findMRZBox scans the bottom 20% of the page for the widest short text
// block: wider than 60% of the page and under half the search band.
// Coordinates are returned in full-image space.
func findMRZBox(gray *image.Gray) (image.Rectangle, bool) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	searchH := int(float64(h) * 0.20)
	if searchH < 1 {
		return image.Rectangle{}, false
	}
	band := raster.SubGray(gray, image.Rect(0, h-searchH, w, h))
	binary := raster.OtsuBinarize(band, true)

	labeling := raster.LabelComponents(binary)
	best := image.Rectangle{}
	bestArea := 0
	for _, c := range labeling.Components {
		r := c.Rect
		if r.Dx() <= int(float64(w)*0.6) || r.Dy() >= searchH/2 {
			continue
		}
		if area := r.Dx() * r.Dy(); area > bestArea {
			bestArea = area
			best = r.Add(image.Pt(0, h-searchH))
		}
	}
	if bestArea == 0 {
		return image.Rectangle{}, false
	}
	return best, true
}

func (m *MRZEnhancement) Correct(_ context.Context, img image.Image, detectMeta pipeline.Meta) (pipeline.Correction, error) {
	page := raster.Clone(img)
	gray := grayView(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()

	var box image.Rectangle
	if bbox, ok := detectMeta["mrz_bbox"].([4]int); ok {
		box = image.Rect(bbox[0], bbox[1], bbox[0]+bbox[2], bbox[1]+bbox[3])
	} else {
		// No located block: fall back to the bottom strip.
		mrzH := int(float64(h) * 0.12)
		box = image.Rect(0, h-mrzH, w, h)
	}
	box = box.Intersect(image.Rect(0, 0, w, h))
	if box.Empty() {
		return pipeline.Correction{
			Image: page,
			Meta:  pipeline.Meta{"applied": false, "reason": "empty_region"},
		}, nil
	}

	region := raster.SubGray(gray, box)
	cleaned := removeMRZBaseline(region)
	sharpened := raster.Gray(raster.Convolve3x3(cleaned, raster.SharpenFull))
	binary := raster.OtsuBinarize(sharpened, false)

	out := raster.Gray(page)
	raster.PasteGray(out, binary, box)
	return pipeline.Correction{
		Image:   asPage(out),
		Mutated: true,
		Meta: pipeline.Meta{
			"mrz_bbox":         [4]int{box.Min.X, box.Min.Y, box.Dx(), box.Dy()},
			"method":           "targeted_binarization",
			"baseline_removed": true,
		},
	}, nil
}

// removeMRZBaseline whites out rows whose dark-pixel count is more than
// two standard deviations above the mean of the row projection. Those
// rows are underlines or fold lines running through the zone, and they
// merge adjacent characters when left in.
func removeMRZBaseline(region *image.Gray) *image.Gray {
	dark := raster.Threshold(region, 50, true)
	proj := raster.RowProjection(dark)
	if len(proj) == 0 {
		return region
	}

	var sum float64
	for _, c := range proj {
		sum += float64(c)
	}
	mean := sum / float64(len(proj))
	var varSum float64
	for _, c := range proj {
		d := float64(c) - mean
		varSum += d * d
	}
	std := math.Sqrt(varSum / float64(len(proj)))
	limit := mean + 2*std

	out := raster.CloneGray(region)
	w := out.Bounds().Dx()
	for y, c := range proj {
		if float64(c) > limit {
			row := out.Pix[y*out.Stride : y*out.Stride+w]
			for i := range row {
				row[i] = 255
			}
		}
	}
	return out
}
