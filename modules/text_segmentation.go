package modules

import (
	"context"
	"image"
	"sort"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/raster"
)

// TextSegmentation is a probe-style module: it measures line, word and
// character structure with projection profiles and connected components
// and reports the counts as metadata. The page is never modified.
type TextSegmentation struct{}

// NewTextSegmentation returns the module.
func NewTextSegmentation() *TextSegmentation { return &TextSegmentation{} }

func (m *TextSegmentation) Name() string { return NameTextSegmentation }

func (m *TextSegmentation) Detect(_ context.Context, img image.Image) (pipeline.Detection, error) {
	gray := grayView(img)
	binary := raster.Threshold(gray, 127, true)
	textRatio := raster.NonZeroRatio(binary)
	hasText := textRatio > 0.05 && textRatio < 0.95
	return pipeline.Detection{
		ShouldCorrect: hasText,
		Meta: pipeline.Meta{
			"text_ratio": textRatio,
			"has_text":   hasText,
		},
	}, nil
}

func (m *TextSegmentation) Correct(_ context.Context, img image.Image, _ pipeline.Meta) (pipeline.Correction, error) {
	gray := grayView(img)
	binary := raster.Threshold(gray, 127, true)

	lines := countRuns(raster.RowProjection(binary))
	words := countRuns(raster.ColProjection(binary))
	chars := characterBoxes(binary)

	return pipeline.Correction{
		Image:   raster.Clone(img),
		Mutated: false,
		Meta: pipeline.Meta{
			"applied":         false,
			"line_count":      lines,
			"word_count":      words,
			"character_count": len(chars),
			"method":          "projection_profile + connected_components",
		},
	}, nil
}

// countRuns counts maximal non-zero runs in a projection profile.
func countRuns(projection []int) int {
	runs := 0
	inRun := false
	for _, v := range projection {
		if v > 0 && !inRun {
			runs++
			inRun = true
		} else if v == 0 {
			inRun = false
		}
	}
	return runs
}

// characterBoxes returns candidate character bounding rectangles in
// reading order, filtered to plausible glyph sizes.
func characterBoxes(binary *image.Gray) []image.Rectangle {
	labeling := raster.LabelComponents(binary)
	var boxes []image.Rectangle
	for _, c := range labeling.Components {
		if c.Area > 10 && c.Area < 10000 {
			boxes = append(boxes, c.Rect)
		}
	}
	sort.Slice(boxes, func(i, j int) bool {
		if boxes[i].Min.Y != boxes[j].Min.Y {
			return boxes[i].Min.Y < boxes[j].Min.Y
		}
		return boxes[i].Min.X < boxes[j].Min.X
	})
	return boxes
}
