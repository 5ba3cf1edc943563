package harness

import (
	"bytes"
	"context"
	"image"
	"strings"
	"testing"

	"github.com/wudi/scankit/profile"
	"github.com/wudi/scankit/textprobe"
)

// passthroughProcessor runs an empty module chain: output equals input.
func passthroughProcessor() *profile.Processor {
	return profile.NewProcessor(nil)
}

func pages(n int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		g := image.NewGray(image.Rect(0, 0, 64, 64))
		for j := range g.Pix {
			g.Pix[j] = 220
		}
		out[i] = g
	}
	return out
}

func TestRunScoresIdenticalTextAsOne(t *testing.T) {
	probe := &textprobe.Fixed{Text: "MACHINE READABLE ZONE"}
	r := NewRunner(passthroughProcessor(), probe)

	report, err := r.Run(context.Background(), pages(2))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := report.Aggregates.PageCount; got != 2 {
		t.Fatalf("page count = %d", got)
	}
	if report.Aggregates.FailedPages != 0 {
		t.Fatalf("failed pages = %d", report.Aggregates.FailedPages)
	}
	if report.Aggregates.MeanSimilarity != 1.0 {
		t.Fatalf("identical text should score 1.0, got %f", report.Aggregates.MeanSimilarity)
	}
	for _, p := range report.Pages {
		if p.LengthDelta != 0 {
			t.Fatalf("page %d length delta %d", p.PageIndex, p.LengthDelta)
		}
	}
}

func TestRunRecordsProbeFailures(t *testing.T) {
	r := NewRunner(passthroughProcessor(), textprobe.Noop{})

	report, err := r.Run(context.Background(), pages(1))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Aggregates.FailedPages != 1 {
		t.Fatalf("unavailable probe should fail the page")
	}
	if report.Pages[0].Error == "" {
		t.Fatalf("missing error entry")
	}
}

func TestRunRejectsEmptyDocument(t *testing.T) {
	r := NewRunner(passthroughProcessor(), &textprobe.Fixed{Text: "x"})
	if _, err := r.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestReportRenders(t *testing.T) {
	probe := &textprobe.Fixed{Text: "hello world"}
	r := NewRunner(passthroughProcessor(), probe)
	report, err := r.Run(context.Background(), pages(1))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var buf bytes.Buffer
	if err := report.WriteJSON(&buf); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(buf.String(), "mean_similarity") {
		t.Fatalf("json report missing aggregates")
	}

	md := report.Markdown()
	if !strings.Contains(md, "OCR Harness Report") {
		t.Fatalf("markdown missing title")
	}

	buf.Reset()
	if err := report.WriteHTML(&buf); err != nil {
		t.Fatalf("html: %v", err)
	}
	if !strings.Contains(buf.String(), "<h1") {
		t.Fatalf("html missing heading: %s", buf.String())
	}
}
