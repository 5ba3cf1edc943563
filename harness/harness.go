// Package harness quantifies what preprocessing buys: it OCRs each raw
// page and its processed counterpart, scores the text similarity and
// length change, and renders a report. It depends only on the processor
// surface and the probe; module internals stay opaque.
package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/yuin/goldmark"

	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/profile"
	"github.com/wudi/scankit/textprobe"
)

// PageEval is the evaluation of a single page.
type PageEval struct {
	PageIndex     int    `json:"page_index"`
	BaselineText  string `json:"baseline_text"`
	ProcessedText string `json:"processed_text"`
	// Similarity is the Levenshtein ratio between baseline and
	// processed text, in [0, 1].
	Similarity  float64               `json:"similarity"`
	LengthDelta int                   `json:"length_delta"`
	BaselineMS  float64               `json:"ocr_time_baseline_ms"`
	ProcessedMS float64               `json:"ocr_time_processed_ms"`
	Steps       []pipeline.StepRecord `json:"steps,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// Aggregates summarizes the similarity scores across a document.
type Aggregates struct {
	MeanSimilarity float64 `json:"mean_similarity"`
	MinSimilarity  float64 `json:"min_similarity"`
	MaxSimilarity  float64 `json:"max_similarity"`
	PageCount      int     `json:"page_count"`
	FailedPages    int     `json:"failed_pages"`
}

// Report is a full harness run.
type Report struct {
	Pages         []PageEval `json:"pages"`
	Aggregates    Aggregates `json:"aggregates"`
	PipelineOrder []string   `json:"pipeline_order"`
}

// Runner drives harness evaluations.
type Runner struct {
	proc  *profile.Processor
	probe textprobe.Probe
	// OCRTimeout bounds each probe call.
	OCRTimeout time.Duration
}

// NewRunner binds a processor and a probe.
func NewRunner(proc *profile.Processor, probe textprobe.Probe) *Runner {
	if probe == nil {
		probe = textprobe.Default()
	}
	return &Runner{proc: proc, probe: probe, OCRTimeout: 60 * time.Second}
}

// Run processes every page and OCRs both versions. Pages whose OCR
// fails are recorded with an error entry and excluded from aggregates.
func (r *Runner) Run(ctx context.Context, pages []image.Image) (*Report, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("harness: no pages to evaluate")
	}

	doc := r.proc.ProcessDocument(ctx, pages)
	report := &Report{PipelineOrder: r.proc.ModuleNames()}
	lev := metrics.NewLevenshtein()

	var sum float64
	scored := 0
	for i, pr := range doc.Pages {
		eval := PageEval{PageIndex: i, Steps: pr.Steps}
		if pr.Failed() {
			eval.Error = pr.Err.Error()
			report.Pages = append(report.Pages, eval)
			continue
		}

		baseline, baseMS, err := r.sample(ctx, pages[i])
		if err != nil {
			eval.Error = fmt.Sprintf("baseline ocr: %v", err)
			report.Pages = append(report.Pages, eval)
			continue
		}
		processed, procMS, err := r.sample(ctx, pr.Final)
		if err != nil {
			eval.Error = fmt.Sprintf("processed ocr: %v", err)
			report.Pages = append(report.Pages, eval)
			continue
		}

		eval.BaselineText = baseline
		eval.ProcessedText = processed
		eval.Similarity = strutil.Similarity(baseline, processed, lev)
		eval.LengthDelta = len(processed) - len(baseline)
		eval.BaselineMS = baseMS
		eval.ProcessedMS = procMS
		report.Pages = append(report.Pages, eval)

		sum += eval.Similarity
		if scored == 0 || eval.Similarity < report.Aggregates.MinSimilarity {
			report.Aggregates.MinSimilarity = eval.Similarity
		}
		if scored == 0 || eval.Similarity > report.Aggregates.MaxSimilarity {
			report.Aggregates.MaxSimilarity = eval.Similarity
		}
		scored++
	}

	report.Aggregates.PageCount = len(pages)
	report.Aggregates.FailedPages = len(pages) - scored
	if scored > 0 {
		report.Aggregates.MeanSimilarity = sum / float64(scored)
	}
	return report, nil
}

func (r *Runner) sample(ctx context.Context, img image.Image) (string, float64, error) {
	cctx, cancel := context.WithTimeout(ctx, r.OCRTimeout)
	defer cancel()
	start := time.Now()
	text, err := r.probe.SampleText(cctx, img)
	if err != nil {
		return "", 0, err
	}
	return text, float64(time.Since(start)) / float64(time.Millisecond), nil
}

// WriteJSON writes the indented JSON report.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Markdown renders a human-readable summary.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# OCR Harness Report\n\n")
	fmt.Fprintf(&b, "Pipeline: `%s`\n\n", strings.Join(r.PipelineOrder, " > "))
	fmt.Fprintf(&b, "Pages: %d (failed: %d)\n\n",
		r.Aggregates.PageCount, r.Aggregates.FailedPages)
	fmt.Fprintf(&b, "Similarity mean %.3f, min %.3f, max %.3f\n\n",
		r.Aggregates.MeanSimilarity, r.Aggregates.MinSimilarity, r.Aggregates.MaxSimilarity)

	b.WriteString("| Page | Similarity | Length delta | Baseline ms | Processed ms | Error |\n")
	b.WriteString("|------|-----------|--------------|-------------|--------------|-------|\n")
	for _, p := range r.Pages {
		fmt.Fprintf(&b, "| %d | %.3f | %d | %.1f | %.1f | %s |\n",
			p.PageIndex, p.Similarity, p.LengthDelta, p.BaselineMS, p.ProcessedMS, p.Error)
	}
	return b.String()
}

// WriteHTML renders the Markdown summary as a standalone HTML fragment.
func (r *Report) WriteHTML(w io.Writer) error {
	return goldmark.New().Convert([]byte(r.Markdown()), w)
}
