package pipeline

import "image"

// Timing holds the wall-clock cost of one step, in milliseconds.
type Timing struct {
	DetectMS  float64 `json:"detect"`
	ProcessMS float64 `json:"process"`
	TotalMS   float64 `json:"total"`
}

// StepRecord documents one module's run against one page. Records are
// appended in pipeline order and never edited afterwards.
type StepRecord struct {
	Module string `json:"module"`
	// Detected reports that the module's analysis fired.
	Detected bool `json:"detected"`
	// Applied reports that the correction changed pixels and was kept.
	Applied     bool   `json:"applied"`
	DetectMeta  Meta   `json:"detect_meta,omitempty"`
	ProcessMeta Meta   `json:"process_meta,omitempty"`
	Timing      Timing `json:"timing_ms"`
}

// PageResult is the orchestrator's output for one page.
type PageResult struct {
	PageIndex int
	Original  image.Image
	Final     image.Image
	// PreBinarize is a copy of the working image captured immediately
	// before the designated binarization module ran, or nil when the
	// pipeline contains no such module. It lets callers recover a
	// continuous-tone rendition after irreversible thresholding.
	PreBinarize image.Image
	Steps       []StepRecord
	// Err is set when the page aborted; Final then holds the last good
	// working image and Steps the records up to the failure.
	Err error
}

// Failed reports whether the page aborted before completing the chain.
func (r *PageResult) Failed() bool { return r.Err != nil }

// DocumentResult collects per-page results in page order. A failed page
// is recorded in place; it does not abort the rest of the document.
type DocumentResult struct {
	Pages []PageResult
}

// FailedPages returns the indices of pages that aborted.
func (d *DocumentResult) FailedPages() []int {
	var failed []int
	for i := range d.Pages {
		if d.Pages[i].Failed() {
			failed = append(failed, i)
		}
	}
	return failed
}
